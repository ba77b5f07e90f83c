// Package tagged decodes heterogeneous, tagged records into a homogeneous slice of a common
// interface type. Each record carries a discriminator field (for example "type") naming the
// concrete variant it holds. A [Registry] maps each discriminator to exactly one Go type, and a
// [SequenceDecoder] walks a collection, peeks the discriminator of every element, decodes the
// element into its variant and appends it as the interface type.
//
// Input is accessed through the [Source] abstraction, which models a serialized value by a set
// of functions like [Source.Get], [Source.Iter] or [Source.String]. The subpackages tagjson and
// tagyaml provide sources for JSON and YAML documents, [AnySource] adapts already decoded Go
// values such as map[string]any.
//
// Decoding is all or nothing. The first record that can not be decoded aborts the sequence and
// the caller receives a single error carrying the coding path to the offending value, e.g.
// $.messages[3].url. See [MissingDiscriminatorError], [UnknownDiscriminatorError] and
// [FieldDecodeError].
//
// Example:
//
//	type Message interface{ MessageID() int64 }
//
//	registry := tagged.MustRegistry("type",
//	    tagged.Case[Message, Text]("text"),
//	    tagged.Case[Message, Image]("image"),
//	)
//
//	messages, err := tagged.DecodeSequenceField(registry, source, "messages")
package tagged
