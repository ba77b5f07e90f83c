package tagged

import (
	"reflect"
	"slices"
	"strings"
)

// structField is a field of a struct type that takes part in decoding.
type structField struct {
	// Name is the key of the field in the source
	Name string
	Type reflect.Type

	// Index is the index sequence for reflect.Value.FieldByIndex
	Index []int

	// Required is set by the `required` tag option, e.g. `json:"id,required"`
	Required bool
}

// fieldCandidate is a field competing for a name, possibly promoted from an embedded struct.
type fieldCandidate struct {
	Explicit bool
	Field    structField
}

// structFieldsOf collects the decodable fields of a struct type. Names are resolved like
// encoding/json does: fields of embedded structs are promoted, a shallower field hides a
// deeper one and among fields on the same depth the one with an explicit tag wins.
// Conflicting fields are dropped silently.
func structFieldsOf(ty reflect.Type, structTag string) []structField {
	if ty.Kind() != reflect.Struct {
		panic("not a struct")
	}

	type pending struct {
		Type        reflect.Type
		ParentIndex []int
	}

	queue := []pending{{Type: ty}}

	candidates := map[string][]fieldCandidate{}

	var order []string

	// walk the type in bfs order
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		for idx := range item.Type.NumField() {
			fi := item.Type.Field(idx)
			if !fi.IsExported() {
				continue
			}

			tag := parseFieldTag(fi, structTag)
			if tag.Skip {
				continue
			}

			// ensure we allocate a new slice by limiting the parents capacity
			parent := item.ParentIndex
			index := append(parent[:len(parent):len(parent)], fi.Index...)

			if fi.Anonymous && !tag.Explicit {
				// embedded non struct types are not promoted
				if fi.Type.Kind() == reflect.Struct {
					queue = append(queue, pending{fi.Type, index})
				}

				continue
			}

			if len(candidates[tag.Name]) == 0 {
				order = append(order, tag.Name)
			}

			candidates[tag.Name] = append(candidates[tag.Name], fieldCandidate{
				Explicit: tag.Explicit,
				Field: structField{
					Name:     tag.Name,
					Type:     fi.Type,
					Index:    index,
					Required: tag.Required,
				},
			})
		}
	}

	var fields []structField

	for _, name := range order {
		if field, ok := dominantField(candidates[name]); ok {
			fields = append(fields, field)
		}
	}

	return fields
}

// dominantField picks the winning field from candidates sharing one name.
func dominantField(candidates []fieldCandidate) (structField, bool) {
	// INVARIANT: candidates are not empty and sorted by depth due to the bfs walk
	if len(candidates) == 0 {
		panic("candidates are empty")
	}

	depth := func(c fieldCandidate) int { return len(c.Field.Index) }

	if !slices.IsSortedFunc(candidates, func(a, b fieldCandidate) int { return depth(a) - depth(b) }) {
		panic("candidates are not sorted")
	}

	// only the shallowest candidates are visible
	visible := candidates[:1]
	for len(visible) < len(candidates) && depth(candidates[len(visible)]) == depth(candidates[0]) {
		visible = candidates[:len(visible)+1]
	}

	if len(visible) == 1 {
		return visible[0].Field, true
	}

	var explicit []fieldCandidate
	for _, c := range visible {
		if c.Explicit {
			explicit = append(explicit, c)
		}
	}

	if len(explicit) == 1 {
		return explicit[0].Field, true
	}

	return structField{}, false
}

type fieldTag struct {
	Name     string
	Explicit bool
	Skip     bool
	Required bool
}

func parseFieldTag(fi reflect.StructField, structTag string) fieldTag {
	tag, ok := fi.Tag.Lookup(structTag)
	if !ok || tag == "" {
		return fieldTag{Name: fi.Name}
	}

	if tag == "-" {
		return fieldTag{Skip: true}
	}

	name, options, _ := strings.Cut(tag, ",")

	parsed := fieldTag{Name: name, Explicit: name != ""}
	if name == "" {
		parsed.Name = fi.Name
	}

	for _, option := range strings.Split(options, ",") {
		if option == "required" {
			parsed.Required = true
		}
	}

	return parsed
}
