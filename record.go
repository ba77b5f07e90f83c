package tagged

// DecodeRecord decodes a single record into the variant named by its discriminator and
// returns it as the base interface T. The discriminator is read and resolved before any
// other field of the record is touched.
func DecodeRecord[T any](d *Decoder, registry *Registry[T], source Source) (T, error) {
	var tZero T

	tag, err := ReadDiscriminator(source, registry.field)
	if err != nil {
		return tZero, err
	}

	variant, err := registry.Resolve(tag)
	if err != nil {
		return tZero, err
	}

	value, err := variant.decode(d, source)
	if err != nil {
		return tZero, err
	}

	return value, nil
}
