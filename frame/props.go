package frame

// Props is the per-frame string property bag.
//
// Operations copy the source frame's bag onto every derived frame and
// then add or remove their own keys, so user properties survive a full
// partition/reconstruction round trip untouched.
type Props map[string]string

// Clone returns an independent copy. Cloning nil yields nil.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Prop looks up a property on the frame. Safe on a nil bag.
func (f *Frame) Prop(key string) (string, bool) {
	v, ok := f.Props[key]
	return v, ok
}

// SetProp stores a property, allocating the bag on first use.
func (f *Frame) SetProp(key, value string) {
	if f.Props == nil {
		f.Props = make(Props, 1)
	}
	f.Props[key] = value
}

// DeleteProp removes a property. Safe on a nil bag.
func (f *Frame) DeleteProp(key string) {
	delete(f.Props, key)
}
