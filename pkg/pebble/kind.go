package pebble

// Kind identifies the variant of a cell definition.
type Kind uint8

const (
	// KindUnknown is reported by zero-value definitions. The constructors
	// never produce it.
	KindUnknown Kind = iota
	KindPebble
	KindComputed
	KindProxy
	KindCustom
)

// String returns the kind name. It is also the prefix of default identities.
func (k Kind) String() string {
	switch k {
	case KindPebble:
		return "pebble"
	case KindComputed:
		return "computed"
	case KindProxy:
		return "proxy"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Writable reports whether cells of this kind accept writes.
func (k Kind) Writable() bool {
	return k == KindPebble || k == KindProxy || k == KindCustom
}
