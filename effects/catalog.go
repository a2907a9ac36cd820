// Package effects holds the ordered catalog of receiver effects. The slice
// position of a name is the wire index sent in a set-effect command, so the
// catalog must match the receiver's own table in both length and order; that
// pairing is a build-time contract, nothing is negotiated at runtime.
package effects

// Catalog is a fixed, ordered list of effect names. It is never mutated
// after construction.
type Catalog struct {
	names []string
}

// New builds a catalog from names; the caller must not reuse the slice.
func New(names ...string) Catalog {
	return Catalog{names: names}
}

// Default returns the catalog matching the NightDriver PLATECOVER build.
func Default() Catalog {
	return New(
		"Solid White",
		"Solid Red",
		"Solid Amber",
		"Fire Effect",
		"Rainbow Fill",
		"Color Meteors",
		"Off",
	)
}

// Len returns the number of effects.
func (c Catalog) Len() int { return len(c.names) }

// Valid reports whether index addresses an effect.
func (c Catalog) Valid(index uint32) bool { return index < uint32(len(c.names)) }

// Name returns the effect name at index, or "" when out of range.
func (c Catalog) Name(index uint32) string {
	if !c.Valid(index) {
		return ""
	}
	return c.names[index]
}
