package model

// MaterialProps is the mutable part of a render material.
type MaterialProps struct {
	Tint              Color   `json:"tint"`
	EmissiveIntensity float64 `json:"emissive_intensity"`
}

// Snapshot is the state of an avatar's materials at capture time, indexed by
// the material's position in the avatar's material list.
// A Snapshot is never mutated after construction.
type Snapshot struct {
	props []MaterialProps
}

// NewSnapshot copies props into a new Snapshot.
func NewSnapshot(props []MaterialProps) Snapshot {
	if len(props) == 0 {
		return Snapshot{}
	}
	cp := make([]MaterialProps, len(props))
	copy(cp, props)
	return Snapshot{props: cp}
}

// Len returns the number of captured materials.
func (s Snapshot) Len() int { return len(s.props) }

// At returns the captured props at index i. Indices outside the snapshot
// report false.
func (s Snapshot) At(i int) (MaterialProps, bool) {
	if i < 0 || i >= len(s.props) {
		return MaterialProps{}, false
	}
	return s.props[i], true
}

// Props returns a copy of all captured entries.
func (s Snapshot) Props() []MaterialProps {
	return NewSnapshot(s.props).props
}

// Clone returns an independent copy of s.
func (s Snapshot) Clone() Snapshot { return NewSnapshot(s.props) }

// Equal reports whether both snapshots hold identical entries.
func (s Snapshot) Equal(o Snapshot) bool {
	if len(s.props) != len(o.props) {
		return false
	}
	for i := range s.props {
		if s.props[i] != o.props[i] {
			return false
		}
	}
	return true
}
