// Package effect computes target material values for paint effects.
//
// Every function here is pure: it receives the avatar's current material
// count and returns a Plan that the caller pushes to the host.
package effect

import (
	"github.com/okian/avatarpaint/internal/domain/model"
)

// Kind names an effect.
type Kind int

// Effect kinds.
const (
	KindColorize Kind = iota
	KindRandomize
	KindRestore
	KindCapture
)

func (k Kind) String() string {
	switch k {
	case KindColorize:
		return "colorize"
	case KindRandomize:
		return "randomize"
	case KindRestore:
		return "restore"
	case KindCapture:
		return "capture"
	default:
		return "unknown"
	}
}

// Target is the desired state for the material at Index.
type Target struct {
	Index int
	Props model.MaterialProps
}

// Plan is the outcome of a policy: which materials change, to what, and how.
type Plan struct {
	Kind       Kind
	Targets    []Target
	Transition model.TransitionSpec
	// ForceVisible asks the caller to show the avatar before writing targets.
	ForceVisible bool
}

// Sampler yields uniform values in [0,1). *rand.Rand satisfies it.
type Sampler interface {
	Float64() float64
}

// Colorize paints every material with the same color and emissive level.
func Colorize(count int, color model.Color, emissive float64, t model.TransitionSpec) Plan {
	p := Plan{Kind: KindColorize, Transition: t, Targets: make([]Target, 0, max(count, 0))}
	for j := 0; j < count; j++ {
		p.Targets = append(p.Targets, Target{
			Index: j,
			Props: model.MaterialProps{Tint: color, EmissiveIntensity: emissive},
		})
	}
	return p
}

// Randomize paints every material with its own independently sampled opaque
// color.
func Randomize(count int, emissive float64, t model.TransitionSpec, s Sampler) Plan {
	p := Plan{Kind: KindRandomize, Transition: t, Targets: make([]Target, 0, max(count, 0))}
	for j := 0; j < count; j++ {
		p.Targets = append(p.Targets, Target{
			Index: j,
			Props: model.MaterialProps{Tint: RandomColor(s), EmissiveIntensity: emissive},
		})
	}
	return p
}

// RandomColor samples R, G and B independently with alpha fixed to 1.
func RandomColor(s Sampler) model.Color {
	r := s.Float64()
	g := s.Float64()
	b := s.Float64()
	return model.Opaque(r, g, b)
}

// Restore returns materials to their captured values. Iteration is bounded by
// the current count; materials past the end of the snapshot get no target and
// keep whatever they currently show.
func Restore(count int, snap model.Snapshot, t model.TransitionSpec) Plan {
	n := min(count, snap.Len())
	p := Plan{Kind: KindRestore, Transition: t, ForceVisible: true, Targets: make([]Target, 0, max(n, 0))}
	for j := 0; j < n; j++ {
		props, _ := snap.At(j)
		p.Targets = append(p.Targets, Target{Index: j, Props: props})
	}
	return p
}
