package model

import (
	"strings"
	"time"
)

// Curve selects how the host interpolates from the current to the target value.
type Curve int

// Supported interpolation curves.
const (
	CurveLinear Curve = iota
	CurveEaseIn
	CurveEaseOut
	CurveSmoothstep
	CurveStep
)

var curveNames = map[Curve]string{
	CurveLinear:     "linear",
	CurveEaseIn:     "ease-in",
	CurveEaseOut:    "ease-out",
	CurveSmoothstep: "smoothstep",
	CurveStep:       "step",
}

func (c Curve) String() string {
	if n, ok := curveNames[c]; ok {
		return n
	}
	return "linear"
}

// ParseCurve maps a curve name to a Curve. Matching ignores case, dashes,
// underscores and spaces. Unknown or empty names yield (CurveLinear, false).
func ParseCurve(name string) (Curve, bool) {
	key := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(name))
	switch key {
	case "linear":
		return CurveLinear, true
	case "easein":
		return CurveEaseIn, true
	case "easeout":
		return CurveEaseOut, true
	case "smoothstep":
		return CurveSmoothstep, true
	case "step":
		return CurveStep, true
	}
	return CurveLinear, false
}

// TransitionSpec tells the host how long and along which curve to blend.
type TransitionSpec struct {
	Duration time.Duration
	Curve    Curve
}
