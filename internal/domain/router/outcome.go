package router

import (
	"github.com/okian/avatarpaint/internal/domain/effect"
	"github.com/okian/avatarpaint/internal/domain/model"
)

// Outcome is how a single event was resolved.
type Outcome int

// Event outcomes.
const (
	OutcomeApplied Outcome = iota
	OutcomeCaptured
	OutcomeAlreadyCaptured
	OutcomeForgotten
	OutcomeIgnored
	OutcomeAgentNotFound
	OutcomeMeshNotFound
	OutcomeHidden
	OutcomeNoSnapshot
	OutcomeFailed
)

var outcomeNames = [...]string{
	OutcomeApplied:         "applied",
	OutcomeCaptured:        "captured",
	OutcomeAlreadyCaptured: "already_captured",
	OutcomeForgotten:       "forgotten",
	OutcomeIgnored:         "ignored",
	OutcomeAgentNotFound:   "agent_not_found",
	OutcomeMeshNotFound:    "mesh_not_found",
	OutcomeHidden:          "hidden",
	OutcomeNoSnapshot:      "no_snapshot",
	OutcomeFailed:          "failed",
}

func (o Outcome) String() string {
	if int(o) >= 0 && int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

// Result describes what the router did with one event.
type Result struct {
	Outcome   Outcome
	Kind      effect.Kind
	Component string
	Origin    string
	Avatar    model.AvatarID
	// Writes counts material property writes sent to the host.
	Writes int
}

// State is a component's lifecycle state.
type State int

// Component states.
const (
	StateArmed State = iota
	StateDisabled
)

func (s State) String() string {
	if s == StateDisabled {
		return "disabled"
	}
	return "armed"
}

// ComponentStatus reports a component after Arm.
type ComponentStatus struct {
	Name    string `json:"name"`
	Variant string `json:"variant"`
	State   string `json:"state"`
	Reason  string `json:"reason,omitempty"`
	// Bound is the number of host subscriptions the component holds.
	Bound int `json:"bound"`
}
