// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and environment variables on top.
// - Keys use koanf tags; json tags mirror them for the generated schema.
package config

import (
	"context"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" json:"log_level" jsonschema:"description=Log verbosity,enum=debug,enum=info,enum=warn,enum=error"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" json:"addr" jsonschema:"description=Ops HTTP listen address,minLength=1"`

	// EventQueueSize bounds the in-memory host event queue.
	EventQueueSize int `koanf:"queue_size" json:"queue_size" jsonschema:"description=Pending host events before backpressure,minimum=1"`

	// CacheSize bounds the original-material cache. Zero means unbounded.
	CacheSize int `koanf:"cache_size" json:"cache_size" jsonschema:"description=Maximum cached avatars; 0 keeps every avatar until it leaves,minimum=0"`

	// SceneScript is an optional YAML scene replayed at startup.
	SceneScript string `koanf:"scene_script" json:"scene_script,omitempty" jsonschema:"description=Path of a scene script replayed at startup"`

	// ShutdownTimeout bounds graceful shutdown of the HTTP server and dispatcher.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" json:"shutdown_timeout" jsonschema:"description=Graceful shutdown bound in nanoseconds or a Go duration string"`

	Paint Paint `koanf:"paint" json:"paint"`
}

// Paint configures the paint components.
type Paint struct {
	// Debug sends chat confirmations to painted agents and logs misses.
	Debug bool `koanf:"debug" json:"debug" jsonschema:"description=Chat confirmations and verbose miss logging"`

	// EmissiveLevel is the emissive intensity written by colorize and randomize.
	EmissiveLevel float64 `koanf:"emissive_level" json:"emissive_level" jsonschema:"description=Emissive intensity applied with paint,minimum=0"`

	Volumes Volumes `koanf:"volumes" json:"volumes"`
	Buttons Buttons `koanf:"buttons" json:"buttons"`
}

// Transition is a blend duration and curve name.
type Transition struct {
	Duration time.Duration `koanf:"duration" json:"duration"`
	Curve    string        `koanf:"curve" json:"curve" jsonschema:"enum=linear,enum=ease-in,enum=ease-out,enum=smoothstep,enum=step"`
}

// Volumes is the trigger-volume paint component.
type Volumes struct {
	PaintTriggers   []string   `koanf:"paint_triggers" json:"paint_triggers,omitempty" jsonschema:"description=Trigger volumes that colorize; paired by index with paint_colors"`
	PaintColors     []string   `koanf:"paint_colors" json:"paint_colors,omitempty" jsonschema:"description=Colors as #rrggbb or #rrggbbaa"`
	RandomTrigger   string     `koanf:"random_trigger" json:"random_trigger,omitempty"`
	CleanserTrigger string     `koanf:"cleanser_trigger" json:"cleanser_trigger,omitempty"`
	SpawnTrigger    string     `koanf:"spawn_trigger" json:"spawn_trigger,omitempty" jsonschema:"description=Volume that captures original materials on entry"`
	Colorize        Transition `koanf:"colorize" json:"colorize"`
	Randomize       Transition `koanf:"randomize" json:"randomize"`
	Cleanse         Transition `koanf:"cleanse" json:"cleanse"`
}

// Configured reports whether any trigger is named.
func (v Volumes) Configured() bool {
	return len(v.PaintTriggers) > 0 || len(v.PaintColors) > 0 ||
		v.RandomTrigger != "" || v.CleanserTrigger != "" || v.SpawnTrigger != ""
}

// Buttons is the clickable-button paint component.
type Buttons struct {
	PaintButtons   []string   `koanf:"paint_buttons" json:"paint_buttons,omitempty" jsonschema:"description=Buttons that colorize; paired by index with paint_prompts and paint_colors"`
	PaintPrompts   []string   `koanf:"paint_prompts" json:"paint_prompts,omitempty"`
	PaintColors    []string   `koanf:"paint_colors" json:"paint_colors,omitempty" jsonschema:"description=Colors as #rrggbb or #rrggbbaa"`
	RandomButton   string     `koanf:"random_button" json:"random_button,omitempty"`
	RandomPrompt   string     `koanf:"random_prompt" json:"random_prompt,omitempty"`
	CleanserButton string     `koanf:"cleanser_button" json:"cleanser_button,omitempty"`
	CleanserPrompt string     `koanf:"cleanser_prompt" json:"cleanser_prompt,omitempty"`
	Colorize       Transition `koanf:"colorize" json:"colorize"`
	Randomize      Transition `koanf:"randomize" json:"randomize"`
	Cleanse        Transition `koanf:"cleanse" json:"cleanse"`
}

// Configured reports whether any button is named.
func (b Buttons) Configured() bool {
	return len(b.PaintButtons) > 0 || len(b.PaintPrompts) > 0 || len(b.PaintColors) > 0 ||
		b.RandomButton != "" || b.CleanserButton != ""
}

// New creates a Config with defaults. Context is accepted first to follow
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		EventQueueSize:  1024,
		CacheSize:       0,
		ShutdownTimeout: 5 * time.Second,
		Paint: Paint{
			EmissiveLevel: 32,
			Volumes: Volumes{
				Colorize:  Transition{Duration: 100 * time.Microsecond, Curve: "linear"},
				Randomize: Transition{Duration: 3 * time.Second, Curve: "linear"},
				Cleanse:   Transition{Duration: 5 * time.Second, Curve: "linear"},
			},
			Buttons: Buttons{
				RandomPrompt:   "Randomize Avatar Material Colors",
				CleanserPrompt: "Remove Avatar Paint",
				Colorize:       Transition{Duration: 100 * time.Microsecond, Curve: "linear"},
				Randomize:      Transition{Duration: 10 * time.Millisecond, Curve: "linear"},
				Cleanse:        Transition{Duration: 250 * time.Millisecond, Curve: "linear"},
			},
		},
	}
}
