package router

import (
	"fmt"
	"strings"

	"github.com/okian/avatarpaint/internal/domain/effect"
	"github.com/okian/avatarpaint/internal/domain/model"
	"github.com/okian/avatarpaint/internal/domain/source"
)

// Variant is the input modality of a component.
type Variant int

// Component variants.
const (
	VariantVolume Variant = iota
	VariantButton
)

func (v Variant) String() string {
	if v == VariantButton {
		return "button"
	}
	return "volume"
}

// ComponentSpec is one paint rig: a set of paint handles with matching
// colors, plus optional random, cleanser and (volume only) spawn-capture
// handles.
type ComponentSpec struct {
	Name    string
	Variant Variant

	PaintHandles []string
	// PaintColors are "#rrggbb" or "#rrggbbaa", one per paint handle.
	PaintColors []string
	// PaintPrompts are the click prompts, one per paint handle (button only).
	PaintPrompts []string

	RandomHandle   string
	RandomPrompt   string
	CleanserHandle string
	CleanserPrompt string
	// CaptureHandle is a spawn-area volume that captures originals on entry.
	CaptureHandle string

	EmissiveLevel float64
	Colorize      model.TransitionSpec
	Randomize     model.TransitionSpec
	Restore       model.TransitionSpec
}

// Validate checks list lengths and required handles, returning the parsed
// paint colors. Any failure wraps ErrMisconfigured.
func (s *ComponentSpec) Validate() ([]model.Color, error) {
	if len(s.PaintHandles) != len(s.PaintColors) {
		return nil, fmt.Errorf("%w: %d paint handles vs %d colors", ErrMisconfigured, len(s.PaintHandles), len(s.PaintColors))
	}
	if s.Variant == VariantButton && len(s.PaintPrompts) != len(s.PaintHandles) {
		return nil, fmt.Errorf("%w: %d paint buttons vs %d prompts", ErrMisconfigured, len(s.PaintHandles), len(s.PaintPrompts))
	}
	if s.Variant == VariantButton && s.CaptureHandle != "" {
		return nil, fmt.Errorf("%w: spawn capture requires a volume component", ErrMisconfigured)
	}

	colors := make([]model.Color, len(s.PaintColors))
	for i, h := range s.PaintHandles {
		if strings.TrimSpace(h) == "" {
			return nil, fmt.Errorf("%w: paint handle at index %d is empty", ErrMisconfigured, i)
		}
		c, err := model.ParseColor(s.PaintColors[i])
		if err != nil {
			return nil, fmt.Errorf("%w: paint color at index %d: %v", ErrMisconfigured, i, err)
		}
		colors[i] = c
		if s.Variant == VariantButton && strings.TrimSpace(s.PaintPrompts[i]) == "" {
			return nil, fmt.Errorf("%w: paint prompt at index %d is empty", ErrMisconfigured, i)
		}
	}
	for _, h := range []struct{ role, handle string }{
		{"random", s.RandomHandle},
		{"cleanser", s.CleanserHandle},
		{"capture", s.CaptureHandle},
	} {
		if h.handle != "" && strings.TrimSpace(h.handle) == "" {
			return nil, fmt.Errorf("%w: %s handle is blank", ErrMisconfigured, h.role)
		}
	}
	if s.Variant == VariantButton {
		if s.RandomHandle != "" && strings.TrimSpace(s.RandomPrompt) == "" {
			return nil, fmt.Errorf("%w: random button %q has no prompt", ErrMisconfigured, s.RandomHandle)
		}
		if s.CleanserHandle != "" && strings.TrimSpace(s.CleanserPrompt) == "" {
			return nil, fmt.Errorf("%w: cleanser button %q has no prompt", ErrMisconfigured, s.CleanserHandle)
		}
	}

	if len(s.PaintHandles) == 0 && s.RandomHandle == "" && s.CleanserHandle == "" && s.CaptureHandle == "" {
		return nil, fmt.Errorf("%w: no triggers defined", ErrMisconfigured)
	}
	return colors, nil
}

// sources lists the inputs to bind for a validated spec.
func (s *ComponentSpec) sources() []source.Source {
	var out []source.Source
	add := func(handle, prompt string, sel source.Selector) {
		if handle == "" {
			return
		}
		if s.Variant == VariantButton {
			out = append(out, source.Button{Handle: handle, Prompt: prompt, Selector: sel})
			return
		}
		out = append(out, source.Volume{Handle: handle, Selector: sel})
	}

	for i, h := range s.PaintHandles {
		prompt := ""
		if s.Variant == VariantButton {
			prompt = s.PaintPrompts[i]
		}
		add(h, prompt, source.Selector{Kind: effect.KindColorize, Index: i})
	}
	add(s.RandomHandle, s.RandomPrompt, source.Selector{Kind: effect.KindRandomize})
	add(s.CleanserHandle, s.CleanserPrompt, source.Selector{Kind: effect.KindRestore})
	add(s.CaptureHandle, "", source.Selector{Kind: effect.KindCapture})
	return out
}
