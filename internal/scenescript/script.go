// Package scenescript loads YAML scene scripts and replays them against a
// running paint service.
package scenescript

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/okian/avatarpaint/internal/adapters/scene"
	"github.com/okian/avatarpaint/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// Actions understood by a step.
const (
	ActionJoin  = "join"
	ActionLeave = "leave"
	ActionEnter = "enter"
	ActionExit  = "exit"
	ActionClick = "click"
	ActionHide  = "hide"
	ActionShow  = "show"
	ActionFlush = "flush"
)

// Script is a cast of avatars and the steps they perform.
type Script struct {
	Avatars []Avatar `yaml:"avatars"`
	Steps   []Step   `yaml:"steps"`
}

// Avatar declares a script-local name for an avatar and its materials.
type Avatar struct {
	Name      string     `yaml:"name"`
	ID        string     `yaml:"id,omitempty"`
	Handle    string     `yaml:"handle"`
	Materials []Material `yaml:"materials"`
}

// Material is one render material at spawn time.
type Material struct {
	Name     string  `yaml:"name"`
	Tint     string  `yaml:"tint"`
	Emissive float64 `yaml:"emissive"`
}

// Step is one action. Handle names the volume or button for enter, exit and
// click. Wait pauses after the step.
type Step struct {
	Action string        `yaml:"action"`
	Avatar string        `yaml:"avatar,omitempty"`
	Handle string        `yaml:"handle,omitempty"`
	Wait   time.Duration `yaml:"wait,omitempty"`
}

// Load reads and validates a script file.
func Load(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene script: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}

// Parse decodes and validates a script. Unknown keys are rejected.
func Parse(r io.Reader) (*Script, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read scene script: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the cast and walks the steps in order, so a step cannot
// act on an avatar before it joins or after it leaves.
func (s *Script) Validate() error {
	cast := make(map[string]bool, len(s.Avatars))
	for i, a := range s.Avatars {
		if a.Name == "" {
			return fmt.Errorf("%w: avatar %d: missing name", ErrInvalidScript, i)
		}
		if cast[a.Name] {
			return fmt.Errorf("%w: avatar %q declared twice", ErrInvalidScript, a.Name)
		}
		if _, err := a.spec(); err != nil {
			return fmt.Errorf("%w: avatar %q: %v", ErrInvalidScript, a.Name, err)
		}
		cast[a.Name] = true
	}

	joined := make(map[string]bool, len(s.Avatars))
	for i := range s.Steps {
		st := &s.Steps[i]
		st.Action = strings.ToLower(strings.TrimSpace(st.Action))
		if st.Wait < 0 {
			return fmt.Errorf("%w: step %d: negative wait", ErrInvalidScript, i)
		}
		if st.Action == ActionFlush {
			continue
		}
		if !cast[st.Avatar] {
			return fmt.Errorf("%w: step %d: unknown avatar %q", ErrInvalidScript, i, st.Avatar)
		}
		switch st.Action {
		case ActionJoin:
			if joined[st.Avatar] {
				return fmt.Errorf("%w: step %d: %q already joined", ErrInvalidScript, i, st.Avatar)
			}
			joined[st.Avatar] = true
			continue
		case ActionEnter, ActionExit, ActionClick:
			if st.Handle == "" {
				return fmt.Errorf("%w: step %d: %s needs a handle", ErrInvalidScript, i, st.Action)
			}
		case ActionLeave, ActionHide, ActionShow:
		default:
			return fmt.Errorf("%w: step %d: unknown action %q", ErrInvalidScript, i, st.Action)
		}
		if !joined[st.Avatar] {
			return fmt.Errorf("%w: step %d: %q has not joined", ErrInvalidScript, i, st.Avatar)
		}
		if st.Action == ActionLeave {
			joined[st.Avatar] = false
		}
	}
	return nil
}

func (a Avatar) spec() (scene.AvatarSpec, error) {
	spec := scene.AvatarSpec{Handle: a.Handle}
	if spec.Handle == "" {
		spec.Handle = a.Name
	}
	if a.ID != "" {
		id, err := model.ParseAvatarID(a.ID)
		if err != nil {
			return spec, err
		}
		spec.ID = id
	}
	for i, m := range a.Materials {
		tint, err := model.ParseColor(m.Tint)
		if err != nil {
			return spec, fmt.Errorf("material %d: %w", i, err)
		}
		spec.Materials = append(spec.Materials, scene.MaterialSpec{
			Name:  m.Name,
			Props: model.MaterialProps{Tint: tint, EmissiveIntensity: m.Emissive},
		})
	}
	return spec, nil
}
