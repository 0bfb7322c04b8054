package scene

import (
	"context"
	"sort"

	"github.com/okian/avatarpaint/internal/domain/host"
	"github.com/okian/avatarpaint/internal/domain/model"
	"github.com/okian/avatarpaint/pkg/logger"
)

type agent struct {
	scene  *Scene
	avatar *avatar
}

func (a *agent) AvatarID() model.AvatarID { return a.avatar.id }
func (a *agent) Handle() string           { return a.avatar.handle }

func (a *agent) SendChat(ctx context.Context, msg string) error {
	s := a.scene
	s.mu.Lock()
	a.avatar.chat = append(a.avatar.chat, msg)
	if over := len(a.avatar.chat) - s.chatHistory; over > 0 {
		a.avatar.chat = a.avatar.chat[over:]
	}
	s.mu.Unlock()
	s.logger.Info(ctx, "chat", logger.String("to", a.avatar.handle), logger.String("msg", msg))
	return nil
}

type mesh struct {
	scene  *Scene
	avatar *avatar
}

func (m *mesh) Visible() bool {
	m.scene.mu.RLock()
	defer m.scene.mu.RUnlock()
	return m.avatar.visible
}

func (m *mesh) SetVisible(visible bool) {
	m.scene.mu.Lock()
	defer m.scene.mu.Unlock()
	m.avatar.visible = visible
}

func (m *mesh) Materials() []host.Material {
	m.scene.mu.RLock()
	defer m.scene.mu.RUnlock()
	out := make([]host.Material, len(m.avatar.materials))
	for i, mat := range m.avatar.materials {
		out[i] = mat
	}
	return out
}

type material struct {
	scene *Scene
	name  string
	props model.MaterialProps
	last  model.TransitionSpec
}

func (m *material) Name() string { return m.name }

func (m *material) Properties() model.MaterialProps {
	m.scene.mu.RLock()
	defer m.scene.mu.RUnlock()
	return m.props
}

// SetProperties lands the target immediately; the transition is recorded
// for inspection since nothing here renders.
func (m *material) SetProperties(props model.MaterialProps, t model.TransitionSpec) {
	m.scene.mu.Lock()
	m.props = props
	m.last = t
	m.scene.mu.Unlock()
	m.scene.writes.Add(1)
}

// MaterialView is a read-only copy of one material.
type MaterialView struct {
	Name       string              `json:"name"`
	Tint       string              `json:"tint"`
	Color      model.Color         `json:"color"`
	Emissive   float64             `json:"emissive"`
	Transition *TransitionView     `json:"transition,omitempty"`
	Props      model.MaterialProps `json:"-"`
}

// TransitionView is the last transition a material was asked to run.
type TransitionView struct {
	Duration string `json:"duration"`
	Curve    string `json:"curve"`
}

// AvatarView is a read-only copy of one avatar.
type AvatarView struct {
	ID        model.AvatarID `json:"-"`
	IDString  string         `json:"id"`
	Handle    string         `json:"handle"`
	Visible   bool           `json:"visible"`
	Materials []MaterialView `json:"materials"`
	Chat      []string       `json:"chat,omitempty"`
}

// Avatar returns a copy of the avatar's current state.
func (s *Scene) Avatar(id model.AvatarID) (AvatarView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.avatars[id]
	if !ok {
		return AvatarView{}, false
	}
	return a.view(), true
}

// Avatars returns every avatar, ordered by handle.
func (s *Scene) Avatars() []AvatarView {
	s.mu.RLock()
	out := make([]AvatarView, 0, len(s.avatars))
	for _, a := range s.avatars {
		out = append(out, a.view())
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}

// Population returns the number of avatars in the scene.
func (s *Scene) Population() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.avatars)
}

// Writes returns the number of material writes since the scene was created.
func (s *Scene) Writes() int64 { return s.writes.Load() }

// Prompts returns the prompt of every interactive handle.
func (s *Scene) Prompts() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.interactions))
	for h, in := range s.interactions {
		out[h] = in.prompt
	}
	return out
}

// Volumes returns every handle with a collision subscriber, sorted.
func (s *Scene) Volumes() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.collisions))
	for h := range s.collisions {
		out = append(out, h)
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out
}

// view must be called with the scene lock held.
func (a *avatar) view() AvatarView {
	v := AvatarView{
		ID:        a.id,
		IDString:  a.id.String(),
		Handle:    a.handle,
		Visible:   a.visible,
		Materials: make([]MaterialView, len(a.materials)),
		Chat:      append([]string(nil), a.chat...),
	}
	for i, m := range a.materials {
		mv := MaterialView{
			Name:     m.name,
			Tint:     m.props.Tint.Hex(),
			Color:    m.props.Tint,
			Emissive: m.props.EmissiveIntensity,
			Props:    m.props,
		}
		if m.last != (model.TransitionSpec{}) {
			mv.Transition = &TransitionView{Duration: m.last.Duration.String(), Curve: m.last.Curve.String()}
		}
		v.Materials[i] = mv
	}
	return v
}
