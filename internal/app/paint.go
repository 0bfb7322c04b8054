package service

import (
	"context"

	"github.com/okian/avatarpaint/internal/config"
	"github.com/okian/avatarpaint/internal/domain/model"
	"github.com/okian/avatarpaint/internal/domain/router"
	"github.com/okian/avatarpaint/pkg/logger"
)

// Component names as reported by /components.
const (
	VolumesComponent = "volumes"
	ButtonsComponent = "buttons"
)

// componentSpecs turns the paint config into router specs. Rigs with no
// handles at all are skipped rather than reported as disabled.
func (s *Service) componentSpecs(ctx context.Context) []router.ComponentSpec {
	var specs []router.ComponentSpec

	if v := s.paint.Volumes; v.Configured() {
		specs = append(specs, router.ComponentSpec{
			Name:           VolumesComponent,
			Variant:        router.VariantVolume,
			PaintHandles:   v.PaintTriggers,
			PaintColors:    v.PaintColors,
			RandomHandle:   v.RandomTrigger,
			CleanserHandle: v.CleanserTrigger,
			CaptureHandle:  v.SpawnTrigger,
			EmissiveLevel:  s.paint.EmissiveLevel,
			Colorize:       s.transition(ctx, VolumesComponent, "colorize", v.Colorize),
			Randomize:      s.transition(ctx, VolumesComponent, "randomize", v.Randomize),
			Restore:        s.transition(ctx, VolumesComponent, "cleanse", v.Cleanse),
		})
	} else {
		s.logger.Debug(ctx, "no paint volumes configured")
	}

	if b := s.paint.Buttons; b.Configured() {
		specs = append(specs, router.ComponentSpec{
			Name:           ButtonsComponent,
			Variant:        router.VariantButton,
			PaintHandles:   b.PaintButtons,
			PaintPrompts:   b.PaintPrompts,
			PaintColors:    b.PaintColors,
			RandomHandle:   b.RandomButton,
			RandomPrompt:   b.RandomPrompt,
			CleanserHandle: b.CleanserButton,
			CleanserPrompt: b.CleanserPrompt,
			EmissiveLevel:  s.paint.EmissiveLevel,
			Colorize:       s.transition(ctx, ButtonsComponent, "colorize", b.Colorize),
			Randomize:      s.transition(ctx, ButtonsComponent, "randomize", b.Randomize),
			Restore:        s.transition(ctx, ButtonsComponent, "cleanse", b.Cleanse),
		})
	} else {
		s.logger.Debug(ctx, "no paint buttons configured")
	}

	return specs
}

// transition resolves a configured curve name. Unknown names blend linearly.
func (s *Service) transition(ctx context.Context, component, effect string, t config.Transition) model.TransitionSpec {
	curve, ok := model.ParseCurve(t.Curve)
	if !ok && t.Curve != "" {
		s.logger.Debug(ctx, "unknown transition curve, using linear",
			logger.String("component", component),
			logger.String("effect", effect),
			logger.String("curve", t.Curve))
	}
	return model.TransitionSpec{Duration: t.Duration, Curve: curve}
}
