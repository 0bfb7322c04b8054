package scenescript

import (
	"context"
	"errors"
	"fmt"
	"time"

	eventqueue "github.com/okian/avatarpaint/internal/adapters/mq/queue"
	"github.com/okian/avatarpaint/internal/adapters/scene"
	"github.com/okian/avatarpaint/internal/domain/model"
	"github.com/okian/avatarpaint/pkg/logger"
)

// Player is the subset of the paint service a script drives.
type Player interface {
	Join(ctx context.Context, spec scene.AvatarSpec) (model.AvatarID, error)
	Leave(ctx context.Context, id model.AvatarID) error
	Enter(ctx context.Context, id model.AvatarID, handle string) error
	Exit(ctx context.Context, id model.AvatarID, handle string) error
	Click(ctx context.Context, id model.AvatarID, handle string) error
	SetVisibility(ctx context.Context, id model.AvatarID, visible bool) error
	Flush(ctx context.Context) error
}

// Report summarizes a replay.
type Report struct {
	Steps    int
	Retries  int
	Avatars  map[string]model.AvatarID
	Duration time.Duration
}

// Run replays the script step by step and flushes the player at the end.
// A step refused for backpressure is retried once after a flush.
func Run(ctx context.Context, p Player, s *Script, log logger.Logger) (Report, error) {
	if log == nil {
		log = logger.Nop()
	}
	start := time.Now()
	rep := Report{Avatars: make(map[string]model.AvatarID, len(s.Avatars))}

	specs := make(map[string]scene.AvatarSpec, len(s.Avatars))
	for _, a := range s.Avatars {
		spec, err := a.spec()
		if err != nil {
			return rep, fmt.Errorf("%w: avatar %q: %v", ErrInvalidScript, a.Name, err)
		}
		specs[a.Name] = spec
	}

	log.Info(ctx, "replaying scene script",
		logger.Int("avatars", len(s.Avatars)),
		logger.Int("steps", len(s.Steps)))

	for i, st := range s.Steps {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		err := play(ctx, p, st, specs, rep.Avatars)
		if errors.Is(err, eventqueue.ErrFull) {
			rep.Retries++
			if ferr := p.Flush(ctx); ferr != nil {
				return rep, fmt.Errorf("%w: step %d: %v", ErrStep, i, ferr)
			}
			err = play(ctx, p, st, specs, rep.Avatars)
		}
		if err != nil {
			return rep, fmt.Errorf("%w: step %d (%s %s): %v", ErrStep, i, st.Action, st.Avatar, err)
		}
		rep.Steps++

		log.Debug(ctx, "scene step",
			logger.Int("step", i),
			logger.String("action", st.Action),
			logger.String("avatar", st.Avatar),
			logger.String("handle", st.Handle))

		if st.Wait > 0 {
			if err := wait(ctx, p, st.Wait); err != nil {
				return rep, err
			}
		}
	}

	if err := p.Flush(ctx); err != nil {
		return rep, fmt.Errorf("flush: %w", err)
	}
	rep.Duration = time.Since(start)
	log.Info(ctx, "scene script complete",
		logger.Int("steps", rep.Steps),
		logger.Int("retries", rep.Retries),
		logger.Duration("duration", rep.Duration))
	return rep, nil
}

func play(ctx context.Context, p Player, st Step, specs map[string]scene.AvatarSpec, ids map[string]model.AvatarID) error {
	if st.Action == ActionFlush {
		return p.Flush(ctx)
	}
	if st.Action == ActionJoin {
		id, err := p.Join(ctx, specs[st.Avatar])
		if err != nil {
			return err
		}
		ids[st.Avatar] = id
		return nil
	}

	id := ids[st.Avatar]
	switch st.Action {
	case ActionLeave:
		return p.Leave(ctx, id)
	case ActionEnter:
		return p.Enter(ctx, id, st.Handle)
	case ActionExit:
		return p.Exit(ctx, id, st.Handle)
	case ActionClick:
		return p.Click(ctx, id, st.Handle)
	case ActionHide:
		return p.SetVisibility(ctx, id, false)
	case ActionShow:
		return p.SetVisibility(ctx, id, true)
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidScript, st.Action)
	}
}

// wait flushes pending events, then sleeps out the rest of d.
func wait(ctx context.Context, p Player, d time.Duration) error {
	deadline := time.Now().Add(d)
	if err := p.Flush(ctx); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
