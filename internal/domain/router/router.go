// Package router turns host events into paint effects.
//
// A Router owns any number of components. Each component is one rig of paint
// triggers or buttons; arming it binds its sources to the host. Every signal
// runs the same precondition chain (agent, mesh, visibility) before the
// effect policy is applied, and every event resolves to a Result.
package router

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/avatarpaint/internal/domain/avatarcache"
	"github.com/okian/avatarpaint/internal/domain/effect"
	"github.com/okian/avatarpaint/internal/domain/host"
	"github.com/okian/avatarpaint/internal/domain/model"
	"github.com/okian/avatarpaint/internal/domain/source"
	"github.com/okian/avatarpaint/pkg/logger"
	"github.com/okian/avatarpaint/pkg/metrics"
)

// Router routes signals from armed components to the effect policy.
type Router struct {
	host    host.Host
	cache   avatarcache.Cache
	sampler effect.Sampler
	logger  logger.Logger
	debug   bool

	observers []func(ctx context.Context, res Result)

	mu         sync.RWMutex
	components []*component
	byName     map[string]*component
	usersBound bool
}

type component struct {
	spec   ComponentSpec
	colors []model.Color
	status ComponentStatus
}

// New creates a Router over the given host and cache.
func New(h host.Host, cache avatarcache.Cache, opts ...Option) *Router {
	r := &Router{
		host:    h,
		cache:   cache,
		sampler: rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // cosmetic colors
		logger:  logger.Nop(),
		byName:  make(map[string]*component),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Arm validates spec and binds its sources. A misconfigured component is
// recorded as disabled and makes no subscriptions at all.
func (r *Router) Arm(ctx context.Context, spec ComponentSpec) error {
	c := &component{
		spec: spec,
		status: ComponentStatus{
			Name:    spec.Name,
			Variant: spec.Variant.String(),
			State:   StateArmed.String(),
		},
	}

	colors, err := spec.Validate()
	if err != nil {
		c.status.State = StateDisabled.String()
		c.status.Reason = err.Error()
		r.register(c)
		r.logger.Error(ctx, "paint component disabled",
			logger.String("component", spec.Name),
			logger.Stringer("variant", spec.Variant),
			logger.Error(err))
		return fmt.Errorf("arm %q: %w", spec.Name, err)
	}
	c.colors = colors

	if err := r.bindUsers(); err != nil {
		c.status.State = StateDisabled.String()
		c.status.Reason = err.Error()
		r.register(c)
		r.logger.Error(ctx, "paint component disabled",
			logger.String("component", spec.Name),
			logger.Error(err))
		return fmt.Errorf("arm %q: %w", spec.Name, err)
	}

	for _, src := range spec.sources() {
		if err := src.Bind(ctx, r.host, r.emitFor(c)); err != nil {
			// The host refused this one input; the rest of the rig still works.
			r.logger.Warn(ctx, "source not bound",
				logger.String("component", spec.Name),
				logger.String("handle", src.Name()),
				logger.Error(err))
			continue
		}
		c.status.Bound++
	}

	r.register(c)
	r.logger.Info(ctx, "paint component armed",
		logger.String("component", spec.Name),
		logger.Stringer("variant", spec.Variant),
		logger.Int("bound", c.status.Bound))
	return nil
}

// Components reports every component passed to Arm, in arm order.
func (r *Router) Components() []ComponentStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ComponentStatus, len(r.components))
	for i, c := range r.components {
		out[i] = c.status
	}
	return out
}

// Route applies sig through the named component.
func (r *Router) Route(ctx context.Context, name string, sig source.Signal) (Result, error) {
	r.mu.RLock()
	c, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownComponent, name)
	}
	if c.status.State == StateDisabled.String() {
		return Result{Outcome: OutcomeIgnored, Kind: sig.Selector.Kind, Component: name, Origin: sig.Origin}, nil
	}
	return r.route(ctx, c, sig), nil
}

// Capture records the current materials of the agent behind id. An avatar
// that already has a snapshot keeps it.
func (r *Router) Capture(ctx context.Context, id model.ObjectID) Result {
	res := Result{Kind: effect.KindCapture}
	agent, ok := r.host.FindAgent(ctx, id)
	if !ok {
		res.Outcome = OutcomeAgentNotFound
		return res
	}
	res.Avatar = agent.AvatarID()

	mesh, ok := r.host.FindMesh(ctx, res.Avatar)
	if !ok {
		res.Outcome = OutcomeMeshNotFound
		return res
	}

	mats := mesh.Materials()
	props := make([]model.MaterialProps, len(mats))
	for i, m := range mats {
		props[i] = m.Properties()
	}
	if r.cache.Capture(ctx, res.Avatar, model.NewSnapshot(props)) {
		res.Outcome = OutcomeCaptured
	} else {
		res.Outcome = OutcomeAlreadyCaptured
	}
	return res
}

// Forget drops the snapshot of the agent behind id.
func (r *Router) Forget(ctx context.Context, id model.ObjectID) Result {
	res := Result{Kind: effect.KindCapture}
	agent, ok := r.host.FindAgent(ctx, id)
	if !ok {
		res.Outcome = OutcomeAgentNotFound
		return res
	}
	res.Avatar = agent.AvatarID()
	if r.cache.Forget(ctx, res.Avatar) {
		res.Outcome = OutcomeForgotten
	} else {
		res.Outcome = OutcomeIgnored
	}
	return res
}

func (r *Router) register(c *component) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.byName[c.spec.Name]; ok {
		for i := range r.components {
			if r.components[i] == old {
				r.components[i] = c
			}
		}
	} else {
		r.components = append(r.components, c)
	}
	r.byName[c.spec.Name] = c

	var armed, disabled int
	for _, comp := range r.components {
		if comp.status.State == StateDisabled.String() {
			disabled++
		} else {
			armed++
		}
	}
	metrics.UpdateComponents(StateArmed.String(), armed)
	metrics.UpdateComponents(StateDisabled.String(), disabled)
}

// bindUsers subscribes to join and leave once per router.
func (r *Router) bindUsers() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.usersBound {
		return nil
	}
	join := func(ctx context.Context, ev host.Event) {
		r.guard(ctx, "join", func() Result { return r.Capture(ctx, ev.ObjectID) })
	}
	leave := func(ctx context.Context, ev host.Event) {
		r.guard(ctx, "leave", func() Result { return r.Forget(ctx, ev.ObjectID) })
	}
	if err := r.host.SubscribeUserJoin(join); err != nil {
		return fmt.Errorf("subscribe join: %w", err)
	}
	if err := r.host.SubscribeUserLeave(leave); err != nil {
		return fmt.Errorf("subscribe leave: %w", err)
	}
	r.usersBound = true
	return nil
}

func (r *Router) emitFor(c *component) source.Emit {
	return func(ctx context.Context, sig source.Signal) {
		r.guard(ctx, c.spec.Name, func() Result { return r.route(ctx, c, sig) })
	}
}

func (r *Router) route(ctx context.Context, c *component, sig source.Signal) Result {
	res := Result{Kind: sig.Selector.Kind, Component: c.spec.Name, Origin: sig.Origin}
	if sig.Selector.Kind == effect.KindCapture {
		captured := r.Capture(ctx, sig.ObjectID)
		captured.Component, captured.Origin = res.Component, res.Origin
		return captured
	}

	agent, ok := r.host.FindAgent(ctx, sig.ObjectID)
	if !ok {
		res.Outcome = OutcomeAgentNotFound
		return res
	}
	res.Avatar = agent.AvatarID()

	mesh, ok := r.host.FindMesh(ctx, res.Avatar)
	if !ok {
		res.Outcome = OutcomeMeshNotFound
		return res
	}
	if !mesh.Visible() {
		res.Outcome = OutcomeHidden
		return res
	}

	mats := mesh.Materials()
	spec := &c.spec
	var plan effect.Plan
	switch sig.Selector.Kind {
	case effect.KindColorize:
		idx := sig.Selector.Index
		if idx < 0 || idx >= len(c.colors) {
			res.Outcome = OutcomeIgnored
			return res
		}
		plan = effect.Colorize(len(mats), c.colors[idx], spec.EmissiveLevel, spec.Colorize)
	case effect.KindRandomize:
		plan = effect.Randomize(len(mats), spec.EmissiveLevel, spec.Randomize, r.sampler)
	case effect.KindRestore:
		snap, ok := r.cache.Lookup(ctx, res.Avatar)
		if !ok {
			res.Outcome = OutcomeNoSnapshot
			return res
		}
		plan = effect.Restore(len(mats), snap, spec.Restore)
	default:
		res.Outcome = OutcomeIgnored
		return res
	}

	res.Writes = apply(mesh, mats, plan)
	res.Outcome = OutcomeApplied

	if r.debug {
		msg := fmt.Sprintf("Success performing material alterations on player '%s'", agent.Handle())
		if err := agent.SendChat(ctx, msg); err != nil {
			r.logger.Debug(ctx, "chat not delivered", logger.String("agent", agent.Handle()), logger.Error(err))
		}
	}
	return res
}

func apply(mesh host.Mesh, mats []host.Material, plan effect.Plan) int {
	if plan.ForceVisible {
		mesh.SetVisible(true)
	}
	for _, t := range plan.Targets {
		mats[t.Index].SetProperties(t.Props, plan.Transition)
	}
	return len(plan.Targets)
}

// guard is the boundary between the host's dispatch loop and the router.
// A panic in fn is counted and logged, never propagated.
func (r *Router) guard(ctx context.Context, handler string, fn func() Result) {
	var res Result
	defer func() {
		if p := recover(); p != nil {
			metrics.RecordHandlerPanic(handler)
			r.logger.Error(ctx, "paint handler panicked",
				logger.String("handler", handler),
				logger.Error(panicError(p)))
			res = Result{Outcome: OutcomeFailed, Component: handler}
		}
		r.record(ctx, res)
	}()
	res = fn()
}

func (r *Router) record(ctx context.Context, res Result) {
	switch res.Outcome {
	case OutcomeApplied:
		metrics.RecordEffectApplied(res.Kind.String())
		metrics.RecordMaterialWrites(res.Writes)
		r.logger.Debug(ctx, "paint applied",
			logger.Stringer("effect", res.Kind),
			logger.String("origin", res.Origin),
			logger.Stringer("avatar", res.Avatar),
			logger.Int("writes", res.Writes))
	case OutcomeCaptured, OutcomeAlreadyCaptured, OutcomeForgotten:
	default:
		metrics.RecordRouteAborted(res.Outcome.String())
		if r.debug {
			r.logger.Debug(ctx, "paint skipped",
				logger.Stringer("outcome", res.Outcome),
				logger.Stringer("effect", res.Kind),
				logger.String("origin", res.Origin))
		}
	}
	for _, fn := range r.observers {
		fn(ctx, res)
	}
}

func panicError(p any) error {
	if err, ok := p.(error); ok {
		return err
	}
	return errors.New(fmt.Sprint(p))
}
