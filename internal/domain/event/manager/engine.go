// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package manager owns the registry of live event instances and drives each
// one through its lifecycle.
package manager

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/ManuGH/eventd/internal/config"
	"github.com/ManuGH/eventd/internal/domain/event/lifecycle"
	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/ManuGH/eventd/internal/domain/event/ports"
	"github.com/ManuGH/eventd/internal/domain/event/reward"
	"github.com/ManuGH/eventd/internal/domain/event/variant"
	"github.com/ManuGH/eventd/internal/log"
	"github.com/ManuGH/eventd/internal/metrics"
	"github.com/ManuGH/eventd/internal/telemetry"
)

const (
	DefaultPublishTimeout = 250 * time.Millisecond
	DefaultSettleTimeout  = 10 * time.Second
	DefaultStuckGrace     = 2 * time.Minute
	DefaultSweepInterval  = 30 * time.Second
)

// Deps are the collaborators shared by every instance. Bus and Store are
// optional.
type Deps struct {
	World     ports.World
	Grants    ports.RewardGrants
	Messenger ports.Messenger
	Store     ports.RankingStore
	Bus       ports.Bus
}

type Options struct {
	Variants       variant.Factory
	PublishTimeout time.Duration
	SettleTimeout  time.Duration
	StuckGrace     time.Duration
	SweepInterval  time.Duration
	Tracer         trace.Tracer
}

func (o *Options) applyDefaults() {
	if o.Variants == nil {
		o.Variants = variant.New
	}
	if o.PublishTimeout <= 0 {
		o.PublishTimeout = DefaultPublishTimeout
	}
	if o.SettleTimeout <= 0 {
		o.SettleTimeout = DefaultSettleTimeout
	}
	if o.StuckGrace <= 0 {
		o.StuckGrace = DefaultStuckGrace
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = DefaultSweepInterval
	}
	if o.Tracer == nil {
		o.Tracer = telemetry.Tracer(telemetry.EngineTracer)
	}
}

// JoinRequest asks for a player to enter an event at a level.
type JoinRequest struct {
	Event       string
	Level       int
	Player      model.PlayerID
	PartyLeader model.PlayerID
}

// Engine is the instance registry. There is at most one live instance per
// event key; creation for a key is collapsed across concurrent callers.
type Engine struct {
	deps   Deps
	opts   Options
	logger zerolog.Logger

	mu        sync.RWMutex
	defs      map[string]config.EventDefinition
	instances map[model.EventKey]*Instance
	byID      map[string]*Instance
	closed    bool

	sf     singleflight.Group
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelCauseFunc
	newID  func() string
}

func New(deps Deps, defs []config.EventDefinition, opts Options) (*Engine, error) {
	switch {
	case deps.World == nil:
		return nil, errors.New("manager: world is required")
	case deps.Grants == nil:
		return nil, errors.New("manager: reward grants are required")
	case deps.Messenger == nil:
		return nil, errors.New("manager: messenger is required")
	}
	opts.applyDefaults()
	ctx, cancel := context.WithCancelCause(context.Background())
	e := &Engine{
		deps:      deps,
		opts:      opts,
		logger:    log.WithComponent("engine"),
		instances: make(map[model.EventKey]*Instance),
		byID:      make(map[string]*Instance),
		ctx:       ctx,
		cancel:    cancel,
		newID:     func() string { return uuid.New().String() },
	}
	e.ApplyDefinitions(defs)
	return e, nil
}

// ApplyDefinitions replaces the event catalogue. Running instances keep the
// definition they were created from.
func (e *Engine) ApplyDefinitions(defs []config.EventDefinition) {
	next := make(map[string]config.EventDefinition, len(defs))
	for _, d := range defs {
		next[d.Name] = d
	}
	e.mu.Lock()
	e.defs = next
	e.mu.Unlock()
	e.logger.Info().Int("events", len(next)).Msg("event definitions applied")
}

// Definitions returns the current catalogue sorted by name.
func (e *Engine) Definitions() []config.EventDefinition {
	e.mu.RLock()
	out := make([]config.EventDefinition, 0, len(e.defs))
	for _, d := range e.defs {
		out = append(out, d)
	}
	e.mu.RUnlock()
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

// CreateOrJoin finds or creates the instance for the request's key and tries
// to admit the player. Full and not-open results come back with a nil error.
func (e *Engine) CreateOrJoin(ctx context.Context, req JoinRequest) (*Instance, model.EnterResult, error) {
	e.mu.RLock()
	def, ok := e.defs[req.Event]
	e.mu.RUnlock()
	if !ok {
		return nil, model.EnterNotOpen, fmt.Errorf("%w: %q", ErrUnknownEvent, req.Event)
	}
	if req.Level < 1 || req.Level > def.Levels {
		return nil, model.EnterNotOpen, fmt.Errorf("%w: %d not in 1..%d", ErrInvalidLevel, req.Level, def.Levels)
	}
	key := model.KeyFor(def.Policy, def.MapNumber, req.Level, req.Player, req.PartyLeader)

	inst, err := e.instanceFor(ctx, def, key)
	if err != nil {
		return nil, model.EnterNotOpen, err
	}
	res, err := inst.TryEnter(ctx, req.Player)
	return inst, res, err
}

func (e *Engine) instanceFor(ctx context.Context, def config.EventDefinition, key model.EventKey) (*Instance, error) {
	if inst, ok := e.live(key); ok {
		return inst, nil
	}
	v, err, _ := e.sf.Do(key.String(), func() (any, error) {
		if inst, ok := e.live(key); ok {
			return inst, nil
		}
		return e.create(context.WithoutCancel(ctx), def, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Instance), nil
}

func (e *Engine) live(key model.EventKey) (*Instance, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	inst, ok := e.instances[key]
	if !ok || inst.Phase().IsTerminal() {
		return nil, false
	}
	return inst, true
}

func (e *Engine) create(ctx context.Context, def config.EventDefinition, key model.EventKey) (*Instance, error) {
	if def.Entrance == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingEntrance, def.Name)
	}
	hooks, err := e.opts.Variants(def)
	if err != nil {
		return nil, fmt.Errorf("build variant for %s: %w", def.Name, err)
	}
	m, err := e.deps.World.CreateMap(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("create map for %s: %w", key, err)
	}
	ledger, err := reward.New(reward.Deps{
		Grants:    e.deps.Grants,
		Messenger: e.deps.Messenger,
		Store:     e.deps.Store,
		Map:       m,
	}, def.Rewards)
	if err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("reward table for %s: %w", def.Name, err)
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		_ = m.Close()
		return nil, ErrShuttingDown
	}
	inst := newInstance(e.ctx, e.newID(), def, key, hooks, e.deps, m, ledger, e.opts)
	inst.onDisposed = e.forget
	e.instances[key] = inst
	e.byID[inst.id] = inst
	e.wg.Add(1)
	e.mu.Unlock()

	metrics.ActiveInstances.WithLabelValues(string(def.Variant)).Inc()
	go func() {
		defer e.wg.Done()
		inst.run()
	}()
	return inst, nil
}

// forget drops a disposed instance from the registry.
func (e *Engine) forget(inst *Instance) {
	e.mu.Lock()
	removed := false
	if cur, ok := e.instances[inst.key]; ok && cur == inst {
		delete(e.instances, inst.key)
		removed = true
	}
	if _, ok := e.byID[inst.id]; ok {
		delete(e.byID, inst.id)
		removed = true
	}
	e.mu.Unlock()
	if removed {
		metrics.ActiveInstances.WithLabelValues(string(inst.def.Variant)).Dec()
	}
}

// Instance returns a registered instance by id.
func (e *Engine) Instance(id string) (*Instance, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	inst, ok := e.byID[id]
	return inst, ok
}

// Instances returns every registered instance, oldest first.
func (e *Engine) Instances() []*Instance {
	e.mu.RLock()
	out := make([]*Instance, 0, len(e.byID))
	for _, inst := range e.byID {
		out = append(out, inst)
	}
	e.mu.RUnlock()
	sort.Slice(out, func(a, b int) bool { return out[a].createdAt.Before(out[b].createdAt) })
	return out
}

// Leave removes a player from the live instance for key and sends them to
// the safe zone.
func (e *Engine) Leave(ctx context.Context, key model.EventKey, player model.PlayerID) error {
	inst, ok := e.live(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrInstanceNotFound, key)
	}
	if !inst.Leave(ctx, player) {
		return fmt.Errorf("%w: %s in %s", ErrNotMember, player, key)
	}
	return nil
}

// Shutdown force-disposes every instance and waits for the drivers. If ctx
// ends first the remaining instances are disposed from here.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	e.cancel(lifecycle.NewReasonError(model.RForced, "shutdown", nil))
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		e.logger.Info().Msg("engine stopped")
		return nil
	case <-ctx.Done():
		left := e.Instances()
		for _, inst := range left {
			inst.Dispose(model.RForced)
		}
		e.logger.Warn().Int("instances", len(left)).Msg("shutdown deadline reached, disposed remaining instances")
		return fmt.Errorf("engine shutdown: %w", context.Cause(ctx))
	}
}
