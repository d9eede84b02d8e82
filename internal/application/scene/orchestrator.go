package scene

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/younwookim/scenecore/internal/application/state"
	"github.com/younwookim/scenecore/internal/domain/entity"
)

// Orchestrator owns the active scene set and sequences transitions between sets.
//
// It starts in StateTransitioning and bootstraps into the first scene set on the
// first Tick. All methods must be called from the logic goroutine.
//
// Failure policy within an active tick: a scene whose Run fails stops the tick
// immediately and the remaining scenes are not run. A scene that asks to quit
// does not stop the tick; every scene finishes its Run before the transition
// starts.
type Orchestrator struct {
	factory     Factory
	loadingType Type
	log         *zap.Logger

	state   state.OrchestratorState
	scenes  []Scene
	loading Scene
	loader  *loader

	// err is a fatal transition failure. It is returned by every Tick until
	// RetryTransition is called.
	err    error
	closed bool

	transitions int
}

// New creates an Orchestrator that shows a scene of loadingType while transitioning.
func New(factory Factory, loadingType Type, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		factory:     factory,
		loadingType: loadingType,
		log:         log.Named("orchestrator"),
		state:       state.StateTransitioning,
	}
}

// Tick advances the orchestrator by one logic tick.
func (o *Orchestrator) Tick() error {
	if o.closed {
		return ErrClosed
	}
	if o.err != nil {
		return o.err
	}

	switch o.state {
	case state.StateTransitioning:
		return o.tickTransitioning()
	default:
		return o.tickActive()
	}
}

func (o *Orchestrator) tickTransitioning() error {
	// Bootstrap: nothing has started the first transition yet
	if o.loading == nil {
		if err := o.startTransition(); err != nil {
			return o.fail(err)
		}
	}

	if err := o.loading.Run(); err != nil {
		return o.fail(fmt.Errorf("run %q: %w: %w", o.loadingType, ErrLoadingScene, err))
	}

	switch {
	case o.loader.Failed():
		o.loader.wait()
		err := o.loader.Err()
		o.loader = nil
		return o.fail(err)
	case o.loader.Completed():
		o.loader.wait()
		o.scenes = o.loader.Staged()
		o.loader = nil
		o.loading = nil
		o.state = state.StateActive
		o.log.Info("scene set active", zap.Any("scenes", typesOf(o.scenes)))
	}
	return nil
}

func (o *Orchestrator) tickActive() error {
	quit := false
	for _, s := range o.scenes {
		if err := s.Run(); err != nil {
			return fmt.Errorf("run %q: %w: %w", s.Type(), ErrSceneRun, err)
		}
		if s.ShouldQuit() {
			quit = true
		}
	}

	if quit {
		if err := o.startTransition(); err != nil {
			return o.fail(err)
		}
	}
	return nil
}

// startTransition replaces the loading scene and spawns a new loader.
// Any previous loader is joined first so at most one is ever alive.
func (o *Orchestrator) startTransition() error {
	if o.loader != nil {
		o.loader.wait()
		o.loader = nil
	}

	o.state = state.StateTransitioning
	o.loading = nil

	loading := o.factory.CreateScene(o.loadingType)
	if loading == nil {
		return fmt.Errorf("create %q: %w: %w", o.loadingType, ErrLoadingScene, ErrUnknownSceneType)
	}
	if err := loading.Load(); err != nil {
		return fmt.Errorf("load %q: %w: %w", o.loadingType, ErrLoadingScene, err)
	}
	o.loading = loading

	current := typesOf(o.scenes)
	o.loader = newLoader(o.factory, current, o.log)
	o.loader.start()
	o.transitions++

	o.log.Info("transition started", zap.Any("from", current), zap.Int("transition", o.transitions))
	return nil
}

func (o *Orchestrator) fail(err error) error {
	o.err = err
	o.log.Error("transition failed", zap.Error(err))
	return err
}

// RetryTransition clears a fatal transition failure and starts a new
// transition from the unchanged scene set. It does nothing if no failure is pending.
func (o *Orchestrator) RetryTransition() error {
	if o.closed {
		return ErrClosed
	}
	if o.err == nil {
		return nil
	}
	o.err = nil
	if err := o.startTransition(); err != nil {
		return o.fail(err)
	}
	return nil
}

// AppendRenderables appends the renderables of the scenes currently ticking:
// the loading scene while transitioning, otherwise every active scene in order.
func (o *Orchestrator) AppendRenderables(dst []entity.Renderable) []entity.Renderable {
	if o.state == state.StateTransitioning {
		if src, ok := o.loading.(RenderableSource); ok {
			dst = src.AppendRenderables(dst)
		}
		return dst
	}
	for _, s := range o.scenes {
		if src, ok := s.(RenderableSource); ok {
			dst = src.AppendRenderables(dst)
		}
	}
	return dst
}

// Close joins any running loader. Tick returns ErrClosed afterwards.
func (o *Orchestrator) Close() {
	if o.loader != nil {
		o.loader.wait()
		o.loader = nil
	}
	o.loading = nil
	o.closed = true
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() state.OrchestratorState {
	return o.state
}

// Scenes returns the types of the current scene set, in tick order.
// While transitioning this is the set being replaced.
func (o *Orchestrator) Scenes() []Type {
	return typesOf(o.scenes)
}

// LoadingActive reports whether a loading scene is live.
func (o *Orchestrator) LoadingActive() bool {
	return o.loading != nil
}

// Err returns the pending fatal transition error, if any.
func (o *Orchestrator) Err() error {
	return o.err
}

// Transitions returns the number of transitions started so far.
func (o *Orchestrator) Transitions() int {
	return o.transitions
}
