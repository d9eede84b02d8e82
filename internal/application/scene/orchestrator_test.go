package scene

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/younwookim/scenecore/internal/application/state"
	"github.com/younwookim/scenecore/internal/domain/entity"
)

const loadingType Type = "L"

// mockScene is a test double for the Scene interface
type mockScene struct {
	typ         Type
	loadCalls   int
	runCalls    int
	loadErr     error
	runErr      error
	quitAfter   int // quit once runCalls reaches this value, 0 = never
	renderables []entity.Renderable
	runLog      *[]Type
}

func (m *mockScene) Type() Type { return m.typ }

func (m *mockScene) Load() error {
	m.loadCalls++
	return m.loadErr
}

func (m *mockScene) Run() error {
	if m.loadCalls != 1 {
		panic("Run called before Load")
	}
	m.runCalls++
	if m.runLog != nil {
		*m.runLog = append(*m.runLog, m.typ)
	}
	return m.runErr
}

func (m *mockScene) ShouldQuit() bool {
	return m.quitAfter > 0 && m.runCalls >= m.quitAfter
}

func (m *mockScene) AppendRenderables(dst []entity.Renderable) []entity.Renderable {
	return append(dst, m.renderables...)
}

// mockFactory is a test double for the Factory interface
type mockFactory struct {
	mu        sync.Mutex
	build     map[Type]func() *mockScene
	next      func(current []Type) []Type
	created   map[Type][]*mockScene
	nextCalls [][]Type

	alive    atomic.Int32
	maxAlive atomic.Int32
}

func newMockFactory(next func(current []Type) []Type) *mockFactory {
	f := &mockFactory{
		build:   make(map[Type]func() *mockScene),
		next:    next,
		created: make(map[Type][]*mockScene),
	}
	f.register(loadingType, func() *mockScene { return &mockScene{} })
	return f
}

func (f *mockFactory) register(t Type, fn func() *mockScene) {
	f.build[t] = fn
}

func (f *mockFactory) CreateScene(t Type) Scene {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn, ok := f.build[t]
	if !ok {
		return nil
	}
	s := fn()
	s.typ = t
	f.created[t] = append(f.created[t], s)
	return s
}

func (f *mockFactory) NextScenes(current []Type) []Type {
	n := f.alive.Add(1)
	defer f.alive.Add(-1)
	for {
		m := f.maxAlive.Load()
		if n <= m || f.maxAlive.CompareAndSwap(m, n) {
			break
		}
	}

	f.mu.Lock()
	f.nextCalls = append(f.nextCalls, append([]Type(nil), current...))
	f.mu.Unlock()
	return f.next(current)
}

func (f *mockFactory) last(t Type) *mockScene {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.created[t]
	if len(list) == 0 {
		return nil
	}
	return list[len(list)-1]
}

func (f *mockFactory) count(t Type) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created[t])
}

// tickUntil ticks until cond holds, failing the test after a deadline.
func tickUntil(t *testing.T, o *Orchestrator, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		require.NoError(t, o.Tick())
		require.True(t, time.Now().Before(deadline), "condition not reached before deadline")
		time.Sleep(time.Millisecond)
	}
}

// tickUntilErr ticks until Tick fails and returns that error.
func tickUntilErr(t *testing.T, o *Orchestrator) error {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		if err := o.Tick(); err != nil {
			return err
		}
		require.True(t, time.Now().Before(deadline), "no error before deadline")
		time.Sleep(time.Millisecond)
	}
}

func isActive(o *Orchestrator) func() bool {
	return func() bool { return o.State() == state.StateActive }
}

func TestNew_StartsTransitioning(t *testing.T) {
	f := newMockFactory(func([]Type) []Type { return []Type{"A"} })
	o := New(f, loadingType, zaptest.NewLogger(t))

	assert.Equal(t, state.StateTransitioning, o.State())
	assert.Empty(t, o.Scenes())
	assert.False(t, o.LoadingActive(), "loading scene is created on first Tick")
	assert.Equal(t, 0, f.count(loadingType))
}

func TestOrchestrator_Bootstrap(t *testing.T) {
	f := newMockFactory(func([]Type) []Type { return []Type{"A"} })
	f.register("A", func() *mockScene { return &mockScene{} })
	o := New(f, loadingType, zaptest.NewLogger(t))
	defer o.Close()

	require.NoError(t, o.Tick())
	assert.Equal(t, 1, f.count(loadingType), "first Tick creates the loading scene")
	loading := f.last(loadingType)
	assert.Equal(t, 1, loading.loadCalls)
	assert.Equal(t, 1, loading.runCalls, "loading scene runs on the tick that created it")

	tickUntil(t, o, isActive(o))

	assert.Equal(t, []Type{"A"}, o.Scenes())
	assert.False(t, o.LoadingActive())
	require.Len(t, f.nextCalls, 1)
	assert.Empty(t, f.nextCalls[0], "bootstrap requests next scenes for an empty set")

	a := f.last("A")
	assert.Equal(t, 1, a.loadCalls)
	assert.Equal(t, 0, a.runCalls, "scene does not run on the tick it becomes active")
}

func TestOrchestrator_SceneOrderMatchesRequest(t *testing.T) {
	request := []Type{"C", "A", "B"}
	f := newMockFactory(func([]Type) []Type { return request })
	var runLog []Type
	for _, typ := range request {
		f.register(typ, func() *mockScene { return &mockScene{runLog: &runLog} })
	}
	o := New(f, loadingType, zaptest.NewLogger(t))
	defer o.Close()

	tickUntil(t, o, isActive(o))
	assert.Equal(t, request, o.Scenes())

	require.NoError(t, o.Tick())
	assert.Equal(t, request, runLog, "scenes run in load order")
}

func TestOrchestrator_NoTransitionWithoutQuit(t *testing.T) {
	f := newMockFactory(func([]Type) []Type { return []Type{"A", "B"} })
	f.register("A", func() *mockScene { return &mockScene{} })
	f.register("B", func() *mockScene { return &mockScene{} })
	o := New(f, loadingType, zaptest.NewLogger(t))
	defer o.Close()

	tickUntil(t, o, isActive(o))
	require.Equal(t, 1, o.Transitions())

	for i := 0; i < 100; i++ {
		require.NoError(t, o.Tick())
	}

	assert.Equal(t, state.StateActive, o.State())
	assert.Equal(t, 1, o.Transitions(), "no transition without a quitting scene")
	assert.Equal(t, 100, f.last("A").runCalls)
	assert.Equal(t, 100, f.last("B").runCalls)
	assert.Equal(t, 1, f.count(loadingType))
}

func TestOrchestrator_QuitStartsTransition(t *testing.T) {
	f := newMockFactory(func(current []Type) []Type {
		if len(current) == 0 {
			return []Type{"A"}
		}
		return []Type{"B"}
	})
	f.register("A", func() *mockScene { return &mockScene{quitAfter: 1} })
	f.register("B", func() *mockScene { return &mockScene{} })
	o := New(f, loadingType, zaptest.NewLogger(t))
	defer o.Close()

	tickUntil(t, o, isActive(o))
	require.Equal(t, []Type{"A"}, o.Scenes())

	// A quits after its first run; the transition starts within the same tick
	require.NoError(t, o.Tick())
	assert.Equal(t, state.StateTransitioning, o.State())
	assert.True(t, o.LoadingActive())
	assert.Equal(t, 2, f.count(loadingType), "a fresh loading scene per transition")
	assert.Equal(t, 1, f.last(loadingType).loadCalls)
	assert.Equal(t, []Type{"A"}, o.Scenes(), "old set remains until the new one is ready")

	tickUntil(t, o, isActive(o))
	assert.Equal(t, []Type{"B"}, o.Scenes())
	assert.Equal(t, []Type{"A"}, f.nextCalls[1])
	assert.Equal(t, 1, f.last("A").runCalls, "replaced scene is not run again")
}

func TestOrchestrator_QuitLetsRemainingScenesRun(t *testing.T) {
	f := newMockFactory(func(current []Type) []Type {
		if len(current) == 0 {
			return []Type{"A", "B"}
		}
		return []Type{"C"}
	})
	var runLog []Type
	f.register("A", func() *mockScene { return &mockScene{quitAfter: 1, runLog: &runLog} })
	f.register("B", func() *mockScene { return &mockScene{runLog: &runLog} })
	f.register("C", func() *mockScene { return &mockScene{} })
	o := New(f, loadingType, zaptest.NewLogger(t))
	defer o.Close()

	tickUntil(t, o, isActive(o))
	require.NoError(t, o.Tick())

	assert.Equal(t, []Type{"A", "B"}, runLog, "B still runs in the tick A quits")
	assert.Equal(t, state.StateTransitioning, o.State())
}

func TestOrchestrator_RunFailureStopsTick(t *testing.T) {
	f := newMockFactory(func([]Type) []Type { return []Type{"A", "B", "C"} })
	var runLog []Type
	f.register("A", func() *mockScene { return &mockScene{runLog: &runLog} })
	f.register("B", func() *mockScene { return &mockScene{runErr: assert.AnError, runLog: &runLog} })
	f.register("C", func() *mockScene { return &mockScene{runLog: &runLog} })
	o := New(f, loadingType, zaptest.NewLogger(t))
	defer o.Close()

	tickUntil(t, o, isActive(o))

	err := o.Tick()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSceneRun)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, []Type{"A", "B"}, runLog, "C is not run after B fails")

	// Not sticky: the next tick runs the set again
	err = o.Tick()
	assert.ErrorIs(t, err, ErrSceneRun)
	assert.Equal(t, state.StateActive, o.State())
	assert.Equal(t, 1, o.Transitions())
}

func TestOrchestrator_EmptyRequestFails(t *testing.T) {
	f := newMockFactory(func(current []Type) []Type {
		if len(current) == 0 {
			return []Type{"A"}
		}
		return nil
	})
	f.register("A", func() *mockScene { return &mockScene{quitAfter: 1} })
	o := New(f, loadingType, zaptest.NewLogger(t))
	defer o.Close()

	tickUntil(t, o, isActive(o))
	require.NoError(t, o.Tick())

	err := tickUntilErr(t, o)
	assert.ErrorIs(t, err, ErrEmptyTransition)
	assert.Equal(t, state.StateTransitioning, o.State())
	assert.Equal(t, []Type{"A"}, o.Scenes(), "prior scene set untouched")

	// Sticky until the caller intervenes
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, o.Tick(), ErrEmptyTransition)
	}
	assert.ErrorIs(t, o.Err(), ErrEmptyTransition)
}

func TestOrchestrator_BootstrapEmptyRequestFails(t *testing.T) {
	f := newMockFactory(func([]Type) []Type { return []Type{} })
	o := New(f, loadingType, zaptest.NewLogger(t))
	defer o.Close()

	err := tickUntilErr(t, o)
	assert.ErrorIs(t, err, ErrEmptyTransition)
	assert.Empty(t, o.Scenes())
	assert.Equal(t, state.StateTransitioning, o.State())
}

func TestOrchestrator_UnknownSceneTypeFails(t *testing.T) {
	f := newMockFactory(func(current []Type) []Type {
		if len(current) == 0 {
			return []Type{"A"}
		}
		return []Type{"X"}
	})
	f.register("A", func() *mockScene { return &mockScene{quitAfter: 1} })
	o := New(f, loadingType, zaptest.NewLogger(t))
	defer o.Close()

	tickUntil(t, o, isActive(o))
	require.NoError(t, o.Tick())

	err := tickUntilErr(t, o)
	assert.ErrorIs(t, err, ErrUnknownSceneType)
	assert.Contains(t, err.Error(), `"X"`)
	assert.Equal(t, []Type{"A"}, o.Scenes(), "scene set unchanged")
	assert.ErrorIs(t, o.Tick(), ErrUnknownSceneType)
}

func TestOrchestrator_SceneLoadFailure(t *testing.T) {
	f := newMockFactory(func([]Type) []Type { return []Type{"A", "B", "C"} })
	f.register("A", func() *mockScene { return &mockScene{} })
	f.register("B", func() *mockScene { return &mockScene{loadErr: assert.AnError} })
	f.register("C", func() *mockScene { return &mockScene{} })
	o := New(f, loadingType, zaptest.NewLogger(t))
	defer o.Close()

	err := tickUntilErr(t, o)
	assert.ErrorIs(t, err, ErrSceneLoad)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 0, f.count("C"), "loading stops at the first failure")
	assert.Empty(t, o.Scenes())
}

func TestOrchestrator_LoadingSceneFailures(t *testing.T) {
	t.Run("unknown loading type", func(t *testing.T) {
		f := newMockFactory(func([]Type) []Type { return []Type{"A"} })
		o := New(f, "missing", zaptest.NewLogger(t))
		defer o.Close()

		err := o.Tick()
		assert.ErrorIs(t, err, ErrLoadingScene)
		assert.ErrorIs(t, err, ErrUnknownSceneType)
		assert.Empty(t, f.nextCalls, "no loader without a loading scene")
	})

	t.Run("loading scene load fails", func(t *testing.T) {
		f := newMockFactory(func([]Type) []Type { return []Type{"A"} })
		f.register(loadingType, func() *mockScene { return &mockScene{loadErr: assert.AnError} })
		o := New(f, loadingType, zaptest.NewLogger(t))
		defer o.Close()

		err := o.Tick()
		assert.ErrorIs(t, err, ErrLoadingScene)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("loading scene run fails", func(t *testing.T) {
		f := newMockFactory(func([]Type) []Type { return []Type{"A"} })
		f.register("A", func() *mockScene { return &mockScene{} })
		f.register(loadingType, func() *mockScene { return &mockScene{runErr: assert.AnError} })
		o := New(f, loadingType, zaptest.NewLogger(t))
		defer o.Close()

		err := o.Tick()
		assert.ErrorIs(t, err, ErrLoadingScene)
		assert.ErrorIs(t, o.Tick(), ErrLoadingScene)
	})
}

func TestOrchestrator_RetryTransition(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	f := newMockFactory(func(current []Type) []Type {
		if fail.Load() {
			return nil
		}
		return []Type{"A"}
	})
	f.register("A", func() *mockScene { return &mockScene{} })
	o := New(f, loadingType, zaptest.NewLogger(t))
	defer o.Close()

	err := tickUntilErr(t, o)
	require.ErrorIs(t, err, ErrEmptyTransition)

	fail.Store(false)
	require.NoError(t, o.RetryTransition())
	assert.NoError(t, o.Err())
	assert.Equal(t, 2, f.count(loadingType))

	tickUntil(t, o, isActive(o))
	assert.Equal(t, []Type{"A"}, o.Scenes())
}

func TestOrchestrator_RetryWithoutFailureIsNoop(t *testing.T) {
	f := newMockFactory(func([]Type) []Type { return []Type{"A"} })
	f.register("A", func() *mockScene { return &mockScene{} })
	o := New(f, loadingType, zaptest.NewLogger(t))
	defer o.Close()

	tickUntil(t, o, isActive(o))
	require.NoError(t, o.RetryTransition())
	assert.Equal(t, state.StateActive, o.State())
	assert.Equal(t, 1, o.Transitions())
}

func TestOrchestrator_AtMostOneLoader(t *testing.T) {
	f := newMockFactory(func(current []Type) []Type {
		time.Sleep(time.Millisecond)
		if len(current) > 0 && current[0] == "A" {
			return []Type{"B"}
		}
		return []Type{"A"}
	})
	f.register("A", func() *mockScene { return &mockScene{quitAfter: 1} })
	f.register("B", func() *mockScene { return &mockScene{quitAfter: 1} })
	o := New(f, loadingType, zaptest.NewLogger(t))
	defer o.Close()

	for i := 0; i < 20; i++ {
		tickUntil(t, o, isActive(o))
		require.NoError(t, o.Tick())
	}

	assert.Equal(t, int32(1), f.maxAlive.Load())
	assert.Equal(t, 21, o.Transitions())
}

func TestOrchestrator_AppendRenderables(t *testing.T) {
	f := newMockFactory(func([]Type) []Type { return []Type{"A", "B"} })
	f.register(loadingType, func() *mockScene {
		return &mockScene{renderables: []entity.Renderable{{ID: 100}}}
	})
	f.register("A", func() *mockScene {
		return &mockScene{renderables: []entity.Renderable{{ID: 1}, {ID: 2}}}
	})
	f.register("B", func() *mockScene {
		return &mockScene{renderables: []entity.Renderable{{ID: 3}}}
	})
	o := New(f, loadingType, zaptest.NewLogger(t))
	defer o.Close()

	assert.Empty(t, o.AppendRenderables(nil), "nothing before bootstrap")

	require.NoError(t, o.Tick())
	if o.State() == state.StateTransitioning {
		got := o.AppendRenderables(nil)
		require.Len(t, got, 1)
		assert.Equal(t, entity.EntityID(100), got[0].ID)
	}

	tickUntil(t, o, isActive(o))
	got := o.AppendRenderables(nil)
	require.Len(t, got, 3)
	assert.Equal(t, entity.EntityID(1), got[0].ID)
	assert.Equal(t, entity.EntityID(2), got[1].ID)
	assert.Equal(t, entity.EntityID(3), got[2].ID)
}

func TestOrchestrator_Close(t *testing.T) {
	release := make(chan struct{})
	f := newMockFactory(func([]Type) []Type {
		<-release
		return []Type{"A"}
	})
	f.register("A", func() *mockScene { return &mockScene{} })
	o := New(f, loadingType, zaptest.NewLogger(t))

	require.NoError(t, o.Tick())

	done := make(chan struct{})
	go func() {
		o.Close()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Close returned before the loader finished")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not join the loader")
	}

	assert.True(t, errors.Is(o.Tick(), ErrClosed))
	assert.ErrorIs(t, o.RetryTransition(), ErrClosed)
}
