// Package scene defines the Scene contract and the orchestrator that decides
// which scenes are active.
//
// Each unit of game state (title, level, HUD, loading screen, etc.) implements
// the Scene interface. The Orchestrator owns the active scene set, ticks it
// once per frame, and moves to the next set through a loading scene while a
// background loader prepares the replacement.
package scene

import (
	"errors"

	"github.com/younwookim/scenecore/internal/domain/entity"
)

// Type identifies a kind of scene. The Factory maps types to instances.
type Type string

// Scene represents a unit of game state.
//
// Load is called exactly once before any Run call. Load may run on a
// background goroutine; Run and ShouldQuit always run on the logic goroutine.
// A scene is never used by two goroutines at the same time.
type Scene interface {
	// Type returns the scene type. It must not change over the scene's lifetime.
	Type() Type

	// Load prepares the scene's resources.
	Load() error

	// Run advances the scene by one logic tick.
	Run() error

	// ShouldQuit reports whether the scene wants the orchestrator to move on.
	// It is queried after every successful Run.
	ShouldQuit() bool
}

// RenderableSource is implemented by scenes that contribute to the frame's snapshot.
type RenderableSource interface {
	// AppendRenderables appends the scene's render-ready entities to dst.
	AppendRenderables(dst []entity.Renderable) []entity.Renderable
}

// Factory creates scenes and decides which scenes follow the current ones.
type Factory interface {
	// CreateScene returns a new scene of the given type, or nil if the type is unsupported.
	CreateScene(t Type) Scene

	// NextScenes returns the ordered scene types that replace current.
	// current is empty when bootstrapping. An empty result is a fatal transition error.
	NextScenes(current []Type) []Type
}

// Errors returned by Orchestrator.Tick
var (
	// ErrEmptyTransition is returned when the factory requests no scenes.
	ErrEmptyTransition = errors.New("scene: empty transition request")

	// ErrUnknownSceneType is returned when the factory cannot create a requested type.
	ErrUnknownSceneType = errors.New("scene: unknown scene type")

	// ErrSceneLoad is returned when a scene's Load fails.
	ErrSceneLoad = errors.New("scene: load failed")

	// ErrSceneRun is returned when an active scene's Run fails.
	ErrSceneRun = errors.New("scene: run failed")

	// ErrLoadingScene is returned when the loading scene cannot be created, loaded or run.
	ErrLoadingScene = errors.New("scene: loading scene failed")

	// ErrClosed is returned by Tick after Close.
	ErrClosed = errors.New("scene: orchestrator closed")
)

// typesOf returns the types of scenes, in order.
func typesOf(scenes []Scene) []Type {
	types := make([]Type, len(scenes))
	for i, s := range scenes {
		types[i] = s.Type()
	}
	return types
}
