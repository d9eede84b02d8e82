package scene

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// loader builds the next scene set on its own goroutine.
//
// It is one-shot: started once, never restarted or cancelled. The orchestrator
// polls Completed and Failed once per tick and reads Staged only after
// Completed reports true. The atomic store of the completion flag publishes
// the staged set.
type loader struct {
	factory Factory
	current []Type
	log     *zap.Logger

	group     errgroup.Group
	completed atomic.Bool
	failed    atomic.Bool

	// Written only by the loader goroutine before the matching flag is set.
	staged []Scene
	err    error
}

func newLoader(factory Factory, current []Type, log *zap.Logger) *loader {
	return &loader{
		factory: factory,
		current: current,
		log:     log,
	}
}

// start spawns the loader goroutine.
func (l *loader) start() {
	l.group.Go(func() error {
		scenes, err := l.build()
		if err != nil {
			l.err = err
			l.failed.Store(true)
			return err
		}
		l.staged = scenes
		l.completed.Store(true)
		return nil
	})
}

func (l *loader) build() ([]Scene, error) {
	request := l.factory.NextScenes(l.current)
	if len(request) == 0 {
		return nil, fmt.Errorf("next scenes after %v: %w", l.current, ErrEmptyTransition)
	}

	l.log.Debug("loading scene set", zap.Any("types", request))

	scenes := make([]Scene, 0, len(request))
	for _, t := range request {
		s := l.factory.CreateScene(t)
		if s == nil {
			return nil, fmt.Errorf("create %q: %w", t, ErrUnknownSceneType)
		}
		if err := s.Load(); err != nil {
			return nil, fmt.Errorf("load %q: %w: %w", t, ErrSceneLoad, err)
		}
		l.log.Debug("scene loaded", zap.String("type", string(t)))
		scenes = append(scenes, s)
	}
	return scenes, nil
}

// Completed reports whether the staged scene set is ready.
func (l *loader) Completed() bool {
	return l.completed.Load()
}

// Failed reports whether loading stopped with an error.
func (l *loader) Failed() bool {
	return l.failed.Load()
}

// Staged returns the loaded scene set. Valid only after Completed returns true.
func (l *loader) Staged() []Scene {
	return l.staged
}

// Err returns the loading error. Valid only after Failed returns true.
func (l *loader) Err() error {
	return l.err
}

// wait joins the loader goroutine.
func (l *loader) wait() {
	_ = l.group.Wait()
}
