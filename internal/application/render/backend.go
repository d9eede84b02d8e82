// Package render hands per-frame snapshots from the logic goroutine to a
// rendering backend, optionally running the backend on its own goroutine.
package render

import (
	"errors"

	"github.com/younwookim/scenecore/internal/domain/entity"
)

// ErrRenderStopped is returned when a frame is released after the render loop exited.
var ErrRenderStopped = errors.New("render: render loop stopped")

// Backend is the interface for rendering backends.
// It abstracts the graphics API so the frame coordinator can drive any backend
// the same way.
type Backend interface {
	// SubmitRenderableEntities replaces the backend's pending entities with s.
	// The backend must copy what it needs; s.Entities is reused after the call.
	SubmitRenderableEntities(s entity.Snapshot)

	// SubmitFrameForRender consumes the pending entities and presents a frame.
	SubmitFrameForRender() error

	// RunOnSeparateThread reports whether submission must run on a dedicated
	// render goroutine. Queried once at startup.
	RunOnSeparateThread() bool
}
