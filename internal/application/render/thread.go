package render

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/younwookim/scenecore/internal/domain/entity"
)

// Thread runs a backend's submission loop on a dedicated goroutine.
//
// The logic goroutine calls Reserve, writes the buffer, then calls Release,
// once per frame. Reserve blocks until the loop has consumed the previous
// frame, so the buffer is never overwritten while a released frame is still
// pending and every released frame is consumed exactly once. The exit flag
// travels with the release that follows RequestExit and is checked once per
// iteration right after acquiring, so shutdown is RequestExit, Release, Wait.
// The final release needs no Reserve.
type Thread struct {
	backend Backend
	buffer  *SnapshotBuffer
	log     *zap.Logger

	sem  chan bool     // true marks the final release
	free chan struct{} // holds a token while the buffer may be written
	exit atomic.Bool
	done chan struct{}

	group   errgroup.Group
	started bool

	acquisitions atomic.Uint64
	frames       atomic.Uint64

	mu       sync.Mutex
	firstErr error
}

// NewThread creates a render thread reading from buffer. Call Start to run it.
func NewThread(backend Backend, buffer *SnapshotBuffer, log *zap.Logger) *Thread {
	t := &Thread{
		backend: backend,
		buffer:  buffer,
		log:     log.Named("render"),
		sem:     make(chan bool, 1),
		free:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	t.free <- struct{}{}
	return t
}

// Start spawns the render goroutine. Calling Start twice has no effect.
func (t *Thread) Start() {
	if t.started {
		return
	}
	t.started = true
	t.group.Go(t.loop)
}

func (t *Thread) loop() error {
	defer close(t.done)
	t.log.Debug("render loop started")

	for {
		final := <-t.sem
		t.acquisitions.Add(1)
		if final {
			t.log.Debug("render loop exiting", zap.Uint64("frames", t.frames.Load()))
			return t.Err()
		}

		t.buffer.Consume(func(s entity.Snapshot) {
			t.backend.SubmitRenderableEntities(s)
		})
		select {
		case t.free <- struct{}{}:
		default: // released without Reserve
		}
		if err := t.backend.SubmitFrameForRender(); err != nil {
			t.log.Error("submit frame failed", zap.Error(err))
			t.mu.Lock()
			if t.firstErr == nil {
				t.firstErr = err
			}
			t.mu.Unlock()
		}
		t.frames.Add(1)
	}
}

// Reserve blocks until the previous frame has been consumed and the buffer
// may be written. It returns ErrRenderStopped once the loop has exited.
func (t *Thread) Reserve() error {
	select {
	case <-t.done:
		return ErrRenderStopped
	default:
	}
	select {
	case <-t.free:
		return nil
	case <-t.done:
		return ErrRenderStopped
	}
}

// Release signals that a new snapshot is ready. It blocks while the previous
// frame is still pending and returns ErrRenderStopped once the loop has exited.
// After RequestExit the release is final and the loop returns on acquiring it.
func (t *Thread) Release() error {
	select {
	case <-t.done:
		return ErrRenderStopped
	default:
	}
	select {
	case t.sem <- t.exit.Load():
		return nil
	case <-t.done:
		return ErrRenderStopped
	}
}

// RequestExit marks the next Release as the final one.
func (t *Thread) RequestExit() {
	t.exit.Store(true)
}

// Exiting reports whether RequestExit was called.
func (t *Thread) Exiting() bool {
	return t.exit.Load()
}

// Wait joins the render goroutine and returns the first submission error.
func (t *Thread) Wait() error {
	return t.group.Wait()
}

// Err returns the first submission error seen so far.
func (t *Thread) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.firstErr
}

// Acquisitions returns how many times the loop acquired the frame semaphore.
func (t *Thread) Acquisitions() uint64 {
	return t.acquisitions.Load()
}

// Frames returns how many frames were submitted to the backend.
func (t *Thread) Frames() uint64 {
	return t.frames.Load()
}
