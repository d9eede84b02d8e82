package game

import (
	"context"
	"errors"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/younwookim/scenecore/internal/application/render"
	"github.com/younwookim/scenecore/internal/application/scene"
	"github.com/younwookim/scenecore/internal/application/state"
	"github.com/younwookim/scenecore/internal/application/trace"
	"github.com/younwookim/scenecore/internal/domain/entity"
)

// ErrStopped is returned by Frame once the final frame has been synchronized.
var ErrStopped = errors.New("game: coordinator stopped")

// Orchestrator is the scene orchestrator driven once per frame.
type Orchestrator interface {
	Tick() error
	AppendRenderables(dst []entity.Renderable) []entity.Renderable
	State() state.OrchestratorState
	Scenes() []scene.Type
	Close()
}

// retrier is implemented by orchestrators that can retry a failed transition
type retrier interface {
	RetryTransition() error
}

// Options configures optional coordinator features.
type Options struct {
	// Recorder receives one record per frame when set.
	Recorder *trace.Recorder
}

// Coordinator drives the logic tick and hands each frame's snapshot to the
// rendering backend. All methods must be called from the logic goroutine.
//
// Backends that run on a separate thread get exactly one render goroutine for
// the coordinator's lifetime; Close releases it one last time and joins it.
type Coordinator struct {
	orch     Orchestrator
	backend  render.Backend
	buffer   *render.SnapshotBuffer
	thread   *render.Thread
	recorder *trace.Recorder
	log      *zap.Logger

	frame     uint64
	scratch   []entity.Renderable
	lastState state.OrchestratorState

	stopRequested bool
	stopped       bool
	closed        bool
}

// NewCoordinator creates a coordinator. It queries the backend's threading
// mode once and starts the render goroutine if the backend needs one.
func NewCoordinator(orch Orchestrator, backend render.Backend, opts Options, log *zap.Logger) *Coordinator {
	separate := backend.RunOnSeparateThread()
	c := &Coordinator{
		orch:      orch,
		backend:   backend,
		buffer:    render.NewSnapshotBuffer(separate),
		recorder:  opts.Recorder,
		log:       log.Named("coordinator"),
		scratch:   make([]entity.Renderable, 0, 256),
		lastState: orch.State(),
	}

	if separate {
		c.thread = render.NewThread(backend, c.buffer, log)
		c.thread.Start()
	}
	c.log.Info("coordinator ready", zap.Bool("separateRenderThread", separate))
	return c
}

// Frame runs one full frame: begin, update, synchronize.
//
// The snapshot is synchronized even when the tick fails, so a render
// goroutine is released exactly once per frame. The tick error is returned
// combined with any synchronization error.
func (c *Coordinator) Frame() error {
	if c.closed || c.stopped {
		return ErrStopped
	}

	c.beginFrame()
	tickErr := c.updateFrame()
	c.enterSynchronizeFrame()
	syncErr := c.synchronizeFrame()
	c.exitSynchronizeFrame(tickErr)

	return multierr.Append(tickErr, syncErr)
}

func (c *Coordinator) beginFrame() {
	c.frame++
	c.scratch = c.scratch[:0]
}

func (c *Coordinator) updateFrame() error {
	return c.orch.Tick()
}

func (c *Coordinator) enterSynchronizeFrame() {
	c.scratch = c.orch.AppendRenderables(c.scratch)
}

func (c *Coordinator) synchronizeFrame() error {
	snap := entity.Snapshot{Frame: c.frame, Entities: c.scratch}

	if c.thread == nil {
		c.buffer.Submit(snap)
		c.buffer.Consume(c.backend.SubmitRenderableEntities)
		return c.backend.SubmitFrameForRender()
	}

	if err := c.thread.Reserve(); err != nil {
		return err
	}
	c.buffer.Submit(snap)
	if c.stopRequested {
		c.thread.RequestExit()
	}
	return c.thread.Release()
}

func (c *Coordinator) exitSynchronizeFrame(tickErr error) {
	if c.stopRequested {
		c.stopped = true
	}

	st := c.orch.State()
	if st != c.lastState {
		c.log.Debug("orchestrator state changed",
			zap.Uint64("frame", c.frame),
			zap.Stringer("from", c.lastState),
			zap.Stringer("to", st))
		c.lastState = st
	}

	if c.recorder != nil {
		rec := trace.FrameRecord{
			F:        c.frame,
			State:    st.String(),
			Entities: len(c.scratch),
		}
		for _, t := range c.orch.Scenes() {
			rec.Scenes = append(rec.Scenes, string(t))
		}
		if tickErr != nil {
			rec.Err = tickErr.Error()
		}
		c.recorder.RecordFrame(rec)
	}
}

// RequestStop makes the next Frame the final one. On separate-thread
// backends that frame's release carries the render goroutine's exit flag.
func (c *Coordinator) RequestStop() {
	c.stopRequested = true
}

// RetryTransition asks the orchestrator to retry a failed transition.
// It does nothing for orchestrators without retry support.
func (c *Coordinator) RetryTransition() error {
	r, ok := c.orch.(retrier)
	if !ok {
		return nil
	}
	c.log.Info("retrying transition", zap.Uint64("frame", c.frame))
	return r.RetryTransition()
}

// Stopped reports whether the final frame has run.
func (c *Coordinator) Stopped() bool {
	return c.stopped
}

// Run calls Frame every interval until ctx is done, maxFrames frames have
// run (0 = unlimited), or Frame fails. Cancelling ctx still runs one final frame.
func (c *Coordinator) Run(ctx context.Context, interval time.Duration, maxFrames uint64) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("run cancelled", zap.Uint64("frame", c.frame))
			c.RequestStop()
			return c.Frame()
		case <-ticker.C:
			if maxFrames > 0 && c.frame+1 >= maxFrames {
				c.RequestStop()
			}
			if err := c.Frame(); err != nil {
				return err
			}
			if c.stopped {
				return nil
			}
		}
	}
}

// Close stops the render goroutine, release then join, and closes the
// orchestrator. It is safe to call more than once.
func (c *Coordinator) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	var err error
	if c.thread != nil {
		if !c.stopped {
			c.thread.RequestExit()
			err = multierr.Append(err, c.thread.Release())
		}
		err = multierr.Append(err, c.thread.Wait())
	}
	c.orch.Close()

	c.log.Info("coordinator closed", zap.Uint64("frames", c.frame))
	return err
}

// Frames returns the number of frames run so far.
func (c *Coordinator) Frames() uint64 {
	return c.frame
}

// Thread returns the render goroutine adapter, or nil for same-thread backends.
func (c *Coordinator) Thread() *render.Thread {
	return c.thread
}
