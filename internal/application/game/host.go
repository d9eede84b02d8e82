// Package game provides the frame loop: the Coordinator that ticks the scene
// orchestrator and synchronizes rendering, and the ebiten host that drives it.
package game

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/younwookim/scenecore/internal/application/scene"
)

// Drawer draws the most recently presented frame.
type Drawer interface {
	Draw(screen *ebiten.Image)
}

// debugToggler is implemented by drawers with a debug overlay
type debugToggler interface {
	ToggleDebug()
}

// Host implements ebiten.Game on top of a Coordinator.
type Host struct {
	coord   *Coordinator
	drawer  Drawer
	screenW int
	screenH int
	log     *zap.Logger

	// input reads the controls pressed this frame.
	input func() InputState

	// failed is set while frames return a transition failure.
	failed bool
}

// NewHost creates a Host drawing through drawer at the given logical size.
func NewHost(coord *Coordinator, drawer Drawer, screenW, screenH int, log *zap.Logger) *Host {
	return &Host{
		coord:   coord,
		drawer:  drawer,
		screenW: screenW,
		screenH: screenH,
		log:     log.Named("host"),
		input:   ReadInput,
	}
}

// Update runs one coordinator frame.
// Implements ebiten.Game interface.
func (h *Host) Update() error {
	if h.coord.Stopped() {
		return ebiten.Termination
	}
	in := h.input()
	if in.Quit {
		h.coord.RequestStop()
	}
	if in.ToggleDebug {
		if d, ok := h.drawer.(debugToggler); ok {
			d.ToggleDebug()
		}
	}
	if in.Retry {
		if err := h.coord.RetryTransition(); err != nil {
			h.log.Warn("retry failed", zap.Error(err))
		}
	}

	err := h.coord.Frame()
	switch {
	case err == nil:
		h.failed = false
		return nil
	case errors.Is(err, ErrStopped):
		return ebiten.Termination
	case isTransitionFailure(err):
		// Keep the window up so the retry key can be read
		if !h.failed {
			h.log.Error("transition failed, press R to retry",
				zap.Uint64("frame", h.coord.Frames()), zap.Error(err))
			h.failed = true
		}
		return nil
	default:
		h.log.Error("frame failed", zap.Uint64("frame", h.coord.Frames()), zap.Error(err))
		return err
	}
}

// isTransitionFailure reports whether err is a sticky transition failure
// that RetryTransition can clear.
func isTransitionFailure(err error) bool {
	return errors.Is(err, scene.ErrEmptyTransition) ||
		errors.Is(err, scene.ErrUnknownSceneType) ||
		errors.Is(err, scene.ErrSceneLoad) ||
		errors.Is(err, scene.ErrLoadingScene)
}

// Draw renders the last presented frame.
// Implements ebiten.Game interface.
func (h *Host) Draw(screen *ebiten.Image) {
	h.drawer.Draw(screen)
}

// Layout returns the game's logical screen dimensions.
// Implements ebiten.Game interface.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	return h.screenW, h.screenH
}
