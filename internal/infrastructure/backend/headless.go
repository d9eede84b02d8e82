package backend

import (
	"sync"
	"time"

	"github.com/younwookim/scenecore/internal/domain/entity"
)

// Headless records submitted frames without drawing anything.
//
// It can run on a separate render goroutine, which makes it the backend of
// choice for exercising the cross-thread frame sync.
type Headless struct {
	separate   bool
	frameDelay time.Duration

	mu       sync.Mutex
	pending  entity.Snapshot
	hasFrame bool
	frames   uint64
	last     uint64
	entities int
	kinds    map[entity.RenderKind]int
}

// NewHeadless creates a headless backend. frameDelay simulates GPU work per frame.
func NewHeadless(separate bool, frameDelay time.Duration) *Headless {
	return &Headless{
		separate:   separate,
		frameDelay: frameDelay,
		kinds:      make(map[entity.RenderKind]int),
	}
}

// SubmitRenderableEntities implements render.Backend
func (h *Headless) SubmitRenderableEntities(s entity.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pending.Frame = s.Frame
	h.pending.Entities = append(h.pending.Entities[:0], s.Entities...)
	h.hasFrame = true
}

// SubmitFrameForRender implements render.Backend
func (h *Headless) SubmitFrameForRender() error {
	if h.frameDelay > 0 {
		time.Sleep(h.frameDelay)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.frames++
	if !h.hasFrame {
		return nil
	}
	h.last = h.pending.Frame
	h.entities = len(h.pending.Entities)
	clear(h.kinds)
	for _, r := range h.pending.Entities {
		h.kinds[r.Kind]++
	}
	h.hasFrame = false
	return nil
}

// RunOnSeparateThread implements render.Backend
func (h *Headless) RunOnSeparateThread() bool { return h.separate }

// Frames returns how many frames were presented
func (h *Headless) Frames() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frames
}

// LastFrame returns the frame number of the last presented snapshot
func (h *Headless) LastFrame() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

// Entities returns the entity count of the last presented snapshot
func (h *Headless) Entities() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entities
}

// KindCount returns how many entities of kind the last presented snapshot held
func (h *Headless) KindCount(kind entity.RenderKind) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.kinds[kind]
}
