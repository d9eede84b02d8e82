package render

import (
	"sync"

	"github.com/younwookim/scenecore/internal/domain/entity"
)

// SnapshotBuffer holds the single current renderable snapshot.
//
// Submit replaces the contents wholesale; Consume reads them. When shared,
// writers take the exclusive lock and readers the shared lock for the whole
// critical section, so a reader never sees a mix of two submissions. An
// unshared buffer does no locking; producer and consumer must then run on the
// same goroutine.
type SnapshotBuffer struct {
	mu     sync.RWMutex
	shared bool

	frame    uint64
	entities []entity.Renderable
	submits  uint64
}

// NewSnapshotBuffer creates an empty buffer. shared enables locking.
func NewSnapshotBuffer(shared bool) *SnapshotBuffer {
	return &SnapshotBuffer{
		shared:   shared,
		entities: make([]entity.Renderable, 0, 256),
	}
}

// Submit copies s into the buffer, replacing the previous snapshot.
func (b *SnapshotBuffer) Submit(s entity.Snapshot) {
	if b.shared {
		b.mu.Lock()
		defer b.mu.Unlock()
	}
	b.frame = s.Frame
	b.entities = append(b.entities[:0], s.Entities...)
	b.submits++
}

// Consume calls fn with the current snapshot. fn must not retain s.Entities.
func (b *SnapshotBuffer) Consume(fn func(s entity.Snapshot)) {
	if b.shared {
		b.mu.RLock()
		defer b.mu.RUnlock()
	}
	fn(entity.Snapshot{Frame: b.frame, Entities: b.entities})
}

// Submits returns the number of Submit calls so far.
func (b *SnapshotBuffer) Submits() uint64 {
	if b.shared {
		b.mu.RLock()
		defer b.mu.RUnlock()
	}
	return b.submits
}

// Shared reports whether the buffer locks.
func (b *SnapshotBuffer) Shared() bool {
	return b.shared
}
