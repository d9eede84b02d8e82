// Package ecs is a small map-based component store for scene entities.
package ecs

import "sort"

// EntityID is a unique identifier for an entity (never recycled)
type EntityID uint32

// World holds all component maps and the next entity ID
type World struct {
	nextID EntityID

	// Components
	Position map[EntityID]Position
	Velocity map[EntityID]Velocity
	Rotation map[EntityID]Rotation
	Shape    map[EntityID]Shape

	// Bounds for the movement system, empty = unbounded
	Bounds Bounds
}

// NewWorld creates a new empty world
func NewWorld() *World {
	return &World{
		nextID:   1, // 0 is "nil"
		Position: make(map[EntityID]Position),
		Velocity: make(map[EntityID]Velocity),
		Rotation: make(map[EntityID]Rotation),
		Shape:    make(map[EntityID]Shape),
	}
}

// NewEntity returns a new unique entity ID
func (w *World) NewEntity() EntityID {
	id := w.nextID
	w.nextID++
	return id
}

// DestroyEntity removes all components for an entity
func (w *World) DestroyEntity(id EntityID) {
	delete(w.Position, id)
	delete(w.Velocity, id)
	delete(w.Rotation, id)
	delete(w.Shape, id)
}

// Exists checks if an entity has Position component
func (w *World) Exists(id EntityID) bool {
	_, ok := w.Position[id]
	return ok
}

// Count returns the number of entities with a Position
func (w *World) Count() int {
	return len(w.Position)
}

// CreateSprite creates a drawable entity
func (w *World) CreateSprite(pos Position, vel Velocity, rot Rotation, shape Shape) EntityID {
	id := w.NewEntity()

	w.Position[id] = pos
	w.Shape[id] = shape
	if vel != (Velocity{}) {
		w.Velocity[id] = vel
	}
	if rot != (Rotation{}) {
		w.Rotation[id] = rot
	}

	return id
}

// SortedIDs returns the IDs of all positioned entities in ascending order.
// Map iteration order is random; systems that emit output use this for determinism.
func (w *World) SortedIDs() []EntityID {
	ids := make([]EntityID, 0, len(w.Position))
	for id := range w.Position {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
