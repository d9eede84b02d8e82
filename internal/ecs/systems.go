package ecs

import (
	"math"
	"sort"

	"github.com/younwookim/scenecore/internal/domain/entity"
)

// MovementSystem integrates velocity and spin, bouncing off the world bounds
func MovementSystem(w *World, dt float64) {
	for id, vel := range w.Velocity {
		pos, ok := w.Position[id]
		if !ok {
			continue
		}

		pos.X += vel.X * dt
		pos.Y += vel.Y * dt

		if !w.Bounds.Empty() {
			size := w.Shape[id]
			minX, maxX := w.Bounds.X, w.Bounds.X+w.Bounds.W-size.Width
			minY, maxY := w.Bounds.Y, w.Bounds.Y+w.Bounds.H-size.Height
			if pos.X < minX {
				pos.X = minX
				vel.X = math.Abs(vel.X)
			} else if pos.X > maxX {
				pos.X = maxX
				vel.X = -math.Abs(vel.X)
			}
			if pos.Y < minY {
				pos.Y = minY
				vel.Y = math.Abs(vel.Y)
			} else if pos.Y > maxY {
				pos.Y = maxY
				vel.Y = -math.Abs(vel.Y)
			}
			w.Velocity[id] = vel
		}

		w.Position[id] = pos
	}

	for id, rot := range w.Rotation {
		rot.Angle = math.Mod(rot.Angle+rot.Spin*dt, 2*math.Pi)
		w.Rotation[id] = rot
	}
}

// RenderSystem appends a renderable for every drawable entity, ordered by layer then ID.
// idBase offsets entity IDs so several worlds can share one snapshot.
func RenderSystem(w *World, idBase entity.EntityID, dst []entity.Renderable) []entity.Renderable {
	start := len(dst)
	for _, id := range w.SortedIDs() {
		shape, ok := w.Shape[id]
		if !ok {
			continue
		}
		pos := w.Position[id]
		rot := w.Rotation[id]

		kind := entity.KindSprite2D
		if shape.Mesh {
			kind = entity.KindMesh3D
		}
		dst = append(dst, entity.Renderable{
			ID:   idBase + entity.EntityID(id),
			Kind: kind,
			Transform: entity.Transform{
				X: pos.X, Y: pos.Y, Z: pos.Z,
				Rotation: rot.Angle,
				ScaleX:   1, ScaleY: 1, ScaleZ: 1,
			},
			Appearance: entity.Appearance{
				Color:  shape.Color,
				Width:  shape.Width,
				Height: shape.Height,
				Layer:  shape.Layer,
			},
		})
	}

	added := dst[start:]
	sort.SliceStable(added, func(i, j int) bool {
		return added[i].Appearance.Layer < added[j].Appearance.Layer
	})
	return dst
}
