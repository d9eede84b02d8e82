// Package backend provides the rendering backends: an ebiten window backend
// and a headless backend for servers, tests and benchmarks.
package backend

import (
	"fmt"
	"image/color"
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/younwookim/scenecore/internal/domain/entity"
)

// Colors for rendering
var (
	colorBG       = color.RGBA{26, 26, 46, 255}
	colorMeshEdge = color.RGBA{240, 240, 255, 255}
)

// perspective is how much each unit of Z shrinks a mesh
const perspective = 0.1

// Ebiten draws presented frames into the ebiten screen.
//
// ebiten owns its draw loop, so submission runs on the logic goroutine:
// SubmitFrameForRender promotes the pending entities and the next Draw call
// paints them.
type Ebiten struct {
	mu        sync.Mutex
	pending   []entity.Renderable
	presented []entity.Renderable
	frame     uint64
	frames    uint64
	debug     bool
}

// NewEbiten creates an ebiten backend. debug enables the text overlay.
func NewEbiten(debug bool) *Ebiten {
	return &Ebiten{debug: debug}
}

// SubmitRenderableEntities implements render.Backend
func (e *Ebiten) SubmitRenderableEntities(s entity.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = append(e.pending[:0], s.Entities...)
	e.frame = s.Frame
}

// SubmitFrameForRender implements render.Backend
func (e *Ebiten) SubmitFrameForRender() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending, e.presented = e.presented, e.pending
	e.pending = e.pending[:0]
	e.frames++
	return nil
}

// RunOnSeparateThread implements render.Backend
func (e *Ebiten) RunOnSeparateThread() bool { return false }

// ToggleDebug switches the text overlay on or off
func (e *Ebiten) ToggleDebug() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.debug = !e.debug
}

// Debug reports whether the text overlay is on
func (e *Ebiten) Debug() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.debug
}

// Presented returns a copy of the entities the next Draw will paint
func (e *Ebiten) Presented() []entity.Renderable {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]entity.Renderable, len(e.presented))
	copy(out, e.presented)
	return out
}

// Draw paints the presented frame
func (e *Ebiten) Draw(screen *ebiten.Image) {
	e.mu.Lock()
	defer e.mu.Unlock()

	screen.Fill(colorBG)
	for i := range e.presented {
		r := &e.presented[i]
		switch r.Kind {
		case entity.KindMesh3D:
			drawMesh(screen, r)
		default:
			ebitenutil.DrawRect(screen, r.Transform.X, r.Transform.Y, r.Appearance.Width, r.Appearance.Height, r.Appearance.Color)
		}
	}

	if e.debug {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("frame %d  entities %d  TPS %.0f",
			e.frame, len(e.presented), ebiten.ActualTPS()))
	}
}

// drawMesh draws a mesh as a rotated, depth-scaled filled square with an outline
func drawMesh(screen *ebiten.Image, r *entity.Renderable) {
	scale := 1 / (1 + math.Max(r.Transform.Z, 0)*perspective)
	w := r.Appearance.Width * scale * r.Transform.ScaleX
	h := r.Appearance.Height * scale * r.Transform.ScaleY
	cx := r.Transform.X + r.Appearance.Width/2
	cy := r.Transform.Y + r.Appearance.Height/2

	ebitenutil.DrawRect(screen, cx-w/2, cy-h/2, w, h, r.Appearance.Color)

	corners := meshCorners(cx, cy, w, h, r.Transform.Rotation)
	for i := range corners {
		a := corners[i]
		b := corners[(i+1)%len(corners)]
		ebitenutil.DrawLine(screen, a[0], a[1], b[0], b[1], colorMeshEdge)
	}
}

// meshCorners returns the corners of a w*h rectangle centered at (cx, cy)
// rotated by angle radians
func meshCorners(cx, cy, w, h, angle float64) [4][2]float64 {
	sin, cos := math.Sincos(angle)
	half := [4][2]float64{
		{-w / 2, -h / 2},
		{w / 2, -h / 2},
		{w / 2, h / 2},
		{-w / 2, h / 2},
	}
	var out [4][2]float64
	for i, p := range half {
		out[i][0] = cx + p[0]*cos - p[1]*sin
		out[i][1] = cy + p[0]*sin + p[1]*cos
	}
	return out
}
