package game

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// InputState holds the host controls pressed this frame
type InputState struct {
	Quit        bool // Esc
	Retry       bool // R, retries a failed transition
	ToggleDebug bool // F3
}

// Any reports whether any control was pressed
func (s InputState) Any() bool {
	return s.Quit || s.Retry || s.ToggleDebug
}

// ReadInput reads the current input state from ebiten
func ReadInput() InputState {
	return InputState{
		Quit:        inpututil.IsKeyJustPressed(ebiten.KeyEscape),
		Retry:       inpututil.IsKeyJustPressed(ebiten.KeyR),
		ToggleDebug: inpututil.IsKeyJustPressed(ebiten.KeyF3),
	}
}
