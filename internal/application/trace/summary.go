package trace

import (
	"fmt"
	"io"
	"slices"
)

// State names as recorded by the coordinator
const (
	stateTransitioning = "Transitioning"
	stateActive        = "Active"
)

// Summary aggregates a recorded trace
type Summary struct {
	Frames      int
	ByState     map[string]int
	Transitions int      // transitions entered after the first frame
	SceneSets   []string // distinct active scene sets, in first-seen order
	Errors      int
	FirstErr    string
	MaxEntities int
}

// Summarize walks the frames of data in order
func Summarize(data *TraceData) Summary {
	s := Summary{ByState: make(map[string]int)}
	prevState := ""
	for _, f := range data.Frames {
		s.Frames++
		s.ByState[f.State]++
		if f.State == stateTransitioning && prevState != "" && prevState != f.State {
			s.Transitions++
		}
		prevState = f.State

		if f.State == stateActive {
			set := fmt.Sprint(f.Scenes)
			if !slices.Contains(s.SceneSets, set) {
				s.SceneSets = append(s.SceneSets, set)
			}
		}
		if f.Err != "" {
			s.Errors++
			if s.FirstErr == "" {
				s.FirstErr = f.Err
			}
		}
		s.MaxEntities = max(s.MaxEntities, f.Entities)
	}
	return s
}

// Print writes a human-readable summary
func (s Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "frames:      %d\n", s.Frames)
	fmt.Fprintf(w, "active:      %d\n", s.ByState[stateActive])
	fmt.Fprintf(w, "loading:     %d\n", s.ByState[stateTransitioning])
	fmt.Fprintf(w, "transitions: %d\n", s.Transitions)
	fmt.Fprintf(w, "entities:    %d max\n", s.MaxEntities)
	for _, set := range s.SceneSets {
		fmt.Fprintf(w, "scene set:   %s\n", set)
	}
	if s.Errors > 0 {
		fmt.Fprintf(w, "errors:      %d (first: %s)\n", s.Errors, s.FirstErr)
	}
}
