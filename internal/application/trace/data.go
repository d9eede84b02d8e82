// Package trace records per-frame orchestrator activity for offline inspection.
package trace

// FrameRecord records the orchestrator and snapshot state for a single frame
type FrameRecord struct {
	F        uint64   `json:"f"`                // Frame number
	State    string   `json:"state"`            // Orchestrator state
	Scenes   []string `json:"scenes,omitempty"` // Active scene types, in tick order
	Entities int      `json:"entities"`         // Renderables in the frame's snapshot
	Err      string   `json:"err,omitempty"`    // Tick error, if any
}

// TraceData contains a recorded session
type TraceData struct {
	Version   string        `json:"version"`
	StartTime string        `json:"startTime"`
	Frames    []FrameRecord `json:"frames"`
}
