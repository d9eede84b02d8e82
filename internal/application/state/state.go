// Package state defines the lifecycle states of the scene orchestrator.
package state

// OrchestratorState represents where the orchestrator is in its lifecycle
type OrchestratorState int

const (
	// StateTransitioning means a loading scene ticks while the next scene set loads
	StateTransitioning OrchestratorState = iota
	// StateActive means the loaded scene set ticks every frame
	StateActive
)

// String returns the string representation of the orchestrator state
func (s OrchestratorState) String() string {
	switch s {
	case StateTransitioning:
		return "Transitioning"
	case StateActive:
		return "Active"
	default:
		return "Unknown"
	}
}
