package types

// Frame is one simulation step as published to observers such as a renderer.
// Receivers must treat it as read-only.
type Frame struct {
	RunID  string   `json:"runId"`
	State  AppState `json:"state"`
	Events []Event  `json:"events"`
	Faults []string `json:"faults,omitempty"`
}
