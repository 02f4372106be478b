package defs

import "time"

// WorkerStatus is the point-in-time view returned by GET /status. Running
// reflects a live probe of the worker's health endpoint, not the registry.
type WorkerStatus struct {
	Running bool `json:"running"`
}

// OpResult is the generic body returned by the control operations.
type OpResult struct {
	Msg string `json:"msg"`
}

// StateEvent is one supervisor state transition, pushed over the events
// feed and recorded in the lifecycle journal.
type StateEvent struct {
	RunID  string    `json:"runId"`
	State  string    `json:"state"`
	Pid    int       `json:"pid,omitempty"`
	Detail string    `json:"detail,omitempty"`
	Time   time.Time `json:"time"`
}

// WindowHints carries platform-specific chrome adjustments for the frontend.
type WindowHints struct {
	TrafficLightInset bool    `json:"trafficLightInset"`
	InsetX            float64 `json:"insetX,omitempty"`
	InsetY            float64 `json:"insetY,omitempty"`
}
