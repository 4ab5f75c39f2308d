package ipc

import "fermata/internal/daemon"

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse carries the daemon's aggregate snapshot.
type StatusResponse struct {
	Status daemon.Status `json:"status"`
}

// PauseRequest suspends enrichment, for every provider when Provider is
// empty.
type PauseRequest struct {
	Provider string `json:"provider"`
}

// PauseResponse reports pause outcome.
type PauseResponse struct {
	Paused bool `json:"paused"`
}

// ResumeRequest lifts a pause.
type ResumeRequest struct {
	Provider string `json:"provider"`
}

// ResumeResponse reports resume outcome.
type ResumeResponse struct {
	Resumed bool `json:"resumed"`
}

// StopRequest asks the daemon process to shut down.
type StopRequest struct{}

// StopResponse reports stop acknowledgement.
type StopResponse struct {
	Stopping bool `json:"stopping"`
}
