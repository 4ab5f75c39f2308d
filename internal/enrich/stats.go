package enrich

import "fermata/internal/library"

// Stats are process-lifetime counters for one worker. They reset on
// restart; durable progress lives in the database.
type Stats struct {
	Matched  int64
	NotFound int64
	Errors   int64
}

// Processed returns the total number of items given a terminal status.
func (s Stats) Processed() int64 {
	return s.Matched + s.NotFound + s.Errors
}

// WorkerStatus is one worker's snapshot for status reporting.
type WorkerStatus struct {
	Provider string                            `json:"provider"`
	Running  bool                              `json:"running"`
	Paused   bool                              `json:"paused"`
	Idle     bool                              `json:"idle"`
	Pending  int64                             `json:"pending"`
	Current  *library.WorkItem                 `json:"current,omitempty"`
	Stats    Stats                             `json:"stats"`
	Progress map[library.Kind]library.Progress `json:"progress,omitempty"`
}
