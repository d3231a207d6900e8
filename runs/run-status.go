package runs

import (
	"encoding/json"
	"fmt"
	"time"
)

type Status uint32

const (
	StatusMissing         = 0
	StatusStarting Status = iota + 1
	StatusRunning
	StatusComplete
	StatusCompleteWithError
	StatusShutdown
)

func (s Status) String() string {
	switch s {
	case StatusMissing:
		return ""
	case StatusStarting:
		return "starting"
	case StatusRunning:
		return "running"
	case StatusComplete:
		return "complete"
	case StatusCompleteWithError:
		return "complete with error"
	case StatusShutdown:
		return "shutdown by user"
	}
	return fmt.Sprintf("Status(%d)", uint32(s))
}

func (s Status) MarshalJSON() ([]byte, error) {
	switch s {
	case StatusMissing, StatusStarting, StatusRunning, StatusComplete, StatusCompleteWithError, StatusShutdown:
		return json.Marshal(s.String())
	}
	return nil, fmt.Errorf("unhandled Status value %v in custom MarshalJSON() conversion", uint32(s))
}

type RunStatus struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Status    Status    `json:"runStatus"`
	Error     string    `json:"error"`
}

// IsFinished is false while the run is starting or running.
func (r *RunStatus) IsFinished() bool {
	return r.Status != StatusStarting && r.Status != StatusRunning
}
