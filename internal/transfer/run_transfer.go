package transfer

import (
	"time"

	"github.com/maheshrc27/postbridge/internal/models"
)

type RunStatus struct {
	RunID           string           `json:"run_id"`
	Account         string           `json:"account"`
	State           models.RunState  `json:"state"`
	FailedStep      models.RunStep   `json:"failed_step,omitempty"`
	Error           string           `json:"error,omitempty"`
	File            string           `json:"file,omitempty"`
	MediaType       models.MediaType `json:"media_type,omitempty"`
	StatusCode      int              `json:"status_code,omitempty"`
	DeleteError     string           `json:"delete_error,omitempty"`
	StartedAt       time.Time        `json:"started_at"`
	DurationSeconds float64          `json:"duration_seconds"`
}

func NewRunStatus(o models.RunOutcome) RunStatus {
	status := RunStatus{
		RunID:           o.RunID,
		Account:         o.Account,
		State:           o.State,
		FailedStep:      o.FailedStep,
		Error:           o.Error,
		DeleteError:     o.DeleteError,
		StartedAt:       o.StartedAt,
		DurationSeconds: o.Duration.Seconds(),
	}
	if o.File != nil {
		status.File = o.File.Name
	}
	if o.Post != nil {
		status.MediaType = o.Post.MediaType
		status.StatusCode = o.Post.StatusCode
	}
	return status
}
