package models

import "time"

type RunState string

const (
	RunStateStart           RunState = "START"
	RunStateCaptionResolved RunState = "CAPTION_RESOLVED"
	RunStateAuthenticated   RunState = "AUTHENTICATED"
	RunStateFilesListed     RunState = "FILES_LISTED"
	RunStateEmptyEnd        RunState = "EMPTY_END"
	RunStateFileSelected    RunState = "FILE_SELECTED"
	RunStatePublished       RunState = "PUBLISHED"
	RunStateCleanedUp       RunState = "CLEANED_UP"
	RunStateDone            RunState = "DONE"
	RunStateCrashed         RunState = "CRASHED"
)

type RunStep string

const (
	StepCaption RunStep = "caption"
	StepAuth    RunStep = "auth"
	StepList    RunStep = "list"
	StepSelect  RunStep = "select"
	StepLink    RunStep = "temporary_link"
	StepPublish RunStep = "publish"
	StepDelete  RunStep = "delete"
)

// RunOutcome is the result of one account workflow run.
type RunOutcome struct {
	RunID       string        `json:"run_id"`
	Account     string        `json:"account"`
	State       RunState      `json:"state"`
	FailedStep  RunStep       `json:"failed_step,omitempty"`
	Err         error         `json:"-"`
	Error       string        `json:"error,omitempty"`
	File        *MediaFile    `json:"file,omitempty"`
	Post        *PostResult   `json:"post,omitempty"`
	DeleteError string        `json:"delete_error,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
}

// Terminal reports whether the run ended in DONE, EMPTY_END or CRASHED.
func (o RunOutcome) Terminal() bool {
	return o.State == RunStateDone || o.State == RunStateEmptyEnd || o.State == RunStateCrashed
}
