package service

import (
	"errors"
	"fmt"

	"github.com/maheshrc27/postbridge/internal/models"
)

var (
	ErrAuth    = errors.New("storage authentication failed")
	ErrList    = errors.New("folder listing failed")
	ErrPublish = errors.New("threads publish failed")
	ErrDelete  = errors.New("file delete failed")
	ErrNotify  = errors.New("notification failed")
)

// StepError records the workflow step an error came from.
type StepError struct {
	Step models.RunStep
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
