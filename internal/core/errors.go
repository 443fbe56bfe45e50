package core

import (
	"errors"
)

var (
	// ErrSummarization marks a failure of the summarizer stage
	ErrSummarization = errors.New("failed to summarize email")
	// ErrClassification marks a failure of the sentiment stage
	ErrClassification = errors.New("failed to classify email sentiment")
	// ErrGeneration marks a failure of the reply generation stage
	ErrGeneration = errors.New("failed to generate response")

	// ErrEmptyText is returned for empty or whitespace-only input
	ErrEmptyText = errors.New("email text is empty")
	// ErrNoResponseNeeded is returned when composing with response type none
	ErrNoResponseNeeded = errors.New("no response needed for response type none")
)

// PipelineError wraps the backend error of the stage that aborted the pipeline
type PipelineError struct {
	Stage error
	Err   error
}

func (e *PipelineError) Error() string {
	return e.Stage.Error() + ": " + e.Err.Error()
}

// Unwrap returns the underlying backend error
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the stage sentinel of this error
func (e *PipelineError) Is(target error) bool {
	return target == e.Stage
}

func summarizationError(err error) error {
	return &PipelineError{Stage: ErrSummarization, Err: err}
}

func classificationError(err error) error {
	return &PipelineError{Stage: ErrClassification, Err: err}
}

func generationError(err error) error {
	return &PipelineError{Stage: ErrGeneration, Err: err}
}
