package services

import (
	"errors"
	"strings"
)

var (
	ErrInvalidFormType    = errors.New("invalid form type")
	ErrUnknownTable       = errors.New("table is not allowed")
	ErrRowNotFound        = errors.New("row not found")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// MissingFieldsError lists every required field that was absent or blank.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// Pipeline stages that can fail after validation.
const (
	StageRender  = "render"
	StagePersist = "persist"
	StageUpload  = "upload"
)

// PipelineError is a server-side failure of one submission stage. Persisted
// reports whether the submission row had already been committed.
type PipelineError struct {
	Stage     string
	Persisted bool
	RecordID  uint
	Err       error
}

func (e *PipelineError) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
