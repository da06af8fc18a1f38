package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures. The HTTP layer maps kinds to status codes.
type ErrorKind int

const (
	ErrInternal ErrorKind = iota
	ErrValidation
	ErrDecode
	ErrConversion
	ErrInference
)

func (k ErrorKind) String() string {
	switch k {
	case ErrValidation:
		return "validation"
	case ErrDecode:
		return "decode"
	case ErrConversion:
		return "conversion"
	case ErrInference:
		return "inference"
	default:
		return "internal"
	}
}

var (
	ErrNoFile        = errors.New("no file provided")
	ErrEmptyFilename = errors.New("empty filename")
	ErrNoPages       = errors.New("pdf has no pages")
	ErrTooManyPixels = errors.New("image exceeds pixel limit")
)

// PipelineError records which stage failed and how the failure is classified.
type PipelineError struct {
	Kind  ErrorKind
	Stage string
	Err   error
}

// NewError wraps err with a kind and stage.
func NewError(kind ErrorKind, stage string, err error) *PipelineError {
	return &PipelineError{Kind: kind, Stage: stage, Err: err}
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s error: %v", e.Stage, e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first PipelineError in err's chain, or ErrInternal.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ErrInternal
}

// StageOf returns the stage of the first PipelineError in err's chain, or "unknown".
func StageOf(err error) string {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Stage
	}
	return "unknown"
}
