package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a pipeline failure so callers can pick a recovery:
// a decode failure asks the user for another upload, a stage failure is a bug.
type Kind int

const (
	KindNone Kind = iota
	KindDecode
	KindStage
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindDecode:
		return "decode"
	case KindStage:
		return "stage"
	default:
		return "internal"
	}
}

// DecodeError reports an input that could not be read as a raster image.
// No stage ran and nothing was written.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Kind() Kind { return KindDecode }

// StageError reports a transform or persistence failure inside one stage.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func (e *StageError) Kind() Kind { return KindStage }

// KindOf classifies any error returned by the pipeline
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}

	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return KindDecode
	}

	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return KindStage
	}

	return KindInternal
}

// UserMessage maps an error to text that is safe to show to an end user
func UserMessage(err error) string {
	switch KindOf(err) {
	case KindNone:
		return ""
	case KindDecode:
		return "Could not process image: the file is missing, empty or not a supported image."
	default:
		return "Internal processing error. Please try again later."
	}
}
