package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/seantiz/algolab/internal/registry"
)

var (
	// ErrUnknownAlgorithm matches lookup failures.
	ErrUnknownAlgorithm = registry.ErrUnknownAlgorithm

	// ErrExecutionTimeout matches *TimeoutError.
	ErrExecutionTimeout = errors.New("execution timed out")

	// ErrInvalidParams matches *InvalidParamsError.
	ErrInvalidParams = errors.New("invalid parameters")
)

// TimeoutError is returned when an algorithm does not finish within its
// timeout. The algorithm itself may still be running.
type TimeoutError struct {
	Path    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("algorithm %q timed out after %s", e.Path, e.Timeout)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrExecutionTimeout }

// InvalidParamsError is returned when input validation is requested and a
// parameter has an unsupported shape.
type InvalidParamsError struct {
	Path string
	Err  error
}

func (e *InvalidParamsError) Error() string {
	return fmt.Sprintf("invalid parameters for %q: %v", e.Path, e.Err)
}

func (e *InvalidParamsError) Is(target error) bool { return target == ErrInvalidParams }

func (e *InvalidParamsError) Unwrap() error { return e.Err }

// PanicError reports an algorithm that panicked instead of returning an error.
type PanicError struct {
	Path  string
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("algorithm panicked: %v", e.Value)
}
