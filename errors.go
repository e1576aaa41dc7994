package orderpdf

import (
	"errors"
	"fmt"
)

// Sentinel errors for generation requests that cannot start.
var (
	ErrNoOrders   = errors.New("orderpdf: no orders to generate")
	ErrNoGroupKey = errors.New("orderpdf: empty group key")
	ErrNoSaver    = errors.New("orderpdf: no saver configured")
)

// GenerateError is a fatal failure of a generation call. When it is
// returned no artifact has been saved.
type GenerateError struct {
	Op  string // "validate", "layout", "output" or "save"
	Err error
}

func (e *GenerateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("orderpdf.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("orderpdf.%s: unknown error", e.Op)
}

func (e *GenerateError) Unwrap() error {
	return e.Err
}

func newGenerateError(op string, err error) *GenerateError {
	return &GenerateError{Op: op, Err: err}
}
