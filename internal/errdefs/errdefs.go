// Package errdefs defines the error taxonomy shared by the extraction pipeline.
package errdefs

import (
	"errors"
	"fmt"
)

// DecodeError reports that an image source could not be fetched or decoded,
// or that it decoded to an image with no pixels.
type DecodeError struct {
	Source string
	Err    error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("decode image: %v", e.Err)
	}
	return fmt.Sprintf("decode image %q: %v", e.Source, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NewDecodeError wraps err as a DecodeError for source.
func NewDecodeError(source string, err error) *DecodeError {
	return &DecodeError{Source: source, Err: err}
}

// InvalidParameterError reports a caller-supplied parameter outside its domain.
type InvalidParameterError struct {
	Param  string
	Reason string
}

// Error implements the error interface.
func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Reason)
}

// InvalidParameter builds an InvalidParameterError with a formatted reason.
func InvalidParameter(param, format string, args ...any) *InvalidParameterError {
	return &InvalidParameterError{Param: param, Reason: fmt.Sprintf(format, args...)}
}

// IsDecode reports whether any error in err's chain is a DecodeError.
func IsDecode(err error) bool {
	var target *DecodeError
	return errors.As(err, &target)
}

// IsInvalidParameter reports whether any error in err's chain is an InvalidParameterError.
func IsInvalidParameter(err error) bool {
	var target *InvalidParameterError
	return errors.As(err, &target)
}
