package node

import (
	"fmt"

	"github.com/jmylchreest/palettenode/internal/errdefs"
)

// Aliases for the pipeline error taxonomy.
type (
	DecodeError           = errdefs.DecodeError
	InvalidParameterError = errdefs.InvalidParameterError
)

// ItemError aborts a fail-fast batch. It records which item failed.
type ItemError struct {
	Index int
	Err   error
}

// Error implements the error interface.
func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

// Unwrap returns the item's failure.
func (e *ItemError) Unwrap() error {
	return e.Err
}
