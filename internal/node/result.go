package node

import (
	"encoding/json"
	"fmt"

	"github.com/jmylchreest/palettenode/internal/colour"
)

// Policy decides what a failed item does to the rest of its batch.
type Policy int

const (
	// FailFast aborts the batch on the first failed item.
	FailFast Policy = iota
	// CollectErrors records an error result for the item and moves on.
	CollectErrors
)

// PolicyFor maps the host's continue-on-fail flag to a Policy.
func PolicyFor(continueOnFail bool) Policy {
	if continueOnFail {
		return CollectErrors
	}
	return FailFast
}

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case FailFast:
		return "fail-fast"
	case CollectErrors:
		return "collect-errors"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// Result is the outcome of one item: either a palette with the requested
// count, or an error message.
type Result struct {
	Colors []colour.FormattedColor
	Count  int
	Err    string
}

// NewResult returns a successful result. count is the requested colour
// count, which may exceed len(colors).
func NewResult(colors []colour.FormattedColor, count int) Result {
	if colors == nil {
		colors = []colour.FormattedColor{}
	}
	return Result{Colors: colors, Count: count}
}

// NewErrorResult returns a failed result carrying err's message.
func NewErrorResult(err error) Result {
	msg := "unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return Result{Err: msg}
}

// Failed reports whether r is an error result.
func (r Result) Failed() bool {
	return r.Err != ""
}

type resultJSON struct {
	Colors []colour.FormattedColor `json:"colors,omitempty"`
	Count  *int                    `json:"count,omitempty"`
	Error  *string                 `json:"error,omitempty"`
}

// MarshalJSON encodes r as {"colors":[...],"count":n} or {"error":"..."}.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(resultJSON{Error: &r.Err})
	}
	colors := r.Colors
	if colors == nil {
		colors = []colour.FormattedColor{}
	}
	return json.Marshal(struct {
		Colors []colour.FormattedColor `json:"colors"`
		Count  int                     `json:"count"`
	}{Colors: colors, Count: r.Count})
}

// UnmarshalJSON decodes either result shape.
func (r *Result) UnmarshalJSON(data []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Error != nil {
		*r = Result{Err: *raw.Error}
		if r.Err == "" {
			r.Err = "unknown error"
		}
		return nil
	}
	if raw.Count == nil {
		return fmt.Errorf("result has neither count nor error")
	}
	*r = NewResult(raw.Colors, *raw.Count)
	return nil
}
