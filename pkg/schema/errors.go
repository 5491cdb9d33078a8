package schema

import (
	"errors"
	"fmt"
)

// ValidationError represents a single parameter validation failure.
type ValidationError struct {
	Key    string // Parameter name
	Reason string // Human-readable reason for failure
	Value  any    // The value that failed validation
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("parameter %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("parameter %q: %s (got %T)", e.Key, e.Reason, e.Value)
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// ValidationErrors returns the individual failures of an AggregateError found
// anywhere in err's chain. Otherwise returns nil.
func ValidationErrors(err error) []*ValidationError {
	var aggr *AggregateError
	if !errors.As(err, &aggr) {
		return nil
	}
	out := make([]*ValidationError, 0, len(aggr.Errors))
	for _, e := range aggr.Errors {
		var ve *ValidationError
		if errors.As(e, &ve) {
			out = append(out, ve)
		}
	}
	return out
}
