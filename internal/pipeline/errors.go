package pipeline

import (
	"errors"
	"fmt"
)

// ErrEntryNotFound reports a pinned chat request for an entry that does
// not exist or is not owned by the requesting user. It is a client
// error, distinct from infrastructure failures.
var ErrEntryNotFound = errors.New("journal entry not found")

// ParseError reports model output that contained no parseable JSON
// object. The raw output is kept for diagnosis.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no valid JSON in model output: %v", e.Err)
	}
	return "no valid JSON in model output"
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError reports JSON that parsed but violated the expected shape
// (missing fields or wrong arity).
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("model output failed schema validation: %s", e.Reason)
}
