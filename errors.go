package addb

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArgument is the root of every builder configuration error.
	ErrInvalidArgument = errors.New("addb: invalid argument")

	// ErrColumnCountMismatch is returned when the number of FPWRITE values
	// is not a multiple of the declared column count.
	ErrColumnCountMismatch = errors.New("addb: value count does not match column count")

	// ErrIncomplete is returned when waiting on a node selection ends
	// before every node completed.
	ErrIncomplete = errors.New("addb: node selection incomplete")

	ErrNoNodes         = errors.New("addb: no nodes available")
	ErrUnknownNode     = errors.New("addb: unknown node")
	ErrClientClosed    = errors.New("addb: client closed")
	ErrUnexpectedReply = errors.New("addb: unexpected reply")
)

// ArgumentError reports a mandatory builder field that is missing or invalid.
type ArgumentError struct {
	Field  string
	Reason string
}

func (e *ArgumentError) Error() string {
	return "addb: invalid argument: " + e.Field + " " + e.Reason
}

// Is makes errors.Is(err, ErrInvalidArgument) match.
func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func mustNotBeEmpty(field string) *ArgumentError {
	return &ArgumentError{Field: field, Reason: "must not be empty"}
}

func mustNotBeNil(field string) *ArgumentError {
	return &ArgumentError{Field: field, Reason: "must not be nil"}
}

// IncompleteError is returned by AsyncExecutions.Wait when the wait ends
// before every node completed. The state of the pending nodes is unknown,
// not failed: their executions keep running.
type IncompleteError struct {
	// Pending lists the nodes that had not completed.
	Pending []Node
	// Err is the reason the wait ended, usually a context error.
	Err error
}

func (e *IncompleteError) Error() string {
	ids := make([]string, len(e.Pending))
	for i, n := range e.Pending {
		ids[i] = n.ID
	}
	return fmt.Sprintf("addb: node selection incomplete: %d node(s) pending [%s]: %v",
		len(e.Pending), strings.Join(ids, ", "), e.Err)
}

func (e *IncompleteError) Unwrap() []error {
	return []error{ErrIncomplete, e.Err}
}
