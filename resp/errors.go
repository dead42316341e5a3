package resp

import (
	"errors"
	"fmt"
)

// ErrNilReply is returned when a null reply is read as a value.
var ErrNilReply = errors.New("resp: nil reply")

// ServerError is an error reply sent by a node (-ERR ..., -WRONGTYPE ...).
// The connection stays usable: the node parsed the command and answered.
type ServerError struct {
	// Prefix is the first word of the reply, e.g. ERR or MOVED.
	Prefix  string
	Message string
}

func (e *ServerError) Error() string {
	if e.Prefix == "" {
		return e.Message
	}
	return e.Prefix + " " + e.Message
}

// ShouldCloseConnection returns false - the protocol state is intact.
func (e *ServerError) ShouldCloseConnection() bool {
	return false
}

// ParseError is returned when a reply cannot be parsed.
// The stream position is unknown afterwards, so the connection must be closed.
type ParseError struct {
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return "resp: parse error: " + e.Message + ": " + e.Err.Error()
	}
	return "resp: parse error: " + e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ShouldCloseConnection returns true - the stream is desynchronized.
func (e *ParseError) ShouldCloseConnection() bool {
	return true
}

// ConnectionError wraps I/O failures on a connection.
type ConnectionError struct {
	Op  string // read, write, flush, dial
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("resp: connection error during %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ShouldCloseConnection returns true - the connection is broken.
func (e *ConnectionError) ShouldCloseConnection() bool {
	return true
}

// ErrorWithConnectionState is implemented by errors that know whether
// the connection that produced them can be reused.
type ErrorWithConnectionState interface {
	error
	ShouldCloseConnection() bool
}

// ShouldCloseConnection reports whether err requires closing the connection.
// Unknown errors are treated conservatively and close it.
func ShouldCloseConnection(err error) bool {
	if err == nil {
		return false
	}

	var e ErrorWithConnectionState
	if errors.As(err, &e) {
		return e.ShouldCloseConnection()
	}

	return true
}
