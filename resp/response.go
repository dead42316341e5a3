package resp

import (
	"fmt"
	"strconv"
)

// Response is a parsed RESP2 reply.
// This is a plain container; the helpers below convert it to Go values.
type Response struct {
	// Kind is the RESP2 type of the reply.
	Kind Kind

	// Str holds simple string payloads.
	Str string

	// Int holds integer payloads.
	Int int64

	// Bulk holds bulk string payloads. Nil when Null is set.
	Bulk []byte

	// Array holds array elements. Nil when Null is set.
	Array []*Response

	// Null is set for the null bulk string ($-1) and the null array (*-1).
	Null bool

	// Error is set for error replies (-ERR ...).
	// A node rejecting a command is a reply, not an I/O failure.
	Error error
}

// HasError returns true if the node answered with an error reply.
func (r *Response) HasError() bool {
	return r.Error != nil
}

// IsOK returns true for the simple string OK.
func (r *Response) IsOK() bool {
	return r.Kind == KindSimpleString && r.Str == StatusOK
}

// Text returns the reply as a string.
// Simple strings, bulk strings and integers are accepted.
func (r *Response) Text() (string, error) {
	if r.Error != nil {
		return "", r.Error
	}
	switch r.Kind {
	case KindSimpleString:
		return r.Str, nil
	case KindBulkString:
		if r.Null {
			return "", ErrNilReply
		}
		return string(r.Bulk), nil
	case KindInteger:
		return strconv.FormatInt(r.Int, 10), nil
	default:
		return "", fmt.Errorf("resp: cannot read %s reply as text", r.Kind)
	}
}

// Strings returns an array reply as a list of strings.
// A null array yields an empty list. Null elements yield empty strings.
func (r *Response) Strings() ([]string, error) {
	if r.Error != nil {
		return nil, r.Error
	}
	if r.Kind != KindArray {
		return nil, fmt.Errorf("resp: cannot read %s reply as list", r.Kind)
	}
	if r.Null {
		return []string{}, nil
	}

	out := make([]string, len(r.Array))
	for i, elem := range r.Array {
		if elem.Null {
			continue
		}
		s, err := elem.Text()
		if err != nil {
			return nil, fmt.Errorf("resp: element %d: %w", i, err)
		}
		out[i] = s
	}
	return out, nil
}
