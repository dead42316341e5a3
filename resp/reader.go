package resp

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strconv"
)

var crlfBytes = []byte(CRLF)

// ReadResponse reads and parses a single RESP2 reply from r.
//
// Error replies from the node are returned as Response.Error (not as Go error),
// so that a rejected command does not cost the connection.
//
// Go errors returned indicate I/O or parsing failures:
//   - ConnectionError: the underlying reader failed (including io.EOF)
//   - ParseError: malformed reply
//
// Both mean the connection must be closed.
func ReadResponse(r *bufio.Reader) (*Response, error) {
	return readResponse(r, 0)
}

func readResponse(r *bufio.Reader, depth int) (*Response, error) {
	if depth > MaxNestingDepth {
		return nil, &ParseError{Message: "array nesting too deep"}
	}

	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	if len(line) == 0 {
		return nil, &ParseError{Message: "empty reply line"}
	}

	kind := Kind(line[0])
	payload := line[1:]

	switch kind {
	case KindSimpleString:
		return &Response{Kind: kind, Str: string(payload)}, nil

	case KindError:
		return &Response{Kind: kind, Error: parseServerError(payload)}, nil

	case KindInteger:
		n, err := strconv.ParseInt(string(payload), 10, 64)
		if err != nil {
			return nil, &ParseError{Message: "invalid integer reply", Err: err}
		}
		return &Response{Kind: kind, Int: n}, nil

	case KindBulkString:
		n, err := parseLength(payload, MaxBulkLength)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return &Response{Kind: kind, Null: true}, nil
		}

		// Read data + CRLF together
		data := make([]byte, n+2)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, &ParseError{Message: "failed to read bulk string", Err: err}
		}
		if !bytes.HasSuffix(data, crlfBytes) {
			return nil, &ParseError{Message: "invalid bulk string terminator"}
		}
		return &Response{Kind: kind, Bulk: data[:n]}, nil

	case KindArray:
		n, err := parseLength(payload, MaxArrayLength)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return &Response{Kind: kind, Null: true}, nil
		}

		resp := &Response{Kind: kind, Array: make([]*Response, 0, min(n, 1024))}
		for i := 0; i < n; i++ {
			elem, err := readResponse(r, depth+1)
			if err != nil {
				return nil, err
			}
			resp.Array = append(resp.Array, elem)
		}
		return resp, nil

	default:
		return nil, &ParseError{Message: "unknown reply type " + strconv.Quote(string(line[:1]))}
	}
}

// readLine returns the next line without its CRLF.
// The returned slice is only valid until the next read.
func readLine(r *bufio.Reader) ([]byte, error) {
	line, err := r.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		// Line exceeds buffer, fall back to ReadBytes (allocates).
		// The slice aliases the bufio buffer: copy it before reading on.
		head := append([]byte(nil), line...)
		var rest []byte
		rest, err = r.ReadBytes('\n')
		line = append(head, rest...)
	}
	if err != nil {
		return nil, &ConnectionError{Op: "read", Err: err}
	}

	if !bytes.HasSuffix(line, crlfBytes) {
		return nil, &ParseError{Message: "reply line not terminated by CRLF"}
	}
	return line[:len(line)-2], nil
}

func parseLength(b []byte, limit int) (int, error) {
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return 0, &ParseError{Message: "invalid length", Err: err}
	}
	if n < -1 {
		return 0, &ParseError{Message: "negative length"}
	}
	if n > limit {
		return 0, &ParseError{Message: "length exceeds limit"}
	}
	return n, nil
}

// parseServerError splits "ERR message" into prefix and message.
// Prefixes are upper-case words by convention; anything else is kept whole.
func parseServerError(payload []byte) *ServerError {
	msg := string(payload)
	prefix, rest, found := bytes.Cut(payload, []byte(" "))
	if !found || !isUpperWord(prefix) {
		return &ServerError{Message: msg}
	}
	return &ServerError{Prefix: string(prefix), Message: string(rest)}
}

func isUpperWord(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}
