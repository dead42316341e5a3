package resp

import (
	"bufio"
	"strings"
)

func newReader(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func bulk(s string) *Response {
	return &Response{Kind: KindBulkString, Bulk: []byte(s)}
}
