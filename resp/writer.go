package resp

import (
	"bufio"
	"io"
	"strconv"

	"github.com/pior/addb/internal"
)

// Most overlay commands fit in a few hundred bytes. The cap keeps huge
// FPWRITE payloads from pinning memory in the pool.
var bufferPool = internal.NewBufferPool(512, 64*1024)

// WriteRequest serializes a Request as a RESP array of bulk strings and writes it to w.
// Format: *<n>\r\n$<len>\r\n<command>\r\n($<len>\r\n<token>\r\n)*
//
// The caller is responsible for flushing w when it is buffered.
func WriteRequest(w io.Writer, req *Request) error {
	if bw, ok := w.(*bufio.Writer); ok {
		return writeRequestBuffered(bw, req)
	}
	return writeRequestUnbuffered(w, req)
}

// writeRequestBuffered writes straight into the bufio.Writer used by connections.
func writeRequestBuffered(bw *bufio.Writer, req *Request) error {
	var scratch [24]byte

	// Array header
	bw.WriteByte(byte(KindArray))
	bw.Write(strconv.AppendInt(scratch[:0], int64(1+req.Args.Len()), 10))
	bw.WriteString(CRLF)

	// Command name
	writeBulkHeader(bw, len(req.Command), scratch[:0])
	bw.WriteString(string(req.Command))
	bw.WriteString(CRLF)

	// Arguments
	for i := 0; i < req.Args.Len(); i++ {
		tok := req.Args.At(i)
		writeBulkHeader(bw, tok.Len(), scratch[:0])
		switch tok.Kind {
		case TokenInt:
			bw.Write(strconv.AppendInt(scratch[:0], tok.Int, 10))
		case TokenBytes:
			bw.Write(tok.Bytes)
		default:
			bw.WriteString(tok.Str)
		}
		if _, err := bw.WriteString(CRLF); err != nil {
			return err
		}
	}

	return nil
}

func writeBulkHeader(bw *bufio.Writer, n int, scratch []byte) {
	bw.WriteByte(byte(KindBulkString))
	bw.Write(strconv.AppendInt(scratch, int64(n), 10))
	bw.WriteString(CRLF)
}

// writeRequestUnbuffered builds the frame in a pooled buffer and writes it once.
func writeRequestUnbuffered(w io.Writer, req *Request) error {
	buf := bufferPool.Get()
	defer bufferPool.Put(buf)

	buf.Write(AppendRequest(buf.AvailableBuffer(), req))

	_, err := w.Write(buf.Bytes())
	return err
}

// AppendRequest appends the wire encoding of req to dst.
func AppendRequest(dst []byte, req *Request) []byte {
	dst = append(dst, byte(KindArray))
	dst = strconv.AppendInt(dst, int64(1+req.Args.Len()), 10)
	dst = append(dst, CRLF...)

	dst = appendBulk(dst, Token{Kind: TokenString, Str: string(req.Command)})
	for i := 0; i < req.Args.Len(); i++ {
		dst = appendBulk(dst, req.Args.At(i))
	}
	return dst
}

func appendBulk(dst []byte, tok Token) []byte {
	dst = append(dst, byte(KindBulkString))
	dst = strconv.AppendInt(dst, int64(tok.Len()), 10)
	dst = append(dst, CRLF...)
	dst = tok.AppendTo(dst)
	return append(dst, CRLF...)
}
