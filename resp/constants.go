package resp

// CmdType is the name of a command as sent on the wire.
type CmdType string

// Kind identifies the RESP2 type of a reply.
type Kind byte

// Protocol delimiters
const (
	// CRLF terminates every RESP line
	CRLF = "\r\n"
)

// Reply type prefixes (RESP2)
const (
	KindSimpleString Kind = '+'
	KindError        Kind = '-'
	KindInteger      Kind = ':'
	KindBulkString   Kind = '$'
	KindArray        Kind = '*'
)

func (k Kind) String() string {
	switch k {
	case KindSimpleString:
		return "simple-string"
	case KindError:
		return "error"
	case KindInteger:
		return "integer"
	case KindBulkString:
		return "bulk-string"
	case KindArray:
		return "array"
	default:
		return "unknown(" + string(rune(k)) + ")"
	}
}

// Relational overlay commands.
const (
	// CmdFpWrite stores row/column data for a relation.
	//
	// Wire format: FPWRITE <dataKey> <partitionInfo> <columnCount> 0 <value>*
	//
	// The literal 0 selects the default (no offset) write mode.
	//
	// Reply: simple string OK.
	CmdFpWrite CmdType = "FPWRITE"

	// CmdFpScan reads row/column data for a relation.
	//
	// Wire format: FPSCAN <dataKey> <col1,col2,...>
	//
	// The column identifiers travel as one comma separated token.
	//
	// Reply: array of bulk strings, one per stored value.
	CmdFpScan CmdType = "FPSCAN"

	// CmdMetakeys scans meta-data keys matching a pattern and a predicate statement.
	//
	// Wire format: METAKEYS <pattern> <statement>
	//
	// The statement is an opaque, pre-formatted expression such as
	// "D1*1*EqualTo:$D2*2*EqualTo:$".
	//
	// Reply: array of bulk strings, one per matching meta key.
	CmdMetakeys CmdType = "METAKEYS"

	// CmdPing checks that a node answers.
	//
	// Reply: simple string PONG.
	CmdPing CmdType = "PING"
)

// Well-known tokens.
const (
	// DefaultWriteMode is the marker appended between the partition
	// descriptor and the row values of FPWRITE.
	DefaultWriteMode = 0

	// ColumnSeparator joins FPSCAN column identifiers into one token.
	ColumnSeparator = ","

	// StatusOK is the simple string reply of successful writes.
	StatusOK = "OK"

	// StatusPong is the simple string reply of PING.
	StatusPong = "PONG"
)

// Limits protecting the reader against corrupt length headers.
const (
	// MaxBulkLength is the largest bulk string accepted (512MB, the server default).
	MaxBulkLength = 512 * 1024 * 1024

	// MaxArrayLength is the largest array accepted.
	MaxArrayLength = 1024 * 1024 * 1024

	// MaxNestingDepth bounds nested arrays.
	MaxNestingDepth = 32
)
