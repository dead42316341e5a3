package addb

import (
	"strconv"
	"strings"

	"github.com/pior/addb/resp"
)

// CompositeArgs is a frozen parameter object that flattens into the
// positional arguments of one command.
type CompositeArgs interface {
	// Command returns the command the arguments belong to.
	Command() resp.CmdType

	// AppendTo appends the arguments, in wire order, to args.
	AppendTo(args *resp.Args)
}

// NewRequest builds a fresh request from a frozen parameter object.
// Each call allocates a new argument sequence.
func NewRequest(a CompositeArgs) *resp.Request {
	args := resp.NewArgs(argsCapacity(a))
	a.AppendTo(args)
	return resp.NewRequest(a.Command(), args)
}

func argsCapacity(a CompositeArgs) int {
	if w, ok := a.(FpWriteArgs); ok {
		return 4 + len(w.data)
	}
	return 2
}

// =============================================================================
// FPWRITE
// =============================================================================

// FpWriteArgs are the frozen parameters of FPWRITE.
// Build them with NewFpWriteArgs or one of the FpWrite* constructors.
type FpWriteArgs struct {
	dataKey       string
	partitionInfo string
	columnCount   string
	data          []string
}

var _ CompositeArgs = FpWriteArgs{}

func (a FpWriteArgs) Command() resp.CmdType { return resp.CmdFpWrite }

// AppendTo appends: dataKey, partitionInfo, columnCount, 0, values...
func (a FpWriteArgs) AppendTo(args *resp.Args) {
	args.Add(a.dataKey).
		Add(a.partitionInfo).
		Add(a.columnCount).
		AddInt(resp.DefaultWriteMode)
	args.AddStrings(a.data...)
}

func (a FpWriteArgs) DataKey() string       { return a.dataKey }
func (a FpWriteArgs) PartitionInfo() string { return a.partitionInfo }
func (a FpWriteArgs) ColumnCount() string   { return a.columnCount }

// Data returns a copy of the row values.
func (a FpWriteArgs) Data() []string { return append([]string(nil), a.data...) }

// FpWriteBuilder configures FpWriteArgs.
//
// Every setter validates its input immediately; the first failure is kept
// and returned by Build. A builder is meant for one Build call; it is not
// safe for concurrent use.
type FpWriteBuilder struct {
	args FpWriteArgs
	set  uint8
	err  *ArgumentError
}

const (
	fpWriteDataKey = 1 << iota
	fpWritePartitionInfo
	fpWriteColumnCount
	fpWriteData
)

// NewFpWriteArgs returns an empty FPWRITE builder.
func NewFpWriteArgs() *FpWriteBuilder {
	return &FpWriteBuilder{}
}

// FpWriteDataKey creates a builder with the data key set.
func FpWriteDataKey(dataKey string) *FpWriteBuilder {
	return NewFpWriteArgs().DataKey(dataKey)
}

// FpWritePartitionInfo creates a builder with the partition descriptor set.
func FpWritePartitionInfo(partitionInfo string) *FpWriteBuilder {
	return NewFpWriteArgs().PartitionInfo(partitionInfo)
}

// FpWriteColumnCount creates a builder with the column count set.
func FpWriteColumnCount(columnCount string) *FpWriteBuilder {
	return NewFpWriteArgs().ColumnCount(columnCount)
}

// FpWriteData creates a builder with the row values set.
func FpWriteData(data ...string) *FpWriteBuilder {
	return NewFpWriteArgs().Data(data...)
}

func (b *FpWriteBuilder) fail(err *ArgumentError) *FpWriteBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// DataKey sets the key of the relation data, e.g. "D:{100:1:2}".
// An empty key is rejected as unset.
func (b *FpWriteBuilder) DataKey(dataKey string) *FpWriteBuilder {
	if dataKey == "" {
		return b.fail(mustNotBeEmpty("dataKey"))
	}
	b.args.dataKey = dataKey
	b.set |= fpWriteDataKey
	return b
}

// PartitionInfo sets the partition descriptor, e.g. "1:2".
// An empty descriptor is rejected as unset.
func (b *FpWriteBuilder) PartitionInfo(partitionInfo string) *FpWriteBuilder {
	if partitionInfo == "" {
		return b.fail(mustNotBeEmpty("partitionInfo"))
	}
	b.args.partitionInfo = partitionInfo
	b.set |= fpWritePartitionInfo
	return b
}

// ColumnCount sets the number of columns per row, as a decimal string.
func (b *FpWriteBuilder) ColumnCount(columnCount string) *FpWriteBuilder {
	if columnCount == "" {
		return b.fail(mustNotBeEmpty("columnCount"))
	}
	n, err := strconv.Atoi(columnCount)
	if err != nil || n <= 0 {
		return b.fail(&ArgumentError{Field: "columnCount", Reason: "must be a positive integer, got " + strconv.Quote(columnCount)})
	}
	b.args.columnCount = columnCount
	b.set |= fpWriteColumnCount
	return b
}

// ColumnCountInt sets the number of columns per row.
func (b *FpWriteBuilder) ColumnCountInt(columnCount int) *FpWriteBuilder {
	if columnCount <= 0 {
		return b.fail(&ArgumentError{Field: "columnCount", Reason: "must be a positive integer, got " + strconv.Itoa(columnCount)})
	}
	return b.ColumnCount(strconv.Itoa(columnCount))
}

// Data sets the row values, in column order. Calling it with no values
// sets an empty list.
func (b *FpWriteBuilder) Data(data ...string) *FpWriteBuilder {
	b.args.data = append(make([]string, 0, len(data)), data...)
	b.set |= fpWriteData
	return b
}

// DataList sets the row values from a slice. A nil slice is rejected.
func (b *FpWriteBuilder) DataList(data []string) *FpWriteBuilder {
	if data == nil {
		return b.fail(mustNotBeNil("data"))
	}
	return b.Data(data...)
}

// Build validates the configuration and returns the frozen arguments.
//
// The number of values must be a multiple of the column count: zero values
// and several rows are accepted, a partial row is not.
func (b *FpWriteBuilder) Build() (FpWriteArgs, error) {
	if b.err != nil {
		return FpWriteArgs{}, b.err
	}

	switch {
	case b.set&fpWriteDataKey == 0:
		return FpWriteArgs{}, mustNotBeEmpty("dataKey")
	case b.set&fpWritePartitionInfo == 0:
		return FpWriteArgs{}, mustNotBeEmpty("partitionInfo")
	case b.set&fpWriteColumnCount == 0:
		return FpWriteArgs{}, mustNotBeEmpty("columnCount")
	case b.set&fpWriteData == 0:
		return FpWriteArgs{}, mustNotBeNil("data")
	}

	n, _ := strconv.Atoi(b.args.columnCount)
	if len(b.args.data)%n != 0 {
		return FpWriteArgs{}, &columnCountError{values: len(b.args.data), columns: n}
	}

	args := b.args
	args.data = append([]string(nil), b.args.data...)
	return args, nil
}

// MustBuild is like Build but panics on error.
func (b *FpWriteBuilder) MustBuild() FpWriteArgs {
	args, err := b.Build()
	if err != nil {
		panic(err)
	}
	return args
}

type columnCountError struct {
	values  int
	columns int
}

func (e *columnCountError) Error() string {
	return "addb: value count does not match column count: " +
		strconv.Itoa(e.values) + " value(s) for " + strconv.Itoa(e.columns) + " column(s)"
}

func (e *columnCountError) Is(target error) bool {
	return target == ErrColumnCountMismatch || target == ErrInvalidArgument
}

// =============================================================================
// FPSCAN
// =============================================================================

// FpScanArgs are the frozen parameters of FPSCAN.
type FpScanArgs struct {
	dataKey string
	columns []string
}

var _ CompositeArgs = FpScanArgs{}

func (a FpScanArgs) Command() resp.CmdType { return resp.CmdFpScan }

// AppendTo appends: dataKey, "col1,col2,...".
// An empty column list still produces the (empty) second token.
func (a FpScanArgs) AppendTo(args *resp.Args) {
	args.Add(a.dataKey)
	args.Add(strings.Join(a.columns, resp.ColumnSeparator))
}

func (a FpScanArgs) DataKey() string { return a.dataKey }

// Columns returns a copy of the column identifiers.
func (a FpScanArgs) Columns() []string { return append([]string(nil), a.columns...) }

// FpScanBuilder configures FpScanArgs. See FpWriteBuilder for the validation rules.
type FpScanBuilder struct {
	args FpScanArgs
	set  uint8
	err  *ArgumentError
}

const (
	fpScanDataKey = 1 << iota
	fpScanColumns
)

// NewFpScanArgs returns an empty FPSCAN builder.
func NewFpScanArgs() *FpScanBuilder {
	return &FpScanBuilder{}
}

// FpScanDataKey creates a builder with the data key set.
func FpScanDataKey(dataKey string) *FpScanBuilder {
	return NewFpScanArgs().DataKey(dataKey)
}

// FpScanColumns creates a builder with the columns set.
func FpScanColumns(columns ...string) *FpScanBuilder {
	return NewFpScanArgs().Columns(columns...)
}

func (b *FpScanBuilder) fail(err *ArgumentError) *FpScanBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// DataKey sets the key of the relation data to scan. An empty key is
// rejected as unset.
func (b *FpScanBuilder) DataKey(dataKey string) *FpScanBuilder {
	if dataKey == "" {
		return b.fail(mustNotBeEmpty("dataKey"))
	}
	b.args.dataKey = dataKey
	b.set |= fpScanDataKey
	return b
}

// Columns sets the column identifiers to read, in order.
func (b *FpScanBuilder) Columns(columns ...string) *FpScanBuilder {
	b.args.columns = append(make([]string, 0, len(columns)), columns...)
	b.set |= fpScanColumns
	return b
}

// ColumnList sets the column identifiers from a slice. A nil slice is rejected.
func (b *FpScanBuilder) ColumnList(columns []string) *FpScanBuilder {
	if columns == nil {
		return b.fail(mustNotBeNil("columns"))
	}
	return b.Columns(columns...)
}

// Build validates the configuration and returns the frozen arguments.
func (b *FpScanBuilder) Build() (FpScanArgs, error) {
	if b.err != nil {
		return FpScanArgs{}, b.err
	}
	if b.set&fpScanDataKey == 0 {
		return FpScanArgs{}, mustNotBeEmpty("dataKey")
	}
	if b.set&fpScanColumns == 0 {
		return FpScanArgs{}, mustNotBeNil("columns")
	}

	args := b.args
	args.columns = append([]string(nil), b.args.columns...)
	return args, nil
}

// MustBuild is like Build but panics on error.
func (b *FpScanBuilder) MustBuild() FpScanArgs {
	args, err := b.Build()
	if err != nil {
		panic(err)
	}
	return args
}

// =============================================================================
// METAKEYS
// =============================================================================

// MetakeysArgs are the frozen parameters of METAKEYS.
type MetakeysArgs struct {
	pattern    string
	statements string
}

var _ CompositeArgs = MetakeysArgs{}

func (a MetakeysArgs) Command() resp.CmdType { return resp.CmdMetakeys }

// AppendTo appends: pattern, statements. Both are sent verbatim.
func (a MetakeysArgs) AppendTo(args *resp.Args) {
	args.Add(a.pattern).Add(a.statements)
}

func (a MetakeysArgs) Pattern() string    { return a.pattern }
func (a MetakeysArgs) Statements() string { return a.statements }

// MetakeysBuilder configures MetakeysArgs.
type MetakeysBuilder struct {
	args MetakeysArgs
	set  uint8
	err  *ArgumentError
}

const (
	metakeysPattern = 1 << iota
	metakeysStatements
)

// NewMetakeysArgs returns an empty METAKEYS builder.
func NewMetakeysArgs() *MetakeysBuilder {
	return &MetakeysBuilder{}
}

// MetakeysPattern creates a builder with the key pattern set.
func MetakeysPattern(pattern string) *MetakeysBuilder {
	return NewMetakeysArgs().Pattern(pattern)
}

// MetakeysStatements creates a builder with the predicate statements set.
func MetakeysStatements(statements string) *MetakeysBuilder {
	return NewMetakeysArgs().Statements(statements)
}

func (b *MetakeysBuilder) fail(err *ArgumentError) *MetakeysBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Pattern sets the meta key pattern, e.g. "*". An empty pattern is
// rejected as unset.
func (b *MetakeysBuilder) Pattern(pattern string) *MetakeysBuilder {
	if pattern == "" {
		return b.fail(mustNotBeEmpty("pattern"))
	}
	b.args.pattern = pattern
	b.set |= metakeysPattern
	return b
}

// Statements sets the predicate expression, e.g. "D1*1*EqualTo:$D2*2*EqualTo:$".
// The expression is not parsed; its grammar is the caller's concern.
// An empty expression is rejected as unset.
func (b *MetakeysBuilder) Statements(statements string) *MetakeysBuilder {
	if statements == "" {
		return b.fail(mustNotBeEmpty("statements"))
	}
	b.args.statements = statements
	b.set |= metakeysStatements
	return b
}

// Build validates the configuration and returns the frozen arguments.
func (b *MetakeysBuilder) Build() (MetakeysArgs, error) {
	if b.err != nil {
		return MetakeysArgs{}, b.err
	}
	if b.set&metakeysPattern == 0 {
		return MetakeysArgs{}, mustNotBeEmpty("pattern")
	}
	if b.set&metakeysStatements == 0 {
		return MetakeysArgs{}, mustNotBeEmpty("statements")
	}
	return b.args, nil
}

// MustBuild is like Build but panics on error.
func (b *MetakeysBuilder) MustBuild() MetakeysArgs {
	args, err := b.Build()
	if err != nil {
		panic(err)
	}
	return args
}
