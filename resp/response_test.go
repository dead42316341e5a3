package resp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse_Text(t *testing.T) {
	tests := []struct {
		name    string
		resp    *Response
		want    string
		wantErr bool
	}{
		{"simple string", &Response{Kind: KindSimpleString, Str: "OK"}, "OK", false},
		{"bulk", bulk("D1"), "D1", false},
		{"integer", &Response{Kind: KindInteger, Int: 3}, "3", false},
		{"null bulk", &Response{Kind: KindBulkString, Null: true}, "", true},
		{"array", &Response{Kind: KindArray}, "", true},
		{"error", &Response{Kind: KindError, Error: &ServerError{Message: "boom"}}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.resp.Text()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResponse_TextNullIsErrNilReply(t *testing.T) {
	_, err := (&Response{Kind: KindBulkString, Null: true}).Text()

	assert.True(t, errors.Is(err, ErrNilReply))
}

func TestResponse_Strings(t *testing.T) {
	resp := &Response{Kind: KindArray, Array: []*Response{
		bulk("D1"),
		{Kind: KindBulkString, Null: true},
		{Kind: KindSimpleString, Str: "D3"},
	}}

	got, err := resp.Strings()

	require.NoError(t, err)
	assert.Equal(t, []string{"D1", "", "D3"}, got)
}

func TestResponse_StringsNullArray(t *testing.T) {
	got, err := (&Response{Kind: KindArray, Null: true}).Strings()

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestResponse_StringsWrongKind(t *testing.T) {
	_, err := (&Response{Kind: KindSimpleString, Str: "OK"}).Strings()

	assert.ErrorContains(t, err, "simple-string")
}

func TestResponse_StringsNestedError(t *testing.T) {
	resp := &Response{Kind: KindArray, Array: []*Response{
		{Kind: KindError, Error: &ServerError{Prefix: "ERR", Message: "bad"}},
	}}

	_, err := resp.Strings()

	var serverErr *ServerError
	assert.ErrorAs(t, err, &serverErr)
}

func TestResponse_IsOK(t *testing.T) {
	assert.True(t, (&Response{Kind: KindSimpleString, Str: "OK"}).IsOK())
	assert.False(t, (&Response{Kind: KindSimpleString, Str: "PONG"}).IsOK())
	assert.False(t, bulk("OK").IsOK())
}

func TestShouldCloseConnection(t *testing.T) {
	assert.False(t, ShouldCloseConnection(nil))
	assert.False(t, ShouldCloseConnection(&ServerError{Message: "x"}))
	assert.True(t, ShouldCloseConnection(&ParseError{Message: "x"}))
	assert.True(t, ShouldCloseConnection(&ConnectionError{Op: "write", Err: errors.New("x")}))
	assert.True(t, ShouldCloseConnection(errors.New("unknown")))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "array", KindArray.String())
	assert.Equal(t, "unknown(?)", Kind('?').String())
}
