package resp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgs_ZeroValueIsUsable(t *testing.T) {
	var args Args

	args.Add("a").AddInt(7).AddBytes([]byte("b"))

	require.Equal(t, 3, args.Len())
	assert.Equal(t, []string{"a", "7", "b"}, args.Strings())
}

func TestArgs_PreservesOrder(t *testing.T) {
	args := NewArgs(4)
	args.AddStrings("z", "a", "m")
	args.AddInt(0)

	assert.Equal(t, []string{"z", "a", "m", "0"}, args.Strings())
	assert.Equal(t, TokenInt, args.At(3).Kind)
	assert.Equal(t, TokenString, args.At(0).Kind)
}

func TestArgs_TokensReturnsCopy(t *testing.T) {
	args := NewArgs(1)
	args.Add("x")

	tokens := args.Tokens()
	tokens[0].Str = "changed"

	assert.Equal(t, "x", args.At(0).Str)
}

func TestArgs_NilIsEmpty(t *testing.T) {
	var args *Args

	assert.Equal(t, 0, args.Len())
	assert.Nil(t, args.Strings())
	assert.False(t, args.Sealed())
}

func TestArgs_SealedPanicsOnAppend(t *testing.T) {
	args := NewArgs(1)
	args.Add("key")

	NewRequest(CmdFpScan, args)

	assert.True(t, args.Sealed())
	assert.Panics(t, func() { args.Add("more") })
	assert.Panics(t, func() { args.AddInt(1) })
	assert.Equal(t, 1, args.Len())
}

func TestToken_Len(t *testing.T) {
	tests := []struct {
		name string
		tok  Token
		want int
	}{
		{"empty string", Token{Kind: TokenString}, 0},
		{"string", Token{Kind: TokenString, Str: "D:{100:1:2}"}, 11},
		{"zero", Token{Kind: TokenInt, Int: 0}, 1},
		{"positive", Token{Kind: TokenInt, Int: 12345}, 5},
		{"negative", Token{Kind: TokenInt, Int: -42}, 3},
		{"min int64", Token{Kind: TokenInt, Int: math.MinInt64}, 20},
		{"max int64", Token{Kind: TokenInt, Int: math.MaxInt64}, 19},
		{"bytes", Token{Kind: TokenBytes, Bytes: []byte{0, 1, 2}}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tok.Len())
			assert.Len(t, tt.tok.AppendTo(nil), tt.want)
		})
	}
}

func TestRequest_Strings(t *testing.T) {
	args := NewArgs(2)
	args.Add("*").Add("D1*1*EqualTo:$")

	req := NewRequest(CmdMetakeys, args)

	assert.Equal(t, []string{"METAKEYS", "*", "D1*1*EqualTo:$"}, req.Strings())
}

func TestNewRequest_NilArgs(t *testing.T) {
	req := NewRequest(CmdPing, nil)

	require.NotNil(t, req.Args)
	assert.Equal(t, 0, req.Args.Len())
	assert.True(t, req.Args.Sealed())
}
