package resp

import (
	"strconv"
)

// TokenKind is the type of a single argument token.
type TokenKind uint8

const (
	TokenString TokenKind = iota
	TokenInt
	TokenBytes
)

// Token is one positional argument of a command.
// Exactly one of Str, Int or Bytes is meaningful, according to Kind.
type Token struct {
	Kind  TokenKind
	Str   string
	Int   int64
	Bytes []byte
}

// AppendTo appends the wire representation of the token to dst.
// Integers are encoded in decimal.
func (t Token) AppendTo(dst []byte) []byte {
	switch t.Kind {
	case TokenInt:
		return strconv.AppendInt(dst, t.Int, 10)
	case TokenBytes:
		return append(dst, t.Bytes...)
	default:
		return append(dst, t.Str...)
	}
}

// Len returns the encoded length of the token in bytes.
func (t Token) Len() int {
	switch t.Kind {
	case TokenInt:
		return intLen(t.Int)
	case TokenBytes:
		return len(t.Bytes)
	default:
		return len(t.Str)
	}
}

// String returns the token as text.
func (t Token) String() string {
	switch t.Kind {
	case TokenInt:
		return strconv.FormatInt(t.Int, 10)
	case TokenBytes:
		return string(t.Bytes)
	default:
		return t.Str
	}
}

func intLen(v int64) int {
	n := 1
	if v < 0 {
		n++
		if v == -v { // math.MinInt64
			return 20
		}
		v = -v
	}
	for v >= 10 {
		v /= 10
		n++
	}
	return n
}

// Args is the ordered argument sequence of one command invocation.
//
// Order is significant: each position carries protocol meaning. Tokens can
// only be appended. An Args is populated once, then handed to NewRequest,
// which seals it; appending to a sealed Args panics.
//
// The zero value is ready to use. Args is not safe for concurrent mutation.
type Args struct {
	tokens []Token
	sealed bool
}

// NewArgs returns an empty Args with room for n tokens.
func NewArgs(n int) *Args {
	return &Args{tokens: make([]Token, 0, n)}
}

func (a *Args) push(t Token) *Args {
	if a.sealed {
		panic("resp: Args modified after hand-off")
	}
	a.tokens = append(a.tokens, t)
	return a
}

// Add appends a string token.
func (a *Args) Add(s string) *Args { return a.push(Token{Kind: TokenString, Str: s}) }

// AddInt appends an integer token.
func (a *Args) AddInt(v int64) *Args { return a.push(Token{Kind: TokenInt, Int: v}) }

// AddBytes appends a raw bytes token. The slice is not copied.
func (a *Args) AddBytes(b []byte) *Args { return a.push(Token{Kind: TokenBytes, Bytes: b}) }

// AddStrings appends one string token per element, in order.
func (a *Args) AddStrings(values ...string) *Args {
	for _, v := range values {
		a.Add(v)
	}
	return a
}

// Len returns the number of tokens.
func (a *Args) Len() int {
	if a == nil {
		return 0
	}
	return len(a.tokens)
}

// At returns the token at position i.
func (a *Args) At(i int) Token {
	return a.tokens[i]
}

// Tokens returns a copy of the tokens.
func (a *Args) Tokens() []Token {
	if a == nil {
		return nil
	}
	return append([]Token(nil), a.tokens...)
}

// Strings returns the tokens as text, in order.
func (a *Args) Strings() []string {
	if a == nil {
		return nil
	}
	out := make([]string, len(a.tokens))
	for i, t := range a.tokens {
		out[i] = t.String()
	}
	return out
}

// Sealed reports whether the Args was handed off.
func (a *Args) Sealed() bool {
	return a != nil && a.sealed
}

func (a *Args) seal() {
	a.sealed = true
}
