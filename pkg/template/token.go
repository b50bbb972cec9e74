package template

import (
	"fmt"
	"strings"
)

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of the token stream

	LBRACE     // {{
	RBRACE     // }}
	TEXT       // literal template text
	IDENTIFIER // macro name or argument inside a brace pair
)

var tokenNames = [...]string{
	EOF:        "EOF",
	LBRACE:     "LBRACE",
	RBRACE:     "RBRACE",
	TEXT:       "TEXT",
	IDENTIFIER: "IDENTIFIER",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit produced by one of the lexers.
type Token struct {
	Type  TokenType
	Value string // matched text; quoted identifiers have their quotes removed
	Line  int    // 1-based line on which the token starts
}

func (t Token) String() string {
	return fmt.Sprintf("'%s'", strings.ReplaceAll(t.Value, "\n", `\n`))
}
