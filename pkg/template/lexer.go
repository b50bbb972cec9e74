package template

import (
	"fmt"
	"unicode"
)

// LexError reports input that none of a lexer's rules could consume.
type LexError struct {
	Line      int
	Remainder string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("line %d: unlexable input:\n%s", e.Line, e.Remainder)
}

// rule is one entry of a lexer's ordered rule list. match returns how many
// runes it accepts at the current position, or 0 for no match. The first
// rule that matches wins.
type rule struct {
	typ   TokenType
	match func(l *Lexer) int
	value func(lexeme string) string // optional rewrite of the matched text
	skip  bool                       // consume without producing a token
}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src   []rune
	pos   int // index of the next rune to consume
	line  int // current 1-based source line
	rules []rule
}

func newLexer(src string, line int, rules []rule) *Lexer {
	return &Lexer{src: []rune(src), line: line, rules: rules}
}

// at returns the rune i positions past the current one, or 0 past the end.
func (l *Lexer) at(i int) rune {
	if l.pos+i >= len(l.src) {
		return 0
	}
	return l.src[l.pos+i]
}

// more reports whether a rune exists i positions past the current one.
func (l *Lexer) more(i int) bool {
	return l.pos+i < len(l.src)
}

// advance consumes n runes, counting newlines.
func (l *Lexer) advance(n int) {
	for ; n > 0 && l.pos < len(l.src); n-- {
		if l.src[l.pos] == '\n' {
			l.line++
		}
		l.pos++
	}
}

func (l *Lexer) lex() ([]Token, error) {
	var tokens []Token
	for l.pos < len(l.src) {
		matched := false
		for _, r := range l.rules {
			n := r.match(l)
			if n == 0 {
				continue
			}
			matched = true
			lexeme := string(l.src[l.pos : l.pos+n])
			if !r.skip {
				if r.value != nil {
					lexeme = r.value(lexeme)
				}
				tokens = append(tokens, Token{Type: r.typ, Value: lexeme, Line: l.line})
			}
			l.advance(n)
			break
		}
		if !matched {
			return tokens, &LexError{Line: l.line, Remainder: string(l.src[l.pos:])}
		}
	}
	return tokens, nil
}

func matchLiteral(lit string) func(l *Lexer) int {
	runes := []rune(lit)
	return func(l *Lexer) int {
		for i, r := range runes {
			if !l.more(i) || l.at(i) != r {
				return 0
			}
		}
		return len(runes)
	}
}

// matchPlainText accepts a run of text containing no "{{" or "}}". A lone
// brace is literal text.
func matchPlainText(l *Lexer) int {
	n := 0
	for l.more(n) {
		r := l.at(n)
		if (r == '{' || r == '}') && l.at(n+1) == r {
			break
		}
		n++
	}
	return n
}

// matchCodeText is matchPlainText that also stops in front of a C comment.
func matchCodeText(l *Lexer) int {
	n := 0
	for l.more(n) {
		r := l.at(n)
		if (r == '{' || r == '}') && l.at(n+1) == r {
			break
		}
		if r == '/' && (l.at(n+1) == '/' || l.at(n+1) == '*') {
			break
		}
		n++
	}
	return n
}

// matchBlockComment accepts a complete /* ... */ comment.
func matchBlockComment(l *Lexer) int {
	if l.at(0) != '/' || l.at(1) != '*' {
		return 0
	}
	for n := 2; l.more(n + 1); n++ {
		if l.at(n) == '*' && l.at(n+1) == '/' {
			return n + 2
		}
	}
	return 0
}

// matchLineComment accepts // up to, not including, the end of the line. A
// line comment must be followed by a line break.
func matchLineComment(l *Lexer) int {
	if l.at(0) != '/' || l.at(1) != '/' {
		return 0
	}
	for n := 2; l.more(n); n++ {
		if r := l.at(n); r == '\n' || r == '\r' {
			return n
		}
	}
	return 0
}

// matchQuoted accepts a span enclosed in matching single or double quotes.
// A backslash escapes the following character, which is kept as written.
func matchQuoted(l *Lexer) int {
	q := l.at(0)
	if q != '"' && q != '\'' {
		return 0
	}
	for n := 1; l.more(n); n++ {
		switch l.at(n) {
		case q:
			return n + 1
		case '\\':
			if !l.more(n+1) || l.at(n+1) == '\n' {
				return 0
			}
			n++
		}
	}
	return 0
}

func matchWord(l *Lexer) int {
	n := 0
	for l.more(n) && !unicode.IsSpace(l.at(n)) {
		n++
	}
	return n
}

func matchSpace(l *Lexer) int {
	n := 0
	for l.more(n) && unicode.IsSpace(l.at(n)) {
		n++
	}
	return n
}

func unquote(s string) string {
	return s[1 : len(s)-1]
}

var (
	outerRules = []rule{
		{typ: LBRACE, match: matchLiteral("{{")},
		{typ: RBRACE, match: matchLiteral("}}")},
		{typ: TEXT, match: matchPlainText},
	}

	// Comments are taken whole before braces are considered, so braces
	// inside commented-out C code stay literal.
	commentRules = []rule{
		{typ: TEXT, match: matchBlockComment},
		{typ: TEXT, match: matchLineComment},
		{typ: LBRACE, match: matchLiteral("{{")},
		{typ: RBRACE, match: matchLiteral("}}")},
		{typ: TEXT, match: matchCodeText},
	}

	innerRules = []rule{
		{typ: LBRACE, match: matchLiteral("{{")},
		{typ: RBRACE, match: matchLiteral("}}")},
		{typ: IDENTIFIER, match: matchQuoted, value: unquote},
		{typ: IDENTIFIER, match: matchWord},
		{match: matchSpace, skip: true},
	}
)

// LexOuter tokenizes a whole template into TEXT, LBRACE and RBRACE tokens.
// With commentAware set, C block and line comments are always TEXT.
func LexOuter(src string, commentAware bool) ([]Token, error) {
	rules := outerRules
	if commentAware {
		rules = commentRules
	}
	return newLexer(src, 1, rules).lex()
}

// LexInner tokenizes the text inside a brace pair, which starts on line.
func LexInner(src string, line int) ([]Token, error) {
	return newLexer(src, line, innerRules).lex()
}
