package template

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports a template that lexed cleanly but does not follow the
// macro grammar.
type ParseError struct {
	Line    int
	Msg     string
	Snippet string // trimmed source line, when available
}

func (e *ParseError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("line %d: %s\n  |> %s", e.Line, e.Msg, e.Snippet)
}

// Parser is a recursive-descent parser over the outer token stream. Text
// found inside a brace pair is re-lexed with the inner lexer and pushed in
// front of the remaining tokens, so the two token languages interleave.
type Parser struct {
	tokens      []Token
	pos         int
	tok         Token // last accepted token
	isBody      func(name string) bool
	sourceLines []string
}

// NewParser returns a parser over tokens. isBody reports whether a macro
// name owns a body closed by end<name>; it may be nil.
func NewParser(tokens []Token, isBody func(name string) bool, rawSource string) *Parser {
	if isBody == nil {
		isBody = func(string) bool { return false }
	}
	return &Parser{tokens: tokens, isBody: isBody, sourceLines: strings.Split(rawSource, "\n")}
}

// fmtError wraps an error message with the source line where the token appears.
func (p *Parser) fmtError(line int, format string, args ...any) error {
	err := &ParseError{Line: line, Msg: fmt.Sprintf(format, args...)}
	if line >= 1 && line <= len(p.sourceLines) {
		err.Snippet = strings.TrimSpace(p.sourceLines[line-1])
	}
	return err
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF, Line: p.tok.Line}
	}
	return p.tokens[p.pos]
}

// accept consumes the current token into p.tok if it has type tt.
func (p *Parser) accept(tt TokenType) bool {
	if p.peek().Type != tt {
		return false
	}
	p.tok = p.tokens[p.pos]
	p.pos++
	return true
}

// expect is accept that fails on any other token.
func (p *Parser) expect(tt TokenType) error {
	if p.accept(tt) {
		return nil
	}
	return p.unexpected()
}

func (p *Parser) unexpected() error {
	next := p.peek()
	if next.Type == EOF {
		return p.fmtError(next.Line, "unexpected end of file")
	}
	return p.fmtError(next.Line, "unexpected token: %s", next)
}

// push inserts tokens in front of the unconsumed remainder.
func (p *Parser) push(tokens []Token) {
	rest := p.tokens[p.pos:]
	p.tokens = append(append(make([]Token, 0, len(tokens)+len(rest)), tokens...), rest...)
	p.pos = 0
}

// relex re-lexes the last accepted TEXT token as macro language.
func (p *Parser) relex() error {
	tokens, err := LexInner(p.tok.Value, p.tok.Line)
	if err != nil {
		return err
	}
	p.push(tokens)
	return nil
}

// macro parses one invocation after its opening "{{", through its "}}".
// Nested invocations are arguments and may not own a body.
func (p *Parser) macro(acceptBody bool) (*Chunk, error) {
	if p.accept(TEXT) {
		if err := p.relex(); err != nil {
			return nil, err
		}
	}

	if err := p.expect(IDENTIFIER); err != nil {
		return nil, err
	}
	chunk := &Chunk{Macro: p.tok.Value, Line: p.tok.Line}
	if !acceptBody && p.isBody(chunk.Macro) {
		return nil, p.fmtError(chunk.Line, "cannot use body macros in expression context: '%s'", chunk.Macro)
	}

	for {
		switch {
		case p.accept(LBRACE):
			arg, err := p.macro(false)
			if err != nil {
				return nil, err
			}
			chunk.Args = append(chunk.Args, Arg{Chunk: arg})
		case p.accept(IDENTIFIER):
			chunk.Args = append(chunk.Args, Arg{Literal: p.tok.Value})
		case p.accept(TEXT):
			if err := p.relex(); err != nil {
				return nil, err
			}
		default:
			if err := p.expect(RBRACE); err != nil {
				return nil, err
			}
			return chunk, nil
		}
	}
}

// isIndex reports whether name is a number usable as a list index.
func isIndex(name string) bool {
	_, err := strconv.Atoi(name)
	return err == nil
}

// text parses a sequence of chunks. When open is non-nil, the sequence is
// the body of open and must be closed by end<open.Macro>.
func (p *Parser) text(open *Chunk) ([]*Chunk, error) {
	var end string
	if open != nil {
		end = "end" + open.Macro
	}

	var chunks []*Chunk
	for p.peek().Type != EOF {
		switch {
		case p.accept(TEXT):
			chunks = append(chunks, &Chunk{Text: p.tok.Value, Line: p.tok.Line})
		case p.accept(LBRACE):
			chunk, err := p.macro(true)
			if err != nil {
				return nil, err
			}
			name := chunk.Macro

			switch {
			case open != nil && name == end:
				return chunks, nil
			case isIndex(name):
				// {{N}} indexes the implicit args list.
				chunk.Macro = "args"
				chunk.Args = []Arg{{Literal: name}}
			case p.isBody(name):
				if chunk.Children, err = p.text(chunk); err != nil {
					return nil, err
				}
			}
			chunks = append(chunks, chunk)
		default:
			return nil, p.unexpected()
		}
	}

	if open != nil {
		return nil, p.fmtError(open.Line, "missing {{%s}} for '%s'", end, open.Macro)
	}
	return chunks, nil
}

// Parse parses tokens as a complete template.
func (p *Parser) Parse() ([]*Chunk, error) {
	return p.text(nil)
}

// Parse lexes and parses a template. With commentAware set, C comments in
// the outer text are never scanned for braces.
func Parse(src string, isBody func(name string) bool, commentAware bool) ([]*Chunk, error) {
	tokens, err := LexOuter(src, commentAware)
	if err != nil {
		return nil, err
	}
	return NewParser(tokens, isBody, src).Parse()
}
