package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// ErrSourceUnavailable is returned when the declaration text could not be
// produced, or contained no recognizable declarations.
var ErrSourceUnavailable = errors.New("declaration source unavailable")

// Error reports malformed declaration text.
type Error struct {
	Line     int    // line on which the declaration started
	Function string // function being parsed, if known
	Msg      string
}

func (e *Error) Error() string {
	if e.Function != "" {
		return fmt.Sprintf("line %d: %s in %s", e.Line, e.Msg, e.Function)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

var (
	beginDeclRE = regexp.MustCompile(`(` + strings.Join(returnTypes, "|") + `)\s+(MPI_\w+)\s*\(`)
	excludeRE   = regexp.MustCompile(strings.Join(excludeStrings, "|"))
	endDeclRE   = regexp.MustCompile(`\).*;`)

	// formalRE splits a parameter into type, pointers, name and array
	// suffix. The array suffix is greedy so every dimension is kept.
	formalRE = regexp.MustCompile(`^\s*((?:const)?\s*\w+)\s*((?:\s*\*(?:\s*const)?)*)\s*(?:(\w+)\s*)?(\[.*\])?\s*$`)

	// funcPtrRE matches "rtype (*name)(params)".
	funcPtrRE = regexp.MustCompile(`^\s*((?:const)?\s*\w+)\s*\(\s*(\*+)\s*(\w+)?\s*\)\s*(\(.*\))\s*$`)
)

// maxLine bounds a single physical line of preprocessor output.
const maxLine = 1 << 20

// Build reads preprocessed declaration text and returns the catalog of
// every accepted declaration. A declaration may span several lines; it ends
// at the first line containing a close paren followed by a semicolon.
func Build(r io.Reader) (*Catalog, error) {
	c := New()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())

		m := beginDeclRE.FindStringSubmatch(line)
		if m == nil || excludeRE.MatchString(line) {
			continue
		}
		rtype, name := m[1], m[2]
		start := lineNo

		for !endDeclRE.MatchString(line) {
			if !sc.Scan() {
				if err := sc.Err(); err != nil {
					return nil, err
				}
				return nil, &Error{Line: start, Function: name, Msg: "unterminated declaration"}
			}
			lineNo++
			line += " " + strings.TrimSpace(sc.Text())
		}

		decl, err := parseDeclaration(rtype, name, line)
		if err != nil {
			var cerr *Error
			if errors.As(err, &cerr) {
				cerr.Line = start
			}
			return nil, err
		}
		c.Add(decl)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load is Build, failing with ErrSourceUnavailable when nothing was found.
func Load(r io.Reader) (*Catalog, error) {
	c, err := Build(r)
	if err != nil {
		return nil, err
	}
	if c.Len() == 0 {
		return nil, fmt.Errorf("%w: found no declarations", ErrSourceUnavailable)
	}
	return c, nil
}

func parseDeclaration(rtype, name, text string) (*Declaration, error) {
	loc := regexp.MustCompile(regexp.QuoteMeta(name) + `\s*\(`).FindStringIndex(text)
	if loc == nil {
		return nil, &Error{Function: name, Msg: "missing argument list"}
	}
	lparen := loc[1] - 1
	rparen := findMatchingParen(text, lparen)
	if rparen < 0 {
		return nil, &Error{Function: name, Msg: fmt.Sprintf("malformed declaration %q", text)}
	}

	fragments := splitTopLevel(text[lparen+1 : rparen])
	if len(fragments) == 1 && (fragments[0] == "void" || fragments[0] == "") {
		fragments = nil
	}

	decl := &Declaration{RetType: rtype, Name: name}
	for pos, frag := range fragments {
		p, err := parseParam(frag, pos)
		if err != nil {
			return nil, &Error{Function: name, Msg: err.Error()}
		}
		decl.Params = append(decl.Params, p)
	}
	return decl, nil
}

// parseParam matches one argument fragment against the formal-parameter grammar.
func parseParam(frag string, pos int) (Param, error) {
	if frag == ellipsis {
		return Param{Name: ellipsis, Pos: pos}, nil
	}

	var p Param
	if m := formalRE.FindStringSubmatch(frag); m != nil {
		p = Param{Type: strings.TrimSpace(m[1]), Pointers: m[2], Name: m[3], Array: m[4], Pos: pos}
	} else if m := funcPtrRE.FindStringSubmatch(frag); m != nil {
		p = Param{Type: strings.TrimSpace(m[1]), Pointers: "(" + m[2], Name: m[3], Array: ")" + m[4], Pos: pos}
	} else {
		return Param{}, fmt.Errorf("parameter %q does not match the formal parameter grammar", frag)
	}

	if p.Name == "" {
		p.Name = "arg_" + strconv.Itoa(pos)
	}
	return p, nil
}

// findMatchingParen returns the index of the paren closing the one at
// index, or -1 if it is never closed.
func findMatchingParen(s string, index int) int {
	depth := 0
	for i := index; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits s on commas that are not nested inside parens or
// brackets, trimming each fragment.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}
