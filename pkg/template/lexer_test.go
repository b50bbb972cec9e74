package template

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestLexOuter(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		commentAware bool
		expected     []Token
	}{
		{
			name:     "Empty",
			input:    "",
			expected: nil,
		},
		{
			name:  "Braces And Text",
			input: "int x;{{fn foo}}\n}}{",
			expected: []Token{
				{Type: TEXT, Value: "int x;", Line: 1},
				{Type: LBRACE, Value: "{{", Line: 1},
				{Type: TEXT, Value: "fn foo", Line: 1},
				{Type: RBRACE, Value: "}}", Line: 1},
				{Type: TEXT, Value: "\n", Line: 1},
				{Type: RBRACE, Value: "}}", Line: 2},
				{Type: TEXT, Value: "{", Line: 2},
			},
		},
		{
			name:  "Single Braces Are Text",
			input: "if (a) { b(); }",
			expected: []Token{
				{Type: TEXT, Value: "if (a) { b(); }", Line: 1},
			},
		},
		{
			name:         "Comments Hide Braces",
			input:        "/* {{x}} */ int a; // {{y}}\n{{z}}",
			commentAware: true,
			expected: []Token{
				{Type: TEXT, Value: "/* {{x}} */", Line: 1},
				{Type: TEXT, Value: " int a; ", Line: 1},
				{Type: TEXT, Value: "// {{y}}", Line: 1},
				{Type: TEXT, Value: "\n", Line: 1},
				{Type: LBRACE, Value: "{{", Line: 2},
				{Type: TEXT, Value: "z", Line: 2},
				{Type: RBRACE, Value: "}}", Line: 2},
			},
		},
		{
			name:  "Comments Ignored Without Comment Awareness",
			input: "/* {{x}} */ // {{y}}\n",
			expected: []Token{
				{Type: TEXT, Value: "/* ", Line: 1},
				{Type: LBRACE, Value: "{{", Line: 1},
				{Type: TEXT, Value: "x", Line: 1},
				{Type: RBRACE, Value: "}}", Line: 1},
				{Type: TEXT, Value: " */ // ", Line: 1},
				{Type: LBRACE, Value: "{{", Line: 1},
				{Type: TEXT, Value: "y", Line: 1},
				{Type: RBRACE, Value: "}}", Line: 1},
				{Type: TEXT, Value: "\n", Line: 1},
			},
		},
		{
			name:         "Multiline Block Comment",
			input:        "/* a\n b */\nx / y",
			commentAware: true,
			expected: []Token{
				{Type: TEXT, Value: "/* a\n b */", Line: 1},
				{Type: TEXT, Value: "\nx / y", Line: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := LexOuter(tt.input, tt.commentAware)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.expected, tokens); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLexOuterErrors(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		line      int
		remainder string
	}{
		{"Line Comment At End Of Input", "int a; // trailing", 1, "// trailing"},
		{"Unterminated Block Comment", "a\nb\n/* open {{x}}", 3, "/* open {{x}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LexOuter(tt.input, true)
			var lerr *LexError
			require.True(t, errors.As(err, &lerr))
			require.Equal(t, tt.line, lerr.Line)
			require.Equal(t, tt.remainder, lerr.Remainder)
			require.Contains(t, err.Error(), "unlexable input")

			// The same text is plain literal text without comment awareness.
			_, err = LexOuter(tt.input, false)
			require.NoError(t, err)
		})
	}
}

func TestLexInner(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"Words", "fn fn_name MPI_Send MPI_Recv?", []string{"fn", "fn_name", "MPI_Send", "MPI_Recv?"}},
		{"Quoted Spans", `sub "a b" 'c\'d' x`, []string{"sub", "a b", `c\'d`, "x"}},
		{"Empty Quotes", `"" a`, []string{"", "a"}},
		{"Unterminated Quote", `"open x`, []string{`"open`, "x"}},
		{"Surrounding Whitespace", "\n\t sub \n", []string{"sub"}},
		{"Regex Characters", `filter ^MPI_(Send|Recv)$ names`, []string{"filter", "^MPI_(Send|Recv)$", "names"}},
		{"Braces Inside A Word", "a{{b", []string{"a{{b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := LexInner(tt.input, 1)
			require.NoError(t, err)
			var values []string
			for _, tok := range tokens {
				require.Equal(t, IDENTIFIER, tok.Type)
				values = append(values, tok.Value)
			}
			require.Equal(t, tt.expected, values)
		})
	}
}

func TestLexInnerBracesAndLines(t *testing.T) {
	tokens, err := LexInner("a\n {{ b }}\n'c\nd'", 5)
	require.NoError(t, err)
	expected := []Token{
		{Type: IDENTIFIER, Value: "a", Line: 5},
		{Type: LBRACE, Value: "{{", Line: 6},
		{Type: IDENTIFIER, Value: "b", Line: 6},
		{Type: RBRACE, Value: "}}", Line: 6},
		{Type: IDENTIFIER, Value: "c\nd", Line: 7},
	}
	if diff := cmp.Diff(expected, tokens); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenString(t *testing.T) {
	require.Equal(t, `'a\nb'`, Token{Type: TEXT, Value: "a\nb"}.String())
	require.Equal(t, "IDENTIFIER", IDENTIFIER.String())
	require.Equal(t, "TokenType(42)", TokenType(42).String())
}
