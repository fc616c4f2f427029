// Package lexer provides lexical analysis for Clausewitz save text.
// It tokenizes key=value / brace-delimited save files into a stream of tokens for the parser.
package lexer

import (
	"fmt"
	"strings"
)

// Lexer tokenizes save file text.
//
// Thread Safety: Lexer instances are NOT thread-safe. Each goroutine must
// create its own Lexer instance via New().
type Lexer struct {
	source  string     // Source text to tokenize
	start   int        // Start position of current token
	current int        // Current position in source
	line    int        // Current line number (1-indexed)
	column  int        // Current column number (1-indexed)
	tokens  []Token    // Collected tokens
	errors  []LexError // Collected errors
}

// New creates a new Lexer for the given source text
func New(source string) *Lexer {
	return &Lexer{
		source:  source,
		start:   0,
		current: 0,
		line:    1,
		column:  1,
		tokens:  make([]Token, 0, len(source)/4),
		errors:  make([]LexError, 0),
	}
}

// ScanTokens tokenizes the entire source and returns tokens and errors
func (l *Lexer) ScanTokens() ([]Token, []LexError) {
	for !l.isAtEnd() {
		l.start = l.current
		l.scanToken()
	}

	l.tokens = append(l.tokens, Token{
		Type:   TOKEN_EOF,
		Lexeme: "",
		Offset: l.current,
		Line:   l.line,
		Column: l.column,
	})

	return l.tokens, l.errors
}

// scanToken processes the next token
func (l *Lexer) scanToken() {
	c := l.advance()

	switch {
	case c == '{':
		l.addToken(TOKEN_LBRACE)
	case c == '}':
		l.addToken(TOKEN_RBRACE)
	case c == '=':
		l.addToken(TOKEN_EQUALS)
	case c == '"':
		l.string()
	case c == '#':
		l.comment()
	case c == '\n':
		l.line++
		l.column = 1
	case isSpace(c):
		// Ignore whitespace
	default:
		l.bare()
	}
}

// comment skips a # comment up to the end of the line
func (l *Lexer) comment() {
	for l.peek() != '\n' && !l.isAtEnd() {
		l.advance()
	}
}

// string handles quoted literals with \" and \\ escapes
func (l *Lexer) string() {
	startLine := l.line
	startColumn := l.column - 1
	value := strings.Builder{}

	for !l.isAtEnd() && l.peek() != '"' {
		switch l.peek() {
		case '\\':
			l.advance()
			if l.isAtEnd() {
				break
			}
			escaped := l.advance()
			switch escaped {
			case '"', '\\':
				value.WriteByte(escaped)
			default:
				// Unknown escape sequence - keep as-is
				value.WriteByte('\\')
				value.WriteByte(escaped)
			}
		case '\n':
			value.WriteByte('\n')
			l.advance()
			l.line++
			l.column = 1
		default:
			value.WriteByte(l.advance())
		}
	}

	if l.isAtEnd() {
		l.errors = append(l.errors, LexError{
			Message: fmt.Sprintf("Unterminated string starting at %d:%d", startLine, startColumn),
			Offset:  l.start,
			Line:    startLine,
			Column:  startColumn,
		})
		return
	}

	// Consume closing "
	l.advance()

	l.tokens = append(l.tokens, Token{
		Type:    TOKEN_STRING_LITERAL,
		Lexeme:  l.source[l.start:l.current],
		Literal: value.String(),
		Offset:  l.start,
		Line:    startLine,
		Column:  startColumn,
	})
}

// bare consumes an unquoted word. Classification into bool/int/float/identifier
// is left to the parser.
func (l *Lexer) bare() {
	for !l.isAtEnd() && !isDelimiter(l.peek()) {
		l.advance()
	}
	l.addToken(TOKEN_BARE)
}

// Helper methods

// isAtEnd checks if we've reached the end of the source
func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

// advance consumes and returns the current character
func (l *Lexer) advance() byte {
	if l.isAtEnd() {
		return 0
	}
	c := l.source[l.current]
	l.current++
	l.column++
	return c
}

// peek returns the current character without consuming it
func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.current]
}

// addToken adds a token with the current lexeme
func (l *Lexer) addToken(tokenType TokenType) {
	l.tokens = append(l.tokens, Token{
		Type:   tokenType,
		Lexeme: l.source[l.start:l.current],
		Offset: l.start,
		Line:   l.line,
		Column: l.column - (l.current - l.start),
	})
}

// isSpace reports whitespace other than newline
func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v'
}

// isDelimiter reports characters that terminate a bare word
func isDelimiter(c byte) bool {
	return isSpace(c) || c == '\n' || c == '{' || c == '}' || c == '=' || c == '"' || c == '#'
}
