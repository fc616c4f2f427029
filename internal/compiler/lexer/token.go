package lexer

import "fmt"

// TokenType represents the type of a token in a save file
type TokenType int

const (
	// TOKEN_EOF marks the end of the token stream.
	TOKEN_EOF TokenType = iota
	// TOKEN_ERROR represents a lexical error encountered during scanning.
	TOKEN_ERROR

	// Delimiters
	TOKEN_LBRACE // {
	TOKEN_RBRACE // }
	TOKEN_EQUALS // =

	// Literals
	TOKEN_STRING_LITERAL // "quoted text"
	TOKEN_BARE           // unquoted word: yes, 42, -1.5, country_tag, etc.
)

// TokenTypeNames maps token types to their string representations
var TokenTypeNames = map[TokenType]string{
	TOKEN_EOF:            "EOF",
	TOKEN_ERROR:          "ERROR",
	TOKEN_LBRACE:         "LBRACE",
	TOKEN_RBRACE:         "RBRACE",
	TOKEN_EQUALS:         "EQUALS",
	TOKEN_STRING_LITERAL: "STRING_LITERAL",
	TOKEN_BARE:           "BARE",
}

// String returns the string representation of a TokenType
func (t TokenType) String() string {
	if name, ok := TokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", t)
}

// Token represents a single lexical token in save file text
type Token struct {
	Type    TokenType // The type of the token
	Lexeme  string    // The raw text of the token
	Literal string    // Unescaped content (quoted strings only)
	Offset  int       // Byte offset of the first character
	Line    int       // Line number (1-indexed)
	Column  int       // Column number (1-indexed)
}

// Text returns the token's value text: the unescaped content for quoted
// strings, the lexeme otherwise.
func (t Token) Text() string {
	if t.Type == TOKEN_STRING_LITERAL {
		return t.Literal
	}
	return t.Lexeme
}

// IsValue reports whether the token can start a key or a scalar value
func (t Token) IsValue() bool {
	return t.Type == TOKEN_STRING_LITERAL || t.Type == TOKEN_BARE
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("%s '%s' at %d:%d", t.Type.String(), t.Lexeme, t.Line, t.Column)
}

// LexError represents a lexical error with its position
type LexError struct {
	Message string
	Offset  int
	Line    int
	Column  int
}

// Error implements the error interface
func (e LexError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}
