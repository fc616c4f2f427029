// Package parser implements the save file parser, transforming token streams into document trees.
// Parsing is recursive descent; malformed input aborts with a *ParseError and no tree.
package parser

import (
	"fmt"

	"github.com/savegen/savegen/internal/compiler/lexer"
)

// ParseError represents an error encountered during lexing or parsing
type ParseError struct {
	Message string
	Offset  int // Byte offset into the decoded text
	Line    int
	Column  int
	Near    string
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Near != "" {
		return fmt.Sprintf("Parse error at %d:%d (offset %d): %s (near '%s')",
			e.Line, e.Column, e.Offset, e.Message, e.Near)
	}
	return fmt.Sprintf("Parse error at %d:%d (offset %d): %s",
		e.Line, e.Column, e.Offset, e.Message)
}

// NewParseError creates a new parse error positioned at token
func NewParseError(message string, token lexer.Token) *ParseError {
	return &ParseError{
		Message: message,
		Offset:  token.Offset,
		Line:    token.Line,
		Column:  token.Column,
		Near:    token.Lexeme,
	}
}

// fromLexError converts a lexical error into a parse error
func fromLexError(err lexer.LexError) *ParseError {
	return &ParseError{
		Message: err.Message,
		Offset:  err.Offset,
		Line:    err.Line,
		Column:  err.Column,
	}
}
