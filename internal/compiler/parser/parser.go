package parser

import (
	"fmt"

	"github.com/savegen/savegen/internal/compiler/ast"
	"github.com/savegen/savegen/internal/compiler/lexer"
	"github.com/savegen/savegen/internal/compiler/source"
)

// Parser transforms a stream of tokens into a document tree
type Parser struct {
	tokens  []lexer.Token
	current int
}

// New creates a new parser for the given token stream
func New(tokens []lexer.Token) *Parser {
	return &Parser{
		tokens:  tokens,
		current: 0,
	}
}

// Parse lexes and parses save text into a document
func Parse(text string) (*ast.Document, error) {
	tokens, lexErrors := lexer.New(text).ScanTokens()
	if len(lexErrors) > 0 {
		return nil, fromLexError(lexErrors[0])
	}
	return New(tokens).ParseDocument()
}

// ParseBytes decodes raw file bytes (UTF-8, UTF-16 or Windows-1252) and parses them
func ParseBytes(data []byte) (*ast.Document, error) {
	text, err := source.Decode(data)
	if err != nil {
		return nil, err
	}
	return Parse(text)
}

// ParseDocument parses the token stream as a top-level sequence of key=value pairs
func (p *Parser) ParseDocument() (*ast.Document, error) {
	root := &ast.Object{Properties: make([]ast.Property, 0)}

	for !p.isAtEnd() {
		if p.check(lexer.TOKEN_RBRACE) {
			return nil, NewParseError("Unbalanced braces: unexpected '}' at top level", p.peek())
		}

		prop, err := p.parseProperty()
		if err != nil {
			return nil, err
		}
		root.Properties = append(root.Properties, prop)
	}

	return &ast.Document{Root: root}, nil
}

// parseProperty parses key = value
func (p *Parser) parseProperty() (ast.Property, error) {
	keyToken := p.peek()
	if !keyToken.IsValue() {
		return ast.Property{}, NewParseError("Expected key", keyToken)
	}
	p.advance()

	if !p.match(lexer.TOKEN_EQUALS) {
		return ast.Property{}, NewParseError(
			fmt.Sprintf("Expected '=' after key '%s'", keyToken.Text()), p.peek())
	}

	value, err := p.parseValue()
	if err != nil {
		return ast.Property{}, err
	}

	return ast.Property{Key: keyToken.Text(), Value: value}, nil
}

// parseValue parses a scalar or a brace block
func (p *Parser) parseValue() (ast.Node, error) {
	token := p.peek()

	switch token.Type {
	case lexer.TOKEN_LBRACE:
		return p.parseBlock()
	case lexer.TOKEN_STRING_LITERAL:
		p.advance()
		return classifyQuoted(token.Literal), nil
	case lexer.TOKEN_BARE:
		p.advance()
		return classifyBare(token.Lexeme), nil
	case lexer.TOKEN_EOF:
		return nil, NewParseError("Expected value but reached end of input", token)
	default:
		return nil, NewParseError(fmt.Sprintf("Expected value, found '%s'", token.Lexeme), token)
	}
}

// blockEntry is one top-level item inside a brace block: either a
// key=value pair or a bare value.
type blockEntry struct {
	prop   ast.Property
	value  ast.Node
	isProp bool
}

// parseBlock parses { ... } and decides between Object and Array by content:
// a block whose items are all key=value pairs is an Object, anything else is an Array.
func (p *Parser) parseBlock() (ast.Node, error) {
	open := p.advance()

	entries := make([]blockEntry, 0)
	allProps := true

	for !p.check(lexer.TOKEN_RBRACE) {
		if p.isAtEnd() {
			return nil, NewParseError(
				fmt.Sprintf("Unbalanced braces: missing '}' for block opened at %d:%d", open.Line, open.Column),
				p.peek())
		}

		if p.peek().IsValue() && p.peekNext().Type == lexer.TOKEN_EQUALS {
			prop, err := p.parseProperty()
			if err != nil {
				return nil, err
			}
			entries = append(entries, blockEntry{prop: prop, isProp: true})
			continue
		}

		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		entries = append(entries, blockEntry{value: value})
		allProps = false
	}

	// Consume closing brace
	p.advance()

	if allProps {
		obj := &ast.Object{Properties: make([]ast.Property, 0, len(entries))}
		for _, e := range entries {
			obj.Properties = append(obj.Properties, e.prop)
		}
		return obj, nil
	}

	arr := &ast.Array{Items: make([]ast.Node, 0, len(entries))}
	for _, e := range entries {
		if e.isProp {
			arr.Items = append(arr.Items, &ast.Object{Properties: []ast.Property{e.prop}})
		} else {
			arr.Items = append(arr.Items, e.value)
		}
	}
	return arr, nil
}

// Helper methods

func (p *Parser) peek() lexer.Token {
	if p.current >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current]
}

func (p *Parser) peekNext() lexer.Token {
	if p.current+1 >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current+1]
}

func (p *Parser) advance() lexer.Token {
	token := p.peek()
	if !p.isAtEnd() {
		p.current++
	}
	return token
}

func (p *Parser) check(tokenType lexer.TokenType) bool {
	return p.peek().Type == tokenType
}

func (p *Parser) match(tokenType lexer.TokenType) bool {
	if p.check(tokenType) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == lexer.TOKEN_EOF
}
