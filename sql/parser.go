//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package sql

import (
	"fmt"
	"strings"

	"github.com/rss3p/mpcsql/errs"
)

// Parser is a recursive-descent parser over the restricted grammar
// of spec.md §4.F.1, grounded on compiler/parser.go's one-token-
// lookahead idiom.
type Parser struct {
	lexer *Lexer
}

// NewParser creates a parser over the tokens lexer produces.
func NewParser(lexer *Lexer) *Parser {
	return &Parser{lexer: lexer}
}

// Parse parses one query. Anything outside the grammar fails with
// errs.ErrUnsupportedSQL.
func (p *Parser) Parse() (*Query, error) {
	if err := p.expect(TSelect); err != nil {
		return nil, err
	}

	agg, err := p.parseAgg()
	if err != nil {
		return nil, err
	}

	if err := p.expect(TLParen); err != nil {
		return nil, err
	}
	column, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TRParen); err != nil {
		return nil, err
	}

	if err := p.expect(TFrom); err != nil {
		return nil, err
	}
	table, err := p.parseIdent()
	if err != nil {
		return nil, err
	}

	q := &Query{Agg: agg, Column: column, Table: table}

	tok, err := p.lexer.Get()
	if err != nil {
		return nil, err
	}
	switch tok.Type {
	case TEOF:
		return q, nil
	case TWhere:
		filter, err := p.parseFilter()
		if err != nil {
			return nil, err
		}
		q.Filter = filter
	default:
		return nil, p.unsupported(tok, "end of query or WHERE")
	}

	tok, err = p.lexer.Get()
	if err != nil {
		return nil, err
	}
	if tok.Type != TEOF {
		return nil, p.unsupported(tok, "end of query")
	}

	return q, nil
}

func (p *Parser) parseAgg() (AggKind, error) {
	tok, err := p.lexer.Get()
	if err != nil {
		return 0, err
	}
	if tok.Type != TIdent {
		return 0, p.unsupported(tok, "aggregate name")
	}
	agg, ok := aggNames[strings.ToUpper(tok.StrVal)]
	if !ok {
		return 0, fmt.Errorf("sql: %w: %s: unknown aggregate %q",
			errs.ErrUnsupportedSQL, tok.From, tok.StrVal)
	}
	return agg, nil
}

func (p *Parser) parseFilter() (*FilterClause, error) {
	column, err := p.parseIdent()
	if err != nil {
		return nil, err
	}

	tok, err := p.lexer.Get()
	if err != nil {
		return nil, err
	}
	var op FilterOp
	switch tok.Type {
	case TEq:
		op = Eq
	case TNeq:
		op = NotEq
	default:
		return nil, p.unsupported(tok, "'=' or '!='")
	}

	tok, err = p.lexer.Get()
	if err != nil {
		return nil, err
	}
	if tok.Type != TNumber {
		return nil, p.unsupported(tok, "literal")
	}

	return &FilterClause{Column: column, Op: op, Literal: tok.IntVal}, nil
}

func (p *Parser) parseIdent() (string, error) {
	tok, err := p.lexer.Get()
	if err != nil {
		return "", err
	}
	if tok.Type != TIdent {
		return "", p.unsupported(tok, "identifier")
	}
	return tok.StrVal, nil
}

func (p *Parser) expect(t TokenType) error {
	tok, err := p.lexer.Get()
	if err != nil {
		return err
	}
	if tok.Type != t {
		return p.unsupported(tok, t.String())
	}
	return nil
}

func (p *Parser) unsupported(got *Token, want string) error {
	return fmt.Errorf("sql: %w: %s: expected %s, got %s",
		errs.ErrUnsupportedSQL, got.From, want, got)
}

// ParseQuery is a convenience wrapper over NewLexer/NewParser/Parse.
func ParseQuery(statement string) (*Query, error) {
	return NewParser(NewLexer(strings.NewReader(statement))).Parse()
}
