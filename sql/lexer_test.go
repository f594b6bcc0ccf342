//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package sql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, src string) []*Token {
	l := NewLexer(strings.NewReader(src))
	var toks []*Token
	for {
		tok, err := l.Get()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Type == TEOF {
			return toks
		}
	}
}

func TestLexerTokenizesBasicQuery(t *testing.T) {
	toks := lexAll(t, "SELECT PARITY(salary) FROM employees WHERE dept = 1")
	types := make([]TokenType, len(toks))
	for i, tok := range toks {
		types[i] = tok.Type
	}
	assert.Equal(t, []TokenType{
		TSelect, TIdent, TLParen, TIdent, TRParen, TFrom, TIdent,
		TWhere, TIdent, TEq, TNumber, TEOF,
	}, types)
}

func TestLexerIsKeywordCaseInsensitive(t *testing.T) {
	toks := lexAll(t, "select sum(x) from t")
	assert.Equal(t, TSelect, toks[0].Type)
	assert.Equal(t, TFrom, toks[5].Type)
}

func TestLexerNotEq(t *testing.T) {
	toks := lexAll(t, "dept != 2")
	assert.Equal(t, TNeq, toks[1].Type)
}

func TestLexerRejectsBareBang(t *testing.T) {
	l := NewLexer(strings.NewReader("dept ! 2"))
	_, err := l.Get()
	require.NoError(t, err)
	_, err = l.Get()
	assert.Error(t, err)
}

func TestLexerUngetReplaysToken(t *testing.T) {
	l := NewLexer(strings.NewReader("FROM t"))
	tok, err := l.Get()
	require.NoError(t, err)
	assert.Equal(t, TFrom, tok.Type)
	l.Unget(tok)
	tok2, err := l.Get()
	require.NoError(t, err)
	assert.Equal(t, tok, tok2)
}
