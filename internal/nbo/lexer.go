// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nbo

import (
	"fmt"
	"unicode"
)

// TokenKind classifies a lexical token of a table row.
type TokenKind int

const (
	TokenWord TokenKind = iota
	TokenNumber
	TokenStar
	TokenLParen
	TokenRParen
	TokenDash
	TokenSlash
	TokenOther
)

func (k TokenKind) String() string {
	switch k {
	case TokenWord:
		return "word"
	case TokenNumber:
		return "number"
	case TokenStar:
		return "'*'"
	case TokenLParen:
		return "'('"
	case TokenRParen:
		return "')'"
	case TokenDash:
		return "'-'"
	case TokenSlash:
		return "'/'"
	}
	return "symbol"
}

// Token is one lexeme with its rune offset in the line.
type Token struct {
	Kind TokenKind
	Text string
	Pos  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q at %d", t.Kind, t.Text, t.Pos)
}

// Tokenize splits a row into tokens. Letters and digits are split at every
// class change, so "C1" and "C 1" both lex as word "C", number "1". A number
// may carry a decimal point and fraction ("180.", "25.30").
func Tokenize(line string) []Token {
	var toks []Token
	rs := []rune(line)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsLetter(r):
			j := i
			for j < len(rs) && unicode.IsLetter(rs[j]) {
				j++
			}
			toks = append(toks, Token{Kind: TokenWord, Text: string(rs[i:j]), Pos: i})
			i = j
		case unicode.IsDigit(r):
			j := i
			for j < len(rs) && unicode.IsDigit(rs[j]) {
				j++
			}
			if j < len(rs) && rs[j] == '.' {
				j++
				for j < len(rs) && unicode.IsDigit(rs[j]) {
					j++
				}
			}
			toks = append(toks, Token{Kind: TokenNumber, Text: string(rs[i:j]), Pos: i})
			i = j
		default:
			toks = append(toks, Token{Kind: punct(r), Text: string(r), Pos: i})
			i++
		}
	}
	return toks
}

func punct(r rune) TokenKind {
	switch r {
	case '*':
		return TokenStar
	case '(':
		return TokenLParen
	case ')':
		return TokenRParen
	case '-':
		return TokenDash
	case '/':
		return TokenSlash
	}
	return TokenOther
}
