package query

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes start at 1 so that none clashes with parsly.EOF.
const (
	whitespaceCode = iota + 1
	columnCode
	notEqualCode
	equalCode
	notLikeCode
	likeCode
	inCode
	placeholderCode
	openParenCode
	closeParenCode
	commaCode
	andCode
)

var (
	whitespaceToken  = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	columnToken      = parsly.NewToken(columnCode, "Column", &columnMatcher{})
	notEqualToken    = parsly.NewToken(notEqualCode, "!=", &symbolMatcher{symbols: []string{"!=", "<>"}})
	equalToken       = parsly.NewToken(equalCode, "=", matcher.NewByte('='))
	notLikeToken     = parsly.NewToken(notLikeCode, "NOT LIKE", &keywordMatcher{words: []string{"NOT", "LIKE"}})
	likeToken        = parsly.NewToken(likeCode, "LIKE", &keywordMatcher{words: []string{"LIKE"}})
	inToken          = parsly.NewToken(inCode, "IN", &keywordMatcher{words: []string{"IN"}})
	placeholderToken = parsly.NewToken(placeholderCode, "?", matcher.NewByte('?'))
	openParenToken   = parsly.NewToken(openParenCode, "(", matcher.NewByte('('))
	closeParenToken  = parsly.NewToken(closeParenCode, ")", matcher.NewByte(')'))
	commaToken       = parsly.NewToken(commaCode, ",", matcher.NewByte(','))
	andToken         = parsly.NewToken(andCode, "AND", &keywordMatcher{words: []string{"AND"}})
)

// columnMatcher matches upper snake case column names
type columnMatcher struct{}

func (m *columnMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	if pos >= size || !isUpper(input[pos]) {
		return 0
	}
	matched := 1
	for i := pos + 1; i < size; i++ {
		if isUpper(input[i]) || isDigit(input[i]) || input[i] == '_' {
			matched++
			continue
		}
		break
	}
	return matched
}

// symbolMatcher matches any of the listed symbols
type symbolMatcher struct {
	symbols []string
}

func (m *symbolMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input[cursor.Pos:cursor.InputSize]
	for _, symbol := range m.symbols {
		if len(input) >= len(symbol) && string(input[:len(symbol)]) == symbol {
			return len(symbol)
		}
	}
	return 0
}

// keywordMatcher matches a case-insensitive sequence of whitespace separated words
type keywordMatcher struct {
	words []string
}

func (m *keywordMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	size := cursor.InputSize
	pos := cursor.Pos
	for i, word := range m.words {
		if i > 0 {
			start := pos
			for pos < size && isSpace(input[pos]) {
				pos++
			}
			if pos == start {
				return 0
			}
		}
		if size-pos < len(word) {
			return 0
		}
		for j := 0; j < len(word); j++ {
			if toUpper(input[pos+j]) != word[j] {
				return 0
			}
		}
		pos += len(word)
	}
	if pos < size && (isLetter(input[pos]) || isDigit(input[pos]) || input[pos] == '_') {
		return 0
	}
	return pos - cursor.Pos
}

func isUpper(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || isUpper(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func toUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
