package mt

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

const (
	whitespaceCode = iota + 1
	blockStartCode
	blockEndCode
	openBraceCode
	tagCode
	colonCode
	textCode
	textBodyCode
	terminatorCode
)

var (
	whitespaceToken = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	blockStartToken = parsly.NewToken(blockStartCode, "{n:", &blockStartMatcher{})
	blockEndToken   = parsly.NewToken(blockEndCode, "}", matcher.NewByte('}'))
	openBraceToken  = parsly.NewToken(openBraceCode, "{", matcher.NewByte('{'))
	tagToken        = parsly.NewToken(tagCode, "Tag", &untilMatcher{stop: ":{}"})
	colonToken      = parsly.NewToken(colonCode, ":", matcher.NewByte(':'))
	textToken       = parsly.NewToken(textCode, "Text", &untilMatcher{stop: "{}"})
	textBodyToken   = parsly.NewToken(textBodyCode, "TextBlock", &textBodyMatcher{})
	terminatorToken = parsly.NewToken(terminatorCode, "-}", matcher.NewFragment("-}"))
)

// blockStartMatcher matches `{N:` where N is a block number
type blockStartMatcher struct{}

func (m *blockStartMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	if pos+2 >= cursor.InputSize {
		return 0
	}
	if input[pos] != '{' || !isDigit(input[pos+1]) || input[pos+2] != ':' {
		return 0
	}
	return 3
}

// untilMatcher matches everything up to one of the stop bytes
type untilMatcher struct {
	stop string
}

func (m *untilMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	matched := 0
	for i := cursor.Pos; i < cursor.InputSize; i++ {
		if isStop(input[i], m.stop) {
			break
		}
		matched++
	}
	return matched
}

func isStop(c byte, stop string) bool {
	for i := 0; i < len(stop); i++ {
		if stop[i] == c {
			return true
		}
	}
	return false
}

// textBodyMatcher matches block 4 text up to the `-}` terminator placed at line start
type textBodyMatcher struct{}

func (m *textBodyMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	lineStart := true
	for i := cursor.Pos; i < cursor.InputSize; i++ {
		switch input[i] {
		case '\n':
			lineStart = true
			continue
		case '\r':
			continue
		case '-':
			if lineStart && i+1 < cursor.InputSize && input[i+1] == '}' {
				return i - cursor.Pos
			}
		}
		lineStart = false
	}
	return 0
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
