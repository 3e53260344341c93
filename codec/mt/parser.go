package mt

import (
	"strings"

	"github.com/viant/parsly"
	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/model/value"
)

type parser struct {
	cursor *parsly.Cursor
	root   value.Value
	seen   map[byte]bool
}

// parse splits the message into blocks and decodes each of them
func (p *parser) parse() (value.Value, error) {
	cur := p.cursor
	p.root = value.NewMap()
	p.seen = map[byte]bool{}
	for {
		matched := cur.MatchAfterOptional(whitespaceToken, blockStartToken)
		if matched.Code != blockStartCode {
			if p.skipWhitespace(); cur.HasMore() {
				return value.Null(), types.WrapError(types.KindParse, cur.NewError(blockStartToken), "invalid message structure")
			}
			break
		}
		number := cur.Input[cur.Pos-2]
		if number < '1' || number > '5' {
			return value.Null(), types.NewError(types.KindParse, "block %c: unsupported block number", number)
		}
		if p.seen[number] {
			return value.Null(), types.NewError(types.KindParse, "block %c: duplicate block", number)
		}
		p.seen[number] = true
		if err := p.parseBlock(number); err != nil {
			return value.Null(), err
		}
	}
	if len(p.seen) == 0 {
		return value.Null(), types.NewError(types.KindParse, "invalid message: no blocks found")
	}
	return p.root, nil
}

func (p *parser) parseBlock(number byte) error {
	key := "block" + string(number)
	var (
		block value.Value
		err   error
	)
	switch number {
	case '1', '2':
		text := p.matchText()
		if block, err = p.decodeHeader(number, text); err == nil {
			err = p.expectEnd(number)
		}
	case '3', '5':
		block, err = p.parseTagBlock(number)
	case '4':
		block, err = p.parseTextBlock()
	}
	if err != nil {
		return err
	}
	p.root.Put(key, block)
	return nil
}

func (p *parser) decodeHeader(number byte, text string) (value.Value, error) {
	var (
		ret value.Value
		err error
	)
	if number == '1' {
		ret, err = basicHeader.decode(text)
	} else {
		ret, err = decodeApplicationHeader(text)
	}
	if err != nil {
		return value.Null(), types.WrapError(types.KindParse, err, "block %c", number)
	}
	return ret, nil
}

func (p *parser) matchText() string {
	matched := p.cursor.MatchOne(textToken)
	if matched.Code != textCode {
		return ""
	}
	return matched.Text(p.cursor)
}

func (p *parser) expectEnd(number byte) error {
	if p.cursor.MatchOne(blockEndToken).Code != blockEndCode {
		return types.WrapError(types.KindParse, p.cursor.NewError(blockEndToken), "block %c", number)
	}
	return nil
}

// parseTagBlock decodes `{tag:value}` sequences of blocks 3 and 5
func (p *parser) parseTagBlock(number byte) (value.Value, error) {
	cur := p.cursor
	ret := value.NewMap()
	for {
		matched := cur.MatchAny(openBraceToken, blockEndToken)
		switch matched.Code {
		case blockEndCode:
			return ret, nil
		case openBraceCode:
		default:
			return value.Null(), types.WrapError(types.KindParse, cur.NewError(openBraceToken), "block %c", number)
		}
		matched = cur.MatchOne(tagToken)
		if matched.Code != tagCode {
			return value.Null(), types.WrapError(types.KindParse, cur.NewError(tagToken), "block %c", number)
		}
		tag := matched.Text(cur)
		if cur.MatchOne(colonToken).Code != colonCode {
			return value.Null(), types.WrapError(types.KindParse, cur.NewError(colonToken), "block %c tag %v", number, tag)
		}
		text := p.matchText()
		if cur.MatchOne(blockEndToken).Code != blockEndCode {
			return value.Null(), types.WrapError(types.KindParse, cur.NewError(blockEndToken), "block %c tag %v", number, tag)
		}
		putRepeated(ret, tag, value.String(text))
	}
}

// parseTextBlock decodes block 4 fields terminated by `-}`
func (p *parser) parseTextBlock() (value.Value, error) {
	cur := p.cursor
	body := ""
	if matched := cur.MatchOne(textBodyToken); matched.Code == textBodyCode {
		body = matched.Text(cur)
	}
	if cur.MatchOne(terminatorToken).Code != terminatorCode {
		return value.Null(), types.WrapError(types.KindParse, cur.NewError(terminatorToken), "block 4: missing terminator")
	}
	return parseFields(body)
}

func parseFields(body string) (value.Value, error) {
	fields := value.Sequence()
	tags := value.NewMap()
	var current *Field
	flush := func() {
		if current == nil {
			return
		}
		fields.Append(current.Value())
		putRepeated(tags, current.Tag, value.String(current.Text()))
		current = nil
	}
	body = strings.TrimSuffix(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
	for i, line := range strings.Split(body, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if tag, text, ok := splitTagLine(line); ok {
			flush()
			current = NewField(tag, text)
			continue
		}
		if current == nil {
			if strings.TrimSpace(line) == "" {
				continue
			}
			return value.Null(), types.NewError(types.KindParse, "block 4 line %d: expected :TAG: but had %q", i+1, line)
		}
		current.Lines = append(current.Lines, line)
	}
	flush()
	ret := value.NewMap()
	ret.Put("fields", fields)
	ret.Put("tags", tags)
	return ret, nil
}

// splitTagLine splits `:32A:value` into tag and value
func splitTagLine(line string) (string, string, bool) {
	if len(line) < 4 || line[0] != ':' {
		return "", "", false
	}
	end := strings.IndexByte(line[1:], ':')
	if end < 2 {
		return "", "", false
	}
	tag := line[1 : end+1]
	if !isDigit(tag[0]) || !isDigit(tag[1]) {
		return "", "", false
	}
	for i := 2; i < len(tag); i++ {
		if !isLetter(tag[i]) && !isDigit(tag[i]) {
			return "", "", false
		}
	}
	return tag, line[end+2:], true
}

func putRepeated(m value.Value, key string, item value.Value) {
	prev, ok := m.Mapping().Get(key)
	switch {
	case !ok:
		m.Put(key, item)
	case prev.Kind() == value.KindSequence:
		prev.Append(item)
	default:
		m.Put(key, value.Sequence(prev, item))
	}
}

func (p *parser) skipWhitespace() {
	cur := p.cursor
	for cur.Pos < cur.InputSize {
		switch cur.Input[cur.Pos] {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			cur.Pos++
		default:
			return
		}
	}
}
