package mt

import (
	"strings"

	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/model/value"
)

const crlf = "\r\n"

type writer struct {
	builder strings.Builder
}

func (w *writer) write(root value.Value) error {
	if root.Kind() != value.KindMapping {
		return types.NewError(types.KindSerialization, "invalid mt document: expected mapping, but had %v", root.Kind())
	}
	written := 0
	for _, number := range []string{"1", "2", "3", "4", "5"} {
		block := root.Field("block" + number)
		if block.IsNull() {
			continue
		}
		written++
		if err := w.writeBlock(number, block); err != nil {
			return err
		}
	}
	if written == 0 {
		return types.NewError(types.KindSerialization, "invalid mt document: no blocks")
	}
	return nil
}

func (w *writer) writeBlock(number string, block value.Value) error {
	var (
		text string
		err  error
	)
	switch number {
	case "1":
		text, err = basicHeader.encode(block)
	case "2":
		text, err = encodeApplicationHeader(block)
	case "3", "5":
		text, err = encodeTagBlock(block)
	case "4":
		text, err = encodeTextBlock(block)
	}
	if err != nil {
		if _, ok := err.(*types.Error); ok {
			return err
		}
		return types.WrapError(types.KindSerialization, err, "block %v", number)
	}
	w.builder.WriteString("{" + number + ":")
	w.builder.WriteString(text)
	w.builder.WriteString("}")
	return nil
}

func encodeTagBlock(block value.Value) (string, error) {
	if block.Kind() != value.KindMapping {
		return "", types.NewError(types.KindSerialization, "invalid tag block: expected mapping, but had %v", block.Kind())
	}
	var b strings.Builder
	block.Mapping().Range(func(tag string, item value.Value) bool {
		items := []value.Value{item}
		if item.Kind() == value.KindSequence {
			items = item.Items()
		}
		for _, v := range items {
			b.WriteString("{" + tag + ":" + v.String() + "}")
		}
		return true
	})
	return b.String(), nil
}

func encodeTextBlock(block value.Value) (string, error) {
	fields, err := blockFields(block)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(crlf)
	for _, field := range fields {
		b.WriteString(":" + field.Tag + ":")
		b.WriteString(strings.Join(field.Lines, crlf))
		b.WriteString(crlf)
	}
	b.WriteString("-")
	return b.String(), nil
}

// blockFields returns block 4 fields from `fields`, or from `tags` when fields are absent
func blockFields(block value.Value) ([]*Field, error) {
	var ret []*Field
	if fields := block.Field("fields"); fields.Kind() == value.KindSequence {
		for i, item := range fields.Items() {
			field, ok := fieldOf(item)
			if !ok {
				return nil, types.NewError(types.KindSerialization, "block 4 field[%d]: missing tag or value", i)
			}
			ret = append(ret, field)
		}
		return ret, nil
	}
	tags := block.Field("tags")
	if tags.Kind() != value.KindMapping {
		return nil, types.NewError(types.KindSerialization, "block 4: expected fields or tags")
	}
	var err error
	tags.Mapping().Range(func(tag string, item value.Value) bool {
		items := []value.Value{item}
		if item.Kind() == value.KindSequence {
			items = item.Items()
		}
		for _, v := range items {
			if v.IsNull() || v.IsContainer() {
				err = types.NewError(types.KindSerialization, "block 4 tag %v: missing value", tag)
				return false
			}
			ret = append(ret, NewField(tag, v.String()))
			ret[len(ret)-1].Lines = splitLines(v.String())
		}
		return true
	})
	return ret, err
}
