package yml

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/viant/reframe/model/value"
	"gopkg.in/yaml.v3"
)

type (
	Node yaml.Node
)

// Decode parses a YAML document into a node
func Decode(data []byte) (*Node, error) {
	root := &yaml.Node{}
	if err := yaml.Unmarshal(data, root); err != nil {
		return nil, err
	}
	ret := (*Node)(root)
	if ret.Kind == yaml.DocumentNode && len(ret.Content) > 0 {
		ret = (*Node)(ret.Content[0])
	}
	return ret, nil
}

func (n *Node) Lookup(name string) *Node {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == name {
			return (*Node)(n.Content[i+1])
		}
	}
	return nil
}

func (n *Node) Items(callback func(index int, node *Node) error) error {
	for i := 0; i < len(n.Content); i++ {
		if err := callback(i, (*Node)(n.Content[i])); err != nil {
			return err
		}
	}
	return nil
}

func (n *Node) Pairs(callback func(key string, node *Node) error) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := callback(n.Content[i].Value, (*Node)(n.Content[i+1])); err != nil {
			return err
		}
	}
	return nil
}

// ToValue converts the node into an ordered value tree; mapping order follows the document.
func (n *Node) ToValue() (value.Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return value.Null(), nil
		}
		return (*Node)(n.Content[0]).ToValue()
	case yaml.AliasNode:
		if n.Alias == nil {
			return value.Null(), nil
		}
		return (*Node)(n.Alias).ToValue()
	case yaml.ScalarNode:
		return n.scalar()
	case yaml.MappingNode:
		ret := value.NewMap()
		err := n.Pairs(func(key string, node *Node) error {
			if key == "<<" && node.Kind != yaml.ScalarNode {
				return n.merge(ret, node)
			}
			item, err := node.ToValue()
			if err != nil {
				return err
			}
			ret.Put(key, item)
			return nil
		})
		return ret, err
	case yaml.SequenceNode:
		ret := value.Sequence()
		err := n.Items(func(_ int, node *Node) error {
			item, err := node.ToValue()
			if err != nil {
				return err
			}
			ret.Append(item)
			return nil
		})
		return ret, err
	}
	return value.Null(), fmt.Errorf("unsupported yaml node kind: %v", n.Kind)
}

func (n *Node) merge(dest value.Value, node *Node) error {
	source, err := node.ToValue()
	if err != nil {
		return err
	}
	sources := []value.Value{source}
	if source.Kind() == value.KindSequence {
		sources = source.Items()
	}
	for _, item := range sources {
		item.Mapping().Range(func(key string, v value.Value) bool {
			if !dest.Mapping().Has(key) {
				dest.Put(key, v)
			}
			return true
		})
	}
	return nil
}

func (n *Node) scalar() (value.Value, error) {
	switch n.Tag {
	case "!!null":
		return value.Null(), nil
	case "!!bool":
		return value.Bool(strings.EqualFold(n.Value, "true")), nil
	case "!!int", "!!float":
		text := strings.ReplaceAll(n.Value, "_", "")
		d, err := decimal.NewFromString(text)
		if err != nil {
			if iv, ok := parseRadix(text); ok {
				return value.Int(iv), nil
			}
			return value.String(n.Value), nil
		}
		return value.Number(d), nil
	}
	return value.String(n.Value), nil
}

func parseRadix(text string) (int64, bool) {
	var iv int64
	if _, err := fmt.Sscan(text, &iv); err != nil {
		return 0, false
	}
	return iv, true
}

// ValueNode converts an ordered value into a yaml node
func ValueNode(v value.Value) *yaml.Node {
	switch v.Kind() {
	case value.KindMapping:
		ret := NewMap()
		v.Mapping().Range(func(key string, item value.Value) bool {
			ret.Content = append(ret.Content, newScalar("!!str", key), ValueNode(item))
			return true
		})
		return ret
	case value.KindSequence:
		ret := NewSlice()
		for _, item := range v.Items() {
			ret.Content = append(ret.Content, ValueNode(item))
		}
		return ret
	case value.KindBool:
		return newScalar("!!bool", v.String())
	case value.KindNumber:
		if v.Decimal().IsInteger() {
			return newScalar("!!int", v.String())
		}
		return newScalar("!!float", v.String())
	case value.KindString:
		return newScalar("!!str", v.Str())
	}
	return newScalar("!!null", "")
}

// Encode renders an ordered value as YAML
func Encode(v value.Value) ([]byte, error) {
	return yaml.Marshal(ValueNode(v))
}

func NewSlice() *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
}

func NewMap() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func newScalar(tag, text string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: text}
}
