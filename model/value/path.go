package value

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxIndex bounds numeric segments; larger unquoted numbers are mapping keys so
// that a write can never pad a sequence past it.
const MaxIndex = 1 << 16

// Segment is a single path step. Numeric unquoted segments address sequence
// items; every other segment addresses a mapping key.
type Segment struct {
	Key     string
	Index   int
	Numeric bool
	Quoted  bool
}

func (s Segment) isIndex() bool { return s.Numeric && !s.Quoted }

// Path is a parsed dotted/indexed path such as `a.b.0.c`, `a.b[0].c` or `tags["32A"]`.
type Path []Segment

// ParsePath parses a path expression
func ParsePath(expr string) (Path, error) {
	var ret Path
	i := 0
	size := len(expr)
	for i < size {
		switch expr[i] {
		case '.':
			i++
			if i == size || expr[i] == '.' {
				return nil, fmt.Errorf("invalid path %q: empty segment at %d", expr, i)
			}
		case '[':
			end := strings.IndexByte(expr[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("invalid path %q: unterminated '['", expr)
			}
			inner := strings.TrimSpace(expr[i+1 : i+end])
			if inner == "" {
				return nil, fmt.Errorf("invalid path %q: empty index", expr)
			}
			if q := inner[0]; (q == '"' || q == '\'') && len(inner) >= 2 && inner[len(inner)-1] == q {
				ret = append(ret, Segment{Key: inner[1 : len(inner)-1], Quoted: true})
			} else {
				seg := newSegment(inner)
				if !seg.Numeric {
					if isDigits(inner) {
						return nil, fmt.Errorf("invalid path %q: index %v exceeds %d", expr, inner, MaxIndex)
					}
					return nil, fmt.Errorf("invalid path %q: non numeric index %q", expr, inner)
				}
				ret = append(ret, seg)
			}
			i += end + 1
		default:
			end := i
			for end < size && expr[end] != '.' && expr[end] != '[' {
				end++
			}
			ret = append(ret, newSegment(expr[i:end]))
			i = end
		}
	}
	return ret, nil
}

// MustPath parses a path and panics on error; intended for constants.
func MustPath(expr string) Path {
	ret, err := ParsePath(expr)
	if err != nil {
		panic(err)
	}
	return ret
}

func newSegment(text string) Segment {
	seg := Segment{Key: text}
	if !isDigits(text) {
		return seg
	}
	if index, err := strconv.Atoi(text); err == nil && index <= MaxIndex {
		seg.Numeric = true
		seg.Index = index
	}
	return seg
}

func isDigits(text string) bool {
	if text == "" {
		return false
	}
	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return false
		}
	}
	return true
}

// String renders the path back in dotted form
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		switch {
		case seg.Quoted:
			b.WriteString(`["` + seg.Key + `"]`)
			continue
		case i > 0:
			b.WriteByte('.')
		}
		b.WriteString(seg.Key)
	}
	return b.String()
}

// Head returns the first segment key or empty string
func (p Path) Head() string {
	if len(p) == 0 {
		return ""
	}
	return p[0].Key
}

// Get resolves the path, any absent segment yields Null.
func (p Path) Get(root Value) Value {
	current := root
	for _, seg := range p {
		switch current.kind {
		case KindMapping:
			next, ok := current.m.Get(seg.Key)
			if !ok {
				return Null()
			}
			current = next
		case KindSequence:
			if !seg.isIndex() {
				return Null()
			}
			current = current.Index(seg.Index)
		default:
			return Null()
		}
	}
	return current
}

// Has reports whether every segment of the path is present.
func (p Path) Has(root Value) bool {
	current := root
	for _, seg := range p {
		switch current.kind {
		case KindMapping:
			next, ok := current.m.Get(seg.Key)
			if !ok {
				return false
			}
			current = next
		case KindSequence:
			if !seg.isIndex() || seg.Index >= len(current.seq.items) {
				return false
			}
			current = current.seq.items[seg.Index]
		default:
			return false
		}
	}
	return true
}

// Set writes v at the path and returns the resulting root. Missing containers are
// created: index segments create sequences, key segments create mappings. Scalars
// standing in the way are replaced.
func (p Path) Set(root Value, v Value) Value {
	if len(p) == 0 {
		return v
	}
	return setAt(root, p, v)
}

func setAt(node Value, p Path, v Value) Value {
	seg := p[0]
	switch {
	case node.kind == KindMapping:
	case node.kind == KindSequence && seg.isIndex():
	case seg.isIndex():
		node = Sequence()
	default:
		node = NewMap()
	}
	if node.kind == KindMapping {
		if len(p) == 1 {
			node.m.Put(seg.Key, v)
			return node
		}
		child, _ := node.m.Get(seg.Key)
		node.m.Put(seg.Key, setAt(child, p[1:], v))
		return node
	}
	if len(p) == 1 {
		node.setIndex(seg.Index, v)
		return node
	}
	node.setIndex(seg.Index, setAt(node.Index(seg.Index), p[1:], v))
	return node
}

// Get resolves a textual path against root; malformed paths resolve to Null.
func Get(root Value, path string) Value {
	p, err := ParsePath(path)
	if err != nil {
		return Null()
	}
	return p.Get(root)
}

// Set writes v at a textual path and returns the resulting root.
func Set(root Value, path string, v Value) (Value, error) {
	p, err := ParsePath(path)
	if err != nil {
		return root, err
	}
	return p.Set(root, v), nil
}
