package expr

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/model/value"
)

// node is the closed set of compiled rule constructs
type node interface {
	eval(s *state, scope value.Value) (value.Value, error)
}

type (
	literalNode struct{ v value.Value }

	arrayNode struct{ items []node }

	varNode struct {
		path    value.Path
		text    string
		dynamic node
		def     node
	}

	missingNode struct {
		paths []value.Path
		text  []string
		need  int
		some  bool
	}

	existsNode struct{ path value.Path }

	ifNode struct{ args []node }

	equalNode struct {
		strict bool
		negate bool
		left   node
		right  node
	}

	compareNode struct {
		op   string
		args []node
	}

	logicNode struct {
		and  bool
		args []node
	}

	notNode struct {
		double bool
		arg    node
	}

	concatNode struct{ args []node }

	substrNode struct{ args []node }

	inNode struct{ needle, haystack node }

	arithNode struct {
		op   string
		args []node
	}

	minMaxNode struct {
		max  bool
		args []node
	}

	iterateNode struct {
		op     string
		source node
		body   node
	}

	reduceNode struct{ source, body, initial node }

	mergeNode struct{ args []node }

	stringTestNode struct {
		suffix  bool
		subject node
		affix   node
	}

	stringFuncNode struct {
		op   string
		args []node
	}
)

func evalAll(s *state, scope value.Value, args []node) ([]value.Value, error) {
	ret := make([]value.Value, len(args))
	for i, arg := range args {
		v, err := arg.eval(s, scope)
		if err != nil {
			return nil, err
		}
		ret[i] = v
	}
	return ret, nil
}

func (n *literalNode) eval(_ *state, _ value.Value) (value.Value, error) {
	return n.v, nil
}

func (n *arrayNode) eval(s *state, scope value.Value) (value.Value, error) {
	items, err := evalAll(s, scope, n.items)
	if err != nil {
		return value.Null(), err
	}
	return value.Sequence(items...), nil
}

func (n *varNode) eval(s *state, scope value.Value) (value.Value, error) {
	path, text := n.path, n.text
	if n.dynamic != nil {
		v, err := n.dynamic.eval(s, scope)
		if err != nil {
			return value.Null(), err
		}
		text = v.String()
		if path, err = value.ParsePath(text); err != nil {
			return value.Null(), types.WrapError(types.KindMapping, err, "invalid var path")
		}
	}
	if path.Has(scope) {
		return path.Get(scope), nil
	}
	if n.def != nil {
		return n.def.eval(s, scope)
	}
	return value.Null(), s.missingPath(text)
}

func (n *missingNode) eval(_ *state, scope value.Value) (value.Value, error) {
	ret := value.Sequence()
	for i, path := range n.paths {
		v := path.Get(scope)
		if v.IsNull() || (v.Kind() == value.KindString && v.Str() == "") {
			ret.Append(value.String(n.text[i]))
		}
	}
	if n.some && len(n.paths)-ret.Len() >= n.need {
		return value.Sequence(), nil
	}
	return ret, nil
}

func (n *existsNode) eval(_ *state, scope value.Value) (value.Value, error) {
	return value.Bool(n.path.Has(scope) && !n.path.Get(scope).IsNull()), nil
}

func (n *ifNode) eval(s *state, scope value.Value) (value.Value, error) {
	i := 0
	for ; i+1 < len(n.args); i += 2 {
		cond, err := n.args[i].eval(s, scope)
		if err != nil {
			return value.Null(), err
		}
		if value.Truthy(cond) {
			return n.args[i+1].eval(s, scope)
		}
	}
	return n.args[i].eval(s, scope)
}

func (n *equalNode) eval(s *state, scope value.Value) (value.Value, error) {
	left, err := n.left.eval(s, scope)
	if err != nil {
		return value.Null(), err
	}
	right, err := n.right.eval(s, scope)
	if err != nil {
		return value.Null(), err
	}
	var equal bool
	if n.strict {
		equal = value.Equal(left, right)
	} else {
		equal = value.Equivalent(left, right)
	}
	return value.Bool(equal != n.negate), nil
}

func (n *compareNode) eval(s *state, scope value.Value) (value.Value, error) {
	args, err := evalAll(s, scope, n.args)
	if err != nil {
		return value.Null(), err
	}
	for i := 0; i+1 < len(args); i++ {
		c := value.Compare(args[i], args[i+1])
		var ok bool
		switch n.op {
		case "<":
			ok = c < 0
		case "<=":
			ok = c <= 0
		case ">":
			ok = c > 0
		case ">=":
			ok = c >= 0
		}
		if !ok {
			return value.Bool(false), nil
		}
	}
	return value.Bool(true), nil
}

func (n *logicNode) eval(s *state, scope value.Value) (value.Value, error) {
	var ret value.Value
	for _, arg := range n.args {
		v, err := arg.eval(s, scope)
		if err != nil {
			return value.Null(), err
		}
		ret = v
		if value.Truthy(v) != n.and {
			return v, nil
		}
	}
	return ret, nil
}

func (n *notNode) eval(s *state, scope value.Value) (value.Value, error) {
	v, err := n.arg.eval(s, scope)
	if err != nil {
		return value.Null(), err
	}
	return value.Bool(value.Truthy(v) == n.double), nil
}

func (n *concatNode) eval(s *state, scope value.Value) (value.Value, error) {
	args, err := evalAll(s, scope, n.args)
	if err != nil {
		return value.Null(), err
	}
	var b strings.Builder
	for _, arg := range args {
		b.WriteString(arg.String())
	}
	return value.String(b.String()), nil
}

func (n *substrNode) eval(s *state, scope value.Value) (value.Value, error) {
	args, err := evalAll(s, scope, n.args)
	if err != nil {
		return value.Null(), err
	}
	runes := []rune(args[0].String())
	size := len(runes)
	start := asInt(args[1])
	if start < 0 {
		start += size
	}
	start = clamp(start, 0, size)
	end := size
	if len(args) > 2 {
		length := asInt(args[2])
		if length < 0 {
			end = size + length
		} else {
			end = start + length
		}
	}
	end = clamp(end, start, size)
	return value.String(string(runes[start:end])), nil
}

func asInt(v value.Value) int {
	d, _ := value.AsNumber(v)
	return int(d.IntPart())
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (n *inNode) eval(s *state, scope value.Value) (value.Value, error) {
	needle, err := n.needle.eval(s, scope)
	if err != nil {
		return value.Null(), err
	}
	haystack, err := n.haystack.eval(s, scope)
	if err != nil {
		return value.Null(), err
	}
	if needle.IsNull() {
		return value.Bool(false), nil
	}
	switch haystack.Kind() {
	case value.KindString:
		text := needle.String()
		return value.Bool(text != "" && strings.Contains(haystack.Str(), text)), nil
	case value.KindSequence:
		for _, item := range haystack.Items() {
			if value.Equivalent(item, needle) {
				return value.Bool(true), nil
			}
		}
	}
	return value.Bool(false), nil
}

func (n *arithNode) eval(s *state, scope value.Value) (value.Value, error) {
	args, err := evalAll(s, scope, n.args)
	if err != nil {
		return value.Null(), err
	}
	numbers := make([]decimal.Decimal, len(args))
	for i, arg := range args {
		d, ok := value.AsNumber(arg)
		if !ok {
			return value.Null(), nil
		}
		numbers[i] = d
	}
	switch n.op {
	case "+":
		ret := decimal.Zero
		for _, d := range numbers {
			ret = ret.Add(d)
		}
		return value.Number(ret), nil
	case "*":
		ret := numbers[0]
		for _, d := range numbers[1:] {
			ret = ret.Mul(d)
		}
		return value.Number(ret), nil
	case "-":
		if len(numbers) == 1 {
			return value.Number(numbers[0].Neg()), nil
		}
		return value.Number(numbers[0].Sub(numbers[1])), nil
	case "/":
		if numbers[1].IsZero() {
			return value.Null(), nil
		}
		return value.Number(numbers[0].Div(numbers[1])), nil
	case "%":
		if numbers[1].IsZero() {
			return value.Null(), nil
		}
		return value.Number(numbers[0].Mod(numbers[1])), nil
	}
	return value.Null(), nil
}

func (n *minMaxNode) eval(s *state, scope value.Value) (value.Value, error) {
	args, err := evalAll(s, scope, n.args)
	if err != nil || len(args) == 0 {
		return value.Null(), err
	}
	var ret decimal.Decimal
	for i, arg := range args {
		d, ok := value.AsNumber(arg)
		if !ok {
			return value.Null(), nil
		}
		if i == 0 || (n.max && d.GreaterThan(ret)) || (!n.max && d.LessThan(ret)) {
			ret = d
		}
	}
	return value.Number(ret), nil
}

func (n *iterateNode) eval(s *state, scope value.Value) (value.Value, error) {
	source, err := n.source.eval(s, scope)
	if err != nil {
		return value.Null(), err
	}
	items := source.Items()
	switch n.op {
	case "map", "filter":
		ret := value.Sequence()
		for _, item := range items {
			v, err := n.body.eval(s, item)
			if err != nil {
				return value.Null(), err
			}
			if n.op == "map" {
				ret.Append(v)
			} else if value.Truthy(v) {
				ret.Append(item)
			}
		}
		return ret, nil
	}
	if len(items) == 0 {
		return value.Bool(n.op == "none"), nil
	}
	for _, item := range items {
		v, err := n.body.eval(s, item)
		if err != nil {
			return value.Null(), err
		}
		truthy := value.Truthy(v)
		switch {
		case n.op == "all" && !truthy:
			return value.Bool(false), nil
		case n.op == "some" && truthy:
			return value.Bool(true), nil
		case n.op == "none" && truthy:
			return value.Bool(false), nil
		}
	}
	return value.Bool(n.op != "some"), nil
}

func (n *reduceNode) eval(s *state, scope value.Value) (value.Value, error) {
	source, err := n.source.eval(s, scope)
	if err != nil {
		return value.Null(), err
	}
	acc, err := n.initial.eval(s, scope)
	if err != nil {
		return value.Null(), err
	}
	for _, item := range source.Items() {
		local := value.NewMap()
		local.Put("current", item)
		local.Put("accumulator", acc)
		if acc, err = n.body.eval(s, local); err != nil {
			return value.Null(), err
		}
	}
	return acc, nil
}

func (n *mergeNode) eval(s *state, scope value.Value) (value.Value, error) {
	args, err := evalAll(s, scope, n.args)
	if err != nil {
		return value.Null(), err
	}
	ret := value.Sequence()
	for _, arg := range args {
		if arg.Kind() == value.KindSequence {
			ret.Append(arg.Items()...)
			continue
		}
		ret.Append(arg)
	}
	return ret, nil
}

func (n *stringTestNode) eval(s *state, scope value.Value) (value.Value, error) {
	subject, err := n.subject.eval(s, scope)
	if err != nil {
		return value.Null(), err
	}
	affix, err := n.affix.eval(s, scope)
	if err != nil {
		return value.Null(), err
	}
	if n.suffix {
		return value.Bool(strings.HasSuffix(subject.String(), affix.String())), nil
	}
	return value.Bool(strings.HasPrefix(subject.String(), affix.String())), nil
}

func (n *stringFuncNode) eval(s *state, scope value.Value) (value.Value, error) {
	args, err := evalAll(s, scope, n.args)
	if err != nil {
		return value.Null(), err
	}
	text := args[0].String()
	switch n.op {
	case "upper":
		return value.String(strings.ToUpper(text)), nil
	case "lower":
		return value.String(strings.ToLower(text)), nil
	case "trim":
		return value.String(strings.TrimSpace(text)), nil
	case "length":
		if args[0].IsContainer() {
			return value.Int(int64(args[0].Len())), nil
		}
		return value.Int(int64(utf8.RuneCountInString(text))), nil
	case "split":
		ret := value.Sequence()
		if text == "" {
			return ret, nil
		}
		for _, part := range strings.Split(text, args[1].String()) {
			ret.Append(value.String(part))
		}
		return ret, nil
	case "replace":
		return value.String(strings.ReplaceAll(text, args[1].String(), args[2].String())), nil
	}
	return value.Null(), nil
}
