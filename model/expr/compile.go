package expr

import (
	"sort"

	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/model/value"
)

type arity struct {
	min int
	max int // -1 unbounded
}

type builder func(op string, args []value.Value) (node, error)

var operators map[string]struct {
	arity
	build builder
}

func init() {
	operators = map[string]struct {
		arity
		build builder
	}{
		"var":          {arity{0, 2}, buildVar},
		"missing":      {arity{0, -1}, buildMissing},
		"missing_some": {arity{2, 2}, buildMissingSome},
		"exists":       {arity{1, 1}, buildExists},
		"if":           {arity{1, -1}, buildIf},
		"?:":           {arity{3, 3}, buildIf},
		"==":           {arity{2, 2}, buildEqual},
		"!=":           {arity{2, 2}, buildEqual},
		"===":          {arity{2, 2}, buildEqual},
		"!==":          {arity{2, 2}, buildEqual},
		"<":            {arity{2, 3}, buildCompare},
		"<=":           {arity{2, 3}, buildCompare},
		">":            {arity{2, 2}, buildCompare},
		">=":           {arity{2, 2}, buildCompare},
		"and":          {arity{1, -1}, buildLogic},
		"or":           {arity{1, -1}, buildLogic},
		"!":            {arity{1, 1}, buildNot},
		"!!":           {arity{1, 1}, buildNot},
		"cat":          {arity{0, -1}, buildConcat},
		"substr":       {arity{2, 3}, buildSubstr},
		"in":           {arity{2, 2}, buildIn},
		"+":            {arity{0, -1}, buildArith},
		"-":            {arity{1, 2}, buildArith},
		"*":            {arity{1, -1}, buildArith},
		"/":            {arity{2, 2}, buildArith},
		"%":            {arity{2, 2}, buildArith},
		"min":          {arity{0, -1}, buildMinMax},
		"max":          {arity{0, -1}, buildMinMax},
		"map":          {arity{2, 2}, buildIterate},
		"filter":       {arity{2, 2}, buildIterate},
		"all":          {arity{2, 2}, buildIterate},
		"some":         {arity{2, 2}, buildIterate},
		"none":         {arity{2, 2}, buildIterate},
		"reduce":       {arity{2, 3}, buildReduce},
		"merge":        {arity{0, -1}, buildMerge},
		"starts_with":  {arity{2, 2}, buildStringTest},
		"ends_with":    {arity{2, 2}, buildStringTest},
		"upper":        {arity{1, 1}, buildStringFunc},
		"lower":        {arity{1, 1}, buildStringFunc},
		"trim":         {arity{1, 1}, buildStringFunc},
		"length":       {arity{1, 1}, buildStringFunc},
		"split":        {arity{2, 2}, buildStringFunc},
		"replace":      {arity{3, 3}, buildStringFunc},
	}
}

// Operators returns supported operator names
func Operators() []string {
	ret := make([]string, 0, len(operators)+1)
	for name := range operators {
		ret = append(ret, name)
	}
	ret = append(ret, "preserve")
	sort.Strings(ret)
	return ret
}

// Compile compiles a rule document; structural problems are config errors.
func Compile(rule value.Value) (*Expression, error) {
	root, err := compile(rule)
	if err != nil {
		return nil, err
	}
	return &Expression{source: value.Clone(rule), root: root}, nil
}

// MustCompile compiles rule or panics
func MustCompile(rule value.Value) *Expression {
	ret, err := Compile(rule)
	if err != nil {
		panic(err)
	}
	return ret
}

// CompileJSON compiles a JSON encoded rule
func CompileJSON(rule string) (*Expression, error) {
	v, err := value.ParseJSON([]byte(rule))
	if err != nil {
		return nil, types.WrapError(types.KindConfig, err, "invalid rule json")
	}
	return Compile(v)
}

func compile(rule value.Value) (node, error) {
	switch rule.Kind() {
	case value.KindSequence:
		items, err := compileAll(rule.Items())
		if err != nil {
			return nil, err
		}
		return &arrayNode{items: items}, nil
	case value.KindMapping:
		m := rule.Mapping()
		switch m.Len() {
		case 0:
			return &literalNode{v: value.NewMap()}, nil
		case 1:
		default:
			return nil, types.NewError(types.KindConfig, "invalid rule: expected single operator object, but had keys %v", m.Keys())
		}
		op := m.Keys()[0]
		operand, _ := m.Get(op)
		if op == "preserve" {
			return &literalNode{v: operand}, nil
		}
		def, ok := operators[op]
		if !ok {
			return nil, types.NewError(types.KindConfig, "unknown operator: %v", op)
		}
		args := operand.Items()
		if operand.Kind() != value.KindSequence {
			args = []value.Value{operand}
		}
		if op == "var" && operand.Kind() == value.KindNull {
			args = nil
		}
		if len(args) < def.min || (def.max >= 0 && len(args) > def.max) {
			return nil, types.NewError(types.KindConfig, "invalid arity for %v: %v", op, len(args))
		}
		return def.build(op, args)
	}
	return &literalNode{v: rule}, nil
}

func compileAll(args []value.Value) ([]node, error) {
	ret := make([]node, len(args))
	for i, arg := range args {
		var err error
		if ret[i], err = compile(arg); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

func buildVar(_ string, args []value.Value) (node, error) {
	ret := &varNode{}
	if len(args) == 0 {
		return ret, nil
	}
	if args[0].Kind() == value.KindMapping {
		dynamic, err := compile(args[0])
		if err != nil {
			return nil, err
		}
		ret.dynamic = dynamic
	} else {
		path, err := value.ParsePath(args[0].String())
		if err != nil {
			return nil, types.WrapError(types.KindConfig, err, "invalid var path")
		}
		ret.path = path
		ret.text = args[0].String()
	}
	if len(args) > 1 {
		def, err := compile(args[1])
		if err != nil {
			return nil, err
		}
		ret.def = def
	}
	return ret, nil
}

func staticPaths(args []value.Value) ([]string, error) {
	var ret []string
	for _, arg := range args {
		if arg.Kind() == value.KindSequence {
			nested, err := staticPaths(arg.Items())
			if err != nil {
				return nil, err
			}
			ret = append(ret, nested...)
			continue
		}
		if arg.IsContainer() {
			return nil, types.NewError(types.KindConfig, "invalid path argument: %v", arg.String())
		}
		ret = append(ret, arg.String())
	}
	return ret, nil
}

func buildMissing(_ string, args []value.Value) (node, error) {
	paths, err := staticPaths(args)
	if err != nil {
		return nil, err
	}
	return newMissing(paths, 0, false)
}

func buildMissingSome(_ string, args []value.Value) (node, error) {
	need, ok := value.AsNumber(args[0])
	if !ok {
		return nil, types.NewError(types.KindConfig, "invalid missing_some minimum: %v", args[0].String())
	}
	paths, err := staticPaths(args[1:])
	if err != nil {
		return nil, err
	}
	return newMissing(paths, int(need.IntPart()), true)
}

func newMissing(paths []string, need int, some bool) (node, error) {
	ret := &missingNode{need: need, some: some, text: paths}
	for _, p := range paths {
		parsed, err := value.ParsePath(p)
		if err != nil {
			return nil, types.WrapError(types.KindConfig, err, "invalid missing path")
		}
		ret.paths = append(ret.paths, parsed)
	}
	return ret, nil
}

func buildExists(_ string, args []value.Value) (node, error) {
	path, err := value.ParsePath(args[0].String())
	if err != nil {
		return nil, types.WrapError(types.KindConfig, err, "invalid exists path")
	}
	return &existsNode{path: path}, nil
}

func buildIf(op string, args []value.Value) (node, error) {
	if len(args)%2 == 0 {
		return nil, types.NewError(types.KindConfig, "%v requires an else branch, but had %v operands", op, len(args))
	}
	items, err := compileAll(args)
	if err != nil {
		return nil, err
	}
	return &ifNode{args: items}, nil
}

func buildEqual(op string, args []value.Value) (node, error) {
	items, err := compileAll(args)
	if err != nil {
		return nil, err
	}
	return &equalNode{strict: op == "===" || op == "!==", negate: op == "!=" || op == "!==", left: items[0], right: items[1]}, nil
}

func buildCompare(op string, args []value.Value) (node, error) {
	items, err := compileAll(args)
	if err != nil {
		return nil, err
	}
	return &compareNode{op: op, args: items}, nil
}

func buildLogic(op string, args []value.Value) (node, error) {
	items, err := compileAll(args)
	if err != nil {
		return nil, err
	}
	return &logicNode{and: op == "and", args: items}, nil
}

func buildNot(op string, args []value.Value) (node, error) {
	arg, err := compile(args[0])
	if err != nil {
		return nil, err
	}
	return &notNode{double: op == "!!", arg: arg}, nil
}

func buildConcat(_ string, args []value.Value) (node, error) {
	items, err := compileAll(args)
	if err != nil {
		return nil, err
	}
	return &concatNode{args: items}, nil
}

func buildSubstr(_ string, args []value.Value) (node, error) {
	items, err := compileAll(args)
	if err != nil {
		return nil, err
	}
	return &substrNode{args: items}, nil
}

func buildIn(_ string, args []value.Value) (node, error) {
	items, err := compileAll(args)
	if err != nil {
		return nil, err
	}
	return &inNode{needle: items[0], haystack: items[1]}, nil
}

func buildArith(op string, args []value.Value) (node, error) {
	items, err := compileAll(args)
	if err != nil {
		return nil, err
	}
	return &arithNode{op: op, args: items}, nil
}

func buildMinMax(op string, args []value.Value) (node, error) {
	items, err := compileAll(args)
	if err != nil {
		return nil, err
	}
	return &minMaxNode{max: op == "max", args: items}, nil
}

func buildIterate(op string, args []value.Value) (node, error) {
	source, err := compile(args[0])
	if err != nil {
		return nil, err
	}
	body, err := compile(args[1])
	if err != nil {
		return nil, err
	}
	return &iterateNode{op: op, source: source, body: body}, nil
}

func buildReduce(_ string, args []value.Value) (node, error) {
	items, err := compileAll(args)
	if err != nil {
		return nil, err
	}
	ret := &reduceNode{source: items[0], body: items[1], initial: &literalNode{v: value.Null()}}
	if len(items) > 2 {
		ret.initial = items[2]
	}
	return ret, nil
}

func buildMerge(_ string, args []value.Value) (node, error) {
	items, err := compileAll(args)
	if err != nil {
		return nil, err
	}
	return &mergeNode{args: items}, nil
}

func buildStringTest(op string, args []value.Value) (node, error) {
	items, err := compileAll(args)
	if err != nil {
		return nil, err
	}
	return &stringTestNode{suffix: op == "ends_with", subject: items[0], affix: items[1]}, nil
}

func buildStringFunc(op string, args []value.Value) (node, error) {
	items, err := compileAll(args)
	if err != nil {
		return nil, err
	}
	return &stringFuncNode{op: op, args: items}, nil
}
