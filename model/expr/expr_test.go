package expr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/model/value"
)

func mustJSON(t *testing.T, text string) value.Value {
	ret, err := value.ParseJSON([]byte(text))
	if err != nil {
		t.Fatalf("invalid json %v: %v", text, err)
	}
	return ret
}

func TestExpression_Evaluate(t *testing.T) {
	scope := `{"document":{"ref":"REF1","amount":"100.50","items":[1,2,3,4],"parties":[{"bic":"AAAABBCC"},{"bic":"DDDDEEFF"}],"empty":""},"metadata":{"variant":"stp"}}`
	var testCases = []struct {
		description string
		rule        string
		expect      string
	}{
		{description: "var", rule: `{"var":"document.ref"}`, expect: `"REF1"`},
		{description: "var index", rule: `{"var":"document.parties.1.bic"}`, expect: `"DDDDEEFF"`},
		{description: "var default", rule: `{"var":["document.none","x"]}`, expect: `"x"`},
		{description: "var missing", rule: `{"var":"document.none"}`, expect: `null`},
		{description: "var root", rule: `{"map":[{"var":"document.items"},{"var":""}]}`, expect: `[1,2,3,4]`},
		{description: "missing", rule: `{"missing":["document.ref","document.none","document.empty"]}`, expect: `["document.none","document.empty"]`},
		{description: "missing some satisfied", rule: `{"missing_some":[1,["document.ref","document.none"]]}`, expect: `[]`},
		{description: "missing some unsatisfied", rule: `{"missing_some":[2,["document.ref","document.none"]]}`, expect: `["document.none"]`},
		{description: "exists", rule: `{"exists":"metadata.variant"}`, expect: `true`},
		{description: "if else", rule: `{"if":[{"==":[{"var":"metadata.variant"},"cov"]},"a",{"==":[{"var":"metadata.variant"},"stp"]},"b","c"]}`, expect: `"b"`},
		{description: "loose equal", rule: `{"==":[{"var":"document.amount"},100.5]}`, expect: `true`},
		{description: "strict equal", rule: `{"===":[{"var":"document.amount"},100.5]}`, expect: `false`},
		{description: "not equal", rule: `{"!=":[1,2]}`, expect: `true`},
		{description: "between", rule: `{"<":[1,{"var":"document.amount"},200]}`, expect: `true`},
		{description: "lexical compare", rule: `{"<":["abc","abd"]}`, expect: `true`},
		{description: "numeric string compare", rule: `{">":["10","9"]}`, expect: `true`},
		{description: "and returns deciding value", rule: `{"and":[1,"",3]}`, expect: `""`},
		{description: "or returns first truthy", rule: `{"or":[0,"x"]}`, expect: `"x"`},
		{description: "not", rule: `{"!":[{"var":"document.empty"}]}`, expect: `true`},
		{description: "double not", rule: `{"!!":[{"var":"document.items"}]}`, expect: `true`},
		{description: "cat", rule: `{"cat":["R:",{"var":"document.ref"},1.50,null]}`, expect: `"R:REF11.5"`},
		{description: "substr", rule: `{"substr":["AAAABBCCXXX",4,2]}`, expect: `"BB"`},
		{description: "substr negative", rule: `{"substr":["AAAABBCCXXX",-3]}`, expect: `"XXX"`},
		{description: "in string", rule: `{"in":["BB","AAAABBCC"]}`, expect: `true`},
		{description: "in sequence", rule: `{"in":[3,{"var":"document.items"}]}`, expect: `true`},
		{description: "missing needle not in string", rule: `{"in":[{"var":"document.absent"},"EURUSD"]}`, expect: `false`},
		{description: "missing needle not in sequence", rule: `{"in":[{"var":"document.absent"},[null,"EUR"]]}`, expect: `false`},
		{description: "empty needle not in string", rule: `{"in":["","EURUSD"]}`, expect: `false`},
		{description: "needle in number", rule: `{"in":["1",12]}`, expect: `false`},
		{description: "sum", rule: `{"+":[{"var":"document.amount"},"0.25",1]}`, expect: `101.75`},
		{description: "negate", rule: `{"-":[2]}`, expect: `-2`},
		{description: "divide", rule: `{"/":[1,4]}`, expect: `0.25`},
		{description: "divide by zero", rule: `{"/":[1,0]}`, expect: `null`},
		{description: "non numeric", rule: `{"*":["x",2]}`, expect: `null`},
		{description: "modulo", rule: `{"%":[7,3]}`, expect: `1`},
		{description: "max", rule: `{"max":[1,"7",3]}`, expect: `7`},
		{description: "min empty", rule: `{"min":[]}`, expect: `null`},
		{description: "map", rule: `{"map":[{"var":"document.items"},{"*":[{"var":""},2]}]}`, expect: `[2,4,6,8]`},
		{description: "map parties", rule: `{"map":[{"var":"document.parties"},{"var":"bic"}]}`, expect: `["AAAABBCC","DDDDEEFF"]`},
		{description: "filter", rule: `{"filter":[{"var":"document.items"},{">":[{"var":""},2]}]}`, expect: `[3,4]`},
		{description: "reduce", rule: `{"reduce":[{"var":"document.items"},{"+":[{"var":"current"},{"var":"accumulator"}]},0]}`, expect: `10`},
		{description: "map over non sequence", rule: `{"map":[{"var":"document.ref"},{"var":""}]}`, expect: `[]`},
		{description: "all", rule: `{"all":[{"var":"document.items"},{">":[{"var":""},0]}]}`, expect: `true`},
		{description: "all empty", rule: `{"all":[[],{"var":""}]}`, expect: `false`},
		{description: "some", rule: `{"some":[{"var":"document.items"},{">":[{"var":""},3]}]}`, expect: `true`},
		{description: "none", rule: `{"none":[{"var":"document.items"},{">":[{"var":""},10]}]}`, expect: `true`},
		{description: "merge", rule: `{"merge":[[1,2],3,[[4]]]}`, expect: `[1,2,3,[4]]`},
		{description: "starts with", rule: `{"starts_with":[{"var":"document.ref"},"REF"]}`, expect: `true`},
		{description: "ends with", rule: `{"ends_with":[{"var":"document.ref"},"X"]}`, expect: `false`},
		{description: "upper", rule: `{"upper":"eur"}`, expect: `"EUR"`},
		{description: "trim", rule: `{"trim":"  a "}`, expect: `"a"`},
		{description: "length", rule: `{"length":{"var":"document.items"}}`, expect: `4`},
		{description: "split", rule: `{"split":["a/b/c","/"]}`, expect: `["a","b","c"]`},
		{description: "replace", rule: `{"replace":["100,50",",","."]}`, expect: `"100.50"`},
		{description: "preserve", rule: `{"preserve":{"var":"x"}}`, expect: `{"var":"x"}`},
		{description: "literal", rule: `"text"`, expect: `"text"`},
		{description: "array literal", rule: `[1,{"var":"metadata.variant"}]`, expect: `[1,"stp"]`},
	}
	root := mustJSON(t, scope)
	for _, testCase := range testCases {
		expression, err := CompileJSON(testCase.rule)
		if !assert.NoError(t, err, testCase.description) {
			continue
		}
		actual, err := expression.Evaluate(root)
		if !assert.NoError(t, err, testCase.description) {
			continue
		}
		data, _ := actual.MarshalJSON()
		assert.Equal(t, testCase.expect, string(data), testCase.description)
	}
}

func TestCompile_Errors(t *testing.T) {
	var testCases = []struct {
		description string
		rule        string
	}{
		{description: "unknown operator", rule: `{"bogus":[1]}`},
		{description: "multi key object", rule: `{"var":"a","cat":"b"}`},
		{description: "if without else", rule: `{"if":[true,"a"]}`},
		{description: "wrong arity", rule: `{"==":[1]}`},
		{description: "nested unknown", rule: `{"and":[true,{"nope":1}]}`},
		{description: "not enough reduce operands", rule: `{"reduce":[[1]]}`},
	}
	for _, testCase := range testCases {
		_, err := CompileJSON(testCase.rule)
		assert.True(t, errors.Is(err, types.ErrConfig), "%v: %v", testCase.description, err)
	}
}

func TestExpression_MissingPathPolicy(t *testing.T) {
	expression, err := CompileJSON(`{"var":"document.absent"}`)
	assert.NoError(t, err)
	scope := mustJSON(t, `{"document":{}}`)

	actual, err := expression.Evaluate(scope)
	assert.NoError(t, err)
	assert.True(t, actual.IsNull())

	_, err = expression.Evaluate(scope, WithMissingPath(MissingStrict))
	assert.True(t, errors.Is(err, types.ErrMapping))
	assert.Contains(t, err.Error(), "document.absent")

	withDefault, _ := CompileJSON(`{"var":["document.absent",1]}`)
	actual, err = withDefault.Evaluate(scope, WithMissingPath(MissingStrict))
	assert.NoError(t, err)
	assert.Equal(t, "1", actual.String())
}

func TestExpression_Pure(t *testing.T) {
	scope := mustJSON(t, `{"items":[3,1,2]}`)
	before := value.Clone(scope)
	expression, _ := CompileJSON(`{"merge":[{"var":"items"},[9]]}`)
	_, err := expression.Evaluate(scope)
	assert.NoError(t, err)
	assert.True(t, value.Equal(before, scope))
}

func TestExpression_Test(t *testing.T) {
	var nilExpr *Expression
	ok, err := nilExpr.Test(value.Null())
	assert.NoError(t, err)
	assert.True(t, ok)

	expression, _ := CompileJSON(`{"==":[{"var":"a"},1]}`)
	ok, err = expression.Test(mustJSON(t, `{"a":"1"}`))
	assert.NoError(t, err)
	assert.True(t, ok)
}
