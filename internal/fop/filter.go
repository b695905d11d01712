package fop

import (
	"fmt"
	"strings"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// Condition is a parameterized SQL predicate compiled from a filter
// expression. Values are always bound as parameters; field names can only
// come from the whitelist, so no request text ever reaches the query verbatim.
type Condition struct {
	Clause string
	Params []interface{}
}

// ParseFilter compiles a filter expression into a Condition. The grammar is
// the AIP-160 subset of comparisons (=, !=, <, <=, >, >=) over declared
// fields, combined with AND, OR, NOT and parentheses. An empty expression
// yields an empty condition that matches every row.
func ParseFilter(fields Fields, filter string) (Condition, error) {
	if strings.TrimSpace(filter) == "" {
		return Condition{}, nil
	}

	var parser filtering.Parser
	parser.Init(filter)
	parsed, err := parser.Parse()
	if err != nil {
		return Condition{}, parseErrorf("filter", "malformed filter expression: %v", err)
	}

	t := translator{fields: fields}
	return t.translate(parsed.GetExpr())
}

type translator struct {
	fields Fields
}

func (t translator) translate(e *expr.Expr) (Condition, error) {
	if e == nil {
		return Condition{}, parseErrorf("filter", "empty filter expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_CallExpr:
		return t.translateCall(kind.CallExpr)
	default:
		return Condition{}, parseErrorf("filter", "unsupported expression: %T", kind)
	}
}

func (t translator) translateCall(call *expr.Expr_Call) (Condition, error) {
	switch call.Function {
	case filtering.FunctionAnd, "_&&_":
		return t.translateLogical(call.Args, "AND")
	case filtering.FunctionOr, "_||_":
		return t.translateLogical(call.Args, "OR")
	case filtering.FunctionNot, "!_":
		return t.translateNot(call.Args)
	case filtering.FunctionEquals, "_==_":
		return t.translateComparison(call.Args, "=")
	case filtering.FunctionNotEquals, "_!=_":
		return t.translateComparison(call.Args, "<>")
	case filtering.FunctionLessThan, "_<_":
		return t.translateComparison(call.Args, "<")
	case filtering.FunctionLessEquals, "_<=_":
		return t.translateComparison(call.Args, "<=")
	case filtering.FunctionGreaterThan, "_>_":
		return t.translateComparison(call.Args, ">")
	case filtering.FunctionGreaterEquals, "_>=_":
		return t.translateComparison(call.Args, ">=")
	default:
		return Condition{}, parseErrorf("filter", "unsupported operator: %s", call.Function)
	}
}

func (t translator) translateLogical(args []*expr.Expr, op string) (Condition, error) {
	if len(args) != 2 {
		return Condition{}, parseErrorf("filter", "%s requires two operands", op)
	}

	left, err := t.translate(args[0])
	if err != nil {
		return Condition{}, err
	}
	right, err := t.translate(args[1])
	if err != nil {
		return Condition{}, err
	}

	return Condition{
		Clause: fmt.Sprintf("(%s %s %s)", left.Clause, op, right.Clause),
		Params: append(left.Params, right.Params...),
	}, nil
}

func (t translator) translateNot(args []*expr.Expr) (Condition, error) {
	if len(args) != 1 {
		return Condition{}, parseErrorf("filter", "NOT requires one operand")
	}

	inner, err := t.translate(args[0])
	if err != nil {
		return Condition{}, err
	}

	return Condition{
		Clause: fmt.Sprintf("NOT (%s)", inner.Clause),
		Params: inner.Params,
	}, nil
}

func (t translator) translateComparison(args []*expr.Expr, op string) (Condition, error) {
	if len(args) != 2 {
		return Condition{}, parseErrorf("filter", "comparison requires two operands")
	}

	name, err := fieldName(args[0])
	if err != nil {
		return Condition{}, err
	}

	field, ok := t.fields[name]
	if !ok {
		return Condition{}, parseErrorf("filter", "unknown field: %s", name)
	}

	value, err := literalValue(args[1])
	if err != nil {
		return Condition{}, err
	}

	coerced, err := coerce(name, field.Type, value)
	if err != nil {
		return Condition{}, err
	}

	return Condition{
		Clause: fmt.Sprintf("%s %s ?", field.Column, op),
		Params: []interface{}{coerced},
	}, nil
}

func fieldName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", parseErrorf("filter", "missing field name")
	}
	ident, ok := e.ExprKind.(*expr.Expr_IdentExpr)
	if !ok {
		return "", parseErrorf("filter", "expected a field name, got %T", e.ExprKind)
	}
	return ident.IdentExpr.Name, nil
}

// literalValue extracts the literal on the value side of a comparison. Bare
// words parse as identifiers under the AIP grammar, so idents in value
// position are treated as text.
func literalValue(e *expr.Expr) (interface{}, error) {
	if e == nil {
		return nil, parseErrorf("filter", "missing comparison value")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_ConstExpr:
		switch c := kind.ConstExpr.ConstantKind.(type) {
		case *expr.Constant_StringValue:
			return c.StringValue, nil
		case *expr.Constant_Int64Value:
			return c.Int64Value, nil
		case *expr.Constant_Uint64Value:
			return int64(c.Uint64Value), nil
		case *expr.Constant_DoubleValue:
			return c.DoubleValue, nil
		case *expr.Constant_BoolValue:
			return c.BoolValue, nil
		default:
			return nil, parseErrorf("filter", "unsupported literal: %T", c)
		}
	case *expr.Expr_IdentExpr:
		return kind.IdentExpr.Name, nil
	default:
		return nil, parseErrorf("filter", "expected a literal value, got %T", kind)
	}
}

// coerce checks the literal against the declared field type. Integer
// literals compare fine against float columns, so that pairing is widened
// instead of rejected.
func coerce(name string, fieldType FieldType, value interface{}) (interface{}, error) {
	switch fieldType {
	case String:
		if s, ok := value.(string); ok {
			return s, nil
		}
		return nil, parseErrorf("filter", "field %s expects a string value", name)
	case Int:
		if i, ok := value.(int64); ok {
			return i, nil
		}
		return nil, parseErrorf("filter", "field %s expects an integer value", name)
	case Float:
		switch v := value.(type) {
		case float64:
			return v, nil
		case int64:
			return float64(v), nil
		}
		return nil, parseErrorf("filter", "field %s expects a numeric value", name)
	case Bool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			// The AIP grammar has no boolean literal; true/false arrive
			// as bare words.
			switch strings.ToLower(v) {
			case "true":
				return true, nil
			case "false":
				return false, nil
			}
		}
		return nil, parseErrorf("filter", "field %s expects true or false", name)
	default:
		return nil, parseErrorf("filter", "field %s has an unsupported type", name)
	}
}
