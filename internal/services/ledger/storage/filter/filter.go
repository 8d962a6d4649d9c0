// Package filter provides AIP-160 filter expression parsing for ledger history.
//
// A parsed filter can be pushed down to SQL or evaluated against events in
// memory; both forms come from the same checked expression.
package filter

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/event"
)

// EventDeclarations returns the field declarations for history filtering.
func EventDeclarations() (*filtering.Declarations, error) {
	return filtering.NewDeclarations(
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent("type", filtering.TypeString),
		filtering.DeclareIdent("year", filtering.TypeString),
		filtering.DeclareIdent("month", filtering.TypeInt),
		filtering.DeclareIdent("day", filtering.TypeInt),
		filtering.DeclareIdent("ts", filtering.TypeTimestamp),
	)
}

// SQLCondition represents a SQL WHERE clause fragment with parameters.
type SQLCondition struct {
	// Clause is the SQL WHERE clause (e.g., "kind = ?").
	Clause string
	// Params are the positional parameters for the clause.
	Params []any
}

// Filter is a parsed history filter. The zero value matches every event.
type Filter struct {
	text  string
	cond  SQLCondition
	match func(event.Event) bool
}

// fieldMapping maps filter field names to SQL column names.
var fieldMapping = map[string]string{
	"type":  "kind",
	"year":  "era",
	"month": "month",
	"day":   "day",
	"ts":    "timestamp",
}

// Parse parses an AIP-160 filter expression. An empty string yields a filter
// that matches everything.
func Parse(filterStr string) (Filter, error) {
	text := strings.TrimSpace(filterStr)
	if text == "" {
		return Filter{}, nil
	}

	decls, err := EventDeclarations()
	if err != nil {
		return Filter{}, fmt.Errorf("create declarations: %w", err)
	}

	parsed, err := filtering.ParseFilterString(text, decls)
	if err != nil {
		return Filter{}, fmt.Errorf("parse filter: %w", err)
	}

	node, err := translateExpr(parsed.CheckedExpr.GetExpr())
	if err != nil {
		return Filter{}, err
	}
	return Filter{text: text, cond: node.cond, match: node.match}, nil
}

// Empty reports whether the filter matches everything.
func (f Filter) Empty() bool {
	return f.match == nil
}

// String returns the filter text.
func (f Filter) String() string {
	return f.text
}

// Condition returns the SQL form of the filter.
func (f Filter) Condition() SQLCondition {
	return f.cond
}

// Match reports whether evt satisfies the filter.
func (f Filter) Match(evt event.Event) bool {
	if f.match == nil {
		return true
	}
	return f.match(evt)
}

// Apply returns the events of ledger that satisfy the filter, in order.
func (f Filter) Apply(ledger event.Ledger) event.Ledger {
	if f.Empty() {
		return ledger.Clone()
	}
	out := make(event.Ledger, 0, len(ledger))
	for _, evt := range ledger {
		if f.match(evt) {
			out = append(out, evt)
		}
	}
	return out
}

type node struct {
	cond  SQLCondition
	match func(event.Event) bool
}

// translateExpr translates a checked expression into SQL and a predicate.
func translateExpr(e *expr.Expr) (node, error) {
	if e == nil {
		return node{}, fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_CallExpr:
		return translateCall(kind.CallExpr)
	default:
		return node{}, fmt.Errorf("unsupported expression type: %T", kind)
	}
}

func translateCall(call *expr.Expr_Call) (node, error) {
	switch call.Function {
	case filtering.FunctionAnd, filtering.FunctionFuzzyAnd:
		return translateLogical(call.Args, "AND")
	case filtering.FunctionOr:
		return translateLogical(call.Args, "OR")
	case filtering.FunctionNot:
		return translateNot(call.Args)
	case filtering.FunctionEquals, filtering.FunctionNotEquals,
		filtering.FunctionLessThan, filtering.FunctionLessEquals,
		filtering.FunctionGreaterThan, filtering.FunctionGreaterEquals:
		return translateComparison(call.Args, call.Function)
	default:
		return node{}, fmt.Errorf("unsupported function: %s", call.Function)
	}
}

func translateLogical(args []*expr.Expr, op string) (node, error) {
	if len(args) != 2 {
		return node{}, fmt.Errorf("%s requires 2 arguments", op)
	}

	left, err := translateExpr(args[0])
	if err != nil {
		return node{}, err
	}
	right, err := translateExpr(args[1])
	if err != nil {
		return node{}, err
	}

	params := make([]any, 0, len(left.cond.Params)+len(right.cond.Params))
	params = append(params, left.cond.Params...)
	params = append(params, right.cond.Params...)
	out := node{cond: SQLCondition{
		Clause: fmt.Sprintf("(%s %s %s)", left.cond.Clause, op, right.cond.Clause),
		Params: params,
	}}
	if op == "AND" {
		out.match = func(evt event.Event) bool { return left.match(evt) && right.match(evt) }
	} else {
		out.match = func(evt event.Event) bool { return left.match(evt) || right.match(evt) }
	}
	return out, nil
}

func translateNot(args []*expr.Expr) (node, error) {
	if len(args) != 1 {
		return node{}, fmt.Errorf("NOT requires 1 argument")
	}
	inner, err := translateExpr(args[0])
	if err != nil {
		return node{}, err
	}
	return node{
		cond:  SQLCondition{Clause: fmt.Sprintf("(NOT %s)", inner.cond.Clause), Params: inner.cond.Params},
		match: func(evt event.Event) bool { return !inner.match(evt) },
	}, nil
}

func translateComparison(args []*expr.Expr, op string) (node, error) {
	if len(args) != 2 {
		return node{}, fmt.Errorf("comparison requires 2 arguments")
	}

	field, err := extractFieldName(args[0])
	if err != nil {
		return node{}, err
	}
	column, ok := fieldMapping[field]
	if !ok {
		return node{}, fmt.Errorf("unknown field: %s", field)
	}

	switch field {
	case "type", "year":
		value, err := extractString(args[1])
		if err != nil {
			return node{}, fmt.Errorf("%s: %w", field, err)
		}
		get := func(evt event.Event) string { return string(evt.Kind) }
		if field == "year" {
			get = func(evt event.Event) string { return evt.Era }
		}
		return comparison(column, op, value, get), nil
	case "month", "day":
		value, err := extractInt(args[1])
		if err != nil {
			return node{}, fmt.Errorf("%s: %w", field, err)
		}
		get := func(evt event.Event) int64 { return int64(evt.Month) }
		if field == "day" {
			get = func(evt event.Event) int64 { return int64(evt.Day) }
		}
		return comparison(column, op, value, get), nil
	default:
		value, err := extractTimestamp(args[1])
		if err != nil {
			return node{}, fmt.Errorf("%s: %w", field, err)
		}
		return comparison(column, op, value, func(evt event.Event) int64 { return evt.Timestamp }), nil
	}
}

func comparison[T cmp.Ordered](column, op string, value T, get func(event.Event) T) node {
	return node{
		cond: SQLCondition{
			Clause: fmt.Sprintf("%s %s ?", column, op),
			Params: []any{value},
		},
		match: func(evt event.Event) bool {
			c := cmp.Compare(get(evt), value)
			switch op {
			case filtering.FunctionEquals:
				return c == 0
			case filtering.FunctionNotEquals:
				return c != 0
			case filtering.FunctionLessThan:
				return c < 0
			case filtering.FunctionLessEquals:
				return c <= 0
			case filtering.FunctionGreaterThan:
				return c > 0
			default:
				return c >= 0
			}
		},
	}
}

func extractFieldName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_IdentExpr:
		return kind.IdentExpr.Name, nil
	default:
		return "", fmt.Errorf("expected identifier, got %T", kind)
	}
}

func extractString(e *expr.Expr) (string, error) {
	c, ok := e.GetExprKind().(*expr.Expr_ConstExpr)
	if !ok {
		return "", fmt.Errorf("expected string constant")
	}
	value, ok := c.ConstExpr.GetConstantKind().(*expr.Constant_StringValue)
	if !ok {
		return "", fmt.Errorf("expected string constant, got %T", c.ConstExpr.GetConstantKind())
	}
	return value.StringValue, nil
}

func extractInt(e *expr.Expr) (int64, error) {
	c, ok := e.GetExprKind().(*expr.Expr_ConstExpr)
	if !ok {
		return 0, fmt.Errorf("expected integer constant")
	}
	value, ok := c.ConstExpr.GetConstantKind().(*expr.Constant_Int64Value)
	if !ok {
		return 0, fmt.Errorf("expected integer constant, got %T", c.ConstExpr.GetConstantKind())
	}
	return value.Int64Value, nil
}

// extractTimestamp accepts timestamp("...") calls and bare RFC 3339 strings
// and returns UTC epoch seconds.
func extractTimestamp(e *expr.Expr) (int64, error) {
	if call, ok := e.GetExprKind().(*expr.Expr_CallExpr); ok {
		if call.CallExpr.Function != filtering.FunctionTimestamp || len(call.CallExpr.Args) != 1 {
			return 0, fmt.Errorf("unsupported function in value position: %s", call.CallExpr.Function)
		}
		e = call.CallExpr.Args[0]
	}
	text, err := extractString(e)
	if err != nil {
		return 0, fmt.Errorf("timestamp argument must be a constant string")
	}
	t, err := time.Parse(time.RFC3339Nano, text)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp format: %s", text)
	}
	return t.Unix(), nil
}
