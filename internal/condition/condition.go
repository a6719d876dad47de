// Package condition evaluates the {variable, operator, value} rules that gate
// variable visibility and structure nodes, plus expression conditions written
// in the expr language.
package condition

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/opmodel/projgen/internal/output"
)

// Operator is the comparison applied by a Condition.
type Operator string

const (
	Equals      Operator = "equals"
	NotEquals   Operator = "not_equals"
	In          Operator = "in"
	NotIn       Operator = "not_in"
	Contains    Operator = "contains"
	NotContains Operator = "not_contains"
)

// Operators returns every supported operator.
func Operators() []Operator {
	return []Operator{Equals, NotEquals, In, NotIn, Contains, NotContains}
}

// Valid reports whether o is a supported operator.
func (o Operator) Valid() bool {
	switch o {
	case Equals, NotEquals, In, NotIn, Contains, NotContains:
		return true
	}
	return false
}

// Condition compares a previously resolved variable against a value.
type Condition struct {
	Variable string   `yaml:"variable" json:"variable"`
	Operator Operator `yaml:"operator" json:"operator"`
	Value    any      `yaml:"value" json:"value"`
}

// String renders the condition for log and error messages.
func (c Condition) String() string {
	return fmt.Sprintf("%s %s %v", c.Variable, c.Operator, c.Value)
}

// Evaluate applies c to vars.
//
// A variable missing from vars makes the condition false regardless of the
// operator. An unknown operator is logged and evaluates to true. A non-nil
// error means evaluation itself faulted; callers decide the fallback.
func Evaluate(c Condition, vars map[string]any) (result bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = false
			err = fmt.Errorf("evaluating condition %q: %v", c.String(), r)
		}
	}()

	if c.Variable == "" {
		return false, fmt.Errorf("condition has no variable")
	}

	actual, ok := vars[c.Variable]
	if !ok {
		return false, nil
	}

	switch c.Operator {
	case Equals:
		return Equal(actual, c.Value), nil
	case NotEquals:
		return !Equal(actual, c.Value), nil
	case In:
		items, isList := asList(c.Value)
		if !isList {
			return false, nil
		}
		return containsEqual(items, actual), nil
	case NotIn:
		items, isList := asList(c.Value)
		if !isList {
			return true, nil
		}
		return !containsEqual(items, actual), nil
	case Contains:
		return strings.Contains(fmt.Sprint(actual), fmt.Sprint(c.Value)), nil
	case NotContains:
		return !strings.Contains(fmt.Sprint(actual), fmt.Sprint(c.Value)), nil
	default:
		output.Warn("unknown condition operator, treating as true",
			"operator", string(c.Operator), "variable", c.Variable)
		return true, nil
	}
}

// EvaluateAll reports whether every condition holds. It stops at the first
// false condition or fault.
func EvaluateAll(conds []Condition, vars map[string]any) (bool, error) {
	for _, c := range conds {
		ok, err := Evaluate(c, vars)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// EvaluateAny reports whether at least one condition holds.
func EvaluateAny(conds []Condition, vars map[string]any) (bool, error) {
	for _, c := range conds {
		ok, err := Evaluate(c, vars)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Equal compares two decoded values. Numbers compare by value across Go
// numeric types so YAML ints match JSON floats; everything else uses deep
// equality.
func Equal(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func containsEqual(items []any, v any) bool {
	for _, item := range items {
		if Equal(item, v) {
			return true
		}
	}
	return false
}

func asList(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
