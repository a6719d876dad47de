package condition

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

// identifierCollector gathers free identifiers from an expression tree.
type identifierCollector struct {
	names    map[string]bool
	callees  map[string]bool
	declared map[string]bool
}

func (c *identifierCollector) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		c.names[n.Value] = true
	case *ast.CallNode:
		if id, ok := n.Callee.(*ast.IdentifierNode); ok {
			c.callees[id.Value] = true
		}
	case *ast.VariableDeclaratorNode:
		c.declared[n.Name] = true
	}
}

// Identifiers returns the sorted variable names an expression reads.
// Function names and let-bound names are excluded.
func Identifiers(src string) ([]string, error) {
	tree, err := parser.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing expression %q: %w", src, err)
	}

	c := &identifierCollector{
		names:    map[string]bool{},
		callees:  map[string]bool{},
		declared: map[string]bool{},
	}
	ast.Walk(&tree.Node, c)

	var out []string
	for name := range c.names {
		if c.callees[name] || c.declared[name] {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// Missing returns the identifiers of src that vars does not define.
func Missing(src string, vars map[string]any) ([]string, error) {
	names, err := Identifiers(src)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, name := range names {
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

// Run evaluates src against vars and returns its raw result. Only vars is
// visible to the expression.
func Run(src string, vars map[string]any) (any, error) {
	if vars == nil {
		vars = map[string]any{}
	}
	program, err := expr.Compile(src, expr.Env(vars))
	if err != nil {
		return nil, fmt.Errorf("compiling expression %q: %w", src, err)
	}
	out, err := expr.Run(program, vars)
	if err != nil {
		return nil, fmt.Errorf("evaluating expression %q: %w", src, err)
	}
	return out, nil
}

// EvaluateExpression evaluates src as a boolean condition. An expression
// that reads a variable absent from vars is false, matching Evaluate.
func EvaluateExpression(src string, vars map[string]any) (bool, error) {
	missing, err := Missing(src, vars)
	if err != nil {
		return false, err
	}
	if len(missing) > 0 {
		return false, nil
	}
	out, err := Run(src, vars)
	if err != nil {
		return false, err
	}
	return Truthy(out), nil
}

// Truthy applies template truthiness: false, nil, zero numbers, empty
// strings and empty collections are false.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	if f, ok := toFloat(v); ok {
		return f != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}
