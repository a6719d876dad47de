package textrender

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/opmodel/projgen/internal/condition"
)

type state struct {
	vars map[string]any
	out  strings.Builder
}

// execError carries the line of the failing node.
type execError struct {
	line int
	msg  string
}

func (e *execError) Error() string {
	return fmt.Sprintf("line %d: %s", e.line, e.msg)
}

func (s *state) walk(nodes []node) error {
	for _, n := range nodes {
		if err := s.exec(n); err != nil {
			return err
		}
	}
	return nil
}

func (s *state) exec(n node) error {
	switch n := n.(type) {
	case textNode:
		s.out.WriteString(n.text)
	case *outputNode:
		v, err := s.eval(n.expr, n.line)
		if err != nil {
			return err
		}
		str := stringify(v)
		for _, f := range n.filters {
			str = filters[f](str)
		}
		s.out.WriteString(str)
	case *ifNode:
		for _, b := range n.branches {
			v, err := s.eval(b.cond, b.line)
			if err != nil {
				return err
			}
			if condition.Truthy(v) {
				return s.walk(b.body)
			}
		}
		return s.walk(n.elseBody)
	case *forNode:
		v, err := s.eval(n.list, n.line)
		if err != nil {
			return err
		}
		items, err := iterate(v)
		if err != nil {
			return &execError{line: n.line, msg: fmt.Sprintf("cannot loop over %q: %v", n.list, err)}
		}
		prev, had := s.vars[n.item]
		defer func() {
			if had {
				s.vars[n.item] = prev
			} else {
				delete(s.vars, n.item)
			}
		}()
		for _, item := range items {
			s.vars[n.item] = item
			if err := s.walk(n.body); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *state) eval(src string, line int) (any, error) {
	missing, err := condition.Missing(src, s.vars)
	if err != nil {
		return nil, &execError{line: line, msg: err.Error()}
	}
	if len(missing) > 0 {
		return nil, &execError{line: line, msg: fmt.Sprintf("'%s' is undefined", missing[0])}
	}
	v, err := condition.Run(src, s.vars)
	if err != nil {
		return nil, &execError{line: line, msg: err.Error()}
	}
	return v, nil
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// iterate returns the items a for loop visits: list elements, sorted map
// keys, or the runes of a string.
func iterate(v any) ([]any, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok {
		items := make([]any, 0, len(s))
		for _, r := range s {
			items = append(items, string(r))
		}
		return items, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return items, nil
	case reflect.Map:
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, fmt.Sprint(k.Interface()))
		}
		sort.Strings(keys)
		items := make([]any, len(keys))
		for i, k := range keys {
			items[i] = k
		}
		return items, nil
	}
	return nil, fmt.Errorf("%T is not iterable", v)
}
