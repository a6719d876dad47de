package schema

import (
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/spf13/cast"

	"github.com/opmodel/projgen/internal/condition"
)

var patternCache sync.Map // map[string]*regexp.Regexp

func compilePattern(p string) (*regexp.Regexp, error) {
	if re, ok := patternCache.Load(p); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(p)
	if err != nil {
		return nil, err
	}
	patternCache.Store(p, re)
	return re, nil
}

// Validate checks value against the variable's type and rules and returns
// it converted to the canonical Go type: string, bool, int, float64 or []any.
// Strings coming from forms or flags are coerced for boolean, integer, float
// and list variables.
func (v Variable) Validate(value any) (any, error) {
	if value == nil {
		return nil, fmt.Errorf("value is null")
	}
	switch v.Type {
	case TypeString:
		s, err := scalarString(value)
		if err != nil {
			return nil, err
		}
		return s, v.checkString(s)
	case TypeBoolean:
		b, err := cast.ToBoolE(value)
		if err != nil {
			return nil, fmt.Errorf("expected a boolean, got %v", value)
		}
		return b, nil
	case TypeInteger:
		n, err := toInteger(value)
		if err != nil {
			return nil, err
		}
		return n, v.checkRange(float64(n))
	case TypeFloat:
		f, err := cast.ToFloat64E(value)
		if err != nil {
			return nil, fmt.Errorf("expected a number, got %v", value)
		}
		return f, v.checkRange(f)
	case TypeChoice:
		for _, c := range v.Choices {
			if condition.Equal(c, value) || fmt.Sprint(c) == fmt.Sprint(value) {
				return c, nil
			}
		}
		return nil, fmt.Errorf("value %v is not one of %s", value, formatChoices(v.Choices))
	case TypeList:
		items, err := toList(value)
		if err != nil {
			return nil, err
		}
		return items, v.checkList(items)
	case TypeEmail:
		s, err := scalarString(value)
		if err != nil {
			return nil, err
		}
		addr, err := mail.ParseAddress(s)
		if err != nil || addr.Address != s {
			return nil, fmt.Errorf("%q is not a valid email address", s)
		}
		return s, v.checkString(s)
	case TypeURL:
		s, err := scalarString(value)
		if err != nil {
			return nil, err
		}
		u, err := url.Parse(s)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("%q is not an absolute URL", s)
		}
		return s, v.checkString(s)
	case TypePath:
		s, err := scalarString(value)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("path must not be empty")
		}
		if strings.ContainsRune(s, 0) {
			return nil, fmt.Errorf("path contains a NUL byte")
		}
		return s, v.checkString(s)
	default:
		return nil, fmt.Errorf("unknown type %q", v.Type)
	}
}

func (v Variable) checkString(s string) error {
	r := v.Validation
	if r == nil {
		return nil
	}
	n := len([]rune(s))
	if r.MinLength != nil && n < *r.MinLength {
		return fmt.Errorf("must be at least %d characters", *r.MinLength)
	}
	if r.MaxLength != nil && n > *r.MaxLength {
		return fmt.Errorf("must be at most %d characters", *r.MaxLength)
	}
	if r.Pattern != "" {
		re, err := compilePattern(r.Pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %q: %w", r.Pattern, err)
		}
		if !re.MatchString(s) {
			return fmt.Errorf("%q does not match pattern %s", s, r.Pattern)
		}
	}
	return nil
}

func (v Variable) checkRange(f float64) error {
	r := v.Validation
	if r == nil {
		return nil
	}
	if r.MinValue != nil && f < *r.MinValue {
		return fmt.Errorf("must be >= %v", *r.MinValue)
	}
	if r.MaxValue != nil && f > *r.MaxValue {
		return fmt.Errorf("must be <= %v", *r.MaxValue)
	}
	return nil
}

func (v Variable) checkList(items []any) error {
	if len(v.Choices) > 0 {
		for _, item := range items {
			found := false
			for _, c := range v.Choices {
				if condition.Equal(c, item) {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("item %v is not one of %s", item, formatChoices(v.Choices))
			}
		}
	}
	if r := v.Validation; r != nil {
		if r.MinLength != nil && len(items) < *r.MinLength {
			return fmt.Errorf("must have at least %d items", *r.MinLength)
		}
		if r.MaxLength != nil && len(items) > *r.MaxLength {
			return fmt.Errorf("must have at most %d items", *r.MaxLength)
		}
	}
	return nil
}

func scalarString(value any) (string, error) {
	switch value.(type) {
	case map[string]any, []any:
		return "", fmt.Errorf("expected a string, got %T", value)
	}
	s, err := cast.ToStringE(value)
	if err != nil {
		return "", fmt.Errorf("expected a string, got %T", value)
	}
	return s, nil
}

func toInteger(value any) (int, error) {
	switch n := value.(type) {
	case bool:
		return 0, fmt.Errorf("expected an integer, got %v", n)
	case float32, float64:
		f := cast.ToFloat64(n)
		if f != math.Trunc(f) {
			return 0, fmt.Errorf("expected an integer, got %v", n)
		}
		return int(f), nil
	case string:
		f, err := cast.ToFloat64E(strings.TrimSpace(n))
		if err != nil || f != math.Trunc(f) {
			return 0, fmt.Errorf("expected an integer, got %q", n)
		}
		return int(f), nil
	}
	i, err := cast.ToIntE(value)
	if err != nil {
		return 0, fmt.Errorf("expected an integer, got %v", value)
	}
	return i, nil
}

// toList accepts any slice, or a comma-separated string.
func toList(value any) ([]any, error) {
	if s, ok := value.(string); ok {
		var items []any
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		if items == nil {
			items = []any{}
		}
		return items, nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("expected a list, got %T", value)
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, nil
}

func formatChoices(choices []any) string {
	parts := make([]string, len(choices))
	for i, c := range choices {
		parts[i] = fmt.Sprint(c)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
