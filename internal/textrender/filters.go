package textrender

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Filter transforms the string form of a value.
type Filter func(string) string

var filters = map[string]Filter{
	"slugify":     Slugify,
	"snake_case":  SnakeCase,
	"pascal_case": PascalCase,
	"camel_case":  CamelCase,
	"kebab_case":  KebabCase,
	"lower":       caser(func() cases.Caser { return cases.Lower(language.Und) }),
	"upper":       caser(func() cases.Caser { return cases.Upper(language.Und) }),
	"title":       caser(func() cases.Caser { return cases.Title(language.English) }),
	"trim":        strings.TrimSpace,
}

// caser builds a fresh Caser per call; Casers are stateful.
func caser(newCaser func() cases.Caser) Filter {
	return func(s string) string { return newCaser().String(s) }
}

// Filters returns the names of the available filters.
func Filters() []string {
	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	nonWord    = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	separators = regexp.MustCompile(`[\s_-]+`)
)

// Slugify lowercases s, drops characters other than letters, digits,
// whitespace, underscores and hyphens, and collapses runs of whitespace,
// underscores and hyphens into a single hyphen.
func Slugify(s string) string {
	s = nonWord.ReplaceAllString(strings.ToLower(s), "")
	s = separators.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// SnakeCase converts s to snake_case: "MyCoolApp" becomes "my_cool_app".
func SnakeCase(s string) string {
	return strings.Join(lowerWords(s), "_")
}

// KebabCase converts s to kebab-case.
func KebabCase(s string) string {
	return strings.Join(lowerWords(s), "-")
}

// PascalCase converts s to PascalCase: "my_cool_app" becomes "MyCoolApp".
func PascalCase(s string) string {
	var b strings.Builder
	for _, w := range words(s) {
		b.WriteString(capitalize(w))
	}
	return b.String()
}

// CamelCase converts s to camelCase.
func CamelCase(s string) string {
	ws := words(s)
	if len(ws) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(ws[0]))
	for _, w := range ws[1:] {
		b.WriteString(capitalize(w))
	}
	return b.String()
}

func capitalize(w string) string {
	r := []rune(strings.ToLower(w))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func lowerWords(s string) []string {
	ws := words(s)
	for i, w := range ws {
		ws[i] = strings.ToLower(w)
	}
	return ws
}

// words splits s on non-alphanumeric runes and on case boundaries, keeping
// acronyms together: "HTTPServer_v2" gives ["HTTP", "Server", "v2"].
func words(s string) []string {
	var out []string
	var cur []rune
	rs := []rune(s)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
	}
	for i, r := range rs {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(cur) > 0 {
			prev := cur[len(cur)-1]
			nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return out
}
