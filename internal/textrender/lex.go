package textrender

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokText    tokenKind = iota
	tokOutput            // {{ ... }}
	tokBlock             // {% ... %}
	tokComment           // {# ... #}
)

type token struct {
	kind tokenKind
	val  string
	line int
}

var delims = map[string]string{
	"{{": "}}",
	"{%": "%}",
	"{#": "#}",
}

// lex splits src into text and tag tokens. A "-" just inside a tag
// delimiter trims whitespace on that side of the tag.
func lex(src string) ([]token, error) {
	var toks []token
	line := 1
	trimNext := false

	for len(src) > 0 {
		start := nextTag(src)
		if start < 0 {
			toks = appendText(toks, src, line, trimNext, false)
			break
		}

		open := src[start : start+2]
		closeDelim := delims[open]
		body := src[start+2:]
		trimLeft := strings.HasPrefix(body, "-")
		if trimLeft {
			body = body[1:]
		}

		end := strings.Index(body, closeDelim)
		if end < 0 {
			return nil, &syntaxError{line: line + strings.Count(src[:start], "\n"), msg: fmt.Sprintf("unclosed %q", open)}
		}

		toks = appendText(toks, src[:start], line, trimNext, trimLeft)
		line += strings.Count(src[:start], "\n")

		inner := body[:end]
		trimNext = strings.HasSuffix(inner, "-")
		if trimNext {
			inner = inner[:len(inner)-1]
		}

		var kind tokenKind
		switch open {
		case "{{":
			kind = tokOutput
		case "{%":
			kind = tokBlock
		default:
			kind = tokComment
		}
		toks = append(toks, token{kind: kind, val: strings.TrimSpace(inner), line: line})
		line += strings.Count(inner, "\n")

		consumed := start + 2 + len(body[:end]) + len(closeDelim)
		if trimLeft {
			consumed++
		}
		src = src[consumed:]
	}
	return toks, nil
}

func nextTag(s string) int {
	best := -1
	for open := range delims {
		if i := strings.Index(s, open); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	return best
}

func appendText(toks []token, text string, line int, trimLeft, trimRight bool) []token {
	if trimLeft {
		trimmed := strings.TrimLeft(text, " \t\r\n")
		line += strings.Count(text[:len(text)-len(trimmed)], "\n")
		text = trimmed
	}
	if trimRight {
		text = strings.TrimRight(text, " \t\r\n")
	}
	if text == "" {
		return toks
	}
	return append(toks, token{kind: tokText, val: text, line: line})
}
