package textrender

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/opmodel/projgen/internal/condition"
)

type node interface {
	// vars records the free variables of the node in set with the line of
	// their first use; bound holds names introduced by enclosing loops.
	vars(set map[string]int, bound map[string]bool) error
}

type textNode struct {
	text string
}

type outputNode struct {
	expr    string
	filters []string
	line    int
}

type branch struct {
	cond string
	body []node
	line int
}

type ifNode struct {
	branches []branch
	elseBody []node
}

type forNode struct {
	item string
	list string
	body []node
	line int
}

type syntaxError struct {
	line int
	msg  string
}

func (e *syntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.line, e.msg)
}

var forPattern = regexp.MustCompile(`^for\s+([A-Za-z_][A-Za-z0-9_]*)\s+in\s+(.+)$`)

type parser struct {
	toks []token
	pos  int
}

func parse(src string) ([]node, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	nodes, stop, err := p.parseUntil()
	if err != nil {
		return nil, err
	}
	if stop != nil {
		return nil, &syntaxError{line: stop.line, msg: fmt.Sprintf("unexpected {%% %s %%}", stop.val)}
	}
	return nodes, nil
}

// parseUntil parses nodes until the end of input or a block tag that
// closes or continues an enclosing block, which is returned unconsumed.
func (p *parser) parseUntil() ([]node, *token, error) {
	var nodes []node
	for p.pos < len(p.toks) {
		tok := p.toks[p.pos]
		switch tok.kind {
		case tokText:
			nodes = append(nodes, textNode{text: tok.val})
			p.pos++
		case tokComment:
			p.pos++
		case tokOutput:
			n, err := parseOutput(tok)
			if err != nil {
				return nil, nil, err
			}
			nodes = append(nodes, n)
			p.pos++
		case tokBlock:
			word := keyword(tok.val)
			switch word {
			case "elif", "else", "endif", "endfor":
				return nodes, &tok, nil
			case "if":
				p.pos++
				n, err := p.parseIf(tok)
				if err != nil {
					return nil, nil, err
				}
				nodes = append(nodes, n)
			case "for":
				p.pos++
				n, err := p.parseFor(tok)
				if err != nil {
					return nil, nil, err
				}
				nodes = append(nodes, n)
			default:
				return nil, nil, &syntaxError{line: tok.line, msg: fmt.Sprintf("unknown block tag %q", word)}
			}
		}
	}
	return nodes, nil, nil
}

func (p *parser) parseIf(open token) (node, error) {
	cond := strings.TrimSpace(strings.TrimPrefix(open.val, "if"))
	if cond == "" {
		return nil, &syntaxError{line: open.line, msg: "if without condition"}
	}
	n := &ifNode{}
	cur := branch{cond: cond, line: open.line}
	inElse := false

	for {
		body, stop, err := p.parseUntil()
		if err != nil {
			return nil, err
		}
		if stop == nil {
			return nil, &syntaxError{line: open.line, msg: "unclosed if block"}
		}
		p.pos++

		if inElse {
			n.elseBody = body
		} else {
			cur.body = body
			n.branches = append(n.branches, cur)
		}

		switch keyword(stop.val) {
		case "endif":
			return n, nil
		case "elif":
			if inElse {
				return nil, &syntaxError{line: stop.line, msg: "elif after else"}
			}
			c := strings.TrimSpace(strings.TrimPrefix(stop.val, "elif"))
			if c == "" {
				return nil, &syntaxError{line: stop.line, msg: "elif without condition"}
			}
			cur = branch{cond: c, line: stop.line}
		case "else":
			if inElse {
				return nil, &syntaxError{line: stop.line, msg: "duplicate else"}
			}
			inElse = true
		default:
			return nil, &syntaxError{line: stop.line, msg: fmt.Sprintf("unexpected {%% %s %%} inside if", stop.val)}
		}
	}
}

func (p *parser) parseFor(open token) (node, error) {
	m := forPattern.FindStringSubmatch(open.val)
	if m == nil {
		return nil, &syntaxError{line: open.line, msg: fmt.Sprintf("malformed for tag %q", open.val)}
	}
	body, stop, err := p.parseUntil()
	if err != nil {
		return nil, err
	}
	if stop == nil || keyword(stop.val) != "endfor" {
		return nil, &syntaxError{line: open.line, msg: "unclosed for block"}
	}
	p.pos++
	return &forNode{item: m[1], list: strings.TrimSpace(m[2]), body: body, line: open.line}, nil
}

func parseOutput(tok token) (node, error) {
	parts := splitFilters(tok.val)
	head := strings.TrimSpace(parts[0])
	if head == "" {
		return nil, &syntaxError{line: tok.line, msg: "empty expression"}
	}
	n := &outputNode{expr: head, line: tok.line}
	for _, f := range parts[1:] {
		name := strings.TrimSpace(f)
		if _, ok := filters[name]; !ok {
			return nil, &syntaxError{line: tok.line, msg: fmt.Sprintf("unknown filter %q", name)}
		}
		n.filters = append(n.filters, name)
	}
	return n, nil
}

// splitFilters splits on single "|" outside string literals; "||" is left
// to the expression.
func splitFilters(s string) []string {
	var parts []string
	var quote rune
	last := 0
	for i := 0; i < len(s); i++ {
		c := rune(s[i])
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'' || c == '`':
			quote = c
		case c == '|':
			if i+1 < len(s) && s[i+1] == '|' {
				i++
				continue
			}
			parts = append(parts, s[last:i])
			last = i + 1
		}
	}
	return append(parts, s[last:])
}

func keyword(s string) string {
	if i := strings.IndexAny(s, " \t\r\n"); i >= 0 {
		return s[:i]
	}
	return s
}

func (textNode) vars(map[string]int, map[string]bool) error { return nil }

func (n *outputNode) vars(set map[string]int, bound map[string]bool) error {
	return addIdentifiers(n.expr, n.line, set, bound)
}

func (n *ifNode) vars(set map[string]int, bound map[string]bool) error {
	for _, b := range n.branches {
		if err := addIdentifiers(b.cond, b.line, set, bound); err != nil {
			return err
		}
		if err := nodesVars(b.body, set, bound); err != nil {
			return err
		}
	}
	return nodesVars(n.elseBody, set, bound)
}

func (n *forNode) vars(set map[string]int, bound map[string]bool) error {
	if err := addIdentifiers(n.list, n.line, set, bound); err != nil {
		return err
	}
	inner := make(map[string]bool, len(bound)+1)
	for k := range bound {
		inner[k] = true
	}
	inner[n.item] = true
	return nodesVars(n.body, set, inner)
}

func nodesVars(nodes []node, set map[string]int, bound map[string]bool) error {
	for _, n := range nodes {
		if err := n.vars(set, bound); err != nil {
			return err
		}
	}
	return nil
}

func addIdentifiers(src string, line int, set map[string]int, bound map[string]bool) error {
	names, err := condition.Identifiers(src)
	if err != nil {
		return &syntaxError{line: line, msg: err.Error()}
	}
	for _, name := range names {
		if _, seen := set[name]; !seen && !bound[name] {
			set[name] = line
		}
	}
	return nil
}
