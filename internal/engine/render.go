package engine

import (
	"github.com/opmodel/projgen/internal/textrender"
)

// RenderString renders text against vars. Referencing a variable that is
// not in vars is an error.
func (e *Engine) RenderString(text string, vars map[string]any) (string, error) {
	return textrender.Render("string", text, vars)
}

// TemplateVariables lists the variables text reads. It never fails;
// malformed text yields an empty list.
func (e *Engine) TemplateVariables(text string) []string {
	return textrender.Variables(text)
}
