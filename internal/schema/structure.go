package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/opmodel/projgen/internal/condition"
)

// NodeCondition gates a directory or file. It is either an expression
// (`use_docker`, `framework == "flask"`) or a list of rules that must all hold.
type NodeCondition struct {
	Expr  string
	Rules []condition.Condition
}

// IsZero reports whether no condition is set.
func (c NodeCondition) IsZero() bool {
	return c.Expr == "" && len(c.Rules) == 0
}

// Variables returns the variable names the condition reads.
func (c NodeCondition) Variables() ([]string, error) {
	if c.Expr != "" {
		return condition.Identifiers(c.Expr)
	}
	names := make([]string, 0, len(c.Rules))
	for _, r := range c.Rules {
		names = append(names, r.Variable)
	}
	return names, nil
}

// UnmarshalYAML accepts a scalar expression, a single rule mapping, or a
// sequence of rules.
func (c *NodeCondition) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		c.Expr = node.Value
		return nil
	case yaml.MappingNode:
		var rule condition.Condition
		if err := node.Decode(&rule); err != nil {
			return err
		}
		c.Rules = []condition.Condition{rule}
		return nil
	case yaml.SequenceNode:
		return node.Decode(&c.Rules)
	default:
		return fmt.Errorf("line %d: condition must be an expression or a list of rules", node.Line)
	}
}

// MarshalYAML writes the condition back in its source form.
func (c NodeCondition) MarshalYAML() (interface{}, error) {
	if c.Expr != "" {
		return c.Expr, nil
	}
	if len(c.Rules) == 0 {
		return nil, nil
	}
	return c.Rules, nil
}

// FileItem is a file in the project structure. Name and Content are
// string templates resolved at render time.
type FileItem struct {
	Name         string        `yaml:"name" json:"name"`
	Content      string        `yaml:"content,omitempty" json:"content,omitempty"`
	TemplateFile string        `yaml:"template_file,omitempty" json:"template_file,omitempty"`
	Condition    NodeCondition `yaml:"condition,omitempty" json:"-"`
	Executable   bool          `yaml:"executable,omitempty" json:"executable,omitempty"`
}

// DirectoryItem is a directory in the project structure.
type DirectoryItem struct {
	Name        string          `yaml:"name" json:"name"`
	Condition   NodeCondition   `yaml:"condition,omitempty" json:"-"`
	Files       []FileItem      `yaml:"files,omitempty" json:"files,omitempty"`
	Directories []DirectoryItem `yaml:"directories,omitempty" json:"directories,omitempty"`
}

// Structure is the project tree; it always has exactly one root directory.
type Structure struct {
	Root DirectoryItem `yaml:"root_directory" json:"root_directory"`
}

// Visitor is called for each directory and file in depth-first order.
// Path holds the unrendered names from the root down to the node's parent.
type Visitor struct {
	Directory func(path []string, dir DirectoryItem)
	File      func(path []string, file FileItem)
}

// Walk visits the structure depth-first: a directory, its files, then its
// subdirectories.
func (s Structure) Walk(v Visitor) {
	walkDir(nil, s.Root, v)
}

func walkDir(path []string, dir DirectoryItem, v Visitor) {
	if v.Directory != nil {
		v.Directory(path, dir)
	}
	inner := append(append([]string(nil), path...), dir.Name)
	for _, f := range dir.Files {
		if v.File != nil {
			v.File(inner, f)
		}
	}
	for _, sub := range dir.Directories {
		walkDir(inner, sub, v)
	}
}

// Counts returns the number of directories and files declared.
func (s Structure) Counts() (dirs, files int) {
	s.Walk(Visitor{
		Directory: func([]string, DirectoryItem) { dirs++ },
		File:      func([]string, FileItem) { files++ },
	})
	return dirs, files
}
