// Package loader discovers template documents on disk and reads their
// metadata for listings without running full validation.
package loader

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/opmodel/projgen/internal/config"
	oerrors "github.com/opmodel/projgen/internal/errors"
	"github.com/opmodel/projgen/internal/output"
	"github.com/opmodel/projgen/internal/schema"
	"github.com/opmodel/projgen/internal/validator"
)

// DefaultCategory is reported for templates that do not declare one.
const DefaultCategory = "general"

// TemplateInfo is the metadata of a template file plus facts about the file.
type TemplateInfo struct {
	schema.Metadata `yaml:",inline"`

	Path      string    `yaml:"path" json:"path"`
	Size      int64     `yaml:"size" json:"size"`
	ModTime   time.Time `yaml:"modified" json:"modified"`
	IsBuiltin bool      `yaml:"is_builtin" json:"is_builtin"`
	IsUser    bool      `yaml:"is_user" json:"is_user"`
}

// Loader finds templates in the configured directories. It holds no
// mutable state and is safe for concurrent use.
type Loader struct {
	cfg       *config.Config
	validator *validator.Validator
}

// New creates a Loader. A nil cfg uses config.DefaultConfig.
func New(cfg *config.Config) (*Loader, error) {
	v, err := validator.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Loader{cfg: v.Config(), validator: v}, nil
}

// Discover returns the template files in the configured template
// directories, plus the builtin and user directories when requested. The
// result is deduplicated and sorted by path.
func (l *Loader) Discover(includeBuiltin, includeUser bool) []string {
	dirs := append([]string(nil), l.cfg.TemplateDirs...)
	if includeBuiltin && l.cfg.BuiltinDir != "" {
		dirs = append(dirs, l.cfg.BuiltinDir)
	}
	if includeUser && l.cfg.UserDir != "" {
		dirs = append(dirs, l.cfg.UserDir)
	}
	return l.scan(dirs...)
}

func (l *Loader) scan(dirs ...string) []string {
	seen := map[string]bool{}
	var files []string
	for _, dir := range dirs {
		for _, f := range l.scanDir(dir) {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	sort.Strings(files)
	return files
}

func (l *Loader) scanDir(dir string) []string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		output.Warn("skipping template directory", "dir", dir, "err", err)
		return nil
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		output.Debug("template directory not available", "dir", abs)
		return nil
	}

	var files []string
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			output.Warn("skipping unreadable path", "path", p, "err", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p != abs && !l.cfg.RecursiveScan {
				return fs.SkipDir
			}
			return nil
		}
		if l.cfg.HasExtension(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		output.Warn("scanning template directory", "dir", abs, "err", err)
	}
	return files
}

// LoadMetadata reads only the metadata section of the template at path and
// annotates it with file facts. The rest of the document is not validated.
func (l *Loader) LoadMetadata(path string) (*TemplateInfo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &oerrors.LoadError{Path: path, Kind: oerrors.LoadIO, Cause: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &oerrors.LoadError{Path: abs, Kind: oerrors.LoadMissing}
		}
		return nil, &oerrors.LoadError{Path: abs, Kind: oerrors.LoadIO, Cause: err}
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, &oerrors.LoadError{Path: abs, Kind: oerrors.LoadIO, Cause: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &oerrors.LoadError{Path: abs, Kind: oerrors.LoadEmpty}
	}

	var doc struct {
		Metadata yaml.Node `yaml:"metadata"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &oerrors.LoadError{Path: abs, Kind: oerrors.LoadSyntax, Cause: err}
	}
	if doc.Metadata.Kind != yaml.MappingNode || len(doc.Metadata.Content) == 0 {
		return nil, &oerrors.ValidationError{Path: abs, Errors: []string{"metadata must be a non-empty mapping"}}
	}
	var meta schema.Metadata
	if err := doc.Metadata.Decode(&meta); err != nil {
		return nil, &oerrors.ValidationError{Path: abs, Errors: []string{fmt.Sprintf("metadata: %v", err)}}
	}
	if meta.Category == "" {
		meta.Category = DefaultCategory
	}

	return &TemplateInfo{
		Metadata:  meta,
		Path:      abs,
		Size:      info.Size(),
		ModTime:   info.ModTime(),
		IsBuiltin: within(abs, l.cfg.BuiltinDir),
		IsUser:    within(abs, l.cfg.UserDir),
	}, nil
}

// ListTemplates returns metadata for every discovered template, sorted by
// name. A non-empty category keeps only templates in that category. Files
// whose metadata cannot be read are logged and skipped.
func (l *Loader) ListTemplates(category string) []TemplateInfo {
	return l.list(l.Discover(true, true), category)
}

// BuiltinTemplates lists the templates in the builtin directory.
func (l *Loader) BuiltinTemplates() []TemplateInfo {
	if l.cfg.BuiltinDir == "" {
		return nil
	}
	return l.list(l.scan(l.cfg.BuiltinDir), "")
}

// UserTemplates lists the templates in the user directory.
func (l *Loader) UserTemplates() []TemplateInfo {
	if l.cfg.UserDir == "" {
		return nil
	}
	return l.list(l.scan(l.cfg.UserDir), "")
}

func (l *Loader) list(files []string, category string) []TemplateInfo {
	var out []TemplateInfo
	for _, f := range files {
		info, err := l.LoadMetadata(f)
		if err != nil {
			output.Warn("skipping template", "file", f, "err", err)
			continue
		}
		if category != "" && !strings.EqualFold(info.Category, category) {
			continue
		}
		out = append(out, *info)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// FindTemplateByName returns the path of the first discovered template
// whose metadata name is exactly name.
func (l *Loader) FindTemplateByName(name string) (string, bool) {
	for _, f := range l.Discover(true, true) {
		info, err := l.LoadMetadata(f)
		if err != nil {
			output.Debug("skipping template", "file", f, "err", err)
			continue
		}
		if info.Name == name {
			return info.Path, true
		}
	}
	return "", false
}

// ValidateTemplateFile fully validates the template at path.
func (l *Loader) ValidateTemplateFile(path string) (*schema.Template, error) {
	return l.validator.Validate(path)
}

// TemplateCategories returns the distinct categories of the discovered
// templates, sorted.
func (l *Loader) TemplateCategories() []string {
	set := map[string]bool{}
	for _, info := range l.ListTemplates("") {
		set[info.Category] = true
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// within reports whether path is inside dir.
func within(path, dir string) bool {
	if dir == "" {
		return false
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
