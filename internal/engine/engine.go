// Package engine loads and caches templates, resolves user input against
// their variable declarations, and renders template strings.
package engine

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/opmodel/projgen/internal/config"
	oerrors "github.com/opmodel/projgen/internal/errors"
	"github.com/opmodel/projgen/internal/output"
	"github.com/opmodel/projgen/internal/schema"
	"github.com/opmodel/projgen/internal/validator"
)

// Engine is safe for concurrent use. Its only shared state is the template
// cache, keyed by absolute path.
type Engine struct {
	cfg       *config.Config
	validator *validator.Validator

	mu    sync.RWMutex
	cache map[string]*schema.Template
}

// CacheStats describes the cache contents for diagnostics.
type CacheStats struct {
	Count int      `json:"count"`
	Keys  []string `json:"keys"`
}

// New creates an Engine. A nil cfg uses config.DefaultConfig.
func New(cfg *config.Config) (*Engine, error) {
	v, err := validator.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:       v.Config(),
		validator: v,
		cache:     make(map[string]*schema.Template),
	}, nil
}

// Config returns the effective configuration.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// LoadTemplate returns the validated template at path. With caching
// enabled, repeated loads of the same file return the same instance until
// the entry is cleared or invalidated.
//
// Errors are prefixed by class: "parse error" for empty or malformed
// documents, "validation error" for rule violations and "I/O error" for
// files that cannot be read.
func (e *Engine) LoadTemplate(path string) (*schema.Template, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("I/O error: %w", err)
	}

	if e.cfg.CacheEnabled {
		e.mu.RLock()
		t, ok := e.cache[abs]
		e.mu.RUnlock()
		if ok {
			output.Debug("template cache hit", "path", abs)
			return t, nil
		}
	}

	// Parsing and validation run outside the lock; concurrent misses on the
	// same path both do the work and the first insert wins.
	t, err := e.validator.Validate(abs)
	if err != nil {
		return nil, classify(err)
	}

	if !e.cfg.CacheEnabled {
		return t, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if existing, ok := e.cache[abs]; ok {
		return existing, nil
	}
	e.cache[abs] = t
	output.Debug("template cached", "path", abs, "name", t.Name())
	return t, nil
}

func classify(err error) error {
	var le *oerrors.LoadError
	if errors.As(err, &le) {
		switch le.Kind {
		case oerrors.LoadEmpty, oerrors.LoadSyntax:
			return fmt.Errorf("parse error: %w", err)
		default:
			return fmt.Errorf("I/O error: %w", err)
		}
	}
	var ve *oerrors.ValidationError
	if errors.As(err, &ve) {
		return fmt.Errorf("validation error: %w", err)
	}
	return fmt.Errorf("I/O error: %w", err)
}

// ClearCache drops every cached template.
func (e *Engine) ClearCache() {
	e.mu.Lock()
	e.cache = make(map[string]*schema.Template)
	e.mu.Unlock()
}

// Invalidate drops the cached template for path, if any, and reports
// whether an entry was removed.
func (e *Engine) Invalidate(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.cache[abs]; !ok {
		return false
	}
	delete(e.cache, abs)
	return true
}

// CacheStats reports the number of cached templates and their paths.
func (e *Engine) CacheStats() CacheStats {
	e.mu.RLock()
	keys := make([]string, 0, len(e.cache))
	for k := range e.cache {
		keys = append(keys, k)
	}
	e.mu.RUnlock()
	sort.Strings(keys)
	return CacheStats{Count: len(keys), Keys: keys}
}
