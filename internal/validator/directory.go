package validator

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/opmodel/projgen/internal/output"
	"github.com/opmodel/projgen/internal/schema"
)

// FileError pairs a candidate template file with the reason it was rejected.
type FileError struct {
	File  string
	Error error
}

// ValidateDirectory validates every candidate file under dir independently.
// Subdirectories are scanned when the configuration enables recursive scans.
// Unreadable subdirectories are logged and skipped.
func (v *Validator) ValidateDirectory(dir string) ([]*schema.Template, []FileError) {
	files, err := v.candidates(dir)
	if err != nil {
		return nil, []FileError{{File: dir, Error: statError(dir, err)}}
	}

	var (
		valid []*schema.Template
		errs  []FileError
	)
	for _, f := range files {
		t, err := v.Validate(f)
		if err != nil {
			output.Debug("template rejected", "file", f, "err", err)
			errs = append(errs, FileError{File: f, Error: err})
			continue
		}
		valid = append(valid, t)
	}
	return valid, errs
}

func (v *Validator) candidates(dir string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, err
	}

	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			output.Warn("skipping unreadable path", "path", p, "err", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p != dir && !v.cfg.RecursiveScan {
				return fs.SkipDir
			}
			return nil
		}
		if v.cfg.HasExtension(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
