package modtree

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// DefaultExtensions are the schema file extensions LoadFS recognizes when the
// caller passes none.
var DefaultExtensions = []string{".graphql", ".graphqls"}

// LoadFS builds a tree mirroring fsys. Directories become branches and files
// carrying one of the recognized extensions become string leaves keyed by the
// file name without its extension. All other files are ignored.
//
// fs.ReadDir returns entries sorted by name, so the resulting insertion order
// is lexical and stable across runs.
func LoadFS(fsys fs.FS, exts []string) (*Branch, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	return loadDir(fsys, ".", exts)
}

func loadDir(fsys fs.FS, dir string, exts []string) (*Branch, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("modtree: read %s: %w", dir, err)
	}

	branch := NewBranch()
	for _, entry := range entries {
		entryPath := path.Join(dir, entry.Name())

		if entry.IsDir() {
			child, err := loadDir(fsys, entryPath, exts)
			if err != nil {
				return nil, err
			}
			branch.Set(entry.Name(), child)
			continue
		}

		ext := path.Ext(entry.Name())
		if !extRecognized(ext, exts) {
			continue
		}

		b, err := fs.ReadFile(fsys, entryPath)
		if err != nil {
			return nil, fmt.Errorf("modtree: read %s: %w", entryPath, err)
		}
		stem := strings.TrimSuffix(entry.Name(), ext)
		branch.Set(stem, NewLeaf(string(b)))
	}

	return branch, nil
}

func extRecognized(ext string, exts []string) bool {
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
