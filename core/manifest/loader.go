package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Extension marks the files Load parses when walking a directory.
const Extension = ".toml"

// Manifest is the result of loading a manifest tree.
type Manifest struct {
	// Entries holds every declared entry in load order.
	Entries []Entry
	// Errors holds validation and conflict errors. Loading continues past them.
	Errors []string
	// Index locates every entry by name, hash and source URL.
	Index *LocationIndex

	sources map[string]string
}

// Source returns the raw text of a loaded manifest file.
func (m *Manifest) Source(path string) string {
	return m.sources[path]
}

// Load reads root, which is either a manifest file or a directory walked
// recursively in lexical order. Files without the manifest extension are ignored
// inside directories. A *ParseError aborts loading; everything else ends up in
// Manifest.Errors, conflicts included.
func Load(fs afero.Fs, root string) (*Manifest, error) {
	m := &Manifest{
		Index:   NewLocationIndex(),
		sources: make(map[string]string),
	}

	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if path != root && filepath.Ext(path) != Extension {
			return nil
		}
		return m.loadFile(fs, path)
	})
	if err != nil {
		return nil, err
	}

	m.Errors = append(m.Errors, DetectConflicts(m.Index, m.sources)...)
	return m, nil
}

func (m *Manifest) loadFile(fs afero.Fs, path string) error {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}
	text := string(raw)

	entries, err := Parse(path, text)
	if err != nil {
		return err
	}

	m.sources[path] = text
	for _, e := range entries {
		m.Errors = append(m.Errors, validate(e, text)...)
		m.Index.Add(e)
		m.Entries = append(m.Entries, e)
	}
	return nil
}
