package manifest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
)

type managedTable struct {
	Name       string `toml:"name"`
	SHA256     string `toml:"sha256"`
	Source     string `toml:"source"`
	License    string `toml:"license"`
	RenameFrom string `toml:"rename-from,omitempty"`
}

type legacyTable struct {
	Name           string `toml:"name"`
	SHA256         string `toml:"sha256"`
	Legacy         bool   `toml:"legacy"`
	SkipValidation bool   `toml:"skip-validation,omitempty"`
}

// Encode renders e as a single [[files]] table.
func Encode(e Entry) (string, error) {
	var doc any
	switch o := e.Origin.(type) {
	case URLOrigin:
		doc = struct {
			Files []managedTable `toml:"files"`
		}{[]managedTable{{
			Name:       e.Name,
			SHA256:     e.SHA256,
			Source:     o.URL.String(),
			License:    e.License,
			RenameFrom: e.RenameFrom,
		}}}
	case LegacyOrigin:
		doc = struct {
			Files []legacyTable `toml:"files"`
		}{[]legacyTable{{
			Name:           e.Name,
			SHA256:         e.SHA256,
			Legacy:         true,
			SkipValidation: o.SkipValidation,
		}}}
	default:
		return "", fmt.Errorf("entry %s has no origin", e.Name)
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("failed to encode entry %s: %w", e.Name, err)
	}
	return buf.String(), nil
}

// Append adds e to the end of the manifest file at path, creating it if needed.
func Append(fs afero.Fs, path string, e Entry) error {
	table, err := Encode(e)
	if err != nil {
		return err
	}

	existing, err := afero.ReadFile(fs, path)
	if err != nil {
		exists, statErr := afero.Exists(fs, path)
		if statErr != nil || exists {
			return fmt.Errorf("failed to read manifest: %w", err)
		}
	}

	content := string(existing)
	switch {
	case content == "":
	case strings.HasSuffix(content, "\n\n"):
	case strings.HasSuffix(content, "\n"):
		content += "\n"
	default:
		content += "\n\n"
	}
	content += table

	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
