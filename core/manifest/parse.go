package manifest

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"ci-mirrors/core/utils"
)

// ParseError is a syntax or schema error in a manifest file. Loading stops at the
// first one.
type ParseError struct {
	Path string
	// Line is 1-based, or 0 when the error is not tied to an entry.
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

// rawManifest mirrors the file layout. Pointer fields let us tell a missing key
// from a zero value when picking the entry shape.
type rawManifest struct {
	Files []rawEntry `toml:"files"`
}

type rawEntry struct {
	Name           *string `toml:"name"`
	SHA256         *string `toml:"sha256"`
	Legacy         *bool   `toml:"legacy"`
	SkipValidation *bool   `toml:"skip-validation"`
	Source         *string `toml:"source"`
	License        *string `toml:"license"`
	RenameFrom     *string `toml:"rename-from"`
}

var filesHeader = regexp.MustCompile(`^\s*\[\[\s*files\s*\]\]`)

// Parse decodes one manifest file. Every returned entry carries its byte span in
// text. Structural problems are returned as a *ParseError.
func Parse(path, text string) ([]Entry, error) {
	var raw rawManifest
	md, err := toml.Decode(text, &raw)
	if err != nil {
		return nil, &ParseError{Path: path, Msg: err.Error()}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		key := undecoded[0]
		return nil, &ParseError{Path: path, Msg: fmt.Sprintf("unknown field %q", key[len(key)-1])}
	}

	spans := entrySpans(text)
	if len(spans) != len(raw.Files) {
		return nil, &ParseError{Path: path, Msg: "files must be declared as [[files]] tables"}
	}

	entries := make([]Entry, 0, len(raw.Files))
	for i, r := range raw.Files {
		loc := Location{Path: path, Start: spans[i][0], End: spans[i][1]}
		e, err := r.toEntry()
		if err != nil {
			return nil, &ParseError{Path: path, Line: lineOf(text, loc.Start), Msg: err.Error()}
		}
		e.Location = loc
		entries = append(entries, e)
	}
	return entries, nil
}

// toEntry picks the legacy or managed shape. A table must satisfy exactly one.
func (r rawEntry) toEntry() (Entry, error) {
	if r.Name == nil {
		return Entry{}, fmt.Errorf("missing field %q", "name")
	}
	if r.SHA256 == nil {
		return Entry{}, fmt.Errorf("missing field %q", "sha256")
	}
	e := Entry{Name: *r.Name, SHA256: *r.SHA256}

	if r.Legacy != nil {
		if !*r.Legacy {
			return Entry{}, fmt.Errorf("legacy must be true when present")
		}
		managed := []struct {
			field string
			set   bool
		}{
			{"source", r.Source != nil},
			{"license", r.License != nil},
			{"rename-from", r.RenameFrom != nil},
		}
		for _, m := range managed {
			if m.set {
				return Entry{}, fmt.Errorf("field %q is not allowed in legacy entries", m.field)
			}
		}
		e.Origin = LegacyOrigin{SkipValidation: r.SkipValidation != nil && *r.SkipValidation}
		return e, nil
	}

	if r.SkipValidation != nil {
		return Entry{}, fmt.Errorf("field %q is only allowed in legacy entries", "skip-validation")
	}
	if r.Source == nil {
		return Entry{}, fmt.Errorf("missing field %q", "source")
	}
	if r.License == nil {
		return Entry{}, fmt.Errorf("missing field %q", "license")
	}
	source, err := url.Parse(*r.Source)
	if err != nil {
		return Entry{}, fmt.Errorf("invalid source URL: %w", err)
	}
	if source.Scheme == "" || source.Host == "" {
		return Entry{}, fmt.Errorf("source URL %q must include scheme and host", *r.Source)
	}
	e.Origin = URLOrigin{URL: source}
	e.License = *r.License
	if r.RenameFrom != nil {
		e.RenameFrom = *r.RenameFrom
	}
	return e, nil
}

// validate returns the problems of a single entry that don't prevent loading.
func validate(e Entry, text string) []string {
	var errs []string
	at := fmt.Sprintf("%s:%d", e.Location.Path, lineOf(text, e.Location.Start))

	if strings.HasPrefix(e.Name, "/") {
		errs = append(errs, fmt.Sprintf("%s: file name %s must not start with a slash", at, e.Name))
	}

	source := e.Source()
	if source == nil {
		return errs
	}
	urlName := utils.URLFileName(source)
	name := utils.LastSegment(e.Name)
	switch {
	case e.RenameFrom == "" && urlName != name:
		errs = append(errs, fmt.Sprintf("%s: the file name of %s differs from the URL file name %q, add rename-from = %q", at, e.Name, urlName, urlName))
	case e.RenameFrom != "" && urlName == name:
		errs = append(errs, fmt.Sprintf("%s: rename-from is set for %s, but the file name already matches the URL", at, e.Name))
	case e.RenameFrom != "" && e.RenameFrom != urlName:
		errs = append(errs, fmt.Sprintf("%s: rename-from for %s is %q, but the URL file name is %q", at, e.Name, e.RenameFrom, urlName))
	}
	return errs
}

// entrySpans returns the [start, end) byte span of every [[files]] table. A span
// runs from its header to the last line holding a key before the next table.
func entrySpans(text string) [][2]int {
	var (
		spans   [][2]int
		start   = -1
		lastEnd int
	)
	for offset := 0; offset < len(text); {
		next := len(text)
		line := text[offset:]
		if idx := strings.IndexByte(line, '\n'); idx != -1 {
			line = line[:idx]
			next = offset + idx + 1
		}
		trimmed := strings.TrimSpace(line)
		contentEnd := offset + len(strings.TrimRight(line, " \t\r"))

		switch {
		case filesHeader.MatchString(line):
			if start != -1 {
				spans = append(spans, [2]int{start, lastEnd})
			}
			start, lastEnd = offset+len(line)-len(strings.TrimLeft(line, " \t")), contentEnd
		case strings.HasPrefix(trimmed, "["):
			if start != -1 {
				spans = append(spans, [2]int{start, lastEnd})
				start = -1
			}
		case trimmed == "" || strings.HasPrefix(trimmed, "#"):
		default:
			if start != -1 {
				lastEnd = contentEnd
			}
		}
		offset = next
	}
	if start != -1 {
		spans = append(spans, [2]int{start, lastEnd})
	}
	return spans
}

// lineOf returns the 1-based line holding byte offset.
func lineOf(text string, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	return strings.Count(text[:offset], "\n") + 1
}
