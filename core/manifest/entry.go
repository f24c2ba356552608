package manifest

import (
	"net/url"

	"ci-mirrors/core/utils"
)

// Entry is one declared mirrored file.
type Entry struct {
	// Name is the remote key the file is served under. It never starts with "/".
	Name string
	// SHA256 is the expected lowercase hex digest of the content.
	SHA256 string
	// Origin tells where the content comes from.
	Origin Origin
	// RenameFrom records the URL file name when it differs from the last segment of Name.
	RenameFrom string
	// License is required for URL origins and otherwise unused.
	License string
	// Location is where the entry was declared.
	Location Location
}

// Origin is either a URLOrigin or a LegacyOrigin.
type Origin interface {
	isOrigin()
}

// URLOrigin is content fetched from a URL and verified against the entry hash.
type URLOrigin struct {
	URL *url.URL
}

// LegacyOrigin is content uploaded before this tool tracked hashes.
// It is only checked for presence.
type LegacyOrigin struct {
	// SkipValidation excludes the entry from duplicate name and hash detection.
	SkipValidation bool
}

func (URLOrigin) isOrigin()    {}
func (LegacyOrigin) isOrigin() {}

// Source returns the source URL of the entry, or nil for legacy entries.
func (e Entry) Source() *url.URL {
	if o, ok := e.Origin.(URLOrigin); ok {
		return o.URL
	}
	return nil
}

// IsLegacy reports whether the entry has a legacy origin.
func (e Entry) IsLegacy() bool {
	_, ok := e.Origin.(LegacyOrigin)
	return ok
}

// Location is a byte span inside a manifest file.
type Location struct {
	Path  string
	Start int
	End   int
}

// NewURLEntry builds a managed entry, filling RenameFrom when the URL file name
// differs from the last segment of name.
func NewURLEntry(name string, source *url.URL, sha256, license string) Entry {
	e := Entry{
		Name:    name,
		SHA256:  sha256,
		Origin:  URLOrigin{URL: source},
		License: license,
	}
	if fileName := utils.URLFileName(source); fileName != utils.LastSegment(name) {
		e.RenameFrom = fileName
	}
	return e
}
