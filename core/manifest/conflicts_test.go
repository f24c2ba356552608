package manifest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func managed(name, hash, source string) string {
	return "[[files]]\nname = \"" + name + "\"\nsha256 = \"" + hash + "\"\nsource = \"" + source + "\"\nlicense = \"MIT\"\n"
}

func TestDetectConflicts_NoConflicts(t *testing.T) {
	fs := writeFiles(t, map[string]string{
		"files/a.toml": managed("a.tar", hashA, "https://example.com/a.tar") + "\n" + managed("b.tar", hashB, "https://example.com/b.tar"),
		"files/b.toml": managed("c.tar", hashC, "https://example.com/c.tar"),
	})

	m, err := Load(fs, "files")
	require.NoError(t, err)
	assert.Empty(t, m.Errors)
}

func TestDetectConflicts_SameName(t *testing.T) {
	fs := writeFiles(t, map[string]string{
		"files/a.toml": managed("tools/foo.tar", hashA, "https://a.example.com/foo.tar"),
		"files/b.toml": managed("tools/foo.tar", hashB, "https://b.example.com/foo.tar"),
	})

	m, err := Load(fs, "files")
	require.NoError(t, err)
	require.Len(t, m.Errors, 1)
	assert.True(t, strings.HasPrefix(m.Errors[0], "found multiple files with the same CDN path (tools/foo.tar):"))
	assert.Contains(t, m.Errors[0], "  --> files/a.toml:1")
	assert.Contains(t, m.Errors[0], "  --> files/b.toml:1")
}

func TestDetectConflicts_SameHash(t *testing.T) {
	second := "# second file\n\n\n" + managed("b.tar", "xyz", "https://example.com/b.tar")
	fs := writeFiles(t, map[string]string{
		"files/a.toml":     managed("a.tar", "xyz", "https://example.com/a.tar"),
		"files/sub/b.toml": second,
	})

	m, err := Load(fs, "files")
	require.NoError(t, err)
	require.Len(t, m.Errors, 1)

	expected := strings.Join([]string{
		"found multiple files with the same hash (xyz):",
		"  --> files/a.toml:1",
		"  1 | [[files]]",
		"  2 | name = \"a.tar\"",
		"  3 | sha256 = \"xyz\"",
		"  4 | source = \"https://example.com/a.tar\"",
		"  5 | license = \"MIT\"",
		"  --> files/sub/b.toml:4",
		"  4 | [[files]]",
		"  5 | name = \"b.tar\"",
		"  6 | sha256 = \"xyz\"",
		"  7 | source = \"https://example.com/b.tar\"",
		"  8 | license = \"MIT\"",
	}, "\n")
	assert.Equal(t, expected, m.Errors[0])
}

func TestDetectConflicts_Ordering(t *testing.T) {
	// Same name, same URL and same hash within one file, declared out of order
	// relative to a second file.
	fs := writeFiles(t, map[string]string{
		"files/b.toml": managed("dup.tar", hashA, "https://example.com/dup.tar"),
		"files/a.toml": managed("dup.tar", hashA, "https://example.com/dup.tar"),
	})

	m, err := Load(fs, "files")
	require.NoError(t, err)
	require.Len(t, m.Errors, 3)
	assert.True(t, strings.HasPrefix(m.Errors[0], "found multiple files with the same CDN path"))
	assert.True(t, strings.HasPrefix(m.Errors[1], "found multiple files with the same source URL"))
	assert.True(t, strings.HasPrefix(m.Errors[2], "found multiple files with the same hash"))

	for _, e := range m.Errors {
		assert.Less(t, strings.Index(e, "files/a.toml"), strings.Index(e, "files/b.toml"))
	}
}

func TestDetectConflicts_SameFileOrderedByOffset(t *testing.T) {
	text := managed("one.tar", hashA, "https://example.com/one.tar") + "\n" + managed("two.tar", hashA, "https://example.com/two.tar")
	fs := writeFiles(t, map[string]string{"files.toml": text})

	m, err := Load(fs, "files.toml")
	require.NoError(t, err)
	require.Len(t, m.Errors, 1)
	assert.Less(t, strings.Index(m.Errors[0], "files.toml:1"), strings.Index(m.Errors[0], "files.toml:7"))
}

func TestDetectConflicts_SkipValidation(t *testing.T) {
	legacy := func(name, hash string, skip bool) string {
		text := "[[files]]\nname = \"" + name + "\"\nsha256 = \"" + hash + "\"\nlegacy = true\n"
		if skip {
			text += "skip-validation = true\n"
		}
		return text
	}

	fs := writeFiles(t, map[string]string{
		"files/a.toml": legacy("old.zip", hashA, false) + "\n" + legacy("old.zip", hashA, true),
	})
	m, err := Load(fs, "files")
	require.NoError(t, err)
	assert.Empty(t, m.Errors)

	fs = writeFiles(t, map[string]string{
		"files/a.toml": legacy("old.zip", hashA, false) + "\n" + legacy("old.zip", hashA, false),
	})
	m, err = Load(fs, "files")
	require.NoError(t, err)
	assert.Len(t, m.Errors, 2)
}

func TestRenderLocation_Gutter(t *testing.T) {
	text := strings.Repeat("# padding\n", 8) + "[[files]]\nname = \"a\"\nsha256 = \"b\"\nlegacy = true\n"
	entries, err := Parse("files.toml", text)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	rendered := renderLocation(entries[0].Location, text)
	assert.Equal(t, "  --> files.toml:9\n   9 | [[files]]\n  10 | name = \"a\"\n  11 | sha256 = \"b\"\n  12 | legacy = true", rendered)
}
