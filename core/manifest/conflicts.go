package manifest

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// DetectConflicts reports every name, source URL and hash declared more than
// once, in that order. sources maps manifest paths to their raw text and is used
// to quote the conflicting tables.
func DetectConflicts(idx *LocationIndex, sources map[string]string) []string {
	var errs []string
	errs = append(errs, conflicts("found multiple files with the same CDN path", idx.Names, sources)...)
	errs = append(errs, conflicts("found multiple files with the same source URL", idx.URLs, sources)...)
	errs = append(errs, conflicts("found multiple files with the same hash", idx.Hashes, sources)...)
	return errs
}

func conflicts(title string, byKey map[string][]Location, sources map[string]string) []string {
	keys := lo.Filter(lo.Keys(byKey), func(key string, _ int) bool {
		return len(byKey[key]) > 1
	})
	sort.Strings(keys)

	errs := make([]string, 0, len(keys))
	for _, key := range keys {
		locs := append([]Location(nil), byKey[key]...)
		sort.Slice(locs, func(i, j int) bool {
			if locs[i].Path != locs[j].Path {
				return locs[i].Path < locs[j].Path
			}
			return locs[i].Start < locs[j].Start
		})

		var b strings.Builder
		fmt.Fprintf(&b, "%s (%s):", title, key)
		for _, loc := range locs {
			b.WriteString("\n")
			b.WriteString(renderLocation(loc, sources[loc.Path]))
		}
		errs = append(errs, b.String())
	}
	return errs
}

// renderLocation quotes the source of loc with a line number gutter:
//
//	--> files/a.toml:3
//	  3 | [[files]]
//	  4 | name = "foo"
func renderLocation(loc Location, text string) string {
	first := lineOf(text, loc.Start)
	var snippet string
	if loc.Start <= loc.End && loc.End <= len(text) {
		snippet = text[loc.Start:loc.End]
	}
	lines := strings.Split(snippet, "\n")
	width := len(strconv.Itoa(first + len(lines) - 1))

	var b strings.Builder
	fmt.Fprintf(&b, "  --> %s:%d", loc.Path, first)
	for i, line := range lines {
		fmt.Fprintf(&b, "\n  %*d | %s", width, first+i, strings.TrimRight(line, "\r"))
	}
	return b.String()
}
