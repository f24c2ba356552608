// Package manifest loads the declarative list of mirrored files.
//
// A manifest is a tree of TOML files, each holding an array of [[files]] tables.
// Every table declares one Entry: the remote name it is served under, the
// SHA-256 of its content and its origin. An origin is either a source URL the
// content is fetched from, or legacy content that was uploaded before hashes
// were tracked.
//
// # Loading
//
// Load walks a directory (or reads a single file), decodes every manifest with a
// strict schema and keeps the raw text of each file. Syntax errors and unknown
// fields abort loading. Problems with individual entries, such as a leading slash
// in a name, are collected in Manifest.Errors so one run reports all of them.
//
// # Conflicts
//
// While loading, the location of every entry is recorded in a LocationIndex keyed
// by name, hash and source URL. Once every file is read, DetectConflicts reports
// each key declared more than once, quoting the offending tables with their file
// and line.
//
// # Usage
//
//	m, err := manifest.Load(afero.NewOsFs(), "files")
//	if err != nil {
//	    return err // syntax or schema error
//	}
//	for _, e := range m.Errors {
//	    fmt.Println("error:", e)
//	}
package manifest
