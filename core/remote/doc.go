// Package remote is the storage side of a mirror run.
//
// A Reader answers the two questions classification needs: the text of an
// object and whether an object exists. A Writer adds create-only uploads. The
// CDN type reads through the public HTTP endpoint and needs no credentials; the
// Bucket type talks to the object store and can write. Callers pick one at
// startup, so check-only runs never hold a Writer.
//
// # Layout
//
// A mirrored file lives at its name, and a sidecar object at name + ".sha256"
// holds its hex digest. CheckStatus derives the state of an entry from these
// two objects:
//
//   - sidecar present: Present, with the sidecar hash
//   - only the file present: Legacy, uploaded before hashes were tracked
//   - neither present: Missing
package remote
