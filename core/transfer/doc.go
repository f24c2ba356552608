// Package transfer streams remote content while hashing it.
//
// Every byte written through a HashingWriter is both forwarded to the
// destination and fed to a SHA-256 digest, so the stored file and the computed
// hash always describe the same stream and nothing is buffered in memory.
//
// FetchAndVerify downloads a URL into a writer and compares the digest with the
// expected one, returning a *HashMismatchError when they differ. ProbeHash runs
// the same stream into io.Discard to learn the hash of new content. Downloader
// stages verified files in a temporary directory until they are uploaded.
package transfer
