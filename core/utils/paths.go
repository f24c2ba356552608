package utils

import (
	"net/url"
	"strings"
)

// LastSegment returns the part of a slash separated path after the final slash.
// A path without slashes is returned unchanged.
func LastSegment(p string) string {
	if idx := strings.LastIndex(p, "/"); idx != -1 {
		return p[idx+1:]
	}
	return p
}

// URLFileName returns the last segment of the URL path, decoded.
func URLFileName(u *url.URL) string {
	return LastSegment(u.Path)
}

// EscapeKey prepares an object key for use in a CDN URL path.
// Object stores behind a CDN decode "+" as a space, so it is sent as %2B.
func EscapeKey(key string) string {
	return strings.ReplaceAll(key, "+", "%2B")
}
