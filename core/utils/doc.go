// Package utils provides small helpers shared by the manifest and remote packages.
// It includes path segment extraction for rename checks and key escaping for CDN
// requests, logic that doesn't fit into a domain-specific package.
package utils
