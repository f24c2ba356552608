// Package transport builds the HTTP clients shared by the storage client, the
// CDN reader and the downloader.
//
// Connection setup, TLS handshakes and the wait for response headers are bounded
// by a configurable timeout. Body transfers are not, since mirrored files can be
// large.
package transport
