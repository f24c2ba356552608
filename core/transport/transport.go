package transport

import (
	"net"
	"net/http"
	"time"
)

// DefaultTimeoutSeconds is used when a configuration leaves the timeout unset.
const DefaultTimeoutSeconds = 30

// NewTransport creates an HTTP transport with strict connection timeouts.
// The timeout bounds dialing, the TLS handshake and the wait for response
// headers, but not the transfer of a body, so large downloads are not cut off.
func NewTransport(timeoutSeconds int) *http.Transport {
	if timeoutSeconds <= 0 {
		timeoutSeconds = DefaultTimeoutSeconds
	}
	timeout := time.Duration(timeoutSeconds) * time.Second

	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeout,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
}

// NewClient wraps NewTransport in an http.Client.
func NewClient(timeoutSeconds int) *http.Client {
	return &http.Client{Transport: NewTransport(timeoutSeconds)}
}
