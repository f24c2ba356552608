package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ci-mirrors/core/utils"
)

// CDN reads mirrored files through their public HTTP endpoint.
// It is a Reader only.
type CDN struct {
	http    *http.Client
	baseURL string
}

// NewCDN creates a CDN reader for baseURL.
func NewCDN(client *http.Client, baseURL string) *CDN {
	return &CDN{http: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// GetText implements Reader.
func (c *CDN) GetText(ctx context.Context, key string) (string, bool, error) {
	resp, url, err := c.do(ctx, http.MethodGet, key)
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", false, fmt.Errorf("failed to read %s: %w", url, err)
		}
		return string(body), true, nil
	case http.StatusNotFound, http.StatusForbidden:
		return "", false, nil
	default:
		return "", false, fmt.Errorf("unexpected status %s when requesting %s", resp.Status, url)
	}
}

// Exists implements Reader.
func (c *CDN) Exists(ctx context.Context, key string) (bool, error) {
	resp, url, err := c.do(ctx, http.MethodHead, key)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound, http.StatusForbidden:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected status %s when requesting %s", resp.Status, url)
	}
}

func (c *CDN) do(ctx context.Context, method, key string) (*http.Response, string, error) {
	url := c.baseURL + "/" + utils.EscapeKey(key)
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, url, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, url, fmt.Errorf("failed to request %s: %w", url, err)
	}
	return resp, url, nil
}
