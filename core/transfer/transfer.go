package transfer

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Result describes a completed stream.
type Result struct {
	// SHA256 is the lowercase hex digest of the streamed bytes.
	SHA256 string
	// Size is the number of bytes streamed.
	Size int64
}

// HashMismatchError is returned when downloaded content doesn't hash to the
// expected value. The bytes were still written to the destination.
type HashMismatchError struct {
	URL      string
	Expected string
	Actual   string
	Size     int64
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("the hash of %s doesn't match (expected %s, downloaded %s)", e.URL, e.Expected, e.Actual)
}

// FetchAndVerify streams source into dst and checks that the content hashes to
// expected. The returned Result reflects what was actually transferred, also on
// a mismatch.
func FetchAndVerify(ctx context.Context, client *http.Client, source, expected string, dst io.Writer) (Result, error) {
	res, err := fetch(ctx, client, source, dst)
	if err != nil {
		return res, err
	}
	if res.SHA256 != expected {
		return res, &HashMismatchError{URL: source, Expected: expected, Actual: res.SHA256, Size: res.Size}
	}
	return res, nil
}

// ProbeHash streams source without keeping it, to learn its hash and size.
func ProbeHash(ctx context.Context, client *http.Client, source string) (Result, error) {
	return fetch(ctx, client, source, io.Discard)
}

func fetch(ctx context.Context, client *http.Client, source string, dst io.Writer) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return Result{}, fmt.Errorf("failed to build request for %s: %w", source, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("failed to download %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("unexpected status %s when downloading %s", resp.Status, source)
	}

	hw := NewHashingWriter(dst)
	if _, err := io.Copy(hw, resp.Body); err != nil {
		return Result{Size: hw.Size()}, fmt.Errorf("failed to download %s: %w", source, err)
	}
	return Result{SHA256: hw.Sum(), Size: hw.Size()}, nil
}
