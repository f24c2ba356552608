package transfer

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var payload = bytes.Repeat([]byte("mirrored content\n"), 4096)

func hashOf(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func newOrigin(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/foo.tar":
			_, _ = w.Write(payload)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// shortWriter accepts at most half of every write.
type shortWriter struct {
	bytes.Buffer
}

func (s *shortWriter) Write(p []byte) (int, error) {
	n := len(p) / 2
	s.Buffer.Write(p[:n])
	return n, io.ErrShortWrite
}

func TestHashingWriter(t *testing.T) {
	t.Run("HashesWrittenBytes", func(t *testing.T) {
		var buf bytes.Buffer
		hw := NewHashingWriter(&buf)
		_, err := hw.Write([]byte("hello "))
		require.NoError(t, err)
		_, err = hw.Write([]byte("world"))
		require.NoError(t, err)

		assert.Equal(t, "hello world", buf.String())
		assert.Equal(t, hashOf([]byte("hello world")), hw.Sum())
		assert.Equal(t, int64(11), hw.Size())
	})

	t.Run("ShortWrite", func(t *testing.T) {
		sw := &shortWriter{}
		hw := NewHashingWriter(sw)
		n, err := hw.Write([]byte("abcdef"))
		assert.ErrorIs(t, err, io.ErrShortWrite)
		assert.Equal(t, 3, n)
		assert.Equal(t, hashOf([]byte("abc")), hw.Sum())
		assert.Equal(t, int64(3), hw.Size())
	})
}

func TestFetchAndVerify(t *testing.T) {
	srv := newOrigin(t)
	ctx := context.Background()

	t.Run("Match", func(t *testing.T) {
		var dst bytes.Buffer
		res, err := FetchAndVerify(ctx, srv.Client(), srv.URL+"/foo.tar", hashOf(payload), &dst)
		require.NoError(t, err)
		assert.Equal(t, payload, dst.Bytes())
		assert.Equal(t, int64(len(payload)), res.Size)
		assert.Equal(t, hashOf(payload), res.SHA256)
	})

	t.Run("Mismatch", func(t *testing.T) {
		var dst bytes.Buffer
		expected := hashOf([]byte("something else"))
		res, err := FetchAndVerify(ctx, srv.Client(), srv.URL+"/foo.tar", expected, &dst)
		require.Error(t, err)

		var mismatch *HashMismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.Equal(t, expected, mismatch.Expected)
		assert.Equal(t, hashOf(payload), mismatch.Actual)
		assert.Equal(t, srv.URL+"/foo.tar", mismatch.URL)
		assert.Equal(t, int64(len(payload)), mismatch.Size)
		assert.Equal(t, int64(len(payload)), res.Size)
		assert.Contains(t, err.Error(), "doesn't match")
	})

	t.Run("UppercaseExpectedIsMismatch", func(t *testing.T) {
		upper := bytes.ToUpper([]byte(hashOf(payload)))
		_, err := FetchAndVerify(ctx, srv.Client(), srv.URL+"/foo.tar", string(upper), io.Discard)
		var mismatch *HashMismatchError
		assert.True(t, errors.As(err, &mismatch))
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := FetchAndVerify(ctx, srv.Client(), srv.URL+"/missing.tar", hashOf(payload), io.Discard)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status 404")
	})

	t.Run("Unreachable", func(t *testing.T) {
		_, err := FetchAndVerify(ctx, http.DefaultClient, "http://127.0.0.1:1/foo.tar", hashOf(payload), io.Discard)
		assert.Error(t, err)
	})
}

func TestProbeHash(t *testing.T) {
	srv := newOrigin(t)

	res, err := ProbeHash(context.Background(), srv.Client(), srv.URL+"/foo.tar")
	require.NoError(t, err)
	assert.Equal(t, hashOf(payload), res.SHA256)
	assert.Equal(t, int64(len(payload)), res.Size)
}

func TestDownloader(t *testing.T) {
	srv := newOrigin(t)
	ctx := context.Background()

	d, err := NewDownloader(srv.Client(), t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	t.Run("StagesVerifiedFile", func(t *testing.T) {
		require.NoError(t, d.Download(ctx, srv.URL+"/foo.tar", hashOf(payload)))

		rc, size, err := d.Open(hashOf(payload))
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, payload, data)
		assert.Equal(t, int64(len(payload)), size)
	})

	t.Run("Mismatch", func(t *testing.T) {
		err := d.Download(ctx, srv.URL+"/foo.tar", hashOf([]byte("other")))
		var mismatch *HashMismatchError
		assert.True(t, errors.As(err, &mismatch))
	})

	t.Run("RejectsPathLikeHash", func(t *testing.T) {
		err := d.Download(ctx, srv.URL+"/foo.tar", "../escape")
		assert.Error(t, err)
		_, _, err = d.Open("..")
		assert.Error(t, err)
	})

	t.Run("CloseRemovesDir", func(t *testing.T) {
		dir := d.Dir()
		require.NoError(t, d.Close())
		_, err := os.Stat(filepath.Join(dir, hashOf(payload)))
		assert.True(t, os.IsNotExist(err))
	})
}
