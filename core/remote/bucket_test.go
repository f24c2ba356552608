package remote

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"ci-mirrors/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var noSuchKey = minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}

// lazyMissing behaves like a minio object whose key doesn't exist: opening it
// succeeds and the first read fails.
type lazyMissing struct{}

func (lazyMissing) Read([]byte) (int, error) { return 0, noSuchKey }
func (lazyMissing) Close() error             { return nil }

func TestBucket_GetText(t *testing.T) {
	ctx := context.Background()

	t.Run("Present", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "mirrors", "a.tar.sha256", mock.Anything).
			Return(io.NopCloser(strings.NewReader("abc123")), nil)

		text, ok, err := NewBucket(client, "mirrors").GetText(ctx, "a.tar.sha256")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "abc123", text)
		client.AssertExpectations(t)
	})

	t.Run("MissingOnRead", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "mirrors", "a.tar.sha256", mock.Anything).
			Return(lazyMissing{}, nil)

		_, ok, err := NewBucket(client, "mirrors").GetText(ctx, "a.tar.sha256")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("MissingOnOpen", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "mirrors", "a.tar.sha256", mock.Anything).
			Return(nil, noSuchKey)

		_, ok, err := NewBucket(client, "mirrors").GetText(ctx, "a.tar.sha256")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("AccessDeniedIsAnError", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "mirrors", "a.tar.sha256", mock.Anything).
			Return(nil, minio.ErrorResponse{Code: "AccessDenied", StatusCode: 403})

		_, _, err := NewBucket(client, "mirrors").GetText(ctx, "a.tar.sha256")
		assert.Error(t, err)
	})
}

func TestBucket_Exists(t *testing.T) {
	ctx := context.Background()

	client := new(mocks.Client)
	client.On("StatObject", mock.Anything, "mirrors", "present.tar", mock.Anything).Return(minio.ObjectInfo{Key: "present.tar"}, nil)
	client.On("StatObject", mock.Anything, "mirrors", "missing.tar", mock.Anything).Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NotFound", StatusCode: 404})
	client.On("StatObject", mock.Anything, "mirrors", "nobucket.tar", mock.Anything).Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchBucket", StatusCode: 404})

	b := NewBucket(client, "mirrors")

	exists, err := b.Exists(ctx, "present.tar")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = b.Exists(ctx, "missing.tar")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = b.Exists(ctx, "nobucket.tar")
	assert.Error(t, err)
}

func TestBucket_Put(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateOnly", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("PutObject", mock.Anything, "mirrors", "a.tar", mock.Anything, int64(5), mock.MatchedBy(func(opts minio.PutObjectOptions) bool {
			return opts.Header().Get("If-None-Match") == "*"
		})).Return(minio.UploadInfo{Key: "a.tar"}, nil)

		err := NewBucket(client, "mirrors").Put(ctx, "a.tar", strings.NewReader("bytes"), 5)
		require.NoError(t, err)
		client.AssertExpectations(t)
	})

	t.Run("AlreadyExists", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("PutObject", mock.Anything, "mirrors", "a.tar", mock.Anything, int64(5), mock.Anything).
			Return(minio.UploadInfo{}, minio.ErrorResponse{Code: "PreconditionFailed", StatusCode: 412})

		err := NewBucket(client, "mirrors").Put(ctx, "a.tar", strings.NewReader("bytes"), 5)
		assert.True(t, errors.Is(err, ErrAlreadyExists))
	})

	t.Run("TransportError", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("PutObject", mock.Anything, "mirrors", "a.tar", mock.Anything, int64(5), mock.Anything).
			Return(minio.UploadInfo{}, errors.New("connection refused"))

		err := NewBucket(client, "mirrors").Put(ctx, "a.tar", strings.NewReader("bytes"), 5)
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrAlreadyExists))
	})
}
