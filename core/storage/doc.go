// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client to provide a narrow interface over the calls the
// mirror needs: checking the bucket, reading object metadata and content, and
// uploading objects. This abstraction supports both AWS S3 and self-hosted MinIO
// instances.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (as seen in core/storage/mocks).
//
// # Credentials
//
// Static keys from the configuration are used when set. Otherwise the client
// reads the standard AWS environment variables and falls back to the instance
// role, so CI jobs don't need keys in their configuration.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	exists, err := client.BucketExists(ctx, "rust-lang-ci-mirrors")
package storage
