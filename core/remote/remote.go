package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// SidecarSuffix is appended to a file name to get the key of its hash sidecar.
const SidecarSuffix = ".sha256"

// ErrAlreadyExists is returned by Writer.Put when the key is already taken.
var ErrAlreadyExists = errors.New("object already exists")

// Reader is the read side of the remote store. A missing key is reported as
// absent, never as an error.
type Reader interface {
	// GetText returns the content of key and whether it exists.
	GetText(ctx context.Context, key string) (string, bool, error)
	// Exists reports whether key exists.
	Exists(ctx context.Context, key string) (bool, error)
}

// Writer is a Reader that can also upload.
type Writer interface {
	Reader
	// Put creates key with the content of r. It never overwrites: when key
	// exists the call fails with ErrAlreadyExists.
	Put(ctx context.Context, key string, r io.Reader, size int64) error
}

// StatusKind classifies an entry against the remote store.
type StatusKind string

const (
	// StatusMissing means neither the file nor its sidecar exists.
	StatusMissing StatusKind = "missing"
	// StatusPresent means the sidecar exists.
	StatusPresent StatusKind = "present"
	// StatusLegacy means the file exists without a sidecar.
	StatusLegacy StatusKind = "legacy"
)

// Status is the remote state of one file.
type Status struct {
	Kind StatusKind `json:"kind"`
	// SHA256 is the sidecar content, set for StatusPresent.
	SHA256 string `json:"sha256,omitempty"`
}

// SidecarKey returns the key of the hash sidecar for name.
func SidecarKey(name string) string {
	return name + SidecarSuffix
}

// CheckStatus classifies name by looking at its sidecar first, then at the file.
func CheckStatus(ctx context.Context, r Reader, name string) (Status, error) {
	hash, ok, err := r.GetText(ctx, SidecarKey(name))
	if err != nil {
		return Status{}, fmt.Errorf("failed to read sidecar of %s: %w", name, err)
	}
	if ok {
		return Status{Kind: StatusPresent, SHA256: strings.TrimSpace(hash)}, nil
	}

	exists, err := r.Exists(ctx, name)
	if err != nil {
		return Status{}, fmt.Errorf("failed to check %s: %w", name, err)
	}
	if exists {
		return Status{Kind: StatusLegacy}, nil
	}
	return Status{Kind: StatusMissing}, nil
}
