package reconcile

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"ci-mirrors/core/manifest"
	"ci-mirrors/core/remote"

	"go.uber.org/zap"
)

// ErrUnresolvedErrors is returned by Apply for a plan that has errors.
var ErrUnresolvedErrors = errors.New("plan has unresolved errors")

// Apply uploads every entry of plan followed by its hash sidecar and returns
// the number of entries uploaded. It uploads nothing when plan has errors. The
// first storage failure stops the apply; entries uploaded before it stay.
func (e *Engine) Apply(ctx context.Context, w remote.Writer, plan *Plan) (uploaded int, err error) {
	if len(plan.Errors) > 0 {
		return 0, ErrUnresolvedErrors
	}

	for _, entry := range plan.Uploads {
		if err := e.upload(ctx, w, entry); err != nil {
			return uploaded, err
		}
		uploaded++
	}
	return uploaded, nil
}

func (e *Engine) upload(ctx context.Context, w remote.Writer, entry manifest.Entry) error {
	e.logger.Info("Uploading", zap.String("name", entry.Name))

	content, size, err := e.fetcher.Open(entry.SHA256)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", entry.Name, err)
	}
	defer content.Close()

	if err := w.Put(ctx, entry.Name, content, size); err != nil {
		return err
	}

	sidecar := []byte(entry.SHA256)
	if err := w.Put(ctx, remote.SidecarKey(entry.Name), bytes.NewReader(sidecar), int64(len(sidecar))); err != nil {
		return err
	}
	return nil
}
