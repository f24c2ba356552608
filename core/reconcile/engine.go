package reconcile

import (
	"context"
	"fmt"
	"io"

	"ci-mirrors/core/manifest"
	"ci-mirrors/core/remote"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Fetcher downloads and verifies content, and hands it back for upload.
// transfer.Downloader implements it.
type Fetcher interface {
	// Download fetches source and verifies it hashes to sha256.
	Download(ctx context.Context, source, sha256 string) error
	// Open returns verified content previously downloaded for sha256.
	Open(sha256 string) (io.ReadCloser, int64, error)
}

// Engine plans and applies reconciliation runs.
type Engine struct {
	reader  remote.Reader
	fetcher Fetcher
	logger  *zap.Logger
	opts    Options
}

// NewEngine creates an engine reading remote state through reader.
func NewEngine(reader remote.Reader, fetcher Fetcher, logger *zap.Logger, opts Options) *Engine {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.DownloadWorkers < 1 {
		opts.DownloadWorkers = 1
	}
	return &Engine{reader: reader, fetcher: fetcher, logger: logger, opts: opts}
}

// Plan classifies every entry of m and downloads the ones to upload.
// Errors already present in m are carried over. The returned error is set only
// when the remote store can't be queried.
func (e *Engine) Plan(ctx context.Context, m *manifest.Manifest) (*Plan, error) {
	e.logger.Info("Calculating the changes to execute", zap.Int("entries", len(m.Entries)))

	statuses, err := e.checkStatuses(ctx, m.Entries)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Results: make([]Result, 0, len(m.Entries)),
		Errors:  append([]string(nil), m.Errors...),
	}
	var pending []int
	for i, entry := range m.Entries {
		result := classify(entry, statuses[i], &plan.Summary)
		switch result.Outcome {
		case OutcomeError:
			plan.Errors = append(plan.Errors, result.Reason)
		case OutcomeUpload:
			pending = append(pending, i)
		}
		plan.Results = append(plan.Results, result)
	}

	// Downloads happen before anything is uploaded so that hash mismatches are
	// reported together with every other error.
	failures := e.downloadAll(ctx, m.Entries, pending)
	for n, i := range pending {
		if failures[n] != "" {
			plan.Results[i].Outcome = OutcomeError
			plan.Results[i].Reason = failures[n]
			plan.Errors = append(plan.Errors, failures[n])
			continue
		}
		plan.Uploads = append(plan.Uploads, m.Entries[i])
	}

	plan.Summary.TotalEntries = len(m.Entries)
	plan.Summary.Uploads = len(plan.Uploads)
	plan.Summary.Errors = len(plan.Errors)
	return plan, nil
}

// checkStatuses queries the remote status of every entry, at most
// opts.Workers at a time. Statuses are returned in entry order. A failed check
// doesn't cancel the others; the first error is returned once all finished.
func (e *Engine) checkStatuses(ctx context.Context, entries []manifest.Entry) ([]remote.Status, error) {
	statuses := make([]remote.Status, len(entries))

	var g errgroup.Group
	g.SetLimit(e.opts.Workers)
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			status, err := remote.CheckStatus(ctx, e.reader, entry.Name)
			if err != nil {
				return err
			}
			statuses[i] = status
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to check remote status: %w", err)
	}
	return statuses, nil
}

// downloadAll downloads entries[i] for every i in pending, at most
// opts.DownloadWorkers at a time, and returns one error message per pending
// entry (empty on success).
func (e *Engine) downloadAll(ctx context.Context, entries []manifest.Entry, pending []int) []string {
	failures := make([]string, len(pending))

	var g errgroup.Group
	g.SetLimit(e.opts.DownloadWorkers)
	for n, i := range pending {
		n := n
		entry := entries[i]
		g.Go(func() error {
			source := entry.Source()
			if source == nil {
				failures[n] = fmt.Sprintf("cannot download legacy file %s", entry.Name)
				return nil
			}
			if err := e.fetcher.Download(ctx, source.String(), entry.SHA256); err != nil {
				e.logger.Warn("Download failed", zap.String("name", entry.Name), zap.Error(err))
				failures[n] = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()
	return failures
}

// classify turns the remote status of one entry into a result.
func classify(entry manifest.Entry, status remote.Status, summary *PlanSummary) Result {
	result := Result{Name: entry.Name, Status: status, Outcome: OutcomeUpToDate}
	if source := entry.Source(); source != nil {
		result.Source = source.String()
	}

	switch status.Kind {
	case remote.StatusLegacy:
		summary.Legacy++
		if !entry.IsLegacy() {
			result.Outcome = OutcomeError
			result.Reason = fmt.Sprintf("file %s was already uploaded without this tool", entry.Name)
		}
	case remote.StatusPresent:
		if status.SHA256 != entry.SHA256 {
			summary.Mismatched++
			result.Outcome = OutcomeError
			result.Reason = fmt.Sprintf("file %s was already uploaded with different content", entry.Name)
		}
	case remote.StatusMissing:
		summary.Missing++
		result.Outcome = OutcomeUpload
	}

	if result.Outcome == OutcomeUpToDate {
		summary.UpToDate++
	}
	return result
}
