package reconcile

import (
	"ci-mirrors/core/manifest"
	"ci-mirrors/core/remote"
)

// Outcome is what a run does with one entry.
type Outcome string

const (
	// OutcomeUpToDate means the remote store already matches the entry.
	OutcomeUpToDate Outcome = "up_to_date"
	// OutcomeUpload means the entry is missing and was downloaded for upload.
	OutcomeUpload Outcome = "upload"
	// OutcomeError means the entry can't be reconciled.
	OutcomeError Outcome = "error"
)

// Result is the reconciliation output for a single entry.
type Result struct {
	// Name is the remote key of the entry.
	Name string `json:"name"`

	// Source is the origin URL, empty for legacy entries.
	Source string `json:"source,omitempty"`

	// Status is the remote state found during planning.
	Status remote.Status `json:"status"`

	// Outcome is what the run does with the entry.
	Outcome Outcome `json:"outcome"`

	// Reason explains an OutcomeError.
	Reason string `json:"reason,omitempty"`
}

// Plan contains the per-entry results, the files to upload and every error
// found while planning.
type Plan struct {
	// Results holds one result per manifest entry, in manifest order.
	Results []Result `json:"results"`

	// Uploads holds the verified entries to upload, in manifest order.
	Uploads []manifest.Entry `json:"-"`

	// Errors holds manifest, classification and download errors. When it is
	// not empty the plan must not be applied.
	Errors []string `json:"errors"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// PlanSummary provides aggregate statistics for a plan.
type PlanSummary struct {
	// TotalEntries is the number of manifest entries.
	TotalEntries int `json:"total_entries"`

	// UpToDate counts entries already matching the remote store.
	UpToDate int `json:"up_to_date"`

	// Missing counts entries absent from the remote store.
	Missing int `json:"missing"`

	// Legacy counts entries whose file exists without a sidecar.
	Legacy int `json:"legacy"`

	// Mismatched counts entries whose sidecar holds a different hash.
	Mismatched int `json:"mismatched"`

	// Uploads counts entries ready for upload.
	Uploads int `json:"uploads"`

	// Errors counts all collected errors.
	Errors int `json:"errors"`
}

// Options controls the parallelism of planning.
type Options struct {
	// Workers bounds concurrent status checks.
	Workers int

	// DownloadWorkers bounds concurrent downloads.
	DownloadWorkers int
}

// Config holds the sync settings loaded from the environment.
type Config struct {
	// Workers bounds concurrent status checks.
	Workers int `mapstructure:"workers" default:"16"`
	// DownloadWorkers bounds concurrent downloads.
	DownloadWorkers int `mapstructure:"download_workers" default:"1"`
	// TempDir is where downloads are staged; empty means the system default.
	TempDir string `mapstructure:"temp_dir" default:""`
}

// Options returns the planning options of the configuration.
func (c Config) Options() Options {
	return Options{Workers: c.Workers, DownloadWorkers: c.DownloadWorkers}
}
