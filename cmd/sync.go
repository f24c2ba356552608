package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"ci-mirrors/core/config"
	"ci-mirrors/core/logger"
	"ci-mirrors/core/manifest"
	"ci-mirrors/core/reconcile"
	"ci-mirrors/core/remote"
	"ci-mirrors/core/storage"
	"ci-mirrors/core/transfer"
	"ci-mirrors/core/transport"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// DefaultManifestPath is synced when no path is given.
const DefaultManifestPath = "files"

var errUnresolved = errors.New("some files could not be mirrored")

var (
	// Flags for the sync command
	skipUpload          bool
	syncWorkers         int
	syncDownloadWorkers int
	syncCDNURL          string
	syncBucket          string
	syncJSONReport      string
)

// syncCmd downloads missing files and uploads them to the bucket.
var syncCmd = &cobra.Command{
	Use:   "sync [manifest-path]",
	Short: "Mirror every file declared in the manifests",
	Long: `Load the manifests, check which files are missing from the bucket, download
and verify them, then upload them. Nothing is uploaded when any error is found.

The manifest path is either a single TOML file or a directory walked recursively.

Examples:
  # Check what would be uploaded, reading through the public CDN
  ci-mirrors sync --skip-upload

  # Mirror a specific manifest tree with more parallel status checks
  ci-mirrors sync ./files --workers 32

  # Keep a machine-readable report of the run
  ci-mirrors sync --json report.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&skipUpload, "skip-upload", false, "Only report what would be uploaded, reading through the CDN")
	syncCmd.Flags().IntVar(&syncWorkers, "workers", 0, "Maximum concurrent status checks (overrides SYNC_WORKERS)")
	syncCmd.Flags().IntVar(&syncDownloadWorkers, "download-workers", 0, "Maximum concurrent downloads (overrides SYNC_DOWNLOAD_WORKERS)")
	syncCmd.Flags().StringVar(&syncCDNURL, "cdn-url", "", "Base URL of the CDN (overrides CDN_URL)")
	syncCmd.Flags().StringVar(&syncBucket, "bucket", "", "Bucket to upload to (overrides STORAGE_BUCKET)")
	syncCmd.Flags().StringVar(&syncJSONReport, "json", "", "Write the plan as JSON to this file")

	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := DefaultManifestPath
	if len(args) == 1 {
		path = args[0]
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applySyncFlags(cmd, cfg)

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()
	runID := uuid.NewString()
	l = logger.WithRunID(l, runID)

	var reader remote.Reader
	var writer remote.Writer
	if skipUpload {
		reader = remote.NewCDN(transport.NewClient(cfg.CDN.TimeoutSeconds), cfg.CDN.URL)
	} else {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}
		exists, err := client.BucketExists(ctx, cfg.Storage.Bucket)
		if err != nil {
			return fmt.Errorf("failed to check bucket %s: %w", cfg.Storage.Bucket, err)
		}
		if !exists {
			return fmt.Errorf("bucket %s does not exist", cfg.Storage.Bucket)
		}
		bucket := remote.NewBucket(client, cfg.Storage.Bucket)
		reader, writer = bucket, bucket
	}

	downloader, err := transfer.NewDownloader(transport.NewClient(transport.DefaultTimeoutSeconds), cfg.Sync.TempDir, l)
	if err != nil {
		return err
	}
	defer downloader.Close()

	s := &syncRun{
		fs:         afero.NewOsFs(),
		path:       path,
		runID:      runID,
		logger:     l,
		engine:     reconcile.NewEngine(reader, downloader, l, cfg.Sync.Options()),
		writer:     writer,
		reportPath: syncJSONReport,
		stdout:     cmd.OutOrStdout(),
		stderr:     cmd.ErrOrStderr(),
	}
	return s.run(ctx)
}

// applySyncFlags lets explicitly set flags win over the environment.
func applySyncFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Sync.Workers = syncWorkers
	}
	if flags.Changed("download-workers") {
		cfg.Sync.DownloadWorkers = syncDownloadWorkers
	}
	if flags.Changed("cdn-url") {
		cfg.CDN.URL = syncCDNURL
	}
	if flags.Changed("bucket") {
		cfg.Storage.Bucket = syncBucket
	}
}

// syncRun holds everything one sync needs once the clients are built.
// A nil writer means the run only reports.
type syncRun struct {
	fs         afero.Fs
	path       string
	runID      string
	logger     *zap.Logger
	engine     *reconcile.Engine
	writer     remote.Writer
	reportPath string
	stdout     io.Writer
	stderr     io.Writer
}

// syncReport is the document written by --json.
type syncReport struct {
	RunID    string          `json:"run_id"`
	Manifest string          `json:"manifest"`
	Plan     *reconcile.Plan `json:"plan"`
	Uploaded []string        `json:"uploaded"`
}

func (s *syncRun) run(ctx context.Context) error {
	m, err := manifest.Load(s.fs, s.path)
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}

	plan, err := s.engine.Plan(ctx, m)
	if err != nil {
		return err
	}
	printSyncReport(s.logger, plan)

	report := &syncReport{RunID: s.runID, Manifest: s.path, Plan: plan, Uploaded: []string{}}
	defer func() {
		if err := s.writeReport(report); err != nil {
			s.logger.Error("Failed to write JSON report", zap.Error(err))
		}
	}()

	if len(plan.Errors) > 0 {
		for _, msg := range plan.Errors {
			fmt.Fprintf(s.stderr, "error: %s\n", msg)
		}
		return errUnresolved
	}

	if len(plan.Uploads) == 0 {
		fmt.Fprintln(s.stdout, "everything is up to date!")
		return nil
	}

	if s.writer == nil {
		fmt.Fprintln(s.stdout, "skipping upload due to --skip-upload")
		for _, entry := range plan.Uploads {
			fmt.Fprintf(s.stdout, "  would upload %s\n", entry.Name)
		}
		return nil
	}

	uploaded, err := s.engine.Apply(ctx, s.writer, plan)
	for _, entry := range plan.Uploads[:uploaded] {
		report.Uploaded = append(report.Uploaded, entry.Name)
		fmt.Fprintf(s.stdout, "uploaded %s\n", entry.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to apply plan: %w", err)
	}

	s.logger.Info("Successfully uploaded files", zap.Int("count", uploaded))
	return nil
}

func (s *syncRun) writeReport(report *syncReport) error {
	if s.reportPath == "" {
		return nil
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(s.fs, s.reportPath, data, 0o644)
}

// printSyncReport prints a formatted plan summary using logger.
func printSyncReport(l *zap.Logger, plan *reconcile.Plan) {
	s := plan.Summary

	l.Info("Sync report",
		zap.Int("total_entries", s.TotalEntries),
		zap.Int("up_to_date", s.UpToDate),
		zap.Int("missing", s.Missing),
		zap.Int("legacy", s.Legacy),
		zap.Int("mismatched", s.Mismatched),
		zap.Int("errors", s.Errors),
	)

	if len(plan.Uploads) > 0 {
		// Show sample of uploads (max 5 for logger)
		maxShow := min(5, len(plan.Uploads))
		for _, entry := range plan.Uploads[:maxShow] {
			l.Info("Pending upload", zap.String("name", entry.Name), zap.String("sha256", entry.SHA256))
		}
		if len(plan.Uploads) > maxShow {
			l.Info("Additional uploads not shown", zap.Int("count", len(plan.Uploads)-maxShow))
		}
	}
}
