package cmd

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"ci-mirrors/core/config"
	"ci-mirrors/core/logger"
	"ci-mirrors/core/manifest"
	"ci-mirrors/core/transfer"
	"ci-mirrors/core/transport"
	"ci-mirrors/core/utils"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// UnknownLicense is written when add is run without --license.
const UnknownLicense = "unknown"

var (
	// Flags for the add command
	addManifest string
	addLicense  string
)

// addCmd registers a new file in a manifest.
var addCmd = &cobra.Command{
	Use:   "add <url> [name]",
	Short: "Download a file and append its entry to a manifest",
	Long: `Download the file at url, compute its SHA-256 and append a [[files]] entry
to the manifest. The name defaults to the last segment of the URL; when a
different name is given, rename-from is filled in automatically.

Examples:
  ci-mirrors add https://example.com/dl/foo-1.0.tar.gz tools/foo.tar.gz \
    --manifest files/tools.toml --license MIT`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addManifest, "manifest", "", "Manifest file to append the entry to")
	addCmd.Flags().StringVar(&addLicense, "license", "", "License of the mirrored file")
	_ = addCmd.MarkFlagRequired("manifest")

	RootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	name := ""
	if len(args) == 2 {
		name = args[1]
	}

	entry, err := addEntry(cmd.Context(), afero.NewOsFs(), transport.NewClient(transport.DefaultTimeoutSeconds), l, addRequest{
		Manifest: addManifest,
		Source:   args[0],
		Name:     name,
		License:  addLicense,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "added %s to %s\n", entry.Name, addManifest)
	return nil
}

type addRequest struct {
	Manifest string
	Source   string
	Name     string
	License  string
}

// addEntry downloads req.Source, builds its entry and appends it to
// req.Manifest. It refuses names and URLs already declared in that file.
func addEntry(ctx context.Context, fs afero.Fs, client *http.Client, l *zap.Logger, req addRequest) (manifest.Entry, error) {
	source, err := url.Parse(req.Source)
	if err != nil {
		return manifest.Entry{}, fmt.Errorf("invalid URL %q: %w", req.Source, err)
	}
	if source.Scheme == "" || source.Host == "" {
		return manifest.Entry{}, fmt.Errorf("source URL %q must include scheme and host", req.Source)
	}

	name := req.Name
	if name == "" {
		name = utils.URLFileName(source)
	}
	if name == "" {
		return manifest.Entry{}, fmt.Errorf("cannot derive a file name from %s, pass one explicitly", req.Source)
	}

	license := req.License
	if license == "" {
		l.Warn("No license given, recording it as unknown", zap.String("name", name))
		license = UnknownLicense
	}

	if exists, err := afero.Exists(fs, req.Manifest); err != nil {
		return manifest.Entry{}, err
	} else if exists {
		m, err := manifest.Load(fs, req.Manifest)
		if err != nil {
			return manifest.Entry{}, err
		}
		if _, ok := m.Index.Names[name]; ok {
			return manifest.Entry{}, fmt.Errorf("file %s is already declared in %s", name, req.Manifest)
		}
		if _, ok := m.Index.URLs[source.String()]; ok {
			return manifest.Entry{}, fmt.Errorf("source URL %s is already declared in %s", source, req.Manifest)
		}
	}

	l.Info("Downloading", zap.String("url", source.String()))
	result, err := transfer.ProbeHash(ctx, client, source.String())
	if err != nil {
		return manifest.Entry{}, err
	}
	l.Info("Computed hash",
		zap.String("sha256", result.SHA256),
		zap.String("size", humanize.Bytes(uint64(result.Size))),
	)

	entry := manifest.NewURLEntry(name, source, result.SHA256, license)
	if err := manifest.Append(fs, req.Manifest, entry); err != nil {
		return manifest.Entry{}, err
	}
	return entry, nil
}
