package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Ashivkar123/Image-Resizer/internal/catalog"
	"github.com/Ashivkar123/Image-Resizer/internal/cli/config"
	"github.com/Ashivkar123/Image-Resizer/internal/cli/output"
	"github.com/Ashivkar123/Image-Resizer/internal/logger"
	imgproc "github.com/Ashivkar123/Image-Resizer/internal/processor/image"
	"github.com/Ashivkar123/Image-Resizer/internal/resizer"
	"github.com/Ashivkar123/Image-Resizer/internal/storage"
	"github.com/Ashivkar123/Image-Resizer/internal/version"
	"github.com/spf13/cobra"
)

var (
	jsonOutput bool
	quietMode  bool
	noColor    bool
	verbose    bool
	configPath string
	dataDir    string
	cfg        *config.Config
	printer    *output.Printer
)

var rootCmd = &cobra.Command{
	Use:   "resizer",
	Short: "resizer - resize, edit, and catalog images",
	Long: `resizer resizes images in bulk, optionally to a target file size, and keeps
a local library of the results.

Get started:
  resizer resize photo.jpg -W 800            # Resize into the library
  resizer resize *.png -t 200KB -f jpeg      # Hit a size budget
  resizer list                               # Show the library`,
	Version: version.Full(),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if dataDir != "" {
			cfg.DataDir = dataDir
		}

		printer = output.New(
			output.WithJSON(jsonOutput),
			output.WithQuiet(quietMode),
			output.WithNoColor(noColor || os.Getenv("NO_COLOR") != ""),
			output.WithOutput(cmd.OutOrStdout()),
			output.WithErrOutput(cmd.ErrOrStderr()),
		)
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON (for scripting)")
	rootCmd.PersistentFlags().BoolVar(&quietMode, "quiet", false, "Suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log processing details to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/resizer/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Library directory (overrides config and "+config.EnvDataDir+")")

	rootCmd.SetVersionTemplate("resizer version {{.Version}}\n")

	rootCmd.AddCommand(resizeCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(zipCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(presetsCmd)
}

// commandContext bounds cmd by the configured timeout and attaches a text
// logger on stderr.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	level := "warn"
	if verbose {
		level = "debug"
	}
	log := logger.New(cmd.ErrOrStderr(), level, "text").With(slog.String("command", cmd.Name()))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithLogger(ctx, log)
	return context.WithTimeout(ctx, cfg.GetTimeout())
}

// openLibrary wires the resize service over the SQLite catalog and local
// file storage under the data directory.
func openLibrary(ctx context.Context) (*resizer.Service, func(), error) {
	records, err := catalog.Open(ctx, "", cfg.DatabasePath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	blobs, err := storage.Open(ctx, storage.BackendLocal, cfg.UploadsDir(), nil)
	if err != nil {
		_ = records.Close()
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}

	opts := []resizer.Option{}
	if cfg.Quality > 0 {
		opts = append(opts, resizer.WithDefaultQuality(cfg.Quality))
	}

	svc := resizer.New(imgproc.NewCodec(nil), records, blobs, opts...)
	return svc, func() { _ = records.Close() }, nil
}
