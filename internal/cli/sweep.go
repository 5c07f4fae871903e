package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete images older than the retention period",
	Long: `Remove images uploaded more than --days days ago, along with their files.
The default comes from retention_days in the config file.

Examples:
  resizer sweep              # Use the configured retention
  resizer sweep --days 7`,
	Args: cobra.NoArgs,
	RunE: runSweep,
}

var sweepDays int

func init() {
	sweepCmd.Flags().IntVar(&sweepDays, "days", 0, "Retention in days (default from config)")
}

func runSweep(cmd *cobra.Command, args []string) error {
	days := cfg.RetentionDays
	if cmd.Flags().Changed("days") {
		days = sweepDays
	}
	if days <= 0 {
		return fmt.Errorf("retention must be at least one day, got %d", days)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	svc, closeLib, err := openLibrary(ctx)
	if err != nil {
		return err
	}
	defer closeLib()

	stats, err := svc.Sweep(ctx, time.Now().AddDate(0, 0, -days))
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	if jsonOutput {
		return printer.JSON(stats)
	}

	if stats.Expired == 0 {
		printer.Info("Nothing older than %d days", days)
		return nil
	}
	printer.Success("Deleted %d of %d expired images", stats.Deleted, stats.Expired)
	if n := stats.StorageDeleteErrors + stats.RecordDeleteErrors; n > 0 {
		printer.Warn("%d could not be removed and will be retried next sweep", n)
	}
	return nil
}
