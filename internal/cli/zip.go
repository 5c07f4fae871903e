package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Ashivkar123/Image-Resizer/internal/cli/output"
	"github.com/spf13/cobra"
)

var zipCmd = &cobra.Command{
	Use:   "zip [archive.zip] [image-id|filename...]",
	Short: "Bundle library images into a zip archive",
	Long: `Write a zip archive of stored images. Images can be named by id or by
stored filename; missing ones are skipped.

Examples:
  resizer zip out.zip 3 4 5
  resizer zip out.zip resized-7d1c.jpg`,
	Args: cobra.MinimumNArgs(2),
	RunE: runZip,
}

func runZip(cmd *cobra.Command, args []string) error {
	dest, refs := args[0], args[1:]

	ctx, cancel := commandContext(cmd)
	defer cancel()

	svc, closeLib, err := openLibrary(ctx)
	if err != nil {
		return err
	}
	defer closeLib()

	filenames := make([]string, 0, len(refs))
	for _, ref := range refs {
		id, err := strconv.ParseInt(ref, 10, 64)
		if err != nil {
			filenames = append(filenames, ref)
			continue
		}
		rec, err := svc.Get(ctx, id)
		if err != nil {
			printer.Warn("Skipping #%d: %v", id, err)
			continue
		}
		filenames = append(filenames, rec.Filename)
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	spinner := output.NewSpinner(cmd.ErrOrStderr(), "Archiving", quietMode || jsonOutput)
	summary, err := svc.WriteArchive(ctx, f, filenames)
	spinner.Finish()
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dest)
		return fmt.Errorf("write %s: %w", dest, err)
	}

	if jsonOutput {
		return printer.JSON(map[string]interface{}{
			"path":    dest,
			"written": summary.Written,
			"skipped": summary.Skipped,
		})
	}

	for _, name := range summary.Skipped {
		printer.Warn("Skipped %s: not found", name)
	}
	printer.Success("Wrote %d file(s) to %s in %s", len(summary.Written), dest, spinner.Duration().Round(time.Millisecond))
	return nil
}
