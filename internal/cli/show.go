package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [image-id]",
	Short: "Show details of a library image",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	svc, closeLib, err := openLibrary(ctx)
	if err != nil {
		return err
	}
	defer closeLib()

	rec, err := svc.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("image %d: %w", id, err)
	}

	if jsonOutput {
		return printer.JSON(rec)
	}

	printer.Section(fmt.Sprintf("Image #%d", rec.ID))
	printer.KeyValue("Name", rec.OriginalName)
	printer.KeyValue("File", rec.Filename)
	printer.KeyValue("Format", rec.Format)
	printer.KeyValue("Size", formatSize(rec.FileSize))
	printer.KeyValue("Original", dims(rec.OriginalWidth, rec.OriginalHeight))
	printer.KeyValue("Resized", dims(rec.ResizedWidth, rec.ResizedHeight))
	if rec.Quality > 0 {
		printer.KeyValue("Quality", strconv.Itoa(rec.Quality))
	}
	if rec.TargetKB > 0 {
		printer.KeyValue("Target", fmt.Sprintf("%.0f KB (converged: %t, %d iterations)", rec.TargetKB, rec.Converged, rec.SearchIterations))
	}
	if rec.ParentID != nil {
		printer.KeyValue("Edited from", "#"+strconv.FormatInt(*rec.ParentID, 10))
	}
	printer.KeyValue("Uploaded", rec.UploadDate.Local().Format(time.RFC1123))
	return nil
}
