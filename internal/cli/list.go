package cli

import (
	"fmt"
	"strconv"

	"github.com/Ashivkar123/Image-Resizer/internal/catalog"
	"github.com/Ashivkar123/Image-Resizer/internal/cli/output"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List library images",
	Long: `List images in the library, newest first.

Examples:
  resizer list                  # All images
  resizer list --limit=10       # The ten most recent
  resizer list --json | jq '.images[].filename'`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var listLimit int

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Show at most this many images (0 for all)")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	svc, closeLib, err := openLibrary(ctx)
	if err != nil {
		return err
	}
	defer closeLib()

	recs, err := svc.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list images: %w", err)
	}
	total := len(recs)
	if listLimit > 0 && len(recs) > listLimit {
		recs = recs[:listLimit]
	}

	if jsonOutput {
		if recs == nil {
			recs = []*catalog.Record{}
		}
		return printer.JSON(map[string]interface{}{
			"images": recs,
			"total":  total,
		})
	}

	if len(recs) == 0 {
		printer.Info("No images found")
		return nil
	}

	table := output.NewTable(printer.Out(), []string{"ID", "Name", "File", "Size", "Dimensions", "Uploaded"}, quietMode).AlignRight(0, 3)
	for _, r := range recs {
		name := truncate(r.OriginalName, 30)
		if r.ParentID != nil {
			name += " (edit of " + strconv.FormatInt(*r.ParentID, 10) + ")"
		}
		table.Append([]string{
			strconv.FormatInt(r.ID, 10),
			name,
			r.Filename,
			formatSize(r.FileSize),
			dims(r.ResizedWidth, r.ResizedHeight),
			formatTime(r.UploadDate),
		})
	}
	table.Render()

	if len(recs) < total {
		printer.Println()
		printer.Printf("Showing %d of %d images\n", len(recs), total)
	}
	return nil
}
