package cli

import (
	"fmt"
	"os"

	"github.com/Ashivkar123/Image-Resizer/internal/resizer"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview [file]",
	Short: "Show the size a resize would produce without storing it",
	Long: `Encode an image with the given settings and report its dimensions and
size. Nothing is written to the library.

Examples:
  resizer preview photo.jpg -W 1200 -l
  resizer preview photo.png -f webp -q 70 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

var (
	previewWidth      int
	previewHeight     int
	previewLockAspect bool
	previewFormat     string
	previewQuality    int
)

func init() {
	previewCmd.Flags().IntVarP(&previewWidth, "width", "W", 0, "Target width in pixels")
	previewCmd.Flags().IntVarP(&previewHeight, "height", "H", 0, "Target height in pixels")
	previewCmd.Flags().BoolVarP(&previewLockAspect, "lock-aspect", "l", false, "Keep the source aspect ratio")
	previewCmd.Flags().StringVarP(&previewFormat, "format", "f", "", "Output format")
	previewCmd.Flags().IntVarP(&previewQuality, "quality", "q", 0, "Encoder quality 1-100")
}

func runPreview(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	// Preview never touches the catalog or storage.
	opts := []resizer.Option{}
	if cfg.Quality > 0 {
		opts = append(opts, resizer.WithDefaultQuality(cfg.Quality))
	}
	svc := resizer.New(nil, nil, nil, opts...)

	res, err := svc.Preview(ctx, data, resizer.PreviewParams{
		Width:      previewWidth,
		Height:     previewHeight,
		LockAspect: previewLockAspect,
		Quality:    previewQuality,
		Format:     firstNonEmpty(previewFormat, cfg.Format),
	})
	if err != nil {
		return fmt.Errorf("preview %s: %w", args[0], err)
	}

	if jsonOutput {
		return printer.JSON(res)
	}

	printer.Section(args[0])
	printer.KeyValue("Original", formatSize(int64(len(data))))
	printer.KeyValue("Dimensions", dims(res.Width, res.Height))
	printer.KeyValue("Format", res.Format)
	printer.KeyValue("Size", fmt.Sprintf("%d KB", res.SizeKB))
	return nil
}
