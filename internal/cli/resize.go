package cli

import (
	"fmt"

	"github.com/Ashivkar123/Image-Resizer/internal/cli/output"
	"github.com/Ashivkar123/Image-Resizer/internal/resizer"
	"github.com/spf13/cobra"
)

var resizeCmd = &cobra.Command{
	Use:   "resize [files...]",
	Short: "Resize images into the library",
	Long: `Resize one or more images and store the results in the library.

Without dimensions every image is resized to 500x500. With a target size
lossy outputs (JPEG, WEBP) search for the quality that lands within 5% of
the target; lossless formats ignore it.

Examples:
  resizer resize photo.jpg -W 800 --lock-aspect
  resizer resize *.png -f jpeg -t 150KB
  resizer resize ./shoot -r -p instagram_square
  resizer resize banner.png -p banner        # preset from config.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResize,
}

var (
	resizeWidth      int
	resizeHeight     int
	resizeLockAspect bool
	resizeFormat     string
	resizeQuality    int
	resizeTarget     string
	resizePreset     string
	resizeRecursive  bool
)

func init() {
	resizeCmd.Flags().IntVarP(&resizeWidth, "width", "W", 0, "Target width in pixels")
	resizeCmd.Flags().IntVarP(&resizeHeight, "height", "H", 0, "Target height in pixels")
	resizeCmd.Flags().BoolVarP(&resizeLockAspect, "lock-aspect", "l", false, "Keep the source aspect ratio")
	resizeCmd.Flags().StringVarP(&resizeFormat, "format", "f", "", "Output format (png, jpeg, webp, gif, bmp, tiff)")
	resizeCmd.Flags().IntVarP(&resizeQuality, "quality", "q", 0, "Encoder quality 1-100")
	resizeCmd.Flags().StringVarP(&resizeTarget, "target-size", "t", "", "Target file size, e.g. 200KB or 1.5MB")
	resizeCmd.Flags().StringVarP(&resizePreset, "preset", "p", "", "Named preset (see 'resizer presets')")
	resizeCmd.Flags().BoolVarP(&resizeRecursive, "recursive", "r", false, "Walk directories for images")
}

// resizeParams merges flags, a config preset and config defaults, in that
// order of precedence.
func resizeParams(cmd *cobra.Command) resizer.ResizeParams {
	p := resizer.ResizeParams{
		Width:      resizeWidth,
		Height:     resizeHeight,
		LockAspect: resizeLockAspect,
		Format:     resizeFormat,
		Quality:    resizeQuality,
		TargetSize: resizeTarget,
		Preset:     resizePreset,
	}

	if custom, ok := cfg.GetPreset(resizePreset); ok {
		p.Preset = ""
		if p.Width == 0 && p.Height == 0 {
			p.Width, p.Height = custom.Width, custom.Height
		}
		if !cmd.Flags().Changed("lock-aspect") {
			p.LockAspect = custom.LockAspect
		}
		p.Format = firstNonEmpty(p.Format, custom.Format)
		if p.Quality == 0 {
			p.Quality = custom.Quality
		}
		p.TargetSize = firstNonEmpty(p.TargetSize, custom.TargetSize)
	}

	if p.Preset == "" {
		if p.Width == 0 && p.Height == 0 {
			p.Width, p.Height = cfg.Width, cfg.Height
		}
		if !cmd.Flags().Changed("lock-aspect") && cfg.LockAspect {
			p.LockAspect = true
		}
	}
	p.Format = firstNonEmpty(p.Format, cfg.Format)
	p.TargetSize = firstNonEmpty(p.TargetSize, cfg.TargetSize)
	return p
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

type resizeReport struct {
	Items     []resizer.BatchItem `json:"items"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
	Skipped   int                 `json:"skipped"`
}

func runResize(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args, resizeRecursive)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	svc, closeLib, err := openLibrary(ctx)
	if err != nil {
		return err
	}
	defer closeLib()

	params := resizeParams(cmd)
	report := resizeReport{Items: make([]resizer.BatchItem, 0, len(files))}
	progress := output.NewProgress(len(files), "Resizing",
		output.ProgressWithQuiet(quietMode || jsonOutput),
		output.ProgressWithOutput(cmd.ErrOrStderr()),
	)

	// Files are read and resized one at a time so only one image is held in
	// memory. The service still sees each as a batch for skip and cancel
	// handling.
	for i, path := range files {
		progress.Start(truncate(path, 30))

		item := resizer.BatchItem{Index: i, Name: path}
		up, err := readUpload(path)
		if err != nil {
			item.Status = resizer.StatusFailed
			item.Code = "read_failed"
			item.Message = err.Error()
		} else {
			items, err := svc.ResizeBatch(ctx, []resizer.Upload{up}, params)
			if err != nil {
				progress.Finish()
				return err
			}
			item = items[0]
			item.Index = i
		}

		report.Items = append(report.Items, item)
		progress.Done(item.Status != resizer.StatusOK && item.Status != resizer.StatusSkipped)
	}
	progress.Finish()

	for _, item := range report.Items {
		switch item.Status {
		case resizer.StatusOK:
			report.Succeeded++
			rec := item.Record
			printer.FileResized(item.Name, rec.Filename,
				fmt.Sprintf("#%d, %s, %s", rec.ID, dims(rec.ResizedWidth, rec.ResizedHeight), formatSize(rec.FileSize)))
			if s := item.Search; s != nil && s.TargetKB > 0 {
				switch {
				case !s.Applicable:
					printer.Indent("target %.0fKB ignored for %s", s.TargetKB, rec.Format)
				case s.Converged:
					printer.Indent("quality %d hit %.0fKB target in %d iterations", s.Quality, s.TargetKB, s.Iterations)
				default:
					printer.Indent("closest quality %d after %d iterations (target %.0fKB)", s.Quality, s.Iterations, s.TargetKB)
				}
			}
		case resizer.StatusSkipped:
			report.Skipped++
			printer.Warn("Skipped %s: %s", item.Name, item.Message)
		default:
			report.Failed++
			printer.FileFailed(item.Name, fmt.Errorf("%s: %s", item.Status, item.Message))
		}
	}

	if jsonOutput {
		if err := printer.JSON(report); err != nil {
			return err
		}
	} else {
		printer.Summary(report.Succeeded, report.Failed, report.Skipped)
	}

	if report.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", report.Failed, len(files))
	}
	return nil
}
