package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [image-id] [destination]",
	Short: "Copy a library image to a file",
	Long: `Copy the stored file of an image out of the library. The destination
defaults to the stored filename in the current directory; when it is a
directory the stored filename is used inside it.

Examples:
  resizer export 12
  resizer export 12 ~/Desktop
  resizer export 12 hero.jpg`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
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

	dest := rec.Filename
	if len(args) == 2 {
		dest = args[1]
		if info, err := os.Stat(dest); err == nil && info.IsDir() {
			dest = filepath.Join(dest, rec.Filename)
		}
	}

	rc, _, err := svc.Open(ctx, rec.Filename)
	if err != nil {
		return fmt.Errorf("image %d: %w", id, err)
	}
	defer rc.Close()

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	n, err := io.Copy(f, rc)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dest)
		return fmt.Errorf("write %s: %w", dest, err)
	}

	if jsonOutput {
		return printer.JSON(map[string]interface{}{"id": id, "path": dest, "bytes": n})
	}
	printer.Success("Exported #%d to %s (%s)", id, dest, formatSize(n))
	return nil
}
