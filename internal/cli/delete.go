package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [image-id...]",
	Aliases: []string{"rm"},
	Short:   "Delete library images",
	Long: `Delete images and their stored files from the library.

Examples:
  resizer delete 12              # Delete single image
  resizer delete 12 13 14        # Delete multiple images
  resizer delete 12 --force      # Skip confirmation`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

var deleteForce bool

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	if !deleteForce && !jsonOutput {
		printer.Printf("Are you sure you want to delete %d image(s)? [y/N] ", len(ids))
		reader := bufio.NewReader(cmd.InOrStdin())
		response, _ := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			printer.Info("Cancelled")
			return nil
		}
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	svc, closeLib, err := openLibrary(ctx)
	if err != nil {
		return err
	}
	defer closeLib()

	var successful, failed int
	var results []map[string]interface{}

	for _, id := range ids {
		if err := svc.Delete(ctx, id); err != nil {
			printer.FileFailed(fmt.Sprintf("#%d", id), err)
			results = append(results, map[string]interface{}{
				"id":    id,
				"error": err.Error(),
			})
			failed++
			continue
		}
		printer.Success("Deleted #%d", id)
		results = append(results, map[string]interface{}{
			"id":      id,
			"deleted": true,
		})
		successful++
	}

	if jsonOutput {
		if err := printer.JSON(map[string]interface{}{
			"results":    results,
			"total":      len(ids),
			"successful": successful,
			"failed":     failed,
		}); err != nil {
			return err
		}
	} else {
		printer.Summary(successful, failed, 0)
	}

	if failed > 0 {
		return fmt.Errorf("%d deletions failed", failed)
	}
	return nil
}
