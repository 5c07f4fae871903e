package cli

import (
	"sort"
	"strconv"

	"github.com/Ashivkar123/Image-Resizer/internal/cli/output"
	"github.com/Ashivkar123/Image-Resizer/internal/presets"
	"github.com/spf13/cobra"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List named resize presets",
	Long: `List the built-in presets and those defined under presets: in the config
file. A config preset with the same name as a built-in one replaces it.`,
	Args: cobra.NoArgs,
	RunE: runPresets,
}

type presetRow struct {
	Name       string `json:"name"`
	Source     string `json:"source"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Quality    int    `json:"quality,omitempty"`
	Fill       bool   `json:"fill"`
	Format     string `json:"format,omitempty"`
	TargetSize string `json:"targetSize,omitempty"`
}

func runPresets(cmd *cobra.Command, args []string) error {
	rows := make([]presetRow, 0, len(presets.All)+len(cfg.Presets))

	for _, name := range presets.Names() {
		if _, overridden := cfg.Presets[name]; overridden {
			continue
		}
		p, _ := presets.Get(name)
		rows = append(rows, presetRow{
			Name: name, Source: "builtin",
			Width: p.Width, Height: p.Height, Quality: p.Quality, Fill: p.Fill, TargetSize: p.TargetSize,
		})
	}

	custom := make([]string, 0, len(cfg.Presets))
	for name := range cfg.Presets {
		custom = append(custom, name)
	}
	sort.Strings(custom)
	for _, name := range custom {
		p := cfg.Presets[name]
		rows = append(rows, presetRow{
			Name: name, Source: "config",
			Width: p.Width, Height: p.Height, Quality: p.Quality, Format: p.Format, TargetSize: p.TargetSize,
		})
	}

	if jsonOutput {
		return printer.JSON(rows)
	}

	table := output.NewTable(printer.Out(), []string{"Name", "Size", "Quality", "Mode", "Target", "Source"}, quietMode).AlignRight(2)
	for _, r := range rows {
		mode := "fit"
		if r.Fill {
			mode = "fill"
		}
		quality := "-"
		if r.Quality > 0 {
			quality = strconv.Itoa(r.Quality)
		}
		table.Append([]string{r.Name, sizeLabel(r.Width, r.Height), quality, mode, firstNonEmpty(r.TargetSize, "-"), r.Source})
	}
	table.Render()
	return nil
}

func sizeLabel(w, h int) string {
	switch {
	case w > 0 && h > 0:
		return dims(w, h)
	case w > 0:
		return strconv.Itoa(w) + "w"
	case h > 0:
		return strconv.Itoa(h) + "h"
	default:
		return "-"
	}
}
