package main

import (
	"os"

	"github.com/Ashivkar123/Image-Resizer/internal/cli"
	"github.com/Ashivkar123/Image-Resizer/internal/cli/output"
)

func main() {
	if err := cli.Execute(); err != nil {
		output.New(output.WithNoColor(os.Getenv("NO_COLOR") != "")).Error("%v", err)
		os.Exit(1)
	}
}
