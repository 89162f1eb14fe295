// palettenode - A dominant colour extraction node
//
// palettenode reduces an image to its dominant colours with median-cut
// quantization. It runs standalone or as a go-plugin node for workflow hosts.
package main

import (
	"os"

	"github.com/jmylchreest/palettenode/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
