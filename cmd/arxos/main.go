// Command arxos imports IFC building models into addressed building trees.
package main

import (
	"fmt"
	"os"

	"github.com/arx-os/arxos-sub004/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
