// Command tablecore builds headless tables from CUE definitions and record
// files and pages through them.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/tablecore/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
