// main is the entry point of the spdxattr CLI.
package main

import (
	"fmt"
	"os"

	"github.com/huangsam/spdxattr/cmd"
	"github.com/huangsam/spdxattr/internal/iocache"
)

func main() {
	os.Exit(run())
}

// run executes the CLI and releases the stores before the process exits.
func run() int {
	cmd.SetCacheManager(iocache.Manager)
	defer iocache.CloseStores()
	defer func() {
		if err := cmd.StopProfiling(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Warn profiling: %v\n", err)
		}
	}()

	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
