// pikeru is a terminal file picker with a thumbnail grid and caption search.
// Selected paths are written to stdout, one per line.
package main

import (
	"fmt"
	"os"

	"github.com/wethinkt/go-pikeru/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pikeru:", err)
		os.Exit(1)
	}
}
