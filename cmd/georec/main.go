// Command georec inspects and verifies file-backed arenas.
package main

import (
	"fmt"
	"os"
)

func main() {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "georec:", err)
		os.Exit(exitCode(err))
	}
}
