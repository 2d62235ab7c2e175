// Command pensum shows a curriculum's prerequisite graph in semester columns,
// in the terminal, in a browser or as exported files.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
