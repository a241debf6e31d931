// Command report prints calculator views for a snapshot file.
package main

import (
	"os"
)

func main() {
	if err := newReportCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
