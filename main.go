package main

import (
	"os"

	"github.com/salescope-dev/salescope/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
