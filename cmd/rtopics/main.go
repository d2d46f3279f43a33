// Package main is the entry point for the rtopics CLI.
package main

import (
	"fmt"
	"os"

	"github.com/tOgg1/rtopics/internal/rtui"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rtui.Execute(fmt.Sprintf("%s (%s, %s)", version, commit, date)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
