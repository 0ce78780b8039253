package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	os.Exit(run())
}

func run() int {
	root := &cobra.Command{
		Use:     "sift",
		Short:   "Searches for regex patterns in common document types",
		Version: version + " (" + commit + ")",
	}
	bindFlags(root)

	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}
