package main

import "github.com/spf13/cobra"

// siftOptions holds every CLI flag from spec.md §6.
type siftOptions struct {
	scan          bool
	fullScan      bool
	verbose       bool
	addRoots      []string
	removeRoots   []string
	addPatterns   []string
	removePattern []string
	showPatterns  bool
	outputDir     string
	printSettings bool
	resetConfig   bool
	caseSensitive bool
	patternFile   string
	configName    string
}

func bindFlags(cmd *cobra.Command) *siftOptions {
	opts := &siftOptions{configName: "Default"}

	cmd.Flags().BoolVarP(&opts.scan, "scan", "s", false, "scan, partial after the first run")
	cmd.Flags().BoolVarP(&opts.fullScan, "full-scan", "S", false, "force a full scan")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose progress output")
	cmd.Flags().StringArrayVarP(&opts.addRoots, "add-root", "r", nil, "add a directory to search")
	cmd.Flags().StringArrayVarP(&opts.removeRoots, "remove-root", "R", nil, "remove a directory from search")
	cmd.Flags().StringArrayVarP(&opts.addPatterns, "add-pattern", "a", nil, "add pattern(s) to the vault")
	cmd.Flags().StringArrayVarP(&opts.removePattern, "remove-pattern", "A", nil, "remove pattern(s) from the vault")
	cmd.Flags().BoolVarP(&opts.showPatterns, "show-patterns", "k", false, "print decrypted patterns")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "set the output directory")
	cmd.Flags().BoolVarP(&opts.printSettings, "print-settings", "l", false, "print current settings and config-file path")
	cmd.Flags().BoolVarP(&opts.resetConfig, "reset", "q", false, "reset config to defaults (only way to forget the password)")
	cmd.Flags().BoolVarP(&opts.caseSensitive, "case-sensitive", "i", false, "make the scan case-sensitive (default: insensitive)")
	cmd.Flags().StringVarP(&opts.patternFile, "pattern-file", "f", "", "import patterns from a file, split on comma/LF/CR")
	cmd.Flags().StringVarP(&opts.configName, "config-name", "c", "Default", "select a named config profile")

	cmd.MarkFlagsMutuallyExclusive("scan", "full-scan")

	cmd.RunE = func(_ *cobra.Command, _ []string) error {
		return runSiftWithOptions(opts)
	}
	return opts
}
