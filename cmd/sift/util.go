package main

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/bvinton/sift/internal/model"
)

// promptForPassword reads a password from the terminal without echoing it.
// The prompt text differs depending on whether a password hash already
// exists, matching original_source/src/run.rs's two prompt strings.
func promptForPassword(isNew bool) (string, error) {
	prompt := "Enter password: "
	if isNew {
		prompt = "Enter new password: "
	}
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("sift: read password: %w", err)
	}
	return string(raw), nil
}

// readPatternFile splits a pattern-import file on comma, LF, or CR,
// discarding empty tokens (spec.md §6, -f flag).
func readPatternFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sift: read pattern file: %w", err)
	}
	tokens := strings.FieldsFunc(string(raw), func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}

func printPatterns(patterns []string) {
	fmt.Println("_keywords_")
	for i, p := range patterns {
		fmt.Printf("%d: %s\n", i+1, p)
	}
	fmt.Println()
}

func printSettings(configName, storePath string, cfg *model.PersistentConfig) {
	fmt.Println("_Config Settings_")
	fmt.Printf("Config name: %s\n", configName)
	fmt.Printf("Max scan threads: %d\n", cfg.MaxScanThreads)
	fmt.Printf("Max file threads: %d\n", cfg.MaxFileThreads)
	fmt.Printf("Max write lines: %d\n", cfg.MaxWriteLines)
	fmt.Printf("Initial scan: %t\n", cfg.InitialScan)
	fmt.Printf("Output directory: %s\n", cfg.OutputDirectory)
	fmt.Printf("Roots: %v\n", cfg.Roots)
	fmt.Printf("Last scan: %s\n", cfg.TimeLastScan)
	fmt.Println("\nConfig file path:")
	fmt.Printf("\t%s\n", storePath)
}
