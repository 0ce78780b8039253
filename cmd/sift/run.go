package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/bvinton/sift/internal/config"
	"github.com/bvinton/sift/internal/logging"
	"github.com/bvinton/sift/internal/manager"
	"github.com/bvinton/sift/internal/matcher"
	"github.com/bvinton/sift/internal/model"
	"github.com/bvinton/sift/internal/vault"
)

// errPasswordRejected signals an authentication failure (spec.md §7.2):
// exit 1, no further processing.
var errPasswordRejected = errors.New("sift: invalid password")

func runSiftWithOptions(opts *siftOptions) error {
	storePath, err := config.DefaultPath()
	if err != nil {
		return err
	}
	store, err := config.Open(storePath)
	if err != nil {
		return err
	}
	defer store.Close()

	if opts.resetConfig {
		fmt.Println("***Clearing configs***")
		if err := store.Reset(opts.configName); err != nil {
			return err
		}
	}

	cfg, err := store.Load(opts.configName)
	if errors.Is(err, config.ErrNotFound) {
		cfg = model.NewDefaultConfig(runtime.NumCPU())
	} else if err != nil {
		return err
	}

	password := passwordFromEnv()

	applyRootMutations(cfg, opts)

	mutatingPatterns := len(opts.addPatterns) > 0 || opts.patternFile != "" || len(opts.removePattern) > 0
	hasPatterns := len(cfg.EncryptedPatterns) > 0
	wantsScan := opts.scan || opts.fullScan

	// A bare -s/-S (or -i) against a config with no patterns yet has
	// nothing to decrypt. Minting a secret here would hide the "No
	// application secret stored" pre-scan failure behind a password
	// prompt. Only mint/verify a secret when there is an actual
	// encrypt/decrypt operation to perform.
	needsPassword := mutatingPatterns || (opts.showPatterns && hasPatterns) || (wantsScan && hasPatterns)

	if needsPassword {
		if password == "" {
			password, err = promptForPassword(cfg.PasswordHash == "")
			if err != nil {
				return err
			}
		}
		if cfg.PasswordHash == "" {
			hash, err := vault.HashPassword(password)
			if err != nil {
				return err
			}
			cfg.PasswordHash = hash
		} else if !vault.VerifyPassword(password, cfg.PasswordHash) {
			fmt.Fprintln(os.Stderr, "\nInvalid password")
			return errPasswordRejected
		}
	}

	if err := applyPatternMutations(cfg, opts, password); err != nil {
		return err
	}

	if opts.outputDir != "" {
		fmt.Printf("changing output directory to: %s\n", opts.outputDir)
		cfg.OutputDirectory = opts.outputDir
		config.MarkOutputDirChanged(cfg)
	}

	if err := store.Save(opts.configName, cfg); err != nil {
		return err
	}

	if opts.printSettings {
		printSettings(opts.configName, storePath, cfg)
	}

	var decrypted []string
	if needsPassword {
		decrypted, err = decryptPatterns(cfg.EncryptedPatterns, password)
		if err != nil {
			return fmt.Errorf("sift: decrypt patterns: %w", err)
		}
	}

	if opts.showPatterns {
		printPatterns(decrypted)
	}

	if !prescanChecks(cfg) {
		fmt.Println("!!!Pre-scan checks failed.!!!")
		return nil
	}

	if opts.scan || opts.fullScan {
		if err := runScan(cfg, opts, decrypted); err != nil {
			return err
		}
		if err := store.Save(opts.configName, cfg); err != nil {
			return err
		}
	}

	return nil
}

func passwordFromEnv() string {
	if p := os.Getenv("SIFTPW"); p != "" {
		fmt.Println("INFO: Using password from env")
		return p
	}
	return ""
}

func applyRootMutations(cfg *model.PersistentConfig, opts *siftOptions) {
	for _, root := range opts.addRoots {
		if contains(cfg.Roots, root) {
			fmt.Printf("already in list: %s\n", root)
			continue
		}
		if _, err := os.Stat(root); err != nil {
			fmt.Printf("not found: %s\n", root)
			continue
		}
		fmt.Printf("adding root: %s\n", root)
		cfg.Roots = append(cfg.Roots, root)
		config.MarkRootsChanged(cfg)
	}

	for _, root := range opts.removeRoots {
		idx := indexOf(cfg.Roots, root)
		if idx < 0 {
			fmt.Printf("not found: %s\n", root)
			continue
		}
		fmt.Printf("removing root: %s\n", root)
		cfg.Roots = append(cfg.Roots[:idx], cfg.Roots[idx+1:]...)
		config.MarkRootsChanged(cfg)
	}
}

func applyPatternMutations(cfg *model.PersistentConfig, opts *siftOptions, password string) error {
	if len(opts.addPatterns) == 0 && opts.patternFile == "" && len(opts.removePattern) == 0 {
		return nil
	}

	decrypted, err := decryptPatterns(cfg.EncryptedPatterns, password)
	if err != nil {
		return fmt.Errorf("sift: decrypt existing patterns: %w", err)
	}

	for _, p := range opts.addPatterns {
		if contains(decrypted, p) {
			continue
		}
		fmt.Printf("adding pattern: %s\n", p)
		blob, err := vault.Encrypt([]byte(p), password)
		if err != nil {
			return err
		}
		cfg.EncryptedPatterns = append(cfg.EncryptedPatterns, blob)
		decrypted = append(decrypted, p)
		config.MarkPatternsChanged(cfg)
	}

	if opts.patternFile != "" {
		tokens, err := readPatternFile(opts.patternFile)
		if err != nil {
			return err
		}
		for _, p := range tokens {
			if contains(decrypted, p) {
				continue
			}
			fmt.Printf("adding pattern: %s\n", p)
			blob, err := vault.Encrypt([]byte(p), password)
			if err != nil {
				return err
			}
			cfg.EncryptedPatterns = append(cfg.EncryptedPatterns, blob)
			decrypted = append(decrypted, p)
			config.MarkPatternsChanged(cfg)
		}
	}

	for _, p := range opts.removePattern {
		idx := indexOf(decrypted, p)
		if idx < 0 {
			fmt.Printf("not found: %s\n", p)
			continue
		}
		fmt.Printf("removing pattern: %s\n", p)
		decrypted = append(decrypted[:idx], decrypted[idx+1:]...)
		cfg.EncryptedPatterns = append(cfg.EncryptedPatterns[:idx], cfg.EncryptedPatterns[idx+1:]...)
	}

	return nil
}

func decryptPatterns(blobs []string, password string) ([]string, error) {
	out := make([]string, 0, len(blobs))
	for _, blob := range blobs {
		plain, err := vault.Decrypt(blob, password)
		if err != nil {
			return nil, err
		}
		out = append(out, string(plain))
	}
	return out, nil
}

func prescanChecks(cfg *model.PersistentConfig) bool {
	ok := true
	if cfg.OutputDirectory == "" {
		fmt.Println("!Pre-scan check failed:: No output directory designated.")
		ok = false
	}
	if len(cfg.EncryptedPatterns) == 0 {
		fmt.Println("!Pre-scan check failed:: No patterns designated.")
		ok = false
	}
	if len(cfg.Roots) == 0 {
		fmt.Println("!Pre-scan check failed:: No root directories designated.")
		ok = false
	}
	if cfg.PasswordHash == "" {
		fmt.Println("!Pre-scan check failed:: No application secret stored")
		ok = false
	}
	if ok {
		fmt.Println("Pre-scan checks passed")
	}
	return ok
}

func runScan(cfg *model.PersistentConfig, opts *siftOptions, decryptedPatterns []string) error {
	logger, closer, err := logging.Open(cfg.OutputDirectory)
	if err != nil {
		return err
	}
	defer closer.Close()

	watermark, fullScan := config.ResolveWatermark(cfg, opts.fullScan)
	if cfg.InitialScan {
		fmt.Println("Conducting initial scan.")
	}

	compiled, err := matcher.Compile(decryptedPatterns, opts.caseSensitive)
	if err != nil {
		return err
	}

	settings := &model.ScanSettings{
		FullScan:          fullScan,
		Verbose:           opts.verbose,
		CompiledPatterns:  compiled,
		Roots:             cfg.Roots,
		LastScanWatermark: watermark,
		OutputDir:         cfg.OutputDirectory,
		CaseSensitive:     opts.caseSensitive,
		MaxScanThreads:    cfg.MaxScanThreads,
		MaxFileThreads:    cfg.MaxFileThreads,
		MaxWriteLines:     cfg.MaxWriteLines,
	}

	results := manager.Run(settings, logger)

	now := time.Now()
	config.MarkScanComplete(cfg, now)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "error scanning %s: %v\n", r.Root, r.Err)
		} else if opts.verbose {
			fmt.Printf("scanned root: %s\n", r.Root)
		}
	}

	return nil
}

func contains(list []string, s string) bool {
	return indexOf(list, s) >= 0
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
