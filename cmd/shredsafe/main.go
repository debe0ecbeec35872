package main

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"shredsafe/internal/config"
	"shredsafe/internal/database"
	"shredsafe/internal/disk"
	"shredsafe/internal/exitcodes"
	"shredsafe/internal/logging"
	"shredsafe/internal/metrics"
	"shredsafe/internal/safety"
	"shredsafe/internal/shred"
)

const version = "1.0.2"

var (
	cfg    *config.Config
	logger *log.Logger

	configPath string
	verbose    bool
	dryRun     bool

	safeMode   bool
	recursive  bool
	remove     bool
	force      bool
	iterations int
)

var rootCmd = &cobra.Command{
	Use:     "shredsafe",
	Short:   "Securely overwrite file contents in place",
	Long:    "shredsafe overwrites files with alternating zero and random passes, sized to the process memory limit, without ever changing the file's length.",
	Version: version,
}

var shredCmd = &cobra.Command{
	Use:   "shred [paths...]",
	Short: "Shred the given files (or directories with --recursive)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runShred,
}

var infoCmd = &cobra.Command{
	Use:   "info [paths...]",
	Short: "Show disk usage for the filesystems holding the given paths",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log the block plan and each pass")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Classify and plan without writing")

	shredCmd.Flags().BoolVar(&safeMode, "safe", false, "Write one byte at a time (minimal memory, very slow)")
	shredCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Descend into directories")
	shredCmd.Flags().BoolVarP(&remove, "remove", "u", false, "Unlink targets after a successful shred")
	shredCmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation")
	shredCmd.Flags().IntVarP(&iterations, "iterations", "i", 0, "Overwrite passes per file (default from config)")

	rootCmd.AddCommand(shredCmd)
	rootCmd.AddCommand(infoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(exitcodes.InvalidConfig)
	}
}

// exitError carries an exit code through cobra's RunE plumbing
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

func setup() error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: failed to load config: %v\n", err)
		return &exitError{code: exitcodes.InvalidConfig}
	}

	logger = logging.NewWithConfig(cfg)

	metrics.Init()
	if cfg.Prometheus.Port > 0 {
		addr := fmt.Sprintf(":%d", cfg.Prometheus.Port)
		logger.Printf("starting Prometheus metrics on %s", addr)
		metrics.StartServer(addr, logger)
	}

	return nil
}

func runShred(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	if err := setup(); err != nil {
		return err
	}

	opts := shred.Options{
		SafeMode:     cfg.Shred.SafeMode || safeMode,
		Verbose:      cfg.Shred.Verbose || verbose,
		Recursive:    cfg.Shred.Recursive || recursive,
		Remove:       cfg.Shred.Remove || remove,
		Iterations:   cfg.Shred.Iterations,
		DryRun:       dryRun,
		MaxSpeedMBps: cfg.Throttle.MaxSpeedMBps,
	}
	if iterations > 0 {
		opts.Iterations = iterations
	}

	if opts.Remove && !dryRun && !force {
		if !confirm(fmt.Sprintf("shred and remove %d target(s)?", len(args))) {
			logger.Println("aborted by user")
			return &exitError{code: exitcodes.Success}
		}
	}

	var db *database.ShredDB
	if cfg.Database.Path != "" {
		var err error
		db, err = database.NewShredDB(cfg.Database.Path)
		if err != nil {
			logger.Printf("ERROR: failed to open shred database: %v", err)
			return &exitError{code: exitcodes.RuntimeError}
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Printf("ERROR: failed to close shred database: %v", err)
			}
		}()
	}

	shredder := shred.New(opts, logger, db)
	shredder.SetValidator(safety.NewValidator(cfg.Safety.AllowedRoots, cfg.Safety.ProtectedPaths))

	// Targets are processed strictly in the order given; one failure never
	// stops the rest
	failed := 0
	blocked := 0
	for _, path := range args {
		if opts.Verbose {
			if u, err := disk.GetUsage(path); err == nil {
				logger.Printf("target filesystem for %s: %.1f%% used, %s free",
					path, u.UsedPercent, formatBytes(u.FreeBytes))
			}
		}
		if err := shredder.ShredPath(path); err != nil {
			failed++
			if isSafetyError(err) {
				blocked++
			}
		}
	}

	switch {
	case blocked > 0:
		return &exitError{code: exitcodes.SafetyViolation}
	case failed > 0:
		return &exitError{code: exitcodes.RuntimeError}
	}
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	if err := setup(); err != nil {
		return err
	}

	failed := 0
	for _, path := range args {
		u, err := disk.GetUsage(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "info : %s : %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("%s: %.1f%% used, %s free of %s\n",
			path, u.UsedPercent, formatBytes(u.FreeBytes), formatBytes(u.TotalBytes))
	}

	if failed > 0 {
		return &exitError{code: exitcodes.RuntimeError}
	}
	return nil
}

func isSafetyError(err error) bool {
	return errors.Is(err, safety.ErrProtectedPath) ||
		errors.Is(err, safety.ErrOutsideAllowed) ||
		errors.Is(err, safety.ErrTraversal) ||
		errors.Is(err, safety.ErrInvalidPath)
}

func confirm(prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
