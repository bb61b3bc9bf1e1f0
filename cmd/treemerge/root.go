package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"treemerge/internal/config"
	"treemerge/internal/errors"
	"treemerge/internal/slogutil"
	"treemerge/internal/version"
)

var (
	configPath string
	verbosity  int
	quiet      bool
	logFile    string

	// set up before every command runs
	appConfig *config.Config
	logger    = slogutil.NewDiscardLogger()
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "treemerge",
	Short: "Summarize trees by merging equivalent subtrees",
	Long: `treemerge reads a tree (a directory, a snapshot file or a catalog database),
classifies every node, and merges siblings whose subtrees have the same shape
into a compact, nested summary.`,
	Version:           version.Info(),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupCommand,
}

func init() {
	rootCmd.SetVersionTemplate("treemerge version {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default: .treemerge/config.{yaml,toml,json})")
	pf.CountVarP(&verbosity, "verbose", "v", "Log more (-v info, -vv debug)")
	pf.BoolVarP(&quiet, "quiet", "q", false, "Log nothing to stderr")
	pf.StringVar(&logFile, "log-file", "", "Also write logs to this file")
}

// setupCommand loads the configuration and builds the logger.
func setupCommand(cmd *cobra.Command, _ []string) error {
	result, err := config.LoadConfigWithDetails(".", configPath)
	if err != nil {
		return errors.Wrap(errors.InvalidConfig, "failed to load configuration", err)
	}
	cfg := result.Config
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(errors.InvalidConfig, "invalid configuration", err)
	}

	configured := slogutil.LevelFromString(cfg.Logging.Level)
	consoleLevel := configured
	if verbosity > 0 || quiet {
		consoleLevel = slogutil.LevelFromVerbosity(verbosity, quiet)
	}
	fileLevel := min(configured, consoleLevel)

	file := logFile
	if file == "" {
		file = cfg.Logging.File
	}

	l, closer, err := slogutil.Setup(slogutil.Options{
		Console:      cmd.ErrOrStderr(),
		ConsoleLevel: consoleLevel,
		File:         file,
		FileLevel:    fileLevel,
		MaxSize:      cfg.Logging.MaxSize,
		MaxBackups:   cfg.Logging.MaxBackups,
		Attrs:        []slog.Attr{slog.String("run_id", uuid.New().String())},
	})
	if err != nil {
		return errors.Wrap(errors.InvalidConfig, fmt.Sprintf("failed to open log file %s", file), err)
	}

	appConfig, logger, logCloser = cfg, l, closer
	logger.Debug("Loaded configuration",
		"command", cmd.CommandPath(),
		"path", result.ConfigPath,
		"defaults", result.UsedDefaults,
		"env_overrides", len(result.EnvOverrides),
	)
	return nil
}

// closeLogger releases the log file and falls back to the discard logger.
func closeLogger() error {
	if logCloser == nil {
		return nil
	}
	err := logCloser.Close()
	logger, logCloser = slogutil.NewDiscardLogger(), nil
	return err
}

// printError writes err and, for coded errors, the suggested fixes.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)

	var coded *errors.Error
	if !stderrors.As(err, &coded) {
		return
	}
	for _, fix := range errors.GetSuggestedFixes(coded.Code) {
		if fix.Command != "" {
			fmt.Fprintf(w, "  hint: %s (run '%s')\n", fix.Description, fix.Command)
		} else {
			fmt.Fprintf(w, "  hint: %s\n", fix.Description)
		}
	}
}
