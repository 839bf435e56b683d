package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/arran4/quesimg"
	"github.com/arran4/quesimg/config"
	"github.com/fatih/color"
	"github.com/k1LoW/errors"
	"github.com/spf13/cobra"
)

var version = "dev"

type options struct {
	configPath      string
	inputPath       string
	baseDir         string
	logFile         string
	verbose         bool
	continueOnError bool
	escapeAlt       bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:          "quesimg",
		Short:        "quesimg renders text entries into PNG images and inline img tags",
		Long:         `quesimg renders every entry of an input document into a word-wrapped PNG image and writes a JSON document mapping each key to an <img> tag with the image embedded as a data URI.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		// main prints the error itself.
		SilenceErrors: true,
		Version:       version,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, closeLog, err := newLogger(cmd.ErrOrStderr(), opts.logFile, opts.verbose)
			if err != nil {
				return err
			}
			defer func() { _ = closeLog() }()

			out, err := run(cmd.Context(), opts, logger)
			if err != nil {
				logger.Debug("batch failed", slog.Any("stack_traces", errors.StackTraces(err)))
				return err
			}
			printDone(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "config.yaml", "configuration file")
	cmd.Flags().StringVarP(&opts.inputPath, "input", "i", "input.yaml", "input document mapping keys to text")
	cmd.Flags().StringVar(&opts.baseDir, "base-dir", "", "directory for PNG files (default: output_dir from config, else the executable's directory)")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "also write JSON logs to this file")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log each rendered entry")
	cmd.Flags().BoolVar(&opts.continueOnError, "continue-on-error", false, "skip failed entries instead of aborting")
	cmd.Flags().BoolVar(&opts.escapeAlt, "escape-alt", false, "HTML-escape keys in the alt attribute")
	return cmd
}

func printDone(w io.Writer, path string) {
	green := color.New(color.FgGreen).SprintFunc()
	_, _ = fmt.Fprintf(w, "\nHTML img tags written to: %s\n", green(path))
}

// run loads the configuration and input, renders every entry and writes
// the JSON document. It returns the document path.
func run(ctx context.Context, opts *options, logger *slog.Logger) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return "", err
	}
	for _, k := range cfg.UnknownKeys {
		logger.Warn("ignoring unknown config key", slog.String("key", k))
	}
	input, err := config.LoadInput(opts.inputPath)
	if err != nil {
		return "", err
	}
	baseDir, err := resolveBaseDir(opts.baseDir, cfg)
	if err != nil {
		return "", err
	}

	g, err := newGenerator(cfg, baseDir, logger,
		quesimg.WithContinueOnError(cfg.ContinueOnError || opts.continueOnError),
		quesimg.WithEscapeAlt(opts.escapeAlt),
	)
	if err != nil {
		return "", err
	}
	rs, report, err := g.Generate(ctx, input)
	if err != nil {
		return "", err
	}
	for _, f := range report.Failures {
		logger.Error("entry failed", slog.String("key", f.Key), slog.String("error", f.Err.Error()))
	}
	path, err := quesimg.WriteResultSet(cfg.OutputJSONFile, rs)
	if err != nil {
		return "", err
	}
	logger.Info("batch complete",
		slog.Int("rendered", len(report.Rendered)),
		slog.Int("failed", len(report.Failures)),
		slog.String("output", path),
	)
	return cfg.OutputJSONFile, nil
}

// newGenerator builds a Generator from cfg. A font that cannot be loaded is
// replaced by the bundled one with a warning.
func newGenerator(cfg *config.Config, baseDir string, logger *slog.Logger, extra ...quesimg.Option) (*quesimg.Generator, error) {
	fr, err := quesimg.LoadFont(cfg.FontPath, float64(cfg.FontSize))
	if err != nil {
		return nil, err
	}
	if fr.Source == quesimg.FontFallback {
		logger.Warn("using bundled font", slog.String("font_path", cfg.FontPath), slog.String("cause", fr.Cause.Error()))
	} else {
		logger.Debug("loaded font", slog.String("path", fr.Path), slog.Int("size", cfg.FontSize))
	}
	opts := []quesimg.Option{
		quesimg.WithFont(fr.Face),
		quesimg.WithWidth(cfg.OutputWidth),
		quesimg.WithMinHeight(cfg.OutputHeight),
		quesimg.WithWrapFactor(cfg.WrapFactor),
		quesimg.WithMargin(cfg.Margin),
		quesimg.WithPalette(cfg.Palette()),
		quesimg.WithBaseDir(baseDir),
		quesimg.WithLogger(logger),
		quesimg.WithMarkdown(cfg.Markdown),
		quesimg.WithBreakLongWords(cfg.BreakLongWords),
		quesimg.WithJobTimeout(cfg.JobTimeout),
	}
	return quesimg.New(append(opts, extra...)...)
}

// resolveBaseDir picks the PNG directory: the flag, then output_dir from the
// config, then the directory holding the executable.
func resolveBaseDir(flagDir string, cfg *config.Config) (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}
	if cfg.OutputDir != "" {
		return cfg.OutputDir, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("%w: locate executable: %w", quesimg.ErrIO, err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}
