package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/andreyvit/georec"
)

const (
	exitFailure      = 1 // the file is corrupted
	exitCommandError = 2 // bad arguments, missing file
)

var validFormats = []string{"text", "json"}

// exitError carries the process exit code of a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitCommandError
}

// rootOptions holds the global flags.
type rootOptions struct {
	Verbose bool
	Format  string

	logger *slog.Logger
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "georec",
		Short:         "Inspect arenas of packed reference lists",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(validFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
			}
			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			opts.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log details to stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")

	cmd.AddCommand(newStatsCommand(opts))
	cmd.AddCommand(newDumpCommand(opts))
	cmd.AddCommand(newCheckCommand(opts))
	return cmd
}

// openArena opens an arena file read-only. Corruption is reported with
// exitFailure, everything else with exitCommandError.
func (opts *rootOptions) openArena(path string) (*georec.Arena, error) {
	a, err := georec.OpenFile(path, georec.FileOptions{Logger: opts.logger})
	if err != nil {
		code := exitCommandError
		if errors.Is(err, georec.ErrCorrupted) {
			code = exitFailure
		}
		return nil, &exitError{code, err}
	}
	return a, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
