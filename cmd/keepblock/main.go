// Command keepblock regenerates source files without losing the code
// written below their "End of generated code" comment block.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/keepblock/keepblock/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	logFormat  string
	verbose    bool
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "keepblock",
		Short: "Regenerate code without losing hand-written handlers",
		Long: `keepblock rewrites generated source files while keeping everything
below the "End of generated code" comment block exactly as it was.

Supported languages: Python, Ruby, Perl, C++, Rust and Go.

Examples:
  keepblock merge ui/dialog.py --generated /tmp/dialog.py
  keepblock gen forms/main.yaml
  keepblock check ui/*.py
  keepblock serve --watch`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(stderr, opts)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Config file (default: ./keepblock.yaml)")
	flags.StringVar(&opts.logFormat, "log-format", "text", "Log format: text or json")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log every artifact, including unchanged ones")

	rootCmd.AddCommand(
		mergeCmd(opts),
		splitCmd(opts),
		checkCmd(opts),
		genCmd(opts),
		watchCmd(opts),
		serveCmd(opts),
		restoreCmd(opts),
		initCmd(),
		versionCmd(),
	)

	return rootCmd
}

// setupLogging installs the default slog logger.
func setupLogging(w io.Writer, opts *globalOptions) error {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch opts.logFormat {
	case "text", "":
		handler = slog.NewTextHandler(w, handlerOpts)
	case "json":
		handler = slog.NewJSONHandler(w, handlerOpts)
	default:
		return errors.Newf(errors.CategoryCLI, "unknown log format %q (use text or json)", opts.logFormat)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", green("✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", yellow("⚠"), fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", red("✗"), fmt.Sprintf(format, args...))
}

var colors = os.Getenv("NO_COLOR") == ""

func paint(code, text string) string {
	if !colors {
		return text
	}
	return "\033[" + code + "m" + text + "\033[0m"
}

func green(s string) string  { return paint("32", s) }
func yellow(s string) string { return paint("33", s) }
func red(s string) string    { return paint("31", s) }
