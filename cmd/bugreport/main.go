// Bug regression report
//
// Reads the event stream of `go test -json`, prints a per-test summary and
// writes a self-contained HTML report. The exit status is non-zero when any
// test failed or never finished, so the tool can gate a CI job.
//
// Usage:
//
//	go test -tags=e2e -json ./e2e/... | go run ./cmd/bugreport
//	go test -tags=e2e -json ./e2e/... > run.json
//	go run ./cmd/bugreport --input run.json --html test_report.html -v --tb short
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/cleancity/bugbusters/pkg/config"
	"github.com/cleancity/bugbusters/pkg/report"
)

// errTestsFailed signals a clean run of the tool over a failing test run.
var errTestsFailed = errors.New("tests failed")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errTestsFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

type options struct {
	input     string
	htmlPath  string
	verbose   bool
	traceback string
	title     string
	target    string
	logLevel  string
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "bugreport",
		Short:         "Summarize `go test -json` output and write an HTML report",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := config.NewLogger(opts.logLevel, "bugreport")

			in := cmd.InOrStdin()
			if opts.input != "" && opts.input != "-" {
				f, err := os.Open(opts.input)
				if err != nil {
					return fmt.Errorf("open input: %w", err)
				}
				defer f.Close()
				in = f
			}

			summary, err := run(in, cmd.OutOrStdout(), opts, logger)
			if err != nil {
				return err
			}
			if !summary.OK() {
				return errTestsFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "go test -json output to read (default stdin)")
	cmd.Flags().StringVar(&opts.htmlPath, "html", "test_report.html", "HTML report path (empty to skip)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "one line per test")
	cmd.Flags().StringVar(&opts.traceback, "tb", string(report.TracebackShort), "failure output: long, short, line or no")
	cmd.Flags().StringVar(&opts.title, "title", "Clean City bug regression report", "HTML report title")
	cmd.Flags().StringVar(&opts.target, "target", os.Getenv(config.EnvPrefix+"_BASE_URL"), "application URL shown in the report")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	return cmd
}

// run reads the events, prints the console summary to out and writes the
// HTML report. It returns the summary of the test run.
func run(in io.Reader, out io.Writer, opts options, logger *log.Logger) (report.Summary, error) {
	tb, err := report.ParseTraceback(opts.traceback)
	if err != nil {
		return report.Summary{}, err
	}

	events, err := report.LoadEvents(in)
	if err != nil {
		return report.Summary{}, fmt.Errorf("load events: %w", err)
	}
	logger.Debug("events loaded", "count", len(events))

	results := report.Results(events)
	if err := report.WriteConsole(out, results, report.ConsoleOptions{Verbose: opts.verbose, Traceback: tb}); err != nil {
		return report.Summary{}, fmt.Errorf("write summary: %w", err)
	}

	if opts.htmlPath != "" {
		meta := report.Meta{Title: opts.title, Target: opts.target, Generated: time.Now()}
		if err := report.WriteHTMLFile(opts.htmlPath, results, meta); err != nil {
			return report.Summary{}, err
		}
		logger.Info("report written", "path", opts.htmlPath)
	}

	summary := report.Summarize(results)
	if summary.Total == 0 {
		logger.Warn("no test results in input")
	}
	return summary, nil
}
