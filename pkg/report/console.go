package report

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Traceback selects how much failure output the console shows.
type Traceback string

const (
	TracebackLong  Traceback = "long"  // all output of the failed test
	TracebackShort Traceback = "short" // the last few lines
	TracebackLine  Traceback = "line"  // one line: the failure message
	TracebackNo    Traceback = "no"    // names only
)

// shortLines is how many trailing output lines TracebackShort keeps.
const shortLines = 12

// ParseTraceback validates a --tb flag value.
func ParseTraceback(s string) (Traceback, error) {
	switch tb := Traceback(strings.ToLower(s)); tb {
	case TracebackLong, TracebackShort, TracebackLine, TracebackNo:
		return tb, nil
	}
	return "", fmt.Errorf("unknown traceback style %q (want long, short, line or no)", s)
}

var fileLine = regexp.MustCompile(`\w+\.go:\d+:`)

// Trim reduces a failed test's output to the selected style.
func (tb Traceback) Trim(lines []string) []string {
	switch tb {
	case TracebackNo:
		return nil
	case TracebackShort:
		if len(lines) > shortLines {
			return lines[len(lines)-shortLines:]
		}
		return lines
	case TracebackLine:
		// testify prints the caller's message after "Messages:" and the
		// assertion itself after "Error:".
		for _, label := range []string{"Messages:", "Error:"} {
			for _, l := range lines {
				if i := strings.Index(l, label); i >= 0 {
					return []string{strings.TrimSpace(l[i+len(label):])}
				}
			}
		}
		for _, l := range lines {
			if fileLine.MatchString(l) {
				return []string{strings.TrimSpace(l)}
			}
		}
		if len(lines) > 0 {
			return []string{strings.TrimSpace(lines[len(lines)-1])}
		}
		return nil
	default:
		return lines
	}
}

// ConsoleOptions controls WriteConsole.
type ConsoleOptions struct {
	Verbose   bool      // one line per test instead of one character
	Traceback Traceback // failure detail
}

var statusWord = map[Status]string{
	StatusPass:       "PASSED",
	StatusFail:       "FAILED",
	StatusSkip:       "SKIPPED",
	StatusIncomplete: "INCOMPLETE",
}

var statusChar = map[Status]string{
	StatusPass:       ".",
	StatusFail:       "F",
	StatusSkip:       "s",
	StatusIncomplete: "E",
}

// WriteConsole prints the run the way a verbose test runner would: the
// per-test results, the failure section, and a closing summary line.
func WriteConsole(w io.Writer, results []Result, opts ConsoleOptions) error {
	pw := &errWriter{w: w}

	if opts.Verbose {
		for _, r := range results {
			pw.printf("%s %s (%.2fs)\n", label(r), statusWord[r.Status], r.Elapsed.Seconds())
		}
	} else {
		for _, r := range results {
			pw.printf("%s", statusChar[r.Status])
		}
		if len(results) > 0 {
			pw.printf("\n")
		}
	}

	failed := Failed(results)
	if len(failed) > 0 && opts.Traceback != TracebackNo {
		pw.printf("\n=================== FAILURES ===================\n")
		for _, r := range failed {
			pw.printf("___ %s ___\n", label(r))
			for _, line := range opts.Traceback.Trim(r.Output) {
				pw.printf("%s\n", line)
			}
		}
	}

	s := Summarize(results)
	pw.printf("\n=== %d passed, %d failed, %d skipped", s.Passed, s.Failed, s.Skipped)
	if s.Incomplete > 0 {
		pw.printf(", %d incomplete", s.Incomplete)
	}
	pw.printf(" in %.2fs ===\n", s.Elapsed.Seconds())
	return pw.err
}

func label(r Result) string {
	if id := r.BugID(); id != "" {
		return fmt.Sprintf("%s [%s]", r.Name(), id)
	}
	return r.Name()
}

// errWriter keeps the first write error so printing code stays linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
