// Package report turns the event stream of `go test -json` into a run
// summary: console output in the spirit of a verbose test runner and a
// single self-contained HTML file.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Event is one line of `go test -json` output (see `go doc test2json`).
type Event struct {
	Time    time.Time `json:"Time"`
	Action  string    `json:"Action"`
	Package string    `json:"Package"`
	Test    string    `json:"Test"`
	Elapsed float64   `json:"Elapsed"` // seconds
	Output  string    `json:"Output"`

	// ImportPath is set on build-output and build-fail events.
	ImportPath string `json:"ImportPath"`
}

// RawPackage names the pseudo-package that collects lines which were not
// JSON, i.e. whatever the go command printed outside the event stream.
const RawPackage = "(go command)"

// Status of a finished test.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusSkip Status = "skip"
	// StatusIncomplete marks a test that started but never reported, e.g.
	// because the binary panicked or hit the -timeout.
	StatusIncomplete Status = "incomplete"
)

// Result is the outcome of one test or subtest.
type Result struct {
	Package string
	Test    string // empty for package-level results
	Status  Status
	Elapsed time.Duration
	Output  []string // lines without the runner's framing lines
}

// BugID returns the bug report identifier encoded in the test name,
// e.g. "BUG-007" for TestBug007_AdminPage, or "" when there is none.
func (r Result) BugID() string {
	m := bugIDPattern.FindStringSubmatch(r.Test)
	if m == nil {
		return ""
	}
	return "BUG-" + m[1]
}

// Name is the test name, or the package for package-level results.
func (r Result) Name() string {
	if r.Test == "" {
		return r.Package
	}
	return r.Test
}

var bugIDPattern = regexp.MustCompile(`(?i)bug_?(\d{3})`)

// framing matches the lines the test runner adds around test output.
var framing = regexp.MustCompile(`^\s*(=== (RUN|PAUSE|CONT|NAME)|--- (PASS|FAIL|SKIP)|PASS$|FAIL$|ok\s|FAIL\s)`)

// LoadEvents parses a `go test -json` stream. Lines that are not JSON
// (build errors printed before the stream starts) become output events of
// an unnamed package so they still reach the report.
func LoadEvents(r io.Reader) ([]Event, error) {
	var events []Event

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		if line[0] != '{' {
			events = append(events, Event{Action: "output", Package: RawPackage, Output: string(line) + "\n"})
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return events, nil
}

// LoadEventsFile reads a saved `go test -json` stream from disk.
func LoadEventsFile(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open events: %w", err)
	}
	defer f.Close()
	return LoadEvents(f)
}

// Results folds events into one Result per test, in the order tests
// started. Package-level results are kept only when the package failed
// without any failing test, which is how build and setup errors show up.
func Results(events []Event) []Result {
	type key struct{ pkg, test string }

	byKey := map[key]*Result{}
	var order []key
	failedTests := map[string]bool{}

	get := func(k key) *Result {
		if r, ok := byKey[k]; ok {
			return r
		}
		r := &Result{Package: k.pkg, Test: k.test, Status: StatusIncomplete}
		byKey[k] = r
		order = append(order, k)
		return r
	}

	for _, ev := range events {
		k := key{ev.Package, ev.Test}
		switch ev.Action {
		case "output", "build-output":
			if ev.Action == "build-output" {
				k = key{ev.ImportPath, ""}
			}
			line := strings.TrimRight(ev.Output, "\n")
			if framing.MatchString(line) {
				continue
			}
			r := get(k)
			r.Output = append(r.Output, line)
			if k.pkg == RawPackage {
				r.Status = StatusFail
			}
		case "build-fail":
			get(key{ev.ImportPath, ""}).Status = StatusFail
		case "pass", "fail", "skip":
			r := get(k)
			r.Status = Status(ev.Action)
			r.Elapsed = time.Duration(ev.Elapsed * float64(time.Second))
			if ev.Action == "fail" && ev.Test != "" {
				failedTests[ev.Package] = true
			}
		case "run", "start":
			get(k)
		}
	}

	var out []Result
	for _, k := range order {
		r := *byKey[k]
		if k.test == "" {
			if r.Status != StatusFail || failedTests[k.pkg] {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// Summary counts results by status.
type Summary struct {
	Total      int
	Passed     int
	Failed     int
	Skipped    int
	Incomplete int
	Elapsed    time.Duration
}

// OK reports whether nothing failed or went missing.
func (s Summary) OK() bool {
	return s.Failed == 0 && s.Incomplete == 0
}

// Summarize counts the results. Elapsed sums top-level tests only so that
// subtests are not counted twice.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		s.Total++
		switch r.Status {
		case StatusPass:
			s.Passed++
		case StatusFail:
			s.Failed++
		case StatusSkip:
			s.Skipped++
		default:
			s.Incomplete++
		}
		if !strings.Contains(r.Test, "/") {
			s.Elapsed += r.Elapsed
		}
	}
	return s
}

// Failed returns the failing and incomplete results sorted by name.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Status == StatusFail || r.Status == StatusIncomplete {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
