package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleRun is trimmed `go test -json` output of a run with one passing
// check, one failing check, a skipped test and a subtest.
const sampleRun = `{"Time":"2026-10-18T10:00:00Z","Action":"start","Package":"github.com/cleancity/bugbusters/e2e"}
{"Time":"2026-10-18T10:00:00Z","Action":"run","Package":"github.com/cleancity/bugbusters/e2e","Test":"TestBug001_EldoretFilter"}
{"Time":"2026-10-18T10:00:00Z","Action":"output","Package":"github.com/cleancity/bugbusters/e2e","Test":"TestBug001_EldoretFilter","Output":"=== RUN   TestBug001_EldoretFilter\n"}
{"Time":"2026-10-18T10:00:03Z","Action":"output","Package":"github.com/cleancity/bugbusters/e2e","Test":"TestBug001_EldoretFilter","Output":"--- PASS: TestBug001_EldoretFilter (3.20s)\n"}
{"Time":"2026-10-18T10:00:03Z","Action":"pass","Package":"github.com/cleancity/bugbusters/e2e","Test":"TestBug001_EldoretFilter","Elapsed":3.2}
{"Time":"2026-10-18T10:00:03Z","Action":"run","Package":"github.com/cleancity/bugbusters/e2e","Test":"TestBug002_PlaintextPassword"}
{"Time":"2026-10-18T10:00:03Z","Action":"output","Package":"github.com/cleancity/bugbusters/e2e","Test":"TestBug002_PlaintextPassword","Output":"=== RUN   TestBug002_PlaintextPassword\n"}
{"Time":"2026-10-18T10:00:06Z","Action":"output","Package":"github.com/cleancity/bugbusters/e2e","Test":"TestBug002_PlaintextPassword","Output":"    bugs_test.go:71: \n"}
{"Time":"2026-10-18T10:00:06Z","Action":"output","Package":"github.com/cleancity/bugbusters/e2e","Test":"TestBug002_PlaintextPassword","Output":"        \tError Trace:\tbugs_test.go:71\n"}
{"Time":"2026-10-18T10:00:06Z","Action":"output","Package":"github.com/cleancity/bugbusters/e2e","Test":"TestBug002_PlaintextPassword","Output":"        \tError:      \tShould be empty, but was [registeredUsers]\n"}
{"Time":"2026-10-18T10:00:06Z","Action":"output","Package":"github.com/cleancity/bugbusters/e2e","Test":"TestBug002_PlaintextPassword","Output":"        \tMessages:   \tpassword stored in plaintext\n"}
{"Time":"2026-10-18T10:00:06Z","Action":"output","Package":"github.com/cleancity/bugbusters/e2e","Test":"TestBug002_PlaintextPassword","Output":"--- FAIL: TestBug002_PlaintextPassword (2.90s)\n"}
{"Time":"2026-10-18T10:00:06Z","Action":"fail","Package":"github.com/cleancity/bugbusters/e2e","Test":"TestBug002_PlaintextPassword","Elapsed":2.9}
{"Time":"2026-10-18T10:00:06Z","Action":"run","Package":"github.com/cleancity/bugbusters/e2e","Test":"TestSmoke"}
{"Time":"2026-10-18T10:00:06Z","Action":"run","Package":"github.com/cleancity/bugbusters/e2e","Test":"TestSmoke/pages"}
{"Time":"2026-10-18T10:00:07Z","Action":"pass","Package":"github.com/cleancity/bugbusters/e2e","Test":"TestSmoke/pages","Elapsed":0.5}
{"Time":"2026-10-18T10:00:07Z","Action":"pass","Package":"github.com/cleancity/bugbusters/e2e","Test":"TestSmoke","Elapsed":0.6}
{"Time":"2026-10-18T10:00:07Z","Action":"run","Package":"github.com/cleancity/bugbusters/e2e","Test":"TestBrowserOnly"}
{"Time":"2026-10-18T10:00:07Z","Action":"output","Package":"github.com/cleancity/bugbusters/e2e","Test":"TestBrowserOnly","Output":"    browser_test.go:12: requires target=stub\n"}
{"Time":"2026-10-18T10:00:07Z","Action":"skip","Package":"github.com/cleancity/bugbusters/e2e","Test":"TestBrowserOnly","Elapsed":0}
{"Time":"2026-10-18T10:00:07Z","Action":"output","Package":"github.com/cleancity/bugbusters/e2e","Output":"FAIL\n"}
{"Time":"2026-10-18T10:00:07Z","Action":"fail","Package":"github.com/cleancity/bugbusters/e2e","Elapsed":7.1}
`

func loadSample(t *testing.T) []Result {
	t.Helper()
	events, err := LoadEvents(strings.NewReader(sampleRun))
	require.NoError(t, err)
	return Results(events)
}

func TestLoadEvents(t *testing.T) {
	events, err := LoadEvents(strings.NewReader(sampleRun))
	require.NoError(t, err)
	require.Len(t, events, strings.Count(sampleRun, "\n"))

	assert.Equal(t, "start", events[0].Action)
	assert.Equal(t, "TestBug001_EldoretFilter", events[1].Test)
	assert.InDelta(t, 3.2, events[4].Elapsed, 1e-9)
	assert.Equal(t, time.Date(2026, 10, 18, 10, 0, 3, 0, time.UTC), events[4].Time.UTC())
}

func TestLoadEvents_NonJSONLines(t *testing.T) {
	input := "# github.com/cleancity/bugbusters/e2e\n" +
		"e2e/bugs_test.go:10:2: undefined: foo\n" +
		"\n" +
		`{"Action":"fail","Package":"github.com/cleancity/bugbusters/e2e","Elapsed":0}` + "\n"

	events, err := LoadEvents(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, RawPackage, events[0].Package)
	assert.Equal(t, "e2e/bugs_test.go:10:2: undefined: foo\n", events[1].Output)

	results := Results(events)
	require.Len(t, results, 2)
	assert.Equal(t, RawPackage, results[0].Package)
	assert.Equal(t, StatusFail, results[0].Status)
	assert.Len(t, results[0].Output, 2)
	assert.Equal(t, "github.com/cleancity/bugbusters/e2e", results[1].Name())
	assert.Equal(t, StatusFail, results[1].Status)
}

func TestLoadEvents_BadJSON(t *testing.T) {
	_, err := LoadEvents(strings.NewReader("\n{\"Action\":\"pass\"}\n{\"Action\":\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestLoadEventsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleRun), 0o644))

	events, err := LoadEventsFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, events)

	_, err = LoadEventsFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestResults(t *testing.T) {
	results := loadSample(t)

	var names []string
	for _, r := range results {
		names = append(names, r.Name())
	}
	// The package failed because a test failed, so it has no row of its own.
	assert.Equal(t, []string{
		"TestBug001_EldoretFilter",
		"TestBug002_PlaintextPassword",
		"TestSmoke",
		"TestSmoke/pages",
		"TestBrowserOnly",
	}, names)

	assert.Equal(t, StatusPass, results[0].Status)
	assert.Equal(t, 3200*time.Millisecond, results[0].Elapsed)
	assert.Empty(t, results[0].Output, "runner framing lines are dropped")

	failed := results[1]
	assert.Equal(t, StatusFail, failed.Status)
	require.Len(t, failed.Output, 4)
	assert.Equal(t, "    bugs_test.go:71: ", failed.Output[0])

	assert.Equal(t, StatusSkip, results[4].Status)
	assert.Equal(t, []string{"    browser_test.go:12: requires target=stub"}, results[4].Output)
}

func TestResults_Incomplete(t *testing.T) {
	input := `{"Action":"run","Package":"p","Test":"TestHang"}
{"Action":"output","Package":"p","Test":"TestHang","Output":"panic: test timed out after 10m0s\n"}
`
	events, err := LoadEvents(strings.NewReader(input))
	require.NoError(t, err)

	results := Results(events)
	require.Len(t, results, 1)
	assert.Equal(t, StatusIncomplete, results[0].Status)
	assert.False(t, Summarize(results).OK())
}

func TestResults_BuildFailure(t *testing.T) {
	input := `{"ImportPath":"github.com/cleancity/bugbusters/e2e [github.com/cleancity/bugbusters/e2e.test]","Action":"build-output","Output":"e2e/bugs_test.go:10:2: undefined: foo\n"}
{"ImportPath":"github.com/cleancity/bugbusters/e2e [github.com/cleancity/bugbusters/e2e.test]","Action":"build-fail"}
{"Action":"start","Package":"github.com/cleancity/bugbusters/e2e"}
{"Action":"output","Package":"github.com/cleancity/bugbusters/e2e","Output":"FAIL\tgithub.com/cleancity/bugbusters/e2e [build failed]\n"}
{"Action":"fail","Package":"github.com/cleancity/bugbusters/e2e","Elapsed":0,"FailedBuild":"github.com/cleancity/bugbusters/e2e [github.com/cleancity/bugbusters/e2e.test]"}
`
	events, err := LoadEvents(strings.NewReader(input))
	require.NoError(t, err)

	failed := Failed(Results(events))
	require.Len(t, failed, 2)
	var logged []string
	for _, r := range failed {
		logged = append(logged, r.Output...)
	}
	assert.Contains(t, logged, "e2e/bugs_test.go:10:2: undefined: foo")
}

func TestResult_BugID(t *testing.T) {
	tests := []struct {
		test string
		want string
	}{
		{"TestBug001_EldoretFilter", "BUG-001"},
		{"TestBug010_FormReset/submit", "BUG-010"},
		{"Test_bug_007", "BUG-007"},
		{"TestSmoke", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.test, func(t *testing.T) {
			assert.Equal(t, tt.want, Result{Test: tt.test}.BugID())
		})
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(loadSample(t))

	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 3, s.Passed)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 0, s.Incomplete)
	// 3.2 + 2.9 + 0.6 + 0; the subtest is inside TestSmoke's time.
	assert.InDelta(t, 6.7, s.Elapsed.Seconds(), 1e-6)
	assert.False(t, s.OK())

	assert.True(t, Summarize(nil).OK())
}

func TestFailed_Sorted(t *testing.T) {
	results := []Result{
		{Test: "TestZ", Status: StatusFail},
		{Test: "TestA", Status: StatusPass},
		{Test: "TestM", Status: StatusIncomplete},
		{Test: "TestB", Status: StatusFail},
	}
	var names []string
	for _, r := range Failed(results) {
		names = append(names, r.Test)
	}
	assert.Equal(t, []string{"TestB", "TestM", "TestZ"}, names)
}
