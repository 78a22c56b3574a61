package report

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"strings"
	"time"
)

// Meta describes the run in the report header.
type Meta struct {
	Title     string
	Target    string // base URL the suite ran against
	Generated time.Time
}

type htmlRow struct {
	Result
	BugID   string
	Seconds string
	Log     string
}

type htmlData struct {
	Meta
	Summary Summary
	Rows    []htmlRow
}

// htmlTemplate is self-contained: styles are inline and there are no
// external assets, so the file can be attached to a bug tracker as is.
var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; margin: 24px; color: #222; }
    h1 { margin-bottom: 4px; }
    .meta { color: #666; margin-bottom: 16px; }
    .summary span { display: inline-block; padding: 4px 10px; margin-right: 8px; border-radius: 4px; color: white; }
    .pass { background: #2e7d32; }
    .fail { background: #c62828; }
    .skip { background: #f9a825; }
    .incomplete { background: #6a1b9a; }
    table { border-collapse: collapse; width: 100%; margin-top: 16px; }
    th, td { text-align: left; padding: 6px 10px; border-bottom: 1px solid #ddd; vertical-align: top; }
    td.status { font-weight: 600; text-transform: uppercase; }
    tr.fail td.status { color: #c62828; }
    tr.pass td.status { color: #2e7d32; }
    pre { background: #f5f5f5; padding: 8px; overflow-x: auto; white-space: pre-wrap; margin: 4px 0 0; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">
    {{if .Target}}Target: {{.Target}} &middot; {{end}}Generated {{.Generated.Format "2006-01-02 15:04:05 MST"}}
</div>
<div class="summary">
    <span class="pass">{{.Summary.Passed}} passed</span>
    <span class="fail">{{.Summary.Failed}} failed</span>
    <span class="skip">{{.Summary.Skipped}} skipped</span>
    {{if .Summary.Incomplete}}<span class="incomplete">{{.Summary.Incomplete}} incomplete</span>{{end}}
</div>
<table>
    <thead><tr><th>Result</th><th>Bug</th><th>Test</th><th>Duration</th></tr></thead>
    <tbody>
    {{range .Rows}}
    <tr class="{{.Status}}">
        <td class="status">{{.Status}}</td>
        <td>{{.BugID}}</td>
        <td>{{.Name}}{{if .Log}}<details{{if eq .Status "fail"}} open{{end}}><summary>log</summary><pre>{{.Log}}</pre></details>{{end}}</td>
        <td>{{.Seconds}}s</td>
    </tr>
    {{end}}
    </tbody>
</table>
</body>
</html>
`))

// WriteHTML renders the results as one self-contained HTML document.
func WriteHTML(w io.Writer, results []Result, meta Meta) error {
	if meta.Title == "" {
		meta.Title = "Bug regression report"
	}
	if meta.Generated.IsZero() {
		meta.Generated = time.Now()
	}

	data := htmlData{Meta: meta, Summary: Summarize(results)}
	for _, r := range results {
		data.Rows = append(data.Rows, htmlRow{
			Result:  r,
			BugID:   r.BugID(),
			Seconds: fmt.Sprintf("%.2f", r.Elapsed.Seconds()),
			Log:     strings.Join(r.Output, "\n"),
		})
	}
	return htmlTemplate.Execute(w, data)
}

// WriteHTMLFile writes the report to path, replacing any existing file.
func WriteHTMLFile(path string, results []Result, meta Meta) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := WriteHTML(f, results, meta); err != nil {
		f.Close()
		return fmt.Errorf("render report: %w", err)
	}
	return f.Close()
}
