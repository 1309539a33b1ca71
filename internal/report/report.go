// Package report assembles the markdown activity report spec.md §6's
// report=true config option calls for: one record per top-level
// operation, listing the per-package events recorded during it and
// whether it succeeded. Grounded on the teacher's status command template
// output mode (cmd/dep/status.go's templateOutput, which renders one
// line per BasicStatus/MissingStatus through a user-suppliable
// text/template), generalized here to one fixed template per operation
// kind instead of a user-suppliable one, since no user-facing templating
// surface is part of this spec.
package report

import (
	"strings"
	"text/template"
	"time"
)

// PackageEvent records one step taken against one package during an
// operation, in chronological order.
type PackageEvent struct {
	Name      string
	Version   string
	Stage     string // "resolved", "fetched", "built", "installed", "removed", "packed", "bundled"
	Detail    string
	Timestamp time.Time
}

// Report is the structured record of one top-level operation, rendered
// to markdown by Render.
type Report struct {
	Operation string
	StartedAt time.Time
	Events    []PackageEvent
	Err       error
}

const reportTemplate = `# {{.Operation}} report

Started: {{.StartedAt.Format "2006-01-02 15:04:05"}}

| Package | Version | Stage | Detail |
|---|---|---|---|
{{range .Events -}}
| {{.Name}} | {{.Version}} | {{.Stage}} | {{.Detail}} |
{{end}}
{{if .Err}}
**Failed:** {{.Err}}
{{else}}
**Succeeded.**
{{end}}
`

var tmpl = template.Must(template.New("report").Parse(reportTemplate))

// Render renders r as a markdown document.
func Render(r Report) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, r); err != nil {
		return "", err
	}
	return b.String(), nil
}
