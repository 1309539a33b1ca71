package report

import (
	"strings"
	"testing"
)

func TestRenderIncludesEveryEvent(t *testing.T) {
	r := Report{
		Operation: "install",
		Events: []PackageEvent{
			{Name: "lua", Version: "5.3.4", Stage: "installed", Detail: "built from source"},
			{Name: "xml", Version: "1.8.0-1", Stage: "installed", Detail: "built from source"},
		},
	}
	out, err := Render(r)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "lua") || !strings.Contains(out, "xml") {
		t.Errorf("expected both packages in report:\n%s", out)
	}
	if !strings.Contains(out, "**Succeeded.**") {
		t.Errorf("expected success marker:\n%s", out)
	}
}

func TestRenderReportsFailure(t *testing.T) {
	r := Report{Operation: "install", Err: errString("configure failed")}
	out, err := Render(r)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "**Failed:** configure failed") {
		t.Errorf("expected failure marker:\n%s", out)
	}
}

type errString string

func (e errString) Error() string { return string(e) }
