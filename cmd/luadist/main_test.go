package main

import (
	"errors"
	"testing"

	"github.com/luadist2/luadist2/internal/errs"
)

func TestParseRefsAcceptsNameAndConstraint(t *testing.T) {
	refs, err := parseRefs([]string{"xml", "lua >= 5.1"})
	if err != nil {
		t.Fatalf("parseRefs: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %d", len(refs))
	}
	if refs[0].Name != "xml" {
		t.Errorf("expected first ref name xml, got %s", refs[0].Name)
	}
	if refs[1].Name != "lua" || len(refs[1].Constraint.Clauses) != 1 {
		t.Errorf("expected second ref to carry one constraint clause, got %+v", refs[1])
	}
}

func TestParseRefsRejectsEmptyString(t *testing.T) {
	if _, err := parseRefs([]string{""}); err == nil {
		t.Fatalf("expected an error for an empty package reference")
	}
}

func TestExitCodeOfMapsTaxonomyKinds(t *testing.T) {
	err := errs.New(errs.Fetch, "xml", nil)
	if code := exitCodeOf(err); code != int(errs.Fetch) {
		t.Errorf("expected exit code %d, got %d", errs.Fetch, code)
	}
}

func TestExitCodeOfFallsBackForUnknownErrors(t *testing.T) {
	if code := exitCodeOf(errors.New("plain failure")); code != 1 {
		t.Errorf("expected generic code 1 for an error outside the taxonomy, got %d", code)
	}
	if code := exitCodeOf(nil); code != 0 {
		t.Errorf("expected 0 for a nil error, got %d", code)
	}
}
