// Package errs implements the error taxonomy spec.md §7 enumerates:
// eight named kinds, each mapping to a fixed numeric exit code at the
// CLI boundary. Grounded on the teacher's failure/isDependencyError
// style of wrapping a plain error with a classification tag
// (solve_failure.go's Failure interface), generalized here from one
// domain-specific tag to the full closed set §7 names.
package errs

import (
	"errors"
	"fmt"
)

// Kind is one of the eight error taxonomy entries spec.md §7 lists.
type Kind int

const (
	ManifestRetrieval Kind = iota + 1
	Resolve
	Fetch
	InstallTarget
	InstallDep
	NoSourceFound
	BinaryExport
	StaticBundle
)

// ExitCode returns the numeric code a CLI boundary reports for k,
// matching §7's declared ordering (1-8).
func (k Kind) ExitCode() int {
	return int(k)
}

func (k Kind) String() string {
	switch k {
	case ManifestRetrieval:
		return "ManifestRetrieval"
	case Resolve:
		return "Resolve"
	case Fetch:
		return "Fetch"
	case InstallTarget:
		return "InstallTarget"
	case InstallDep:
		return "InstallDep"
	case NoSourceFound:
		return "NoSourceFound"
	case BinaryExport:
		return "BinaryExport"
	case StaticBundle:
		return "StaticBundle"
	default:
		return "Unknown"
	}
}

// Error pairs a Kind with the package name it was raised against (when
// applicable) and the underlying cause, per spec.md §7's "user-visible
// output includes the failing package name and the captured
// child-process stdout/stderr where applicable."
type Error struct {
	Kind    Kind
	Package string
	Err     error
}

func (e *Error) Error() string {
	if e.Package == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Kind, e.Package, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error of kind for pkg (may be "") wrapping err.
func New(kind Kind, pkg string, err error) *Error {
	return &Error{Kind: kind, Package: pkg, Err: err}
}

// ExitCode extracts the exit code from err if it (or something it
// wraps) is an *Error; otherwise returns 1, a generic failure code for
// errors raised outside the taxonomy (should not occur in practice,
// since every orchestrator operation wraps its failures).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind.ExitCode()
	}
	return 1
}
