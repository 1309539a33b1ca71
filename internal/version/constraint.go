package version

import (
	"fmt"
	"strings"
)

// Op is a constraint comparison operator.
type Op string

const (
	OpEqual   Op = "=="
	OpNotEq   Op = "~="
	OpLess    Op = "<"
	OpLessEq  Op = "<="
	OpGreater Op = ">"
	OpGreaterEq Op = ">="
	OpPessimistic Op = "~>"
)

// Clause is a single (op, version) test.
type Clause struct {
	Op      Op
	Version Version
}

// Matches reports whether v satisfies this clause.
func (c Clause) Matches(v Version) bool {
	switch c.Op {
	case OpEqual:
		return v.Equal(c.Version)
	case OpNotEq:
		return !v.Equal(c.Version)
	case OpLess:
		return v.Less(c.Version)
	case OpLessEq:
		return v.Less(c.Version) || v.Equal(c.Version)
	case OpGreater:
		return !v.Less(c.Version) && !v.Equal(c.Version)
	case OpGreaterEq:
		return !v.Less(c.Version)
	case OpPessimistic:
		upper := c.Version.IncrementLast()
		return !v.Less(c.Version) && v.Less(upper)
	default:
		return false
	}
}

// Constraint is a conjunction of clauses: it is satisfied iff every
// clause is satisfied (spec.md §4.1).
type Constraint struct {
	Clauses []Clause
}

// Matches reports whether v satisfies every clause of c. An empty
// Constraint (no clauses) matches every version.
func (c Constraint) Matches(v Version) bool {
	for _, cl := range c.Clauses {
		if !cl.Matches(v) {
			return false
		}
	}
	return true
}

// String renders the constraint the way it appears in a rockspec
// dependency string, e.g. ">= 5.1, < 5.4".
func (c Constraint) String() string {
	parts := make([]string, len(c.Clauses))
	for i, cl := range c.Clauses {
		parts[i] = string(cl.Op) + " " + cl.Version.String()
	}
	return strings.Join(parts, ", ")
}

// ParseClause parses a single clause of the form "OP VERSION" or a
// bare "VERSION" (implying OpEqual). Multiple clauses are combined by the
// caller (see ParseConstraints).
func ParseClause(s string) (Clause, error) {
	s = strings.TrimSpace(s)
	for _, op := range []Op{OpPessimistic, OpNotEq, OpEqual, OpLessEq, OpGreaterEq, OpLess, OpGreater} {
		if strings.HasPrefix(s, string(op)) {
			rest := strings.TrimSpace(strings.TrimPrefix(s, string(op)))
			v, err := Parse(rest)
			if err != nil {
				return Clause{}, fmt.Errorf("version: bad clause %q: %w", s, err)
			}
			return Clause{Op: op, Version: v}, nil
		}
	}
	// Bare version: implicit equality.
	v, err := Parse(s)
	if err != nil {
		return Clause{}, fmt.Errorf("version: bad clause %q: %w", s, err)
	}
	return Clause{Op: OpEqual, Version: v}, nil
}

// ParseConstraints parses a comma-separated list of clauses into a
// Constraint, e.g. ">= 5.1, ~> 5.3".
func ParseConstraints(s string) (Constraint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Constraint{}, nil
	}
	var clauses []Clause
	for _, part := range strings.Split(s, ",") {
		cl, err := ParseClause(part)
		if err != nil {
			return Constraint{}, err
		}
		clauses = append(clauses, cl)
	}
	return Constraint{Clauses: clauses}, nil
}
