package model

import (
	"fmt"
	"sort"
	"strings"
)

// ProblemKind classifies a validation problem.
type ProblemKind string

const (
	ProblemTotalSemesters    ProblemKind = "total-semesters"
	ProblemEmptyID           ProblemKind = "empty-id"
	ProblemEmptyName         ProblemKind = "empty-name"
	ProblemSemesterRange     ProblemKind = "semester-range"
	ProblemDanglingPrereq    ProblemKind = "dangling-prerequisite"
	ProblemSelfPrereq        ProblemKind = "self-prerequisite"
	ProblemDuplicatePrereq   ProblemKind = "duplicate-prerequisite"
	ProblemPrerequisiteOrder ProblemKind = "prerequisite-order"
	ProblemReservedID        ProblemKind = "reserved-id"
)

// TitleIDPrefix starts the ids of the semester title nodes. Subject ids may
// not use it.
const TitleIDPrefix = "title-sem-"

// IsReservedID reports whether id belongs to the title node namespace.
func IsReservedID(id string) bool {
	return strings.HasPrefix(id, TitleIDPrefix)
}

// Severity says whether a problem makes the curriculum unusable.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Severity returns the severity attached to the kind.
func (k ProblemKind) Severity() Severity {
	if k == ProblemPrerequisiteOrder {
		return SeverityWarning
	}
	return SeverityError
}

// Problem is a single finding reported by Validate.
type Problem struct {
	SubjectID string      `json:"subject_id,omitempty"`
	Kind      ProblemKind `json:"kind"`
	Detail    string      `json:"detail"`
}

// Severity is a shortcut for p.Kind.Severity().
func (p Problem) Severity() Severity {
	return p.Kind.Severity()
}

func (p Problem) String() string {
	if p.SubjectID == "" {
		return fmt.Sprintf("%s: %s", p.Kind, p.Detail)
	}
	return fmt.Sprintf("%s: %s: %s", p.SubjectID, p.Kind, p.Detail)
}

// ValidationError collects every problem found in a curriculum.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid curriculum: " + e.Problems[0].String()
	}
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.String())
	}
	return fmt.Sprintf("invalid curriculum: %d problems: %s", len(e.Problems), strings.Join(parts, "; "))
}

// Errors returns only the error-severity problems.
func (e *ValidationError) Errors() []Problem {
	return filterSeverity(e.Problems, SeverityError)
}

// Warnings returns only the warning-severity problems.
func (e *ValidationError) Warnings() []Problem {
	return filterSeverity(e.Problems, SeverityWarning)
}

func filterSeverity(problems []Problem, sev Severity) []Problem {
	var out []Problem
	for _, p := range problems {
		if p.Severity() == sev {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the curriculum and returns a *ValidationError listing every
// problem, or nil when there is none. Problems are sorted by subject id, then kind.
func (c *Curriculum) Validate() error {
	problems := c.Problems()
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

// Problems runs every check and returns the findings without wrapping them.
func (c *Curriculum) Problems() []Problem {
	var problems []Problem
	add := func(id string, kind ProblemKind, format string, args ...any) {
		problems = append(problems, Problem{SubjectID: id, Kind: kind, Detail: fmt.Sprintf(format, args...)})
	}

	if c.Career.TotalSemesters < 1 {
		add("", ProblemTotalSemesters, "career.totalSemesters must be at least 1, got %d", c.Career.TotalSemesters)
	}

	for _, id := range c.SubjectIDs() {
		s := c.Subjects[id]
		if strings.TrimSpace(id) == "" {
			add(id, ProblemEmptyID, "subject id is empty")
		}
		if IsReservedID(id) {
			add(id, ProblemReservedID, "ids starting with %q are reserved for semester titles", TitleIDPrefix)
		}
		if strings.TrimSpace(s.Name) == "" {
			add(id, ProblemEmptyName, "subject has no name")
		}
		if c.Career.TotalSemesters >= 1 && (s.Semester < 1 || s.Semester > c.Career.TotalSemesters) {
			add(id, ProblemSemesterRange, "semester %d outside 1..%d", s.Semester, c.Career.TotalSemesters)
		}

		seen := make(map[string]bool, len(s.Prerequisites))
		for _, pre := range s.Prerequisites {
			if seen[pre] {
				add(id, ProblemDuplicatePrereq, "prerequisite %q listed more than once", pre)
				continue
			}
			seen[pre] = true
			if pre == id {
				add(id, ProblemSelfPrereq, "subject lists itself as a prerequisite")
				continue
			}
			other, ok := c.Subjects[pre]
			if !ok {
				add(id, ProblemDanglingPrereq, "prerequisite %q does not exist", pre)
				continue
			}
			if other.Semester >= s.Semester {
				add(id, ProblemPrerequisiteOrder, "prerequisite %q is in semester %d, not before %d", pre, other.Semester, s.Semester)
			}
		}
	}

	sort.SliceStable(problems, func(i, j int) bool {
		if problems[i].SubjectID != problems[j].SubjectID {
			return problems[i].SubjectID < problems[j].SubjectID
		}
		return problems[i].Kind < problems[j].Kind
	})
	return problems
}
