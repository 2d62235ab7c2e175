package export

import (
	"errors"
	"strings"
	"testing"

	"github.com/vanderheijden86/pensum/pkg/analysis"
	"github.com/vanderheijden86/pensum/pkg/model"
	"github.com/vanderheijden86/pensum/pkg/testutil"
)

func TestGenerateMarkdown(t *testing.T) {
	c := testutil.MathCurriculum()
	out := GenerateMarkdown(c, analysis.NewGraph(c))

	for _, want := range []string{
		"# Engineering",
		"4 subjects across 3 semesters, 2 prerequisite links.",
		"## Semester 1",
		"| `Math1` | Mathematics I | - | `Math2` |",
		"| `Math2` | Mathematics II | `Math1` | `Math3` |",
		"**Entry subjects:** `Math1`, `Physics1`",
		"**Longest prerequisite chain:** 3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "## Problems") {
		t.Error("valid curriculum should report no problems")
	}
}

func TestGenerateMarkdown_CyclesAndProblems(t *testing.T) {
	c := &model.Curriculum{
		Career: model.Career{TotalSemesters: 2},
		Subjects: map[string]model.Subject{
			"A": {Name: "A", Semester: 1, Prerequisites: []string{"B"}},
			"B": {Name: "B", Semester: 1, Prerequisites: []string{"A", "ghost"}},
		},
	}
	c.Normalize()
	out := GenerateMarkdown(c, analysis.NewGraph(c))

	if !strings.Contains(out, "**Cycles:**") {
		t.Errorf("cycle not reported:\n%s", out)
	}
	if !strings.Contains(out, "## Problems") || !strings.Contains(out, "ghost") {
		t.Errorf("dangling prerequisite not reported:\n%s", out)
	}
	if !strings.Contains(out, "_No subjects._") {
		t.Error("empty semester 2 should be marked")
	}
}

func TestSubjectMarkdown(t *testing.T) {
	c := testutil.MathCurriculum()
	g := analysis.NewGraph(c)

	out, err := SubjectMarkdown(c, g, "Math3")
	if err != nil {
		t.Fatalf("SubjectMarkdown: %v", err)
	}
	for _, want := range []string{
		"# Mathematics III",
		"`Math3` · Semester 3",
		"- Mathematics II (`Math2`, semester 2)",
		"### Full chain",
		"- Mathematics I (`Math1`, semester 1)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("detail missing %q\n%s", want, out)
		}
	}

	out, _ = SubjectMarkdown(c, g, "Math1")
	if !strings.Contains(out, "2 subjects depend on this one transitively.") {
		t.Errorf("transitive count missing:\n%s", out)
	}

	if _, err := SubjectMarkdown(c, g, "Nope"); !errors.Is(err, model.ErrUnknownSubject) {
		t.Errorf("err = %v, want ErrUnknownSubject", err)
	}
}

func TestEscapeMarkdown(t *testing.T) {
	if got := escapeMarkdown("a|b_c"); got != `a\|b\_c` {
		t.Errorf("escapeMarkdown = %q", got)
	}
}
