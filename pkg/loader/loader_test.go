package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/pensum/pkg/model"
	"github.com/vanderheijden86/pensum/pkg/testutil"
)

const mathJSON = `{
  "career": {"name": "Engineering", "totalSemesters": 3},
  "subjects": {
    "Math1": {"name": "Mathematics I", "semester": 1},
    "Math2": {"name": "Mathematics II", "semester": 2, "prerequisites": ["Math1"]},
    "Math3": {"name": "Mathematics III", "semester": 3, "prerequisites": ["Math2"]}
  }
}`

const mathYAML = `career:
  name: Engineering
  totalSemesters: 3
subjects:
  Math1:
    name: Mathematics I
    semester: 1
  Math2:
    name: Mathematics II
    semester: 2
    prerequisites: [Math1]
  Math3:
    name: Mathematics III
    semester: 3
    prerequisites: [Math2]
`

func collect(msgs *[]string) func(string) {
	return func(m string) { *msgs = append(*msgs, m) }
}

func TestParseCurriculum_JSON(t *testing.T) {
	c, err := ParseCurriculum(strings.NewReader(mathJSON), FormatJSON, ParseOptions{Strict: true})
	if err != nil {
		t.Fatalf("ParseCurriculum: %v", err)
	}
	if c.Career.TotalSemesters != 3 || c.Career.Name != "Engineering" {
		t.Errorf("career = %+v", c.Career)
	}
	s, ok := c.Subject("Math2")
	if !ok || s.ID != "Math2" {
		t.Fatalf("Math2 = %+v, %v", s, ok)
	}
	testutil.AssertIDs(t, s.Prerequisites, "Math1")
	if m1 := c.Subjects["Math1"]; m1.Prerequisites == nil {
		t.Error("Normalize should replace nil prerequisites")
	}
}

func TestParseCurriculum_YAMLMatchesJSON(t *testing.T) {
	fromJSON, err := ParseCurriculum(strings.NewReader(mathJSON), FormatJSON, ParseOptions{Strict: true})
	if err != nil {
		t.Fatal(err)
	}
	fromYAML, err := ParseCurriculum(strings.NewReader(mathYAML), FormatYAML, ParseOptions{Strict: true})
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertIDs(t, fromYAML.SubjectIDs(), fromJSON.SubjectIDs()...)
	for _, id := range fromJSON.SubjectIDs() {
		a, b := fromJSON.Subjects[id], fromYAML.Subjects[id]
		if a.Name != b.Name || a.Semester != b.Semester || len(a.Prerequisites) != len(b.Prerequisites) {
			t.Errorf("%s differs: %+v vs %+v", id, a, b)
		}
	}
}

func TestParseCurriculum_StripsBOM(t *testing.T) {
	in := "\xEF\xBB\xBF" + mathJSON
	if _, err := ParseCurriculum(strings.NewReader(in), FormatJSON, ParseOptions{Strict: true}); err != nil {
		t.Fatalf("BOM input: %v", err)
	}
}

func TestParseCurriculum_Empty(t *testing.T) {
	_, err := ParseCurriculum(strings.NewReader("  \n"), FormatJSON, ParseOptions{})
	if !errors.Is(err, model.ErrEmptyCurriculum) {
		t.Errorf("err = %v, want ErrEmptyCurriculum", err)
	}
}

func TestParseCurriculum_Malformed(t *testing.T) {
	_, err := ParseCurriculum(strings.NewReader("{not json"), FormatJSON, ParseOptions{})
	if err == nil || !strings.Contains(err.Error(), "malformed JSON") {
		t.Errorf("err = %v, want malformed JSON", err)
	}
}

const danglingJSON = `{
  "career": {"totalSemesters": 2},
  "subjects": {
    "A": {"name": "A", "semester": 1},
    "B": {"name": "B", "semester": 2, "prerequisites": ["A", "Ghost"]}
  }
}`

func TestParseCurriculum_StrictRejectsDangling(t *testing.T) {
	_, err := ParseCurriculum(strings.NewReader(danglingJSON), FormatJSON, ParseOptions{Strict: true})
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if len(verr.Problems) != 1 || verr.Problems[0].Kind != model.ProblemDanglingPrereq {
		t.Errorf("problems = %v", verr.Problems)
	}
}

func TestParseCurriculum_LenientWarns(t *testing.T) {
	var msgs []string
	c, err := ParseCurriculum(strings.NewReader(danglingJSON), FormatJSON, ParseOptions{WarningHandler: collect(&msgs)})
	if err != nil {
		t.Fatalf("lenient parse: %v", err)
	}
	if len(c.Subjects) != 2 {
		t.Errorf("subjects = %d, want 2", len(c.Subjects))
	}
	if len(msgs) != 1 || !strings.Contains(msgs[0], "Ghost") {
		t.Errorf("warnings = %v", msgs)
	}
}

func TestParseCurriculum_StrictWarnsOnOrder(t *testing.T) {
	in := `{"career": {"totalSemesters": 2}, "subjects": {
		"A": {"name": "A", "semester": 2},
		"B": {"name": "B", "semester": 1, "prerequisites": ["A"]}}}`
	var msgs []string
	if _, err := ParseCurriculum(strings.NewReader(in), FormatJSON, ParseOptions{Strict: true, WarningHandler: collect(&msgs)}); err != nil {
		t.Fatalf("order problems must not be fatal: %v", err)
	}
	if len(msgs) != 1 || !strings.Contains(msgs[0], string(model.ProblemPrerequisiteOrder)) {
		t.Errorf("warnings = %v", msgs)
	}
}

func TestFormatFromPath(t *testing.T) {
	cases := map[string]Format{
		"a.json":      FormatJSON,
		"a.YAML":      FormatYAML,
		"dir/b.yml":   FormatYAML,
		"noextension": FormatJSON,
	}
	for path, want := range cases {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestFindCurriculumPath_Preference(t *testing.T) {
	t.Setenv(FileEnvVar, "")
	dir := t.TempDir()

	if _, err := FindCurriculumPath(dir); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty dir err = %v, want ErrNotFound", err)
	}

	// Empty files are skipped.
	if err := os.WriteFile(filepath.Join(dir, "curriculum.json"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "curriculum.yaml"), []byte(mathYAML), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := FindCurriculumPath(dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got) != "curriculum.yaml" {
		t.Errorf("path = %s, want curriculum.yaml", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "pensum.json"), []byte(mathJSON), 0644); err != nil {
		t.Fatal(err)
	}
	got, _ = FindCurriculumPath(dir)
	if filepath.Base(got) != "pensum.json" {
		t.Errorf("path = %s, want pensum.json", got)
	}
}

func TestFindCurriculumPath_EnvWins(t *testing.T) {
	t.Setenv(FileEnvVar, "/elsewhere/plan.yaml")
	got, err := FindCurriculumPath(t.TempDir())
	if err != nil || got != "/elsewhere/plan.yaml" {
		t.Errorf("got %q, %v", got, err)
	}
}

func TestLoadCurriculum_RoundTripFixture(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteCurriculumFile(t, dir, "curriculum.json", testutil.MathCurriculum())

	c, err := LoadCurriculum(path, ParseOptions{Strict: true})
	if err != nil {
		t.Fatalf("LoadCurriculum: %v", err)
	}
	testutil.AssertIDs(t, c.SubjectIDs(), "Math1", "Math2", "Math3", "Physics1")
}

func TestLoadCurriculum_Missing(t *testing.T) {
	_, err := LoadCurriculum(filepath.Join(t.TempDir(), "nope.json"), ParseOptions{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
