package export

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/vanderheijden86/pensum/pkg/analysis"
	"github.com/vanderheijden86/pensum/pkg/model"
	"github.com/vanderheijden86/pensum/pkg/testutil"

	_ "modernc.org/sqlite"
)

func exportMath(t *testing.T) *sql.DB {
	t.Helper()
	v := newMathView(t)
	c := testutil.MathCurriculum()
	exp := NewSQLiteExporter(c, v.Analysis(), v.Layout())
	exp.Title = "Engineering plan"
	exp.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

	path := filepath.Join(t.TempDir(), "db", "curriculum.sqlite3")
	if err := exp.Export(context.Background(), path); err != nil {
		t.Fatalf("Export: %v", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteExport_Subjects(t *testing.T) {
	db := exportMath(t)

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM subjects`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 4 {
		t.Errorf("subjects = %d, want 4", count)
	}

	var name string
	var sem int
	var x, y float64
	err := db.QueryRow(`SELECT name, semester, x, y FROM subjects WHERE id = ?`, "Math2").Scan(&name, &sem, &x, &y)
	if err != nil {
		t.Fatal(err)
	}
	if name != "Mathematics II" || sem != 2 || x != 300 || y != 80 {
		t.Errorf("Math2 = %s sem %d at (%v,%v)", name, sem, x, y)
	}
}

func TestSQLiteExport_AncestorClosure(t *testing.T) {
	db := exportMath(t)

	rows, err := db.Query(`SELECT ancestor_id FROM ancestors WHERE subject_id = ? ORDER BY ancestor_id`, "Math3")
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	var got []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			t.Fatal(err)
		}
		got = append(got, id)
	}
	testutil.AssertIDs(t, got, "Math1", "Math2")

	var children int
	if err := db.QueryRow(`SELECT COUNT(*) FROM prerequisites WHERE prerequisite_id = ?`, "Math1").Scan(&children); err != nil {
		t.Fatal(err)
	}
	if children != 1 {
		t.Errorf("children of Math1 = %d, want 1", children)
	}
}

func TestSQLiteExport_Meta(t *testing.T) {
	db := exportMath(t)

	meta := map[string]string{}
	rows, err := db.Query(`SELECT key, value FROM export_meta`)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			t.Fatal(err)
		}
		meta[k] = v
	}
	want := map[string]string{
		"career":             "Engineering",
		"total_semesters":    "3",
		"subject_count":      "4",
		"prerequisite_count": "2",
		"generated_at":       "2024-03-01T12:00:00Z",
		"title":              "Engineering plan",
		"schema_version":     "1",
	}
	for k, v := range want {
		if meta[k] != v {
			t.Errorf("meta[%s] = %q, want %q", k, meta[k], v)
		}
	}
}

func TestSQLiteExport_DanglingAndCycle(t *testing.T) {
	c := &model.Curriculum{
		Career: model.Career{TotalSemesters: 1},
		Subjects: map[string]model.Subject{
			"A": {Name: "A", Semester: 1, Prerequisites: []string{"B", "ghost"}},
			"B": {Name: "B", Semester: 1, Prerequisites: []string{"A"}},
		},
	}
	c.Normalize()
	path := filepath.Join(t.TempDir(), "cyc.sqlite3")
	if err := NewSQLiteExporter(c, analysis.NewGraph(c), nil).Export(context.Background(), path); err != nil {
		t.Fatalf("Export: %v", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var prereqs, ancestors int
	db.QueryRow(`SELECT COUNT(*) FROM prerequisites`).Scan(&prereqs)
	db.QueryRow(`SELECT COUNT(*) FROM ancestors WHERE subject_id = 'A'`).Scan(&ancestors)
	if prereqs != 3 {
		t.Errorf("prerequisites = %d, want 3 (dangling kept)", prereqs)
	}
	// A lies on a cycle, so it is its own ancestor.
	if ancestors != 2 {
		t.Errorf("ancestors of A = %d, want 2", ancestors)
	}
}

func TestSQLiteExport_RequiresCurriculum(t *testing.T) {
	exp := &SQLiteExporter{}
	if err := exp.Export(context.Background(), filepath.Join(t.TempDir(), "x.sqlite3")); err == nil {
		t.Error("expected error")
	}
}
