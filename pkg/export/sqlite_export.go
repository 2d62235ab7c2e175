package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vanderheijden86/pensum/pkg/analysis"
	"github.com/vanderheijden86/pensum/pkg/layout"
	"github.com/vanderheijden86/pensum/pkg/model"
	"github.com/vanderheijden86/pensum/pkg/version"

	_ "modernc.org/sqlite"
)

// SQLiteExporter writes a curriculum, its layout and the ancestor closure to
// a SQLite database.
type SQLiteExporter struct {
	Curriculum *model.Curriculum
	Graph      *analysis.Graph
	Layout     *layout.Graph // optional; fills subjects.x and subjects.y
	Title      string

	now func() time.Time
}

// NewSQLiteExporter creates an exporter for c.
func NewSQLiteExporter(c *model.Curriculum, g *analysis.Graph, lg *layout.Graph) *SQLiteExporter {
	if g == nil {
		g = analysis.NewGraph(c)
	}
	return &SQLiteExporter{Curriculum: c, Graph: g, Layout: lg, now: time.Now}
}

// Export writes the database to path, replacing any existing file.
func (e *SQLiteExporter) Export(ctx context.Context, path string) error {
	if e.Curriculum == nil {
		return fmt.Errorf("curriculum is required for sqlite export")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	dbClosed := false
	defer func() {
		if !dbClosed {
			db.Close()
		}
	}()

	if err := CreateSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := e.insertSubjects(ctx, db); err != nil {
		return fmt.Errorf("insert subjects: %w", err)
	}
	if err := e.insertPrerequisites(ctx, db); err != nil {
		return fmt.Errorf("insert prerequisites: %w", err)
	}
	if err := e.insertAncestors(ctx, db); err != nil {
		return fmt.Errorf("insert ancestors: %w", err)
	}
	if err := e.insertMeta(db); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}
	if err := OptimizeDatabase(db); err != nil {
		return fmt.Errorf("optimize database: %w", err)
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	dbClosed = true
	return nil
}

func (e *SQLiteExporter) insertSubjects(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO subjects (id, name, semester, credits, x, y)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, id := range e.Curriculum.SubjectIDs() {
		s, _ := e.Curriculum.Subject(id)
		var x, y sql.NullFloat64
		if e.Layout != nil {
			if n, ok := e.Layout.Node(id); ok {
				x = sql.NullFloat64{Float64: n.X, Valid: true}
				y = sql.NullFloat64{Float64: n.Y, Valid: true}
			}
		}
		if _, err := stmt.ExecContext(ctx, id, s.Name, s.Semester, s.Credits, x, y); err != nil {
			return fmt.Errorf("insert subject %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertPrerequisites(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO prerequisites (subject_id, prerequisite_id, position)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, id := range e.Curriculum.SubjectIDs() {
		s, _ := e.Curriculum.Subject(id)
		for pos, pre := range s.Prerequisites {
			if _, err := stmt.ExecContext(ctx, id, pre, pos); err != nil {
				return fmt.Errorf("insert prerequisite %s->%s: %w", pre, id, err)
			}
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertAncestors(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO ancestors (subject_id, ancestor_id) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, id := range e.Graph.IDs() {
		for _, anc := range e.Graph.Ancestors(id).Sorted() {
			if _, err := stmt.ExecContext(ctx, id, anc); err != nil {
				return fmt.Errorf("insert ancestor %s of %s: %w", anc, id, err)
			}
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertMeta(db *sql.DB) error {
	now := time.Now
	if e.now != nil {
		now = e.now
	}
	meta := map[string]string{
		"version":            version.Version,
		"generated_at":       now().UTC().Format(time.RFC3339),
		"career":             e.Curriculum.Career.Name,
		"total_semesters":    strconv.Itoa(e.Curriculum.Career.TotalSemesters),
		"subject_count":      strconv.Itoa(len(e.Curriculum.Subjects)),
		"prerequisite_count": strconv.Itoa(e.Curriculum.EdgeCount()),
		"schema_version":     strconv.Itoa(SchemaVersion),
	}
	if e.Title != "" {
		meta["title"] = e.Title
	}
	for key, value := range meta {
		if err := InsertMetaValue(db, key, value); err != nil {
			return fmt.Errorf("insert meta %s: %w", key, err)
		}
	}
	return nil
}
