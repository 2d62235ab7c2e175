package export

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is stored in the meta table of every exported database.
const SchemaVersion = 1

// CreateSchema creates all tables and indexes in the database.
func CreateSchema(db *sql.DB) error {
	if err := createCoreTables(db); err != nil {
		return fmt.Errorf("create core tables: %w", err)
	}
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	if err := createMetaTable(db); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}
	return nil
}

// createCoreTables creates the subjects, prerequisites and ancestors tables.
func createCoreTables(db *sql.DB) error {
	statements := []struct {
		name string
		sql  string
	}{
		{"subjects", `
		CREATE TABLE IF NOT EXISTS subjects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			semester INTEGER NOT NULL,
			credits INTEGER NOT NULL DEFAULT 0,
			x REAL,
			y REAL
		)`},
		// dangling prerequisites are kept, so no foreign key on prerequisite_id
		{"prerequisites", `
		CREATE TABLE IF NOT EXISTS prerequisites (
			subject_id TEXT NOT NULL,
			prerequisite_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (subject_id, prerequisite_id),
			FOREIGN KEY (subject_id) REFERENCES subjects(id)
		)`},
		// transitive closure of prerequisites
		{"ancestors", `
		CREATE TABLE IF NOT EXISTS ancestors (
			subject_id TEXT NOT NULL,
			ancestor_id TEXT NOT NULL,
			PRIMARY KEY (subject_id, ancestor_id),
			FOREIGN KEY (subject_id) REFERENCES subjects(id),
			FOREIGN KEY (ancestor_id) REFERENCES subjects(id)
		)`},
	}
	for _, st := range statements {
		if _, err := db.Exec(st.sql); err != nil {
			return fmt.Errorf("create %s table: %w", st.name, err)
		}
	}
	return nil
}

func createIndexes(db *sql.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_subjects_semester ON subjects(semester)`,
		`CREATE INDEX IF NOT EXISTS idx_prerequisites_target ON prerequisites(prerequisite_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ancestors_ancestor ON ancestors(ancestor_id)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

func createMetaTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS export_meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)
	`)
	return err
}

// InsertMetaValue inserts or replaces a metadata key-value pair.
func InsertMetaValue(db *sql.DB, key, value string) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO export_meta (key, value) VALUES (?, ?)`, key, value)
	return err
}

// OptimizeDatabase compacts the file. Call it as the final step before closing.
func OptimizeDatabase(db *sql.DB) error {
	optimizations := []string{
		`PRAGMA journal_mode=DELETE`,
		`ANALYZE`,
		`PRAGMA optimize`,
	}
	for _, stmt := range optimizations {
		if _, err := db.Exec(stmt); err != nil {
			continue
		}
	}
	if _, err := db.Exec(`VACUUM`); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}
