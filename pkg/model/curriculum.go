// Package model defines the curriculum data types shared by every pensum
// package: the career, its subjects and their prerequisite lists.
package model

import (
	"errors"
	"sort"
)

var (
	// ErrUnknownSubject is returned when a subject id is not part of the curriculum.
	ErrUnknownSubject = errors.New("unknown subject")
	// ErrEmptyCurriculum is returned when a curriculum has no subjects.
	ErrEmptyCurriculum = errors.New("curriculum has no subjects")
)

// Career describes the degree program the subjects belong to.
type Career struct {
	Name           string `json:"name,omitempty" yaml:"name,omitempty"`
	TotalSemesters int    `json:"totalSemesters" yaml:"totalSemesters"`
}

// Subject is a single course. ID mirrors the key of Curriculum.Subjects and is
// filled in by Normalize; it is not serialized.
type Subject struct {
	ID            string   `json:"-" yaml:"-"`
	Name          string   `json:"name" yaml:"name"`
	Semester      int      `json:"semester" yaml:"semester"`
	Prerequisites []string `json:"prerequisites,omitempty" yaml:"prerequisites,omitempty"`
	Credits       int      `json:"credits,omitempty" yaml:"credits,omitempty"`
}

// HasPrerequisite reports whether id is listed as a direct prerequisite.
func (s Subject) HasPrerequisite(id string) bool {
	for _, pre := range s.Prerequisites {
		if pre == id {
			return true
		}
	}
	return false
}

// Curriculum is the input document: a career and its subjects keyed by id.
type Curriculum struct {
	Career   Career             `json:"career" yaml:"career"`
	Subjects map[string]Subject `json:"subjects" yaml:"subjects"`
}

// Normalize copies map keys into Subject.ID and replaces nil prerequisite
// lists with empty ones. Loaders call it after decoding.
func (c *Curriculum) Normalize() {
	if c.Subjects == nil {
		c.Subjects = make(map[string]Subject)
	}
	for id, s := range c.Subjects {
		s.ID = id
		if s.Prerequisites == nil {
			s.Prerequisites = []string{}
		}
		c.Subjects[id] = s
	}
}

// SubjectIDs returns all subject ids sorted ascending.
func (c *Curriculum) SubjectIDs() []string {
	ids := make([]string, 0, len(c.Subjects))
	for id := range c.Subjects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Subject returns the subject with the given id.
func (c *Curriculum) Subject(id string) (Subject, bool) {
	s, ok := c.Subjects[id]
	if ok && s.ID == "" {
		s.ID = id
	}
	return s, ok
}

// SubjectsInSemester returns the subjects of one semester sorted by id.
func (c *Curriculum) SubjectsInSemester(sem int) []Subject {
	var out []Subject
	for _, id := range c.SubjectIDs() {
		s, _ := c.Subject(id)
		if s.Semester == sem {
			out = append(out, s)
		}
	}
	return out
}

// EdgeCount returns the number of prerequisite pairs, dangling ones included.
func (c *Curriculum) EdgeCount() int {
	n := 0
	for _, s := range c.Subjects {
		n += len(s.Prerequisites)
	}
	return n
}
