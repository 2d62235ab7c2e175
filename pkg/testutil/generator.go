// Package testutil provides curriculum fixture generators for various
// prerequisite topologies. All generators produce deterministic output for
// reproducible tests.
package testutil

import (
	"fmt"
	"math/rand"

	"github.com/vanderheijden86/pensum/pkg/model"
)

// GraphFixture is an abstract prerequisite graph. Edge [a, b] means node a
// requires node b.
type GraphFixture struct {
	Description string     `json:"description"`
	Nodes       []string   `json:"nodes"`
	Edges       [][2]int   `json:"edges"`
	Semesters   []int      `json:"semesters,omitempty"`
	Properties  Properties `json:"properties,omitempty"`
}

// Properties holds optional metadata about the fixture.
type Properties struct {
	HasCycles     bool `json:"has_cycles,omitempty"`
	ExpectedDepth int  `json:"expected_depth,omitempty"`
}

// GeneratorConfig controls curriculum generation.
type GeneratorConfig struct {
	Seed       int64  // Random seed for determinism
	IDPrefix   string // Prefix for subject ids (default: "S")
	CareerName string // Career name (default: "Test Career")
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:       42,
		IDPrefix:   "S",
		CareerName: "Test Career",
	}
}

// Generator creates fixtures with various topologies.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "S"
	}
	if cfg.CareerName == "" {
		cfg.CareerName = "Test Career"
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Chain creates n0 <- n1 <- ... <- n{size-1}: each node requires the one
// before it and sits one semester later.
func (g *Generator) Chain(size int) GraphFixture {
	nodes := make([]string, size)
	sems := make([]int, size)
	var edges [][2]int
	for i := 0; i < size; i++ {
		nodes[i] = fmt.Sprintf("n%d", i)
		sems[i] = i + 1
		if i > 0 {
			edges = append(edges, [2]int{i, i - 1})
		}
	}
	return GraphFixture{
		Description: fmt.Sprintf("Linear chain of %d subjects", size),
		Nodes:       nodes,
		Edges:       edges,
		Semesters:   sems,
		Properties:  Properties{ExpectedDepth: max(size-1, 0)},
	}
}

// Diamond creates top <- left, top <- right, left <- bottom, right <- bottom.
func (g *Generator) Diamond() GraphFixture {
	return GraphFixture{
		Description: "Diamond: bottom requires left and right, both require top",
		Nodes:       []string{"top", "left", "right", "bottom"},
		Edges:       [][2]int{{1, 0}, {2, 0}, {3, 1}, {3, 2}},
		Semesters:   []int{1, 2, 2, 3},
		Properties:  Properties{ExpectedDepth: 2},
	}
}

// Cycle creates n0 -> n1 -> ... -> n{size-1} -> n0 where each node requires
// the next one. All nodes share semester 1.
func (g *Generator) Cycle(size int) GraphFixture {
	nodes := make([]string, size)
	sems := make([]int, size)
	edges := make([][2]int, 0, size)
	for i := 0; i < size; i++ {
		nodes[i] = fmt.Sprintf("c%d", i)
		sems[i] = 1
		edges = append(edges, [2]int{i, (i + 1) % size})
	}
	return GraphFixture{
		Description: fmt.Sprintf("Cycle of %d subjects", size),
		Nodes:       nodes,
		Edges:       edges,
		Semesters:   sems,
		Properties:  Properties{HasCycles: true},
	}
}

// Wide creates semesters x perSemester subjects. Each subject requires a
// subject from an earlier semester with probability density.
func (g *Generator) Wide(semesters, perSemester int, density float64) GraphFixture {
	var nodes []string
	var sems []int
	var edges [][2]int
	for s := 1; s <= semesters; s++ {
		for k := 0; k < perSemester; k++ {
			idx := len(nodes)
			nodes = append(nodes, fmt.Sprintf("w%d_%d", s, k))
			sems = append(sems, s)
			earlier := (s - 1) * perSemester
			for pre := 0; pre < earlier; pre++ {
				if g.rng.Float64() < density {
					edges = append(edges, [2]int{idx, pre})
				}
			}
		}
	}
	return GraphFixture{
		Description: fmt.Sprintf("%d semesters of %d subjects, density %.2f", semesters, perSemester, density),
		Nodes:       nodes,
		Edges:       edges,
		Semesters:   sems,
	}
}

// Random creates size subjects spread over semesters with arbitrary
// prerequisite edges, cycles and self edges included.
func (g *Generator) Random(size, semesters int, density float64) GraphFixture {
	nodes := make([]string, size)
	sems := make([]int, size)
	var edges [][2]int
	for i := 0; i < size; i++ {
		nodes[i] = fmt.Sprintf("r%d", i)
		sems[i] = 1 + g.rng.Intn(max(semesters, 1))
	}
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			if g.rng.Float64() < density {
				edges = append(edges, [2]int{i, j})
			}
		}
	}
	return GraphFixture{
		Description: fmt.Sprintf("Random graph of %d subjects", size),
		Nodes:       nodes,
		Edges:       edges,
		Semesters:   sems,
		Properties:  Properties{HasCycles: true},
	}
}

// ToCurriculum converts a fixture into a normalized curriculum. Subject ids
// are IDPrefix + "-" + node name.
func (g *Generator) ToCurriculum(gf GraphFixture) *model.Curriculum {
	c := &model.Curriculum{
		Career:   model.Career{Name: g.cfg.CareerName},
		Subjects: make(map[string]model.Subject, len(gf.Nodes)),
	}

	total := 1
	for i, name := range gf.Nodes {
		sem := 1
		if i < len(gf.Semesters) && gf.Semesters[i] > 0 {
			sem = gf.Semesters[i]
		}
		total = max(total, sem)
		c.Subjects[g.id(name)] = model.Subject{
			Name:     fmt.Sprintf("Subject %s", name),
			Semester: sem,
		}
	}
	for _, e := range gf.Edges {
		id := g.id(gf.Nodes[e[0]])
		s := c.Subjects[id]
		pre := g.id(gf.Nodes[e[1]])
		if !s.HasPrerequisite(pre) {
			s.Prerequisites = append(s.Prerequisites, pre)
		}
		c.Subjects[id] = s
	}
	c.Career.TotalSemesters = total
	c.Normalize()
	return c
}

// ID returns the subject id a node name maps to.
func (g *Generator) ID(node string) string {
	return g.id(node)
}

func (g *Generator) id(node string) string {
	return g.cfg.IDPrefix + "-" + node
}

// MathCurriculum is the three-subject chain Math1 <- Math2 <- Math3 plus an
// unrelated Physics1, over three semesters.
func MathCurriculum() *model.Curriculum {
	c := &model.Curriculum{
		Career: model.Career{Name: "Engineering", TotalSemesters: 3},
		Subjects: map[string]model.Subject{
			"Math1":    {Name: "Mathematics I", Semester: 1},
			"Physics1": {Name: "Physics I", Semester: 1},
			"Math2":    {Name: "Mathematics II", Semester: 2, Prerequisites: []string{"Math1"}},
			"Math3":    {Name: "Mathematics III", Semester: 3, Prerequisites: []string{"Math2"}},
		},
	}
	c.Normalize()
	return c
}
