package analysis

import (
	"errors"
	"reflect"
	"testing"

	"github.com/vanderheijden86/pensum/pkg/model"
	"github.com/vanderheijden86/pensum/pkg/testutil"
)

func TestCycles_None(t *testing.T) {
	g := NewGraph(testutil.MathCurriculum())
	if cycles := g.Cycles(); len(cycles) != 0 {
		t.Errorf("Cycles() = %v, want none", cycles)
	}
}

func TestCycles_Ring(t *testing.T) {
	gen := testutil.NewDefault()
	g := NewGraph(gen.ToCurriculum(gen.Cycle(3)))

	cycles := g.Cycles()
	if len(cycles) != 1 {
		t.Fatalf("Cycles() = %v, want one cycle", cycles)
	}
	if cycles[0][0] != "S-c0" || len(cycles[0]) != 3 {
		t.Errorf("cycle = %v, want 3 members starting at S-c0", cycles[0])
	}
}

func TestCycles_SelfLoop(t *testing.T) {
	c := &model.Curriculum{
		Career: model.Career{TotalSemesters: 1},
		Subjects: map[string]model.Subject{
			"A": {Name: "A", Semester: 1, Prerequisites: []string{"A"}},
			"B": {Name: "B", Semester: 1},
		},
	}
	c.Normalize()
	cycles := NewGraph(c).Cycles()
	if !reflect.DeepEqual(cycles, [][]string{{"A"}}) {
		t.Errorf("Cycles() = %v, want [[A]]", cycles)
	}
}

func TestTopologicalOrder(t *testing.T) {
	gen := testutil.NewDefault()
	g := NewGraph(gen.ToCurriculum(gen.Diamond()))

	order, err := g.TopologicalOrder()
	if err != nil {
		t.Fatalf("TopologicalOrder: %v", err)
	}
	if len(order) != 4 || order[0] != "S-top" || order[3] != "S-bottom" {
		t.Errorf("order = %v, want S-top first and S-bottom last", order)
	}
}

func TestTopologicalOrder_PrerequisitesFirst(t *testing.T) {
	gen := testutil.New(testutil.GeneratorConfig{Seed: 3})
	c := gen.ToCurriculum(gen.Wide(5, 4, 0.25))
	g := NewGraph(c)

	order, err := g.TopologicalOrder()
	if err != nil {
		t.Fatalf("TopologicalOrder: %v", err)
	}
	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	for _, id := range order {
		for _, pre := range g.Prerequisites(id) {
			if pos[pre] >= pos[id] {
				t.Errorf("%s placed after dependent %s", pre, id)
			}
		}
	}
}

func TestTopologicalOrder_Cyclic(t *testing.T) {
	gen := testutil.NewDefault()
	g := NewGraph(gen.ToCurriculum(gen.Cycle(2)))

	if _, err := g.TopologicalOrder(); !errors.Is(err, ErrCyclic) {
		t.Errorf("err = %v, want ErrCyclic", err)
	}
}

func TestDepth(t *testing.T) {
	g := NewGraph(testutil.MathCurriculum())
	want := map[string]int{"Math1": 0, "Math2": 1, "Math3": 2, "Physics1": 0}
	if got := g.Depth(); !reflect.DeepEqual(got, want) {
		t.Errorf("Depth() = %v, want %v", got, want)
	}
}

func TestDepth_ChainFixture(t *testing.T) {
	gen := testutil.NewDefault()
	gf := gen.Chain(6)
	depth := NewGraph(gen.ToCurriculum(gf)).Depth()
	if got := depth[gen.ID("n5")]; got != gf.Properties.ExpectedDepth {
		t.Errorf("depth of last = %d, want %d", got, gf.Properties.ExpectedDepth)
	}
}
