// Package analysis answers structural questions about a curriculum's
// prerequisite relation: transitive ancestry, direct dependents, cycles,
// topological order and chain depth.
package analysis

import (
	"sort"

	"github.com/vanderheijden86/pensum/pkg/model"
)

// IDSet is an unordered set of subject ids.
type IDSet map[string]struct{}

// NewIDSet returns a set holding ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id.
func (s IDSet) Add(id string) { s[id] = struct{}{} }

// Has reports whether id is a member.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of members.
func (s IDSet) Len() int { return len(s) }

// Sorted returns the members in ascending order.
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Union returns a new set with the members of s and every other set.
func (s IDSet) Union(others ...IDSet) IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	for _, o := range others {
		for id := range o {
			out[id] = struct{}{}
		}
	}
	return out
}

// Graph is the in-memory prerequisite relation of a curriculum.
// It is read-only after NewGraph and safe for concurrent readers.
type Graph struct {
	ids     []string
	prereqs map[string][]string
	known   map[string]bool
}

// NewGraph indexes the prerequisite lists of c. Dangling prerequisite ids are
// kept in the lists but never reported as ancestors.
func NewGraph(c *model.Curriculum) *Graph {
	ids := c.SubjectIDs()
	g := &Graph{
		ids:     ids,
		prereqs: make(map[string][]string, len(ids)),
		known:   make(map[string]bool, len(ids)),
	}
	for _, id := range ids {
		g.known[id] = true
		pre := c.Subjects[id].Prerequisites
		g.prereqs[id] = append([]string(nil), pre...)
	}
	return g
}

// IDs returns every subject id in ascending order.
func (g *Graph) IDs() []string {
	return append([]string(nil), g.ids...)
}

// Has reports whether id is a subject of the curriculum.
func (g *Graph) Has(id string) bool {
	return g.known[id]
}

// Prerequisites returns the direct prerequisites of id that exist.
func (g *Graph) Prerequisites(id string) []string {
	var out []string
	for _, pre := range g.prereqs[id] {
		if g.known[pre] {
			out = append(out, pre)
		}
	}
	return out
}

// Ancestors returns every subject transitively required by id.
//
// The walk is an explicit-stack depth-first search guarded by a visited set,
// so it terminates on cyclic input. The start id is only reported when it
// lies on a cycle. Unknown ids yield an empty set.
func (g *Graph) Ancestors(id string) IDSet {
	result := make(IDSet)
	if !g.known[id] {
		return result
	}

	visited := map[string]bool{id: true}
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, pre := range g.prereqs[cur] {
			if !g.known[pre] {
				continue
			}
			result.Add(pre)
			if !visited[pre] {
				visited[pre] = true
				stack = append(stack, pre)
			}
		}
	}
	return result
}

// Children returns the subjects that list id as a direct prerequisite.
// It is a single linear scan; nothing is cached between calls.
func (g *Graph) Children(id string) IDSet {
	result := make(IDSet)
	for _, sid := range g.ids {
		for _, pre := range g.prereqs[sid] {
			if pre == id {
				result.Add(sid)
				break
			}
		}
	}
	return result
}

// Descendants returns every subject that transitively requires id.
func (g *Graph) Descendants(id string) IDSet {
	result := make(IDSet)
	if !g.known[id] {
		return result
	}

	dependents := g.dependents()
	visited := map[string]bool{id: true}
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range dependents[cur] {
			result.Add(child)
			if !visited[child] {
				visited[child] = true
				stack = append(stack, child)
			}
		}
	}
	return result
}

// Roots returns subjects without existing prerequisites.
func (g *Graph) Roots() []string {
	var out []string
	for _, id := range g.ids {
		if len(g.Prerequisites(id)) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Leaves returns subjects no other subject depends on.
func (g *Graph) Leaves() []string {
	dependents := g.dependents()
	var out []string
	for _, id := range g.ids {
		if len(dependents[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}

func (g *Graph) dependents() map[string][]string {
	out := make(map[string][]string, len(g.ids))
	for _, id := range g.ids {
		for _, pre := range g.prereqs[id] {
			if g.known[pre] {
				out[pre] = append(out[pre], id)
			}
		}
	}
	return out
}
