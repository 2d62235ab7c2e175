package analysis

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vanderheijden86/pensum/pkg/metrics"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// ErrCyclic is returned by TopologicalOrder when the prerequisite relation
// contains a cycle.
var ErrCyclic = errors.New("prerequisite graph contains a cycle")

// directed builds a gonum graph with edges prerequisite -> subject.
// Self prerequisites are left out; simple graphs reject self edges and
// Cycles reports them separately.
func (g *Graph) directed() (*simple.DirectedGraph, map[int64]string) {
	dg := simple.NewDirectedGraph()
	idToNode := make(map[string]int64, len(g.ids))
	nodeToID := make(map[int64]string, len(g.ids))

	for i, id := range g.ids {
		n := simple.Node(int64(i))
		dg.AddNode(n)
		idToNode[id] = n.ID()
		nodeToID[n.ID()] = id
	}
	for _, id := range g.ids {
		to := idToNode[id]
		for _, pre := range g.prereqs[id] {
			from, ok := idToNode[pre]
			if !ok || from == to {
				continue
			}
			dg.SetEdge(dg.NewEdge(dg.Node(from), dg.Node(to)))
		}
	}
	return dg, nodeToID
}

// Cycles returns every elementary prerequisite cycle. Each cycle is rotated
// to start at its smallest id and the list is sorted, so output is stable.
func (g *Graph) Cycles() [][]string {
	defer metrics.Timer(metrics.CycleDetection)()

	dg, nodeToID := g.directed()
	var cycles [][]string
	for _, cyc := range topo.DirectedCyclesIn(dg) {
		// gonum closes each cycle by repeating the first node.
		if len(cyc) > 1 && cyc[0].ID() == cyc[len(cyc)-1].ID() {
			cyc = cyc[:len(cyc)-1]
		}
		ids := make([]string, len(cyc))
		for i, n := range cyc {
			ids[i] = nodeToID[n.ID()]
		}
		cycles = append(cycles, rotateToMin(ids))
	}
	for _, id := range g.ids {
		for _, pre := range g.prereqs[id] {
			if pre == id {
				cycles = append(cycles, []string{id})
				break
			}
		}
	}

	sort.Slice(cycles, func(i, j int) bool {
		a, b := cycles[i], cycles[j]
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})
	return cycles
}

func rotateToMin(ids []string) []string {
	if len(ids) == 0 {
		return ids
	}
	minIdx := 0
	for i, id := range ids {
		if id < ids[minIdx] {
			minIdx = i
		}
	}
	return append(append([]string(nil), ids[minIdx:]...), ids[:minIdx]...)
}

// TopologicalOrder returns subjects ordered so every prerequisite precedes
// the subjects requiring it. Output is stable for a given curriculum. A cyclic relation yields
// an error wrapping ErrCyclic.
func (g *Graph) TopologicalOrder() ([]string, error) {
	for _, id := range g.ids {
		for _, pre := range g.prereqs[id] {
			if pre == id {
				return nil, fmt.Errorf("%w: %s requires itself", ErrCyclic, id)
			}
		}
	}

	dg, nodeToID := g.directed()
	sorted, err := topo.SortStabilized(dg, func(nodes []graph.Node) {
		sort.Slice(nodes, func(i, j int) bool {
			return nodeToID[nodes[i].ID()] < nodeToID[nodes[j].ID()]
		})
	})
	if err != nil {
		var unorderable topo.Unorderable
		if errors.As(err, &unorderable) && len(unorderable) > 0 {
			var members []string
			for _, n := range unorderable[0] {
				members = append(members, nodeToID[n.ID()])
			}
			sort.Strings(members)
			return nil, fmt.Errorf("%w: %v", ErrCyclic, members)
		}
		return nil, fmt.Errorf("%w: %v", ErrCyclic, err)
	}

	order := make([]string, 0, len(sorted))
	for _, n := range sorted {
		order = append(order, nodeToID[n.ID()])
	}
	return order, nil
}

// Depth returns, per subject, the length of the longest prerequisite chain
// ending at it: subjects without prerequisites have depth 0. Members of a
// cycle share the depth of their strongly connected component.
func (g *Graph) Depth() map[string]int {
	dg, nodeToID := g.directed()

	comp := make(map[int64]int)
	sccs := topo.TarjanSCC(dg)
	for i, scc := range sccs {
		for _, n := range scc {
			comp[n.ID()] = i
		}
	}

	// Condensation edges and in-degrees.
	next := make(map[int][]int)
	indeg := make(map[int]int, len(sccs))
	seen := make(map[[2]int]bool)
	edges := dg.Edges()
	for edges.Next() {
		e := edges.Edge()
		cf, ct := comp[e.From().ID()], comp[e.To().ID()]
		if cf == ct || seen[[2]int{cf, ct}] {
			continue
		}
		seen[[2]int{cf, ct}] = true
		next[cf] = append(next[cf], ct)
		indeg[ct]++
	}

	compDepth := make([]int, len(sccs))
	var queue []int
	for i := range sccs {
		if indeg[i] == 0 {
			queue = append(queue, i)
		}
	}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, n := range next[c] {
			if d := compDepth[c] + 1; d > compDepth[n] {
				compDepth[n] = d
			}
			indeg[n]--
			if indeg[n] == 0 {
				queue = append(queue, n)
			}
		}
	}

	depth := make(map[string]int, len(g.ids))
	for nid, id := range nodeToID {
		depth[id] = compDepth[comp[nid]]
	}
	return depth
}
