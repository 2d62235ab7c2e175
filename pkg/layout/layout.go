// Package layout turns a curriculum into positioned graph data: one column
// per semester, a title node above each column and one edge per
// prerequisite pair.
package layout

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/vanderheijden86/pensum/pkg/debug"
	"github.com/vanderheijden86/pensum/pkg/metrics"
	"github.com/vanderheijden86/pensum/pkg/model"
)

// DefaultTitleFormat labels the column titles. "%d" is the semester number.
const DefaultTitleFormat = "Semester %d"

// Dimensions are the geometry constants of the column layout, plus the
// wording of the column titles.
type Dimensions struct {
	SemesterWidth float64 `yaml:"semester_width" json:"semester_width"`
	NodeStartY    float64 `yaml:"node_start_y" json:"node_start_y"`
	NodeSpacingY  float64 `yaml:"node_spacing_y" json:"node_spacing_y"`
	NodeMargin    float64 `yaml:"node_margin" json:"node_margin"`
	TitleY        float64 `yaml:"title_y" json:"title_y"`
	TitleFormat   string  `yaml:"title_format" json:"title_format"`
}

// DefaultDimensions returns the stock column geometry.
func DefaultDimensions() Dimensions {
	return Dimensions{
		SemesterWidth: 300,
		NodeStartY:    80,
		NodeSpacingY:  90,
		NodeMargin:    10,
		TitleY:        20,
		TitleFormat:   DefaultTitleFormat,
	}
}

// WithDefaults fills zero fields from DefaultDimensions.
func (d Dimensions) WithDefaults() Dimensions {
	def := DefaultDimensions()
	if d.SemesterWidth <= 0 {
		d.SemesterWidth = def.SemesterWidth
	}
	if d.NodeStartY <= 0 {
		d.NodeStartY = def.NodeStartY
	}
	if d.NodeSpacingY <= 0 {
		d.NodeSpacingY = def.NodeSpacingY
	}
	if d.NodeMargin <= 0 {
		d.NodeMargin = def.NodeMargin
	}
	if d.TitleY <= 0 {
		d.TitleY = def.TitleY
	}
	if strings.TrimSpace(d.TitleFormat) == "" {
		d.TitleFormat = def.TitleFormat
	}
	return d
}

// NodeKind distinguishes subject nodes from decorative title nodes.
type NodeKind string

const (
	KindSubject NodeKind = "subject"
	KindTitle   NodeKind = "title"
)

// Node is a positioned graph node.
type Node struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Kind     NodeKind `json:"kind"`
	Group    string   `json:"group,omitempty"`
	Semester int      `json:"semester"`
	Rank     int      `json:"rank"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
}

// IsTitle reports whether n is a semester title.
func (n Node) IsTitle() bool { return n.Kind == KindTitle }

// Edge is a directed prerequisite -> subject edge.
type Edge struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
}

// Semester lists the subject ids of one column in display order.
type Semester struct {
	Index    int      `json:"index"`
	TitleID  string   `json:"title_id"`
	Subjects []string `json:"subjects"`
}

// Bounds is the extent of the laid-out graph.
type Bounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Warning reports input that was left out of the graph.
type Warning struct {
	SubjectID string `json:"subject_id"`
	Message   string `json:"message"`
}

func (w Warning) String() string {
	return w.SubjectID + ": " + w.Message
}

// Graph is the prepared node and edge data. Nodes hold the title nodes first,
// then subjects column by column.
type Graph struct {
	Nodes     []Node     `json:"nodes"`
	Edges     []Edge     `json:"edges"`
	Semesters []Semester `json:"semesters"`
	Bounds    Bounds     `json:"bounds"`
	Dims      Dimensions `json:"dimensions"`

	nodeIdx map[string]int
	edgeIdx map[string]int
}

// TitleID returns the node id of the title above semester k.
func TitleID(k int) string {
	return model.TitleIDPrefix + strconv.Itoa(k)
}

// TitleLabel returns the label of the title above semester k. The first
// "%d" in TitleFormat is replaced by k; a format without one gets k appended.
func (d Dimensions) TitleLabel(k int) string {
	format := d.TitleFormat
	if strings.TrimSpace(format) == "" {
		format = DefaultTitleFormat
	}
	n := strconv.Itoa(k)
	if !strings.Contains(format, "%d") {
		return format + " " + n
	}
	return strings.Replace(format, "%d", n, 1)
}

// Group returns the vis group name of semester k.
func Group(k int) string {
	return "sem" + strconv.Itoa(k)
}

// EdgeID returns the id of the edge from a prerequisite to a subject.
func EdgeID(from, to string) string {
	return from + "->" + to
}

// Prepare lays out c. Subjects whose semester has no column and
// prerequisites naming missing subjects are skipped and reported as
// warnings. The result depends only on c and dims.
func Prepare(c *model.Curriculum, dims Dimensions) (*Graph, []Warning) {
	start := time.Now()
	defer func() {
		metrics.GraphPrepare.Record(time.Since(start))
	}()

	dims = dims.WithDefaults()
	total := c.Career.TotalSemesters
	if total < 0 {
		total = 0
	}

	var warnings []Warning
	buckets := make([][]model.Subject, total+1)
	for _, id := range c.SubjectIDs() {
		s, _ := c.Subject(id)
		if model.IsReservedID(id) {
			warnings = append(warnings, Warning{
				SubjectID: id,
				Message:   "id is reserved for semester titles; subject not placed",
			})
			continue
		}
		if s.Semester < 1 || s.Semester > total {
			warnings = append(warnings, Warning{
				SubjectID: id,
				Message:   fmt.Sprintf("semester %d outside 1..%d; subject not placed", s.Semester, total),
			})
			continue
		}
		buckets[s.Semester] = append(buckets[s.Semester], s)
	}

	g := &Graph{
		Dims:    dims,
		nodeIdx: make(map[string]int),
		edgeIdx: make(map[string]int),
	}

	for k := 1; k <= total; k++ {
		g.addNode(Node{
			ID:       TitleID(k),
			Label:    dims.TitleLabel(k),
			Kind:     KindTitle,
			Semester: k,
			X:        float64(k-1) * dims.SemesterWidth,
			Y:        dims.TitleY,
		})
	}

	col := collate.New(language.Und)
	maxRows := 0
	for k := 1; k <= total; k++ {
		subjects := buckets[k]
		sort.SliceStable(subjects, func(i, j int) bool {
			if cmp := col.CompareString(subjects[i].Name, subjects[j].Name); cmp != 0 {
				return cmp < 0
			}
			return subjects[i].ID < subjects[j].ID
		})

		sem := Semester{Index: k, TitleID: TitleID(k)}
		for rank, s := range subjects {
			g.addNode(Node{
				ID:       s.ID,
				Label:    s.Name,
				Kind:     KindSubject,
				Group:    Group(k),
				Semester: k,
				Rank:     rank,
				X:        float64(k-1) * dims.SemesterWidth,
				Y:        dims.NodeStartY + float64(rank)*dims.NodeSpacingY,
			})
			sem.Subjects = append(sem.Subjects, s.ID)
		}
		maxRows = max(maxRows, len(subjects))
		g.Semesters = append(g.Semesters, sem)
	}

	for _, n := range g.Nodes {
		if n.IsTitle() {
			continue
		}
		s, _ := c.Subject(n.ID)
		for _, pre := range s.Prerequisites {
			target, ok := g.Node(pre)
			if !ok || target.IsTitle() {
				warnings = append(warnings, Warning{
					SubjectID: n.ID,
					Message:   fmt.Sprintf("prerequisite %q is not placed; edge skipped", pre),
				})
				continue
			}
			id := EdgeID(pre, n.ID)
			if _, dup := g.edgeIdx[id]; dup {
				warnings = append(warnings, Warning{
					SubjectID: n.ID,
					Message:   fmt.Sprintf("prerequisite %q repeated; edge kept once", pre),
				})
				continue
			}
			g.edgeIdx[id] = len(g.Edges)
			g.Edges = append(g.Edges, Edge{ID: id, From: pre, To: n.ID})
		}
	}

	g.Bounds = Bounds{
		Width:  float64(total) * dims.SemesterWidth,
		Height: dims.NodeStartY + float64(maxRows)*dims.NodeSpacingY,
	}

	debug.Log("prepared graph: %d nodes, %d edges, %d warnings", len(g.Nodes), len(g.Edges), len(warnings))
	return g, warnings
}

func (g *Graph) addNode(n Node) {
	if _, dup := g.nodeIdx[n.ID]; dup {
		return
	}
	g.nodeIdx[n.ID] = len(g.Nodes)
	g.Nodes = append(g.Nodes, n)
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.nodeIdx[id]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// Edge returns the edge with the given id.
func (g *Graph) Edge(id string) (Edge, bool) {
	i, ok := g.edgeIdx[id]
	if !ok {
		return Edge{}, false
	}
	return g.Edges[i], true
}

// SubjectNodes returns the subject nodes in layout order.
func (g *Graph) SubjectNodes() []Node {
	return g.filter(KindSubject)
}

// TitleNodes returns the semester title nodes in semester order.
func (g *Graph) TitleNodes() []Node {
	return g.filter(KindTitle)
}

func (g *Graph) filter(kind NodeKind) []Node {
	var out []Node
	for _, n := range g.Nodes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}
