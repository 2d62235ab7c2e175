package export

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/pensum/pkg/analysis"
	"github.com/vanderheijden86/pensum/pkg/model"
)

// GenerateMarkdown renders a curriculum report: one table per semester plus
// a structure summary. The output is deterministic.
func GenerateMarkdown(c *model.Curriculum, g *analysis.Graph) string {
	var sb strings.Builder

	title := c.Career.Name
	if title == "" {
		title = "Curriculum"
	}
	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(title))
	fmt.Fprintf(&sb, "%d subjects across %d semesters, %d prerequisite links.\n\n",
		len(c.Subjects), c.Career.TotalSemesters, c.EdgeCount())

	for sem := 1; sem <= c.Career.TotalSemesters; sem++ {
		fmt.Fprintf(&sb, "## Semester %d\n\n", sem)
		subjects := c.SubjectsInSemester(sem)
		if len(subjects) == 0 {
			sb.WriteString("_No subjects._\n\n")
			continue
		}
		sb.WriteString("| ID | Subject | Requires | Unlocks |\n")
		sb.WriteString("|----|---------|----------|---------|\n")
		for _, s := range subjects {
			fmt.Fprintf(&sb, "| `%s` | %s | %s | %s |\n",
				s.ID, escapeMarkdown(s.Name),
				idList(s.Prerequisites), idList(g.Children(s.ID).Sorted()))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Structure\n\n")
	fmt.Fprintf(&sb, "- **Entry subjects:** %s\n", idList(g.Roots()))
	fmt.Fprintf(&sb, "- **Final subjects:** %s\n", idList(g.Leaves()))
	if cycles := g.Cycles(); len(cycles) > 0 {
		sb.WriteString("- **Cycles:**\n")
		for _, cyc := range cycles {
			fmt.Fprintf(&sb, "  - %s\n", strings.Join(cyc, " → "))
		}
	} else {
		maxDepth := 0
		for _, d := range g.Depth() {
			if d > maxDepth {
				maxDepth = d
			}
		}
		fmt.Fprintf(&sb, "- **Longest prerequisite chain:** %d\n", maxDepth+1)
	}

	if problems := c.Problems(); len(problems) > 0 {
		sb.WriteString("\n## Problems\n\n")
		for _, p := range problems {
			fmt.Fprintf(&sb, "- %s: %s\n", p.Severity(), escapeMarkdown(p.String()))
		}
	}
	return sb.String()
}

// SubjectMarkdown renders the detail card for one subject: its direct and
// transitive prerequisites and the subjects it unlocks.
func SubjectMarkdown(c *model.Curriculum, g *analysis.Graph, id string) (string, error) {
	s, ok := c.Subject(id)
	if !ok {
		return "", fmt.Errorf("%w: %q", model.ErrUnknownSubject, id)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(s.Name))
	fmt.Fprintf(&sb, "`%s` · Semester %d", s.ID, s.Semester)
	if s.Credits > 0 {
		fmt.Fprintf(&sb, " · %d credits", s.Credits)
	}
	sb.WriteString("\n\n")

	ancestors := g.Ancestors(id)
	children := g.Children(id)
	descendants := g.Descendants(id)

	sb.WriteString("## Requires\n\n")
	writeSubjectList(&sb, c, s.Prerequisites)
	if ancestors.Len() > len(g.Prerequisites(id)) {
		sb.WriteString("\n### Full chain\n\n")
		writeSubjectList(&sb, c, ancestors.Sorted())
	}

	sb.WriteString("\n## Unlocks\n\n")
	writeSubjectList(&sb, c, children.Sorted())
	if descendants.Len() > children.Len() {
		fmt.Fprintf(&sb, "\n%d subjects depend on this one transitively.\n", descendants.Len())
	}
	return sb.String(), nil
}

func writeSubjectList(sb *strings.Builder, c *model.Curriculum, ids []string) {
	if len(ids) == 0 {
		sb.WriteString("_None._\n")
		return
	}
	for _, id := range ids {
		if s, ok := c.Subject(id); ok {
			fmt.Fprintf(sb, "- %s (`%s`, semester %d)\n", escapeMarkdown(s.Name), id, s.Semester)
		} else {
			fmt.Fprintf(sb, "- `%s` (missing)\n", id)
		}
	}
}

func idList(ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = "`" + id + "`"
	}
	return strings.Join(parts, ", ")
}

var markdownEscaper = strings.NewReplacer("|", "\\|", "*", "\\*", "_", "\\_", "`", "\\`")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
