package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/pensum/pkg/analysis"
	"github.com/vanderheijden86/pensum/pkg/export"
	"github.com/vanderheijden86/pensum/pkg/model"
	"github.com/vanderheijden86/pensum/pkg/view"
)

var exportFormats = []string{"html", "svg", "png", "mermaid", "dot", "md", "sqlite", "all"}

var defaultExportPaths = map[string]string{
	"html":    "curriculum.html",
	"svg":     "curriculum.svg",
	"png":     "curriculum.png",
	"mermaid": "curriculum.mmd",
	"dot":     "curriculum.dot",
	"md":      "curriculum.md",
	"sqlite":  "curriculum.sqlite3",
	"all":     "pensum-export",
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the graph as HTML, SVG, PNG, Mermaid, DOT, Markdown or SQLite",
		Long: `export writes the curriculum graph to a file. The HTML page is
self-contained apart from the vis-network script and reacts to hover on its
own. --format all writes every format into the output directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")
			focus, _ := cmd.Flags().GetString("focus")
			title, _ := cmd.Flags().GetString("title")
			open, _ := cmd.Flags().GetBool("open")

			format = strings.ToLower(format)
			if _, ok := defaultExportPaths[format]; !ok {
				return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(exportFormats, ", "))
			}
			if output == "" {
				output = defaultExportPaths[format]
			}

			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			if title == "" {
				title = e.curriculum.Career.Name
			}
			v, warnings := view.New(e.curriculum, e.viewConfig())
			for _, w := range warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
			if focus != "" && !v.Analysis().Has(focus) {
				return fmt.Errorf("%w: %q", model.ErrUnknownSubject, focus)
			}

			written, err := runExport(cmd, e.curriculum, v, format, output, title, focus)
			if err != nil {
				return err
			}
			for _, p := range written {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", p)
			}
			if open && len(written) > 0 {
				target := written[0]
				for _, p := range written {
					if strings.HasSuffix(p, ".html") {
						target = p
					}
				}
				return export.OpenInBrowser(target)
			}
			return nil
		},
	}
	cmd.Flags().String("format", "html", "Output format: "+strings.Join(exportFormats, ", "))
	cmd.Flags().StringP("output", "o", "", "Output file (directory for --format all)")
	cmd.Flags().String("focus", "", "Render this subject in its hover state")
	cmd.Flags().String("title", "", "Heading (default: career name)")
	cmd.Flags().Bool("open", false, "Open the result in a browser")
	return cmd
}

func runExport(cmd *cobra.Command, c *model.Curriculum, v *view.GraphView, format, output, title, focus string) ([]string, error) {
	writeText := func(text string) ([]string, error) {
		if dir := filepath.Dir(output); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
			return nil, err
		}
		return []string{output}, nil
	}

	switch format {
	case "html":
		if focus != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "Warning: --focus is ignored for html; the page reacts to hover")
		}
		p, err := export.GenerateInteractiveGraphHTML(export.InteractiveGraphOptions{View: v, Title: title, Path: output})
		if err != nil {
			return nil, err
		}
		return []string{p}, nil
	case "svg", "png":
		err := export.SaveGraphSnapshot(export.SnapshotOptions{Path: output, Format: format, Title: title, View: v, Focus: focus})
		if err != nil {
			return nil, err
		}
		return []string{output}, nil
	case "mermaid":
		text, err := export.GenerateMermaid(v, focus)
		if err != nil {
			return nil, err
		}
		return writeText(text)
	case "dot":
		text, err := export.GenerateDOT(v, focus)
		if err != nil {
			return nil, err
		}
		return writeText(text)
	case "md":
		if focus != "" {
			text, err := export.SubjectMarkdown(c, analysis.NewGraph(c), focus)
			if err != nil {
				return nil, err
			}
			return writeText(text)
		}
		return writeText(export.GenerateMarkdown(c, v.Analysis()))
	case "sqlite":
		exp := export.NewSQLiteExporter(c, v.Analysis(), v.Layout())
		exp.Title = title
		if err := exp.Export(cmd.Context(), output); err != nil {
			return nil, err
		}
		return []string{output}, nil
	default: // all
		return export.ExportAll(cmd.Context(), output, c, v, export.AllOptions{Title: title, Focus: focus})
	}
}
