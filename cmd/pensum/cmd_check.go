package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/pensum/pkg/analysis"
	"github.com/vanderheijden86/pensum/pkg/layout"
	"github.com/vanderheijden86/pensum/pkg/model"
)

type checkReport struct {
	File      string          `json:"file"`
	Career    string          `json:"career,omitempty"`
	Subjects  int             `json:"subjects"`
	Semesters int             `json:"semesters"`
	Links     int             `json:"prerequisites"`
	Problems  []model.Problem `json:"problems"`
	Layout    []string        `json:"layout_warnings"`
	Cycles    [][]string      `json:"cycles"`
	Valid     bool            `json:"valid"`
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the curriculum and report every problem",
		Long: `check loads the curriculum leniently and lists every validation problem,
layout warning and prerequisite cycle. It exits non-zero when any problem
has error severity.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := resolveEnv(cmd)
			if err != nil {
				return err
			}
			// Problems are reported below, not as load warnings.
			e.parse.Strict = false
			e.parse.WarningHandler = func(string) {}
			if err := e.load(); err != nil {
				return err
			}

			report := buildCheckReport(e.path, e.curriculum, e.cfg.Layout)
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				printCheckReport(cmd.OutOrStdout(), report)
			}
			if !report.Valid {
				return fmt.Errorf("%s: curriculum has errors", e.path)
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Output the report as JSON")
	return cmd
}

func buildCheckReport(path string, c *model.Curriculum, dims layout.Dimensions) checkReport {
	r := checkReport{
		File:      path,
		Career:    c.Career.Name,
		Subjects:  len(c.Subjects),
		Semesters: c.Career.TotalSemesters,
		Links:     c.EdgeCount(),
		Problems:  c.Problems(),
		Cycles:    analysis.NewGraph(c).Cycles(),
		Valid:     true,
	}
	_, warnings := layout.Prepare(c, dims.WithDefaults())
	for _, w := range warnings {
		r.Layout = append(r.Layout, w.String())
	}
	for _, p := range r.Problems {
		if p.Severity() == model.SeverityError {
			r.Valid = false
		}
	}
	if r.Problems == nil {
		r.Problems = []model.Problem{}
	}
	if r.Layout == nil {
		r.Layout = []string{}
	}
	if r.Cycles == nil {
		r.Cycles = [][]string{}
	}
	return r
}

func printCheckReport(w io.Writer, r checkReport) {
	mark := "✓"
	if !r.Valid {
		mark = "✗"
	}
	fmt.Fprintf(w, "%s %s: %d subjects, %d semesters, %d prerequisites\n", mark, r.File, r.Subjects, r.Semesters, r.Links)
	for _, p := range r.Problems {
		fmt.Fprintf(w, "  %-7s %s\n", p.Severity(), p)
	}
	for _, l := range r.Layout {
		fmt.Fprintf(w, "  layout  %s\n", l)
	}
	for _, cyc := range r.Cycles {
		fmt.Fprintf(w, "  cycle   %v\n", cyc)
	}
}
