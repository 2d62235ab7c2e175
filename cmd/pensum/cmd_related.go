package main

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/pensum/pkg/analysis"
	"github.com/vanderheijden86/pensum/pkg/model"
)

type relatedOutput struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Semester    int      `json:"semester"`
	Ancestors   []string `json:"ancestors"`
	Children    []string `json:"children"`
	Descendants []string `json:"descendants,omitempty"`
}

func newRelatedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "related <id>",
		Short: "List the ancestors and direct children of a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			id := args[0]
			s, ok := e.curriculum.Subject(id)
			if !ok {
				return fmt.Errorf("%w: %q", model.ErrUnknownSubject, id)
			}

			g := analysis.NewGraph(e.curriculum)
			out := relatedOutput{
				ID:        id,
				Name:      s.Name,
				Semester:  s.Semester,
				Ancestors: orEmpty(g.Ancestors(id).Sorted()),
				Children:  orEmpty(g.Children(id).Sorted()),
			}
			if all, _ := cmd.Flags().GetBool("all"); all {
				out.Descendants = orEmpty(g.Descendants(id).Sorted())
			}

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s (%s), semester %d\n", out.Name, out.ID, out.Semester)
			fmt.Fprintf(w, "  requires: %s\n", joinOrDash(out.Ancestors))
			fmt.Fprintf(w, "  unlocks:  %s\n", joinOrDash(out.Children))
			if out.Descendants != nil {
				fmt.Fprintf(w, "  leads to: %s\n", joinOrDash(out.Descendants))
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Output as JSON")
	cmd.Flags().Bool("all", false, "Also list every transitive dependent")
	return cmd
}

func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func joinOrDash(ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	return strings.Join(ids, ", ")
}
