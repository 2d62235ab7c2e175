package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/pensum/pkg/analysis"
	"github.com/vanderheijden86/pensum/pkg/export"
	"github.com/vanderheijden86/pensum/pkg/model"
)

var errNoSubject = errors.New("subject id required when not running in a terminal")

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a subject with its prerequisite chain",
		Long: `show prints the detail card of one subject: what it requires, directly and
transitively, and what it unlocks. Without an id it offers a picker when
attached to a terminal.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			var id string
			if len(args) == 1 {
				id = args[0]
			} else {
				if !isTerminal(os.Stdin) || !isTerminal(cmd.OutOrStdout()) {
					return errNoSubject
				}
				if id, err = pickSubject(e.curriculum); err != nil {
					return err
				}
			}

			md, err := export.SubjectMarkdown(e.curriculum, analysis.NewGraph(e.curriculum), id)
			if err != nil {
				return err
			}
			raw, _ := cmd.Flags().GetBool("raw")
			return writeMarkdown(cmd.OutOrStdout(), md, raw)
		},
	}
	cmd.Flags().Bool("raw", false, "Print plain markdown even on a terminal")
	return cmd
}

// pickSubject asks for a subject with a huh select.
func pickSubject(c *model.Curriculum) (string, error) {
	if len(c.Subjects) == 0 {
		return "", model.ErrEmptyCurriculum
	}
	options := make([]huh.Option[string], 0, len(c.Subjects))
	for sem := 1; sem <= c.Career.TotalSemesters; sem++ {
		for _, s := range c.SubjectsInSemester(sem) {
			options = append(options, huh.NewOption(fmt.Sprintf("S%d  %s (%s)", sem, s.Name, s.ID), s.ID))
		}
	}

	var id string
	err := huh.NewSelect[string]().
		Title("Subject").
		Options(options...).
		Value(&id).
		Run()
	if err != nil {
		return "", err
	}
	return id, nil
}

// writeMarkdown renders md with glamour when w is a terminal.
func writeMarkdown(w io.Writer, md string, raw bool) error {
	if raw || !isTerminal(w) {
		_, err := io.WriteString(w, md)
		return err
	}
	width := 80
	if f, ok := w.(*os.File); ok {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			width = min(cols, 120)
		}
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
