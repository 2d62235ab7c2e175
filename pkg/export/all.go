package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/pensum/pkg/debug"
	"github.com/vanderheijden86/pensum/pkg/model"
	"github.com/vanderheijden86/pensum/pkg/view"
)

// AllOptions configures ExportAll.
type AllOptions struct {
	Title    string
	Focus    string // optional subject for snapshot, Mermaid and DOT output
	BaseName string // file stem, default "curriculum"
}

// ExportAll writes every export format for the curriculum into dir
// concurrently and returns the written paths sorted. The first failure
// cancels the remaining writers.
func ExportAll(ctx context.Context, dir string, c *model.Curriculum, v *view.GraphView, opts AllOptions) ([]string, error) {
	if c == nil || v == nil {
		return nil, fmt.Errorf("curriculum and view are required")
	}
	if opts.Focus != "" && !v.Analysis().Has(opts.Focus) {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownSubject, opts.Focus)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	base := opts.BaseName
	if base == "" {
		base = "curriculum"
	}
	path := func(ext string) string { return filepath.Join(dir, base+ext) }

	var (
		mu      sync.Mutex
		written []string
	)
	done := func(p string) {
		mu.Lock()
		written = append(written, p)
		mu.Unlock()
		debug.Log("export: wrote %s", p)
	}
	writeText := func(p string, render func() (string, error)) func() error {
		return func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			text, err := render()
			if err != nil {
				return err
			}
			if err := os.WriteFile(p, []byte(text), 0o644); err != nil {
				return err
			}
			done(p)
			return nil
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := GenerateInteractiveGraphHTML(InteractiveGraphOptions{View: v, Title: opts.Title, Path: path(".html")})
		if err != nil {
			return fmt.Errorf("html: %w", err)
		}
		done(p)
		return nil
	})
	for _, ext := range []string{".svg", ".png"} {
		p := path(ext)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := SaveGraphSnapshot(SnapshotOptions{Path: p, Title: opts.Title, View: v, Focus: opts.Focus}); err != nil {
				return fmt.Errorf("snapshot %s: %w", ext, err)
			}
			done(p)
			return nil
		})
	}
	g.Go(writeText(path(".mmd"), func() (string, error) { return GenerateMermaid(v, opts.Focus) }))
	g.Go(writeText(path(".dot"), func() (string, error) { return GenerateDOT(v, opts.Focus) }))
	g.Go(writeText(path(".md"), func() (string, error) { return GenerateMarkdown(c, v.Analysis()), nil }))
	g.Go(func() error {
		p := path(".sqlite3")
		exp := NewSQLiteExporter(c, v.Analysis(), v.Layout())
		exp.Title = opts.Title
		if err := exp.Export(gctx, p); err != nil {
			return fmt.Errorf("sqlite: %w", err)
		}
		done(p)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Strings(written)
	return written, nil
}
