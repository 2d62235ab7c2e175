package export

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/vanderheijden86/pensum/pkg/model"
	"github.com/vanderheijden86/pensum/pkg/testutil"
)

func TestExportAll(t *testing.T) {
	v := newMathView(t)
	dir := t.TempDir()

	paths, err := ExportAll(context.Background(), dir, testutil.MathCurriculum(), v, AllOptions{Title: "Engineering", Focus: "Math2"})
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}
	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	testutil.AssertIDs(t, names,
		"curriculum.dot", "curriculum.html", "curriculum.md", "curriculum.mmd",
		"curriculum.png", "curriculum.sqlite3", "curriculum.svg")
}

func TestExportAll_BaseName(t *testing.T) {
	v := newMathView(t)
	paths, err := ExportAll(context.Background(), t.TempDir(), testutil.MathCurriculum(), v, AllOptions{BaseName: "eng"})
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}
	for _, p := range paths {
		if base := filepath.Base(p); base[:4] != "eng." {
			t.Errorf("unexpected file %s", base)
		}
	}
}

func TestExportAll_UnknownFocus(t *testing.T) {
	v := newMathView(t)
	_, err := ExportAll(context.Background(), t.TempDir(), testutil.MathCurriculum(), v, AllOptions{Focus: "Nope"})
	if !errors.Is(err, model.ErrUnknownSubject) {
		t.Errorf("err = %v, want ErrUnknownSubject", err)
	}
}

func TestExportAll_CancelledContext(t *testing.T) {
	v := newMathView(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ExportAll(ctx, t.TempDir(), testutil.MathCurriculum(), v, AllOptions{}); err == nil {
		t.Error("expected error for cancelled context")
	}
}
