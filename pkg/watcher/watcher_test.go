package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vanderheijden86/pensum/pkg/loader"
	"github.com/vanderheijden86/pensum/pkg/model"
	"github.com/vanderheijden86/pensum/pkg/testutil"
)

type reload struct {
	c   *model.Curriculum
	err error
}

func watchFile(t *testing.T, path string, parse loader.ParseOptions, opts ...Option) <-chan reload {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	got := make(chan reload, 8)
	opts = append([]Option{WithDebounce(10 * time.Millisecond), WithPollInterval(25 * time.Millisecond)}, opts...)
	err := WatchCurriculum(ctx, path, parse, func(c *model.Curriculum, err error) {
		got <- reload{c: c, err: err}
	}, opts...)
	if err != nil {
		t.Fatalf("WatchCurriculum: %v", err)
	}
	return got
}

func next(t *testing.T, ch <-chan reload) reload {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("no reload within 2s")
		return reload{}
	}
}

func withChemistry(c *model.Curriculum) *model.Curriculum {
	c.Subjects["Chem1"] = model.Subject{ID: "Chem1", Name: "Chemistry I", Semester: 1, Prerequisites: []string{}}
	return c
}

func TestWatchCurriculum_ReloadsOnChange(t *testing.T) {
	for _, tc := range []struct {
		name string
		poll bool
	}{
		{"events", false},
		{"polling", true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			path := testutil.WriteCurriculumFile(t, dir, "curriculum.json", testutil.MathCurriculum())
			got := watchFile(t, path, loader.ParseOptions{Strict: true}, WithForcePoll(tc.poll))

			testutil.WriteCurriculumFile(t, dir, "curriculum.json", withChemistry(testutil.MathCurriculum()))

			r := next(t, got)
			if r.err != nil {
				t.Fatalf("reload error: %v", r.err)
			}
			if _, ok := r.c.Subject("Chem1"); !ok {
				t.Errorf("reloaded curriculum misses Chem1: %v", r.c.SubjectIDs())
			}
		})
	}
}

func TestWatchCurriculum_ParseErrorThenRecovery(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteCurriculumFile(t, dir, "curriculum.json", testutil.MathCurriculum())
	got := watchFile(t, path, loader.ParseOptions{}, WithForcePoll(true))

	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := next(t, got); r.err == nil || r.c != nil {
		t.Fatalf("broken edit = %+v, want a parse error", r)
	}

	// Restoring the exact previous content must still reach the caller,
	// which last saw an error.
	testutil.WriteCurriculumFile(t, dir, "curriculum.json", testutil.MathCurriculum())
	r := next(t, got)
	if r.err != nil || len(r.c.Subjects) != 4 {
		t.Fatalf("recovery = %+v", r)
	}
}

func TestWatchCurriculum_StrictRejectsDanglingEdit(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteCurriculumFile(t, dir, "curriculum.json", testutil.MathCurriculum())
	got := watchFile(t, path, loader.ParseOptions{Strict: true, WarningHandler: func(string) {}}, WithForcePoll(true))

	c := testutil.MathCurriculum()
	c.Subjects["Math3"] = model.Subject{ID: "Math3", Name: "Mathematics III", Semester: 3, Prerequisites: []string{"Nope"}}
	testutil.WriteCurriculumFile(t, dir, "curriculum.json", c)

	r := next(t, got)
	var verr *model.ValidationError
	if !errors.As(r.err, &verr) {
		t.Fatalf("err = %v, want a validation error", r.err)
	}
}

func TestWatchCurriculum_SkipsUnchangedContent(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteCurriculumFile(t, dir, "curriculum.json", testutil.MathCurriculum())
	got := watchFile(t, path, loader.ParseOptions{Strict: true}, WithForcePoll(true))

	// Same bytes, newer mtime: the poller notices, the digest does not.
	testutil.WriteCurriculumFile(t, dir, "curriculum.json", testutil.MathCurriculum())
	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	select {
	case r := <-got:
		t.Fatalf("unchanged save reloaded: %+v", r)
	case <-time.After(200 * time.Millisecond):
	}

	testutil.WriteCurriculumFile(t, dir, "curriculum.json", withChemistry(testutil.MathCurriculum()))
	r := next(t, got)
	if _, ok := r.c.Subject("Chem1"); !ok {
		t.Errorf("first reload after touch = %+v, want the Chem1 edit", r)
	}
}

func TestWatchCurriculum_RemovedThenRecreated(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteCurriculumFile(t, dir, "curriculum.json", testutil.MathCurriculum())
	got := watchFile(t, path, loader.ParseOptions{Strict: true}, WithForcePoll(true))

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if r := next(t, got); !errors.Is(r.err, ErrFileRemoved) {
		t.Fatalf("after remove = %+v, want ErrFileRemoved", r)
	}

	testutil.WriteCurriculumFile(t, dir, "curriculum.json", testutil.MathCurriculum())
	r := next(t, got)
	if r.err != nil || r.c == nil || r.c.Career.Name != "Engineering" {
		t.Fatalf("after re-create = %+v", r)
	}
}

func TestWatchCurriculum_AppearsLater(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "curriculum.yaml")
	got := watchFile(t, path, loader.ParseOptions{Strict: true}, WithForcePoll(true))

	yaml := "career:\n  name: Late\n  totalSemesters: 1\nsubjects:\n  A:\n    name: Alpha\n    semester: 1\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	r := next(t, got)
	if r.err != nil || r.c.Career.Name != "Late" {
		t.Fatalf("first appearance = %+v", r)
	}
}

func TestNew_RequiresCallback(t *testing.T) {
	if _, err := New("curriculum.json", loader.ParseOptions{}, nil); err == nil {
		t.Error("expected error without a reload callback")
	}
}

func TestWatcher_PollingDecision(t *testing.T) {
	path := testutil.WriteCurriculumFile(t, t.TempDir(), "curriculum.json", testutil.MathCurriculum())
	noop := func(*model.Curriculum, error) {}

	start := func(t *testing.T, opts ...Option) *Watcher {
		t.Helper()
		ctx, cancel := context.WithCancel(context.Background())
		t.Cleanup(cancel)
		w, err := New(path, loader.ParseOptions{}, noop, opts...)
		if err != nil {
			t.Fatal(err)
		}
		if err := w.Start(ctx); err != nil {
			t.Fatal(err)
		}
		return w
	}

	t.Run("env", func(t *testing.T) {
		t.Setenv(ForcePollEnvVar, "yes")
		if w := start(t); !w.polling {
			t.Error("PENSUM_FORCE_POLL did not select polling")
		}
	})
	t.Run("remote", func(t *testing.T) {
		orig := detectFilesystemTypeFunc
		detectFilesystemTypeFunc = func(string) FilesystemType { return FSTypeNFS }
		t.Cleanup(func() { detectFilesystemTypeFunc = orig })
		w := start(t)
		if !w.polling || w.fsType != FSTypeNFS {
			t.Errorf("polling=%v fs=%s, want polling on nfs", w.polling, w.fsType)
		}
	})
	t.Run("option", func(t *testing.T) {
		if w := start(t, WithForcePoll(true), WithPollInterval(0)); !w.polling || w.pollInterval != DefaultPollInterval {
			t.Errorf("polling=%v interval=%v", w.polling, w.pollInterval)
		}
	})
}

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	var calls atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("expected 1 callback invocation, got %d", n)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	var called atomic.Bool
	d.Trigger(func() { called.Store(true) })
	d.Cancel()
	time.Sleep(100 * time.Millisecond)
	if called.Load() {
		t.Error("callback should not have been invoked after cancel")
	}
}

func TestEnvBool(t *testing.T) {
	for value, want := range map[string]bool{
		"1": true, "TRUE": true, "yes": true, "y": true, " on ": true,
		"0": false, "false": false, "": false, "invalid": false,
	} {
		t.Setenv("PENSUM_TEST_ENV_BOOL", value)
		if got := envBool("PENSUM_TEST_ENV_BOOL"); got != want {
			t.Errorf("envBool(%q) = %v, want %v", value, got, want)
		}
	}
}

func TestDetectFilesystemType(t *testing.T) {
	if got := detectFilesystemType(""); got != FSTypeUnknown {
		t.Errorf("empty path = %s", got)
	}
	// A missing curriculum is classified by its directory.
	missing := filepath.Join(t.TempDir(), "later.json")
	if got := detectFilesystemType(missing); got == FSTypeUnknown {
		t.Errorf("missing file under temp dir = %s", got)
	}
}
