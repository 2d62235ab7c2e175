package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/pensum/pkg/model"
	"github.com/vanderheijden86/pensum/pkg/testutil"
	"github.com/vanderheijden86/pensum/pkg/view"
)

func newTestModel(t *testing.T, opts Options) Model {
	t.Helper()
	opts.GlamourStyle = "notty"
	m := NewModel(testutil.MathCurriculum(), opts)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

var (
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestModel_StartsBlurred(t *testing.T) {
	m := newTestModel(t, Options{})
	if m.Hovered() != "" {
		t.Errorf("hovered = %q", m.Hovered())
	}
	if len(m.columns) != 3 {
		t.Errorf("columns = %d", len(m.columns))
	}
	out := m.View()
	for _, want := range []string{"Engineering", "Semester 1", "Semester 3", "Mathematics I", "Physics I"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_ArrowKeysHover(t *testing.T) {
	m := newTestModel(t, Options{})

	// First key hovers the cell under the cursor.
	m = press(t, m, keyDown)
	if m.Hovered() != "Math1" {
		t.Fatalf("hovered = %q, want Math1", m.Hovered())
	}
	m = press(t, m, keyDown)
	if m.Hovered() != "Physics1" {
		t.Fatalf("hovered = %q, want Physics1", m.Hovered())
	}
	m = press(t, m, keyUp, keyRight)
	if m.Hovered() != "Math2" {
		t.Fatalf("hovered = %q, want Math2", m.Hovered())
	}
	r := m.Renderer()
	if r.NodeState("Math1") != view.StateAncestor || r.NodeState("Math3") != view.StateChild || r.NodeState("Physics1") != view.StateFaded {
		t.Errorf("states: Math1=%s Math3=%s Physics1=%s", r.NodeState("Math1"), r.NodeState("Math3"), r.NodeState("Physics1"))
	}
	if !strings.Contains(m.View(), "Math1 → Math2") {
		t.Error("edge panel should list the ancestor path")
	}

	m = press(t, m, keyRight, keyRight)
	if m.Hovered() != "Math3" {
		t.Errorf("hovered = %q, want Math3 (clamped at last column)", m.Hovered())
	}
	m = press(t, m, keyLeft, keyLeft, keyLeft)
	if m.Hovered() != "Math1" {
		t.Errorf("hovered = %q, want Math1", m.Hovered())
	}
}

func TestModel_EscBlurs(t *testing.T) {
	m := newTestModel(t, Options{InitialSubject: "Math3"})
	if m.Hovered() != "Math3" {
		t.Fatalf("initial hovered = %q", m.Hovered())
	}
	m = press(t, m, keyEsc)
	if m.Hovered() != "" {
		t.Errorf("hovered after esc = %q", m.Hovered())
	}
	for _, id := range []string{"Math1", "Math2", "Math3", "Physics1"} {
		if st := m.Renderer().NodeState(id); st != view.StateDefault {
			t.Errorf("%s = %s after blur", id, st)
		}
	}
	// Moving again resumes at the previous cursor.
	m = press(t, m, keyUp)
	if m.Hovered() != "Math3" {
		t.Errorf("hovered = %q", m.Hovered())
	}
}

func TestModel_DetailPane(t *testing.T) {
	m := newTestModel(t, Options{InitialSubject: "Math2"})
	m = press(t, m, keyEnter)
	if !m.showDetail {
		t.Fatal("enter should open details")
	}
	out := m.View()
	if !strings.Contains(out, "Mathematics II") || !strings.Contains(out, "Requires") {
		t.Errorf("detail view missing content:\n%s", out)
	}
	m = press(t, m, keyEsc)
	if m.showDetail {
		t.Error("esc should close details")
	}
	if m.Hovered() != "Math2" {
		t.Error("closing details must not blur")
	}
}

func TestModel_CopyID(t *testing.T) {
	m := newTestModel(t, Options{InitialSubject: "Physics1"})
	var copied string
	m.copy = func(s string) error { copied = s; return nil }

	m = press(t, m, runeKey('y'))
	if copied != "Physics1" || m.statusIsError {
		t.Errorf("copied = %q status = %q", copied, m.statusMsg)
	}

	m.copy = func(string) error { return errors.New("no clipboard") }
	m = press(t, m, runeKey('y'))
	if !m.statusIsError {
		t.Error("clipboard failure should be reported")
	}
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, Options{})
	_, cmd := m.Update(runeKey('q'))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModel_Reload(t *testing.T) {
	ch := make(chan ReloadMsg, 1)
	m := newTestModel(t, Options{InitialSubject: "Math2", Reloads: ch})

	c := testutil.MathCurriculum()
	c.Subjects["Math4"] = model.Subject{ID: "Math4", Name: "Mathematics IV", Semester: 3, Prerequisites: []string{"Math2"}}
	ch <- ReloadMsg{Curriculum: c}

	msg := m.Init()()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		t.Error("reload should keep listening")
	}
	if m.Hovered() != "Math2" {
		t.Errorf("hover lost across reload: %q", m.Hovered())
	}
	if m.Renderer().NodeState("Math4") != view.StateChild {
		t.Errorf("Math4 = %s, want child", m.Renderer().NodeState("Math4"))
	}
	if !strings.Contains(m.statusMsg, "Reloaded 5 subjects") {
		t.Errorf("status = %q", m.statusMsg)
	}

	next, _ = m.Update(ReloadMsg{Err: errors.New("boom")})
	m = next.(Model)
	if !m.statusIsError || m.Renderer().NodeState("Math4") != view.StateChild {
		t.Error("failed reload must keep previous data")
	}
}

func TestModel_EmptyCurriculum(t *testing.T) {
	c := &model.Curriculum{Career: model.Career{TotalSemesters: 2}}
	c.Normalize()
	m := NewModel(c, Options{GlamourStyle: "notty"})
	m = press(t, m, keyDown, keyRight, keyEnter)
	if m.Hovered() != "" || m.showDetail {
		t.Error("empty board cannot hover")
	}
	_ = m.View()
}
