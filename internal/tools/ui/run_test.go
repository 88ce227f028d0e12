package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestModelCompletesOnActionMsg(t *testing.T) {
	m := newModel("seed apply", nil)
	next, cmd := m.Update(actionMsg{details: []string{"created roles: 2"}})
	if cmd == nil {
		t.Fatal("expected quit command after completion")
	}
	got := next.(model)
	if !got.done || got.err != nil {
		t.Fatalf("unexpected state: %+v", got)
	}
	view := got.View()
	if !strings.Contains(view, "OK") || !strings.Contains(view, "created roles: 2") {
		t.Fatalf("unexpected view: %q", view)
	}
}

func TestModelShowsFailure(t *testing.T) {
	m := newModel("seed verify", nil)
	next, _ := m.Update(actionMsg{err: errors.New("role 2 missing")})
	if view := next.(model).View(); !strings.Contains(view, "FAILED") || !strings.Contains(view, "role 2 missing") {
		t.Fatalf("unexpected view: %q", view)
	}
}

func TestModelCtrlCCancels(t *testing.T) {
	m := newModel("migrate up", nil)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if got := next.(model); !errors.Is(got.err, context.Canceled) || !got.done {
		t.Fatalf("expected canceled state, got %+v", got)
	}
}

func TestModelTickUpdatesElapsedWhileRunning(t *testing.T) {
	m := newModel("migrate up", nil)
	next, cmd := m.Update(tickMsg(m.started.Add(1500 * time.Millisecond)))
	if cmd == nil {
		t.Fatal("expected another tick while running")
	}
	if view := next.(model).View(); !strings.Contains(view, "Running... 1.5s") {
		t.Fatalf("unexpected view: %q", view)
	}
}
