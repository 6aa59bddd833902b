package cli

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	pio "github.com/matzehuels/prooftower/pkg/io"
	"github.com/matzehuels/prooftower/pkg/viewer"
)

func newTestExplore(t *testing.T) exploreModel {
	t.Helper()
	list, err := pio.ReadProof(strings.NewReader(smallTrace))
	if err != nil {
		t.Fatal(err)
	}
	v, err := viewer.NewProofView(context.Background(), list, viewer.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return newExploreModel(context.Background(), v, "proofs/trace.xml")
}

func press(m exploreModel, keys ...tea.KeyMsg) exploreModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(exploreModel)
	}
	return m
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
)

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestExploreNavigation(t *testing.T) {
	m := newTestExplore(t)
	if len(m.nodes) != 3 {
		t.Fatalf("nodes = %d, want 3", len(m.nodes))
	}

	m = press(m, keyUp)
	if m.Cursor != 0 {
		t.Errorf("cursor moved above the root: %d", m.Cursor)
	}
	m = press(m, keyDown, keyDown, keyDown)
	if m.Cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.Cursor)
	}
}

func TestExploreToggle(t *testing.T) {
	m := newTestExplore(t)

	m = press(m, keyDown, keyEnter)
	if len(m.nodes) != 2 {
		t.Fatalf("after collapsing r: nodes = %d, want 2", len(m.nodes))
	}
	if m.selected() != "r" {
		t.Errorf("cursor left the toggled node: %q", m.selected())
	}
	if !strings.Contains(m.status, "applied") {
		t.Errorf("status = %q", m.status)
	}

	m = press(m, keyEnter)
	if len(m.nodes) != 3 {
		t.Errorf("after expanding r: nodes = %d, want 3", len(m.nodes))
	}
}

func TestExploreMagicAndReset(t *testing.T) {
	m := newTestExplore(t)

	m = press(m, runes("m"))
	if !m.view.Magic() {
		t.Fatal("m should enable magic mode")
	}
	if !strings.Contains(m.View(), "[magic]") {
		t.Error("title should mark magic mode")
	}

	m = press(m, runes("m"), runes("r"))
	if m.view.Magic() || len(m.nodes) != 3 {
		t.Errorf("after reset: magic=%v nodes=%d", m.view.Magic(), len(m.nodes))
	}
}

func TestExploreReload(t *testing.T) {
	m := newTestExplore(t)
	other := newTestExplore(t)
	press(other, keyDown, keyEnter)

	next, _ := m.Update(reloadMsg{view: other.view})
	m = next.(exploreModel)
	if len(m.nodes) != 2 || !strings.Contains(m.status, "reloaded trace.xml") {
		t.Errorf("reload: nodes=%d status=%q", len(m.nodes), m.status)
	}
}

func TestExploreWatchError(t *testing.T) {
	m := newTestExplore(t)
	next, _ := m.Update(watchErrMsg{err: errors.New("too many open files")})
	m = next.(exploreModel)
	if m.watchErr == nil || !strings.Contains(m.status, "too many open files") {
		t.Errorf("watch error: err=%v status=%q", m.watchErr, m.status)
	}
	if len(m.nodes) == 0 {
		t.Error("watch error should keep the view")
	}
}

func TestExploreQuit(t *testing.T) {
	m := newTestExplore(t)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
