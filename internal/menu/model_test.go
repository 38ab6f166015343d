package menu

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/rollbench/internal/model"
)

func press(t *testing.T, m *Model, keys ...tea.KeyMsg) tea.Cmd {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(k)
	}
	return cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	down  = tea.KeyMsg{Type: tea.KeyDown}
)

func newMenu() *Model {
	return NewModel([]model.Group{model.GroupMean, model.GroupSum, model.GroupMedian}, 20)
}

func TestRunAllWithDefaultBudget(t *testing.T) {
	m := newMenu()
	cmd := press(t, m, runes("1"), enter)
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	got := m.Selection()
	if got.Action != ActionRunAll || got.Budget != 20 {
		t.Fatalf("unexpected selection %+v", got)
	}
}

func TestRunGroupWithBudgetOverride(t *testing.T) {
	m := newMenu()
	press(t, m, runes("2"), down, down, enter, runes("4"), runes("5"), enter)
	got := m.Selection()
	if got.Action != ActionRunGroup || got.Group != model.GroupMedian || got.Budget != 45 {
		t.Fatalf("unexpected selection %+v", got)
	}
}

func TestCheckSkipsBudget(t *testing.T) {
	m := newMenu()
	press(t, m, runes("3"), down, enter)
	got := m.Selection()
	if got.Action != ActionCheck || got.Group != model.GroupSum || got.Budget != 0 {
		t.Fatalf("unexpected selection %+v", got)
	}
}

func TestInvalidBudgetStaysOpen(t *testing.T) {
	m := newMenu()
	press(t, m, runes("1"), runes("x"), enter)
	if m.stage != stageBudget {
		t.Fatalf("expected to stay on budget prompt, got stage %d", m.stage)
	}
	if !strings.Contains(m.View(), "invalid time budget") {
		t.Fatalf("expected error in view:\n%s", m.View())
	}
}

func TestEscReturnsToMain(t *testing.T) {
	m := newMenu()
	press(t, m, runes("2"), esc)
	if m.stage != stageMain || m.cursor != 1 {
		t.Fatalf("expected main menu on run-one item, got stage %d cursor %d", m.stage, m.cursor)
	}
	press(t, m, runes("1"), esc)
	if m.stage != stageMain || m.cursor != 0 {
		t.Fatalf("expected main menu on run-all item, got stage %d cursor %d", m.stage, m.cursor)
	}
}

func TestQuitAndExit(t *testing.T) {
	for _, k := range []tea.KeyMsg{runes("q"), runes("4"), {Type: tea.KeyCtrlC}} {
		m := newMenu()
		if cmd := press(t, m, k); cmd == nil {
			t.Fatalf("expected quit for %q", k.String())
		}
		if got := m.Selection(); got.Action != ActionExit {
			t.Fatalf("expected exit for %q, got %+v", k.String(), got)
		}
	}
}

func TestCursorWraps(t *testing.T) {
	m := newMenu()
	press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != len(mainItems)-1 {
		t.Fatalf("expected wrap to last item, got %d", m.cursor)
	}
	press(t, m, enter)
	if got := m.Selection(); got.Action != ActionExit {
		t.Fatalf("expected exit, got %+v", got)
	}
}

func TestParseBudget(t *testing.T) {
	if v, err := ParseBudget("  ", 20); err != nil || v != 20 {
		t.Fatalf("blank should use default, got %d %v", v, err)
	}
	if v, err := ParseBudget(" 7 ", 20); err != nil || v != 7 {
		t.Fatalf("unexpected parse %d %v", v, err)
	}
	for _, bad := range []string{"0", "-3", "1.5", "ten"} {
		if _, err := ParseBudget(bad, 20); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestViewListsGroups(t *testing.T) {
	m := newMenu()
	if !strings.Contains(m.View(), "1. Run all groups") {
		t.Fatalf("expected main items:\n%s", m.View())
	}
	press(t, m, runes("2"))
	view := m.View()
	for _, want := range []string{"Mean", "Sum", "Median"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}
