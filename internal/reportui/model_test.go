package reportui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/rollbench/internal/model"
)

func testData() Data {
	var samples []model.RawSample
	for i := 1; i <= 5; i++ {
		samples = append(samples,
			model.RawSample{Library: model.LibraryNaive, Group: model.GroupMean, TimeMs: float64(i)},
			model.RawSample{Library: model.LibraryRolling, Group: model.GroupMean, TimeMs: float64(i) / 4},
		)
	}
	return Data{
		Samples: samples,
		History: []model.HistoryRecord{
			{Group: model.GroupMean, Library: model.LibraryNaive, Version: 1, TimeTarget: 10, MedianTimeMs: 3},
		},
		Calibration: []model.CalibrationRecord{
			{Group: model.GroupMean, Version: 1, TimeTarget: 10, TotalTimeSecs: 1, NPasses: 5, TimePerPassMs: 200},
		},
	}
}

func sized(t *testing.T, m *Model) *Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(*Model)
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewFitsWindow(t *testing.T) {
	m := sized(t, NewModel(testData(), 95, nil))
	lines := strings.Split(m.View(), "\n")
	if len(lines) != 30 {
		t.Fatalf("expected 30 lines, got %d", len(lines))
	}
	if !strings.Contains(m.View(), "Fastest median") {
		t.Fatalf("expected summary cards in view")
	}
}

func TestMoveTabWraps(t *testing.T) {
	m := sized(t, NewModel(testData(), 95, nil))
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabCalibration {
		t.Fatalf("expected wrap to last tab, got %d", m.activeTab)
	}
	m.Update(key("l"))
	if m.activeTab != tabSummary {
		t.Fatalf("expected wrap to first tab, got %d", m.activeTab)
	}
}

func TestLimitInputValidates(t *testing.T) {
	m := sized(t, NewModel(testData(), 95, nil))
	m.Update(key("/"))
	if !m.limitMode {
		t.Fatalf("expected limit mode")
	}
	m.limitInput.SetValue("150")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.limitMode || m.limitError == "" {
		t.Fatalf("expected validation error, got mode=%v err=%q", m.limitMode, m.limitError)
	}
	m.limitInput.SetValue("80")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.limitMode || m.limit != 80 {
		t.Fatalf("expected limit 80 applied, got mode=%v limit=%v", m.limitMode, m.limit)
	}
	if !strings.Contains(m.View(), "limit=80%") {
		t.Fatalf("expected new limit in header")
	}
}

func TestReloadKeepsSessionSamples(t *testing.T) {
	data := testData()
	calls := 0
	load := func() (Data, error) {
		calls++
		return Data{History: append(data.History, model.HistoryRecord{
			Group: model.GroupMean, Library: model.LibraryRolling, Version: 1, TimeTarget: 10, MedianTimeMs: 1,
		})}, nil
	}
	m := sized(t, NewModel(data, 95, load))
	m.Update(key("r"))
	if calls != 1 {
		t.Fatalf("expected one reload, got %d", calls)
	}
	if len(m.data.History) != 2 || len(m.data.Samples) != len(data.Samples) {
		t.Fatalf("unexpected data after reload: %d history, %d samples", len(m.data.History), len(m.data.Samples))
	}
	if rows := m.historyTable.Rows(); len(rows) != 2 {
		t.Fatalf("expected history table refresh, got %d rows", len(rows))
	}
}

func TestDataMsgErrorShownInFooter(t *testing.T) {
	m := sized(t, NewModel(testData(), 95, nil))
	m.Update(DataMsg{Err: errors.New("history unreadable")})
	if !strings.Contains(m.View(), "history unreadable") {
		t.Fatalf("expected error in footer")
	}
	m.Update(DataMsg{Data: testData()})
	if m.errMsg != "" {
		t.Fatalf("expected error cleared")
	}
}

func TestEmptySamplesMessage(t *testing.T) {
	m := sized(t, NewModel(Data{}, 95, nil))
	if !strings.Contains(m.View(), "No samples in this session") {
		t.Fatalf("expected empty message")
	}
	m.activeTab = tabHistory
	if !strings.Contains(m.View(), "No history yet.") {
		t.Fatalf("expected empty history message")
	}
}

func TestParseLimit(t *testing.T) {
	if v, err := parseLimit(" 99.5 "); err != nil || v != 99.5 {
		t.Fatalf("unexpected parse: %v %v", v, err)
	}
	for _, bad := range []string{"", "0", "-1", "101", "abc"} {
		if _, err := parseLimit(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestFitLines(t *testing.T) {
	got := fitLines("a\nb\nc", 3, 2)
	if got != "a  \nb  " {
		t.Fatalf("unexpected fit %q", got)
	}
	if got := truncateLine("abcdefgh", 6); got != "abc..." {
		t.Fatalf("unexpected truncate %q", got)
	}
}
