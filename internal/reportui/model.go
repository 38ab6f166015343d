// Package reportui provides the Bubble Tea results browser.
package reportui

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/rollbench/internal/harness"
	"github.com/verte-zerg/rollbench/internal/model"
	"github.com/verte-zerg/rollbench/internal/report"
)

const (
	tabSummary = iota
	tabDistribution
	tabTimeline
	tabDeltas
	tabHistory
	tabCalibration
)

const plotHeight = 10

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Data is everything the browser shows.
type Data struct {
	Samples     []model.RawSample
	History     []model.HistoryRecord
	Calibration []model.CalibrationRecord
}

// DataMsg replaces the shown data, e.g. after the store changed on disk.
type DataMsg struct {
	Data Data
	Err  error
}

// Loader re-reads persisted data on demand. Samples are kept from the run.
type Loader func() (Data, error)

// Model implements the Bubble Tea results browser.
type Model struct {
	data   Data
	load   Loader
	limit  float64
	logY   bool
	errMsg string

	tabs         []string
	activeTab    int
	viewports    []viewport.Model
	historyTable table.Model

	width  int
	height int

	limitMode  bool
	limitInput textinput.Model
	limitError string
}

// NewModel constructs a browser over data. load may be nil.
func NewModel(data Data, limit float64, load Loader) *Model {
	m := &Model{
		data:  data,
		load:  load,
		limit: limit,
		tabs:  []string{"Summary", "Distribution", "Timeline", "Deltas", "History", "Calibration"},
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.limitInput = textinput.New()
	m.limitInput.Prompt = "Limit (%): "
	m.limitInput.Cursor.SetMode(cursor.CursorBlink)
	m.historyTable = table.New(
		table.WithColumns(historyColumns()),
		table.WithStyles(tableStyles()),
	)
	m.historyTable.SetRows(historyRows(data.History))
	m.renderTabContents()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case DataMsg:
		m.applyData(msg)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.limitMode {
			return m.updateLimit(msg)
		}
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			m.limitMode = true
			m.limitError = ""
			m.limitInput.SetValue(strconv.FormatFloat(m.limit, 'f', -1, 64))
			return m, m.limitInput.Focus()
		case "s":
			m.logY = !m.logY
			m.renderTabContents()
			return m, nil
		case "r":
			if m.load == nil {
				return m, nil
			}
			data, err := m.load()
			m.applyData(DataMsg{Data: data, Err: err})
			return m, nil
		case "g", "home":
			if m.activeTab == tabHistory {
				m.historyTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabHistory {
				m.historyTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabHistory {
				var cmd tea.Cmd
				m.historyTable, cmd = m.historyTable.Update(msg)
				return m, cmd
			}
			var cmd tea.Cmd
			m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) applyData(msg DataMsg) {
	if msg.Err != nil {
		m.errMsg = msg.Err.Error()
		return
	}
	m.errMsg = ""
	samples := m.data.Samples
	m.data = msg.Data
	if len(m.data.Samples) == 0 {
		m.data.Samples = samples
	}
	m.historyTable.SetRows(historyRows(m.data.History))
	m.renderTabContents()
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := max(lipgloss.Height(activeNavStyle.Render("X")), 1)
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" || m.limitMode {
		footerHeight++
	}
	bodyHeight = max(m.height-headerHeight-footerHeight, 1)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.historyTable.SetWidth(m.width)
	m.historyTable.SetHeight(max(bodyHeight-1, 1))
	m.limitInput.Width = max(10, m.width-lipgloss.Width(m.limitInput.Prompt)-2)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.activeTab = ((m.activeTab+delta)%count + count) % count
	if m.activeTab == tabHistory {
		m.historyTable.Focus()
	} else {
		m.historyTable.Blur()
	}
}

func (m *Model) updateLimit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.limitMode = false
		m.limitError = ""
		m.limitInput.Blur()
		return m, nil
	case tea.KeyEnter:
		limit, err := parseLimit(m.limitInput.Value())
		if err != nil {
			m.limitError = err.Error()
			return m, nil
		}
		m.limit = limit
		m.limitMode = false
		m.limitError = ""
		m.limitInput.Blur()
		m.renderTabContents()
		return m, nil
	}
	var cmd tea.Cmd
	m.limitInput, cmd = m.limitInput.Update(msg)
	return m, cmd
}

func parseLimit(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v <= 0 || v > 100 {
		return 0, fmt.Errorf("invalid limit (use a number in (0, 100])")
	}
	return v, nil
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	scale := "linear"
	if m.logY {
		scale = "log"
	}
	settings := fmt.Sprintf("Settings: limit=%g%%  scale=%s  samples=%d  history=%d",
		m.limit, scale, len(m.data.Samples), len(m.data.History))
	return m.renderTabs() + "\n" + headerStyle.Render(truncateLine(settings, m.width))
}

func (m *Model) renderFooter() string {
	if m.limitMode {
		help := headerStyle.Render("enter: apply  esc: cancel")
		if m.limitError != "" {
			return help + "\n" + errorStyle.Render(m.limitError)
		}
		return help + "\n" + m.limitInput.View()
	}
	help := headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Limit: /  Log scale: s  Reload: r  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderBody(height int) string {
	if m.activeTab == tabHistory {
		if len(m.data.History) == 0 {
			return fitLines("No history yet.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.historyTable.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) renderTabContents() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	opts := report.PlotOptions{Width: report.PlotWidthFor(width), Height: plotHeight, LogY: m.logY, Color: true}
	samples := m.data.Samples

	m.viewports[tabSummary].SetContent(renderSummary(samples, width))
	m.viewports[tabDistribution].SetContent(render(samples, func(buf *bytes.Buffer) error {
		return report.RenderDistribution(buf, samples, m.limit, max(width-24, 10))
	}))
	m.viewports[tabTimeline].SetContent(render(samples, func(buf *bytes.Buffer) error {
		return report.RenderTimeline(buf, samples, opts)
	}))
	m.viewports[tabDeltas].SetContent(render(samples, func(buf *bytes.Buffer) error {
		return report.RenderDeltas(buf, samples)
	}))
	m.viewports[tabCalibration].SetContent(strings.Join(calibrationContent(m.data.Calibration), "\n"))
}

func render(samples []model.RawSample, fn func(*bytes.Buffer) error) string {
	if len(samples) == 0 {
		return "No samples in this session. Run a benchmark first."
	}
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return fmt.Sprintf("Failed to render: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderSummary(samples []model.RawSample, width int) string {
	if len(samples) == 0 {
		return "No samples in this session. Run a benchmark first."
	}
	summaries := harness.Summaries(samples)
	fastest := summaries[0]
	groups := map[model.Group]bool{}
	for _, s := range summaries {
		groups[s.Group] = true
		if s.Median < fastest.Median {
			fastest = s
		}
	}
	cards := []string{
		metricCard("Groups", strconv.Itoa(len(groups))),
		metricCard("Passes", strconv.Itoa(len(samples))),
		metricCard("Fastest median", fmt.Sprintf("%.3f ms", fastest.Median)),
		metricCard("Fastest", fmt.Sprintf("%s %s", fastest.Group.Label(), fastest.Library.Label())),
	}
	var top string
	if width < 80 {
		top = strings.Join(cards, "\n")
	} else {
		top = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}
	return top + "\n\n" + strings.Join(report.SummaryLines(summaries), "\n")
}

func calibrationContent(records []model.CalibrationRecord) []string {
	if len(records) == 0 {
		return []string{"No calibration yet."}
	}
	return report.CalibrationLines(records)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func historyColumns() []table.Column {
	return []table.Column{
		{Title: "Group", Width: 10},
		{Title: "Library", Width: 20},
		{Title: "Version", Width: 8},
		{Title: "Target s", Width: 9},
		{Title: "Median ms", Width: 12},
	}
}

func historyRows(records []model.HistoryRecord) []table.Row {
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, table.Row{
			r.Group.Label(),
			r.Library.Label(),
			strconv.Itoa(r.Version),
			strconv.Itoa(r.TimeTarget),
			fmt.Sprintf("%.3f", r.MedianTimeMs),
		})
	}
	return rows
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func padLine(line string, width int) string {
	if w := lipgloss.Width(line); w < width {
		return line + strings.Repeat(" ", width-w)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
