// Package menu provides the Bubble Tea main menu.
package menu

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/rollbench/internal/model"
)

// Action is what the user picked from the main menu.
type Action int

// Menu actions, numbered as shown.
const (
	ActionNone Action = iota
	ActionRunAll
	ActionRunGroup
	ActionCheck
	ActionExit
)

type stage int

const (
	stageMain stage = iota
	stageGroup
	stageBudget
	stageDone
)

var mainItems = []struct {
	action Action
	label  string
}{
	{ActionRunAll, "Run all groups"},
	{ActionRunGroup, "Run one group"},
	{ActionCheck, "Check one group"},
	{ActionExit, "Exit"},
}

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	itemStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	boxStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A")).
			Padding(1, 2)
)

// Selection is the outcome of one pass through the menu.
type Selection struct {
	Action Action
	Group  model.Group
	// Budget is the time budget in seconds. Zero for checks.
	Budget int
}

// Model implements the Bubble Tea menu.
type Model struct {
	groups        []model.Group
	defaultBudget int

	stage    stage
	cursor   int
	action   Action
	group    model.Group
	budget   textinput.Model
	errMsg   string
	selected Selection

	width  int
	height int
}

// NewModel constructs a menu over groups. A blank budget means
// defaultBudget seconds.
func NewModel(groups []model.Group, defaultBudget int) *Model {
	input := textinput.New()
	input.Prompt = "Time budget (s): "
	input.Placeholder = strconv.Itoa(defaultBudget)
	input.CharLimit = 6
	input.Cursor.SetMode(cursor.CursorBlink)
	return &Model{
		groups:        groups,
		defaultBudget: defaultBudget,
		budget:        input,
	}
}

// Selection returns what was chosen. Quitting early yields ActionExit.
func (m *Model) Selection() Selection {
	if m.selected.Action == ActionNone {
		return Selection{Action: ActionExit}
	}
	return m.selected
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
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m.finish(Selection{Action: ActionExit})
		}
		switch m.stage {
		case stageMain:
			return m.updateMain(msg)
		case stageGroup:
			return m.updateGroup(msg)
		case stageBudget:
			return m.updateBudget(msg)
		}
	}
	return m, nil
}

func (m *Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m.finish(Selection{Action: ActionExit})
	case "up", "k":
		m.cursor = wrap(m.cursor-1, len(mainItems))
	case "down", "j":
		m.cursor = wrap(m.cursor+1, len(mainItems))
	case "1", "2", "3", "4":
		m.cursor = int(msg.Runes[0] - '1')
		return m.chooseMain()
	case "enter":
		return m.chooseMain()
	}
	return m, nil
}

func (m *Model) chooseMain() (tea.Model, tea.Cmd) {
	m.action = mainItems[m.cursor].action
	m.errMsg = ""
	switch m.action {
	case ActionRunAll:
		return m.startBudget()
	case ActionRunGroup, ActionCheck:
		if len(m.groups) == 0 {
			m.errMsg = "no groups registered"
			return m, nil
		}
		m.stage = stageGroup
		m.cursor = 0
		return m, nil
	default:
		return m.finish(Selection{Action: ActionExit})
	}
}

func (m *Model) updateGroup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m.finish(Selection{Action: ActionExit})
	case "esc":
		m.back()
	case "up", "k":
		m.cursor = wrap(m.cursor-1, len(m.groups))
	case "down", "j":
		m.cursor = wrap(m.cursor+1, len(m.groups))
	case "enter":
		m.group = m.groups[m.cursor]
		if m.action == ActionCheck {
			return m.finish(Selection{Action: ActionCheck, Group: m.group})
		}
		return m.startBudget()
	}
	return m, nil
}

func (m *Model) startBudget() (tea.Model, tea.Cmd) {
	m.stage = stageBudget
	m.budget.SetValue("")
	return m, m.budget.Focus()
}

func (m *Model) updateBudget(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.budget.Blur()
		m.back()
		return m, nil
	case tea.KeyEnter:
		budget, err := ParseBudget(m.budget.Value(), m.defaultBudget)
		if err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.budget.Blur()
		return m.finish(Selection{Action: m.action, Group: m.group, Budget: budget})
	}
	var cmd tea.Cmd
	m.budget, cmd = m.budget.Update(msg)
	return m, cmd
}

// back returns to the main menu with the cursor on the current action.
func (m *Model) back() {
	m.stage = stageMain
	m.errMsg = ""
	m.cursor = int(m.action) - 1
}

func (m *Model) finish(sel Selection) (tea.Model, tea.Cmd) {
	m.selected = sel
	m.stage = stageDone
	return m, tea.Quit
}

// ParseBudget reads a budget in whole seconds. Blank input yields def.
func ParseBudget(raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid time budget %q (use a positive integer)", raw)
	}
	return v, nil
}

func wrap(i, n int) int {
	if n == 0 {
		return 0
	}
	return ((i % n) + n) % n
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.stage == stageDone {
		return ""
	}
	var lines []string
	var help string
	switch m.stage {
	case stageMain:
		lines = append(lines, titleStyle.Render("rollbench"))
		for i, item := range mainItems {
			lines = append(lines, m.renderItem(i, fmt.Sprintf("%d. %s", i+1, item.label)))
		}
		help = "up/down or 1-4 to choose  enter: select  q: quit"
	case stageGroup:
		lines = append(lines, titleStyle.Render(mainItems[m.action-1].label))
		for i, g := range m.groups {
			lines = append(lines, m.renderItem(i, g.Label()))
		}
		help = "up/down: move  enter: select  esc: back"
	case stageBudget:
		title := mainItems[m.action-1].label
		if m.action == ActionRunGroup {
			title += ": " + m.group.Label()
		}
		lines = append(lines, titleStyle.Render(title), m.budget.View())
		help = fmt.Sprintf("enter: start (blank = %ds)  esc: back", m.defaultBudget)
	}
	if m.errMsg != "" {
		lines = append(lines, errorStyle.Render(m.errMsg))
	}
	lines = append(lines, "", footerStyle.Render(help))
	box := boxStyle.Render(strings.Join(lines, "\n"))
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) renderItem(i int, label string) string {
	if i == m.cursor {
		return selectedStyle.Render("> " + label)
	}
	return itemStyle.Render("  " + label)
}
