// Package tui provides the interactive terminal prompts of a labeling
// session.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultListWidth  = 48
	defaultListHeight = 4
)

var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m).Run()
}

// SelectionAction represents the user's action in the selection UI.
type SelectionAction int

const (
	// ActionNone indicates no action was taken.
	ActionNone SelectionAction = iota
	// ActionSelected indicates the user selected an item.
	ActionSelected
	// ActionSkipped indicates the user dismissed the question.
	ActionSkipped
	// ActionStopped indicates the user stopped the session entirely.
	ActionStopped
)

// Choice is one selectable answer.
type Choice struct {
	Label string
	// Key is a single-key shortcut that selects the choice immediately.
	Key string
}

// SelectionResult holds the result of a TUI selection.
type SelectionResult struct {
	Action SelectionAction
	Index  int
}

type choiceItem struct {
	Choice
}

func (i choiceItem) FilterValue() string { return i.Label }

type itemStyles struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	key      lipgloss.Style
}

func newItemStyles() itemStyles {
	base := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(lipgloss.Color("252"))

	return itemStyles{
		normal: base,
		selected: base.Copy().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")),
		key: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")),
	}
}

type choiceDelegate struct {
	styles itemStyles
}

func newDelegate() choiceDelegate {
	return choiceDelegate{styles: newItemStyles()}
}

func (d choiceDelegate) Height() int                         { return 1 }
func (d choiceDelegate) Spacing() int                        { return 0 }
func (d choiceDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d choiceDelegate) Render(w io.Writer, m list.Model, idx int, item list.Item) {
	choice, ok := item.(choiceItem)
	if !ok {
		return
	}

	cursor := "  "
	style := d.styles.normal
	if idx == m.Index() {
		cursor = "> "
		style = d.styles.selected
	}

	line := cursor + style.Render(truncate(choice.Label, m.Width()-8))
	if choice.Key != "" {
		line += " " + d.styles.key.Render("("+choice.Key+")")
	}
	_, _ = fmt.Fprint(w, line)
}

type model struct {
	list     list.Model
	question string
	choices  []Choice
	result   SelectionResult
}

func newModel(question string, choices []Choice, initial int) *model {
	listItems := make([]list.Item, len(choices))
	for i, choice := range choices {
		listItems[i] = choiceItem{Choice: choice}
	}

	l := list.New(listItems, newDelegate(), defaultListWidth, clamp(defaultListHeight, len(choices), 1))
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetShowPagination(false)
	l.DisableQuitKeybindings()
	l.Styles.NoItems = lipgloss.NewStyle()
	if initial >= 0 && initial < len(choices) {
		l.Select(initial)
	}

	return &model{
		list:     l,
		question: question,
		choices:  choices,
		result:   SelectionResult{Action: ActionNone},
	}
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "enter":
			m.result = SelectionResult{Action: ActionSelected, Index: m.list.Index()}
			return m, tea.Quit
		case "ctrl+c":
			m.result = SelectionResult{Action: ActionStopped}
			return m, tea.Quit
		case "esc":
			m.result = SelectionResult{Action: ActionSkipped}
			return m, tea.Quit
		}
		for i, choice := range m.choices {
			if choice.Key != "" && strings.EqualFold(key, choice.Key) {
				m.list.Select(i)
				m.result = SelectionResult{Action: ActionSelected, Index: i}
				return m, tea.Quit
			}
		}
	case tea.WindowSizeMsg:
		width := clamp(defaultListWidth, msg.Width-4, 20)
		m.list.SetSize(width, m.list.Height())
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *model) View() string {
	header := headerStyle.Render(m.question)
	if m.result.Action == ActionSelected {
		return header + " " + answerStyle.Render(m.choices[m.result.Index].Label) + "\n"
	}
	if m.result.Action != ActionNone {
		return header + "\n"
	}
	help := helpStyle.Render("Up/Down navigate | Enter select | Esc dismiss | Ctrl+C stop")
	return lipgloss.JoinVertical(lipgloss.Left, header, m.list.View(), help)
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	answerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("110"))

	helpStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(lipgloss.Color("244"))
)

// Select presents choices for question with the initial choice highlighted.
func Select(question string, choices []Choice, initial int) (SelectionResult, error) {
	if len(choices) == 0 {
		return SelectionResult{Action: ActionSkipped}, nil
	}

	finalModel, err := runProgram(newModel(question, choices, initial))
	if err != nil {
		return SelectionResult{}, err
	}

	if typed, ok := finalModel.(*model); ok {
		return typed.result, nil
	}

	return SelectionResult{}, fmt.Errorf("unexpected program result")
}

func truncate(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	if width <= 0 || len(value) <= width {
		return value
	}
	if width <= 3 {
		return value[:width]
	}
	return value[:width-3] + "..."
}

func clamp(defaultValue, available, minimum int) int {
	width := defaultValue
	if available > 0 && available < defaultValue {
		width = available
	}
	if width < minimum {
		width = minimum
	}
	return width
}
