package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type inputModel struct {
	prompt string
	input  textinput.Model
	done   bool
	// stopped is set by Ctrl+C or Esc.
	stopped bool
}

func newInputModel(prompt, initial string) *inputModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Width = defaultListWidth
	ti.SetValue(initial)
	ti.Focus()

	return &inputModel{prompt: prompt, input: ti}
}

func (m *inputModel) Init() tea.Cmd { return textinput.Blink }

func (m *inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			m.done = true
			return m, tea.Quit
		case "ctrl+c", "esc":
			m.stopped = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *inputModel) View() string {
	header := headerStyle.Render(m.prompt)
	switch {
	case m.done:
		return header + " " + answerStyle.Render(m.input.Value()) + "\n"
	case m.stopped:
		return header + "\n"
	}
	return header + "\n" + m.input.View() + "\n" + helpStyle.Render("Enter submit | Esc/Ctrl+C stop")
}

// Value returns the submitted text.
func (m *inputModel) Value() string {
	return m.input.Value()
}

// Input asks for one line of text, pre-filled with initial.
func Input(prompt, initial string) (string, SelectionAction, error) {
	finalModel, err := runProgram(newInputModel(prompt, initial))
	if err != nil {
		return "", ActionNone, err
	}

	typed, ok := finalModel.(*inputModel)
	if !ok {
		return "", ActionNone, fmt.Errorf("unexpected program result")
	}
	if typed.stopped {
		return "", ActionStopped, nil
	}
	return typed.Value(), ActionSelected, nil
}
