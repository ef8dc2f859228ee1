// Package tui holds the terminal UI pieces of the CLI: the interactive
// question prompt and the answer and search renderers.
package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the user leaves the prompt without
// submitting.
var ErrCancelled = errors.New("tui: prompt cancelled")

// QuestionModel is a single-line Bubble Tea prompt for the question.
type QuestionModel struct {
	input     textinput.Model
	submitted bool
	cancelled bool
}

// NewQuestionModel creates a focused prompt.
func NewQuestionModel() QuestionModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Enter your question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	ti.Width = 80
	return QuestionModel{input: ti}
}

// Init starts the cursor blink.
func (m QuestionModel) Init() tea.Cmd { return textinput.Blink }

// Update handles key events. Enter submits, Esc and Ctrl+C cancel.
func (m QuestionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.submitted = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the header and input line.
func (m QuestionModel) View() string {
	if m.submitted || m.cancelled {
		return ""
	}
	header := headerStyle.Render("=== Multi-Agent Document Analysis System ===")
	hint := hintStyle.Render("enter to ask, esc to quit")
	return header + "\n" + promptBoxStyle.Render(m.input.View()) + "\n" + hint + "\n"
}

// Question returns the trimmed input.
func (m QuestionModel) Question() string {
	return strings.TrimSpace(m.input.Value())
}

// Submitted reports whether the user pressed Enter.
func (m QuestionModel) Submitted() bool { return m.submitted }

// AskQuestion runs the prompt on in/out and returns the question. An empty
// submission returns "" and no error.
func AskQuestion(in io.Reader, out io.Writer) (string, error) {
	p := tea.NewProgram(NewQuestionModel(), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("tui: run prompt: %w", err)
	}
	m, ok := final.(QuestionModel)
	if !ok || !m.Submitted() {
		return "", ErrCancelled
	}
	return m.Question(), nil
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	hintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	promptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
