package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	promptTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	promptActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(successColor)
	promptIdleStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"})
	promptDimStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"})
	promptMarker      = lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("❯ ")
)

// Interactive reports whether stdin and stdout are both terminals.
func Interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

type promptKeyMap struct {
	Prev   key.Binding
	Next   key.Binding
	Accept key.Binding
	Cancel key.Binding
}

func choiceKeys(horizontal bool) promptKeyMap {
	if horizontal {
		return promptKeyMap{
			Prev:   key.NewBinding(key.WithKeys("left", "h", "y", "Y"), key.WithHelp("←", "yes")),
			Next:   key.NewBinding(key.WithKeys("right", "l", "n", "N"), key.WithHelp("→", "no")),
			Accept: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
			Cancel: key.NewBinding(key.WithKeys("ctrl+c", "esc", "q"), key.WithHelp("esc", "cancel")),
		}
	}
	return promptKeyMap{
		Prev:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "up")),
		Next:   key.NewBinding(key.WithKeys("down", "j", "tab"), key.WithHelp("↓", "down")),
		Accept: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Cancel: key.NewBinding(key.WithKeys("ctrl+c", "esc", "q"), key.WithHelp("esc", "cancel")),
	}
}

func (k promptKeyMap) help() string {
	parts := make([]string, 0, 4)
	for _, b := range []key.Binding{k.Prev, k.Next, k.Accept, k.Cancel} {
		parts = append(parts, b.Help().Key+" "+b.Help().Desc)
	}
	return promptDimStyle.Render("  " + strings.Join(parts, " • "))
}

// promptHeader renders the question line and optional hint shared by every prompt.
func promptHeader(b *strings.Builder, title, hint string) {
	b.WriteString(promptTitleStyle.Render("? " + title))
	b.WriteByte('\n')
	if hint != "" {
		b.WriteString(promptDimStyle.Render("  " + hint))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
}

// SelectOption is one entry of a choice prompt.
type SelectOption struct {
	Label       string
	Value       string
	Description string
}

// choicePrompt picks one option with the arrow keys. Confirm uses it with a
// horizontal Yes/No pair.
type choicePrompt struct {
	title      string
	hint       string
	options    []SelectOption
	cursor     int
	horizontal bool
	keys       promptKeyMap
	done       bool
	cancelled  bool
}

func newChoicePrompt(title, hint string, options []SelectOption) choicePrompt {
	return choicePrompt{title: title, hint: hint, options: options, keys: choiceKeys(false)}
}

func newConfirmPrompt(question, hint string, defaultYes bool) choicePrompt {
	p := choicePrompt{
		title:      question,
		hint:       hint,
		options:    []SelectOption{{Label: "Yes", Value: "yes"}, {Label: "No", Value: "no"}},
		horizontal: true,
		keys:       choiceKeys(true),
	}
	if !defaultYes {
		p.cursor = 1
	}
	return p
}

func (m choicePrompt) Init() tea.Cmd { return nil }

func (m choicePrompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, m.keys.Prev):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(km, m.keys.Next):
		m.cursor = min(m.cursor+1, len(m.options)-1)
	case key.Matches(km, m.keys.Accept):
		m.done = true
		return m, tea.Quit
	case key.Matches(km, m.keys.Cancel):
		m.cancelled = true
		return m, tea.Quit
	}
	return m, nil
}

func (m choicePrompt) View() string {
	var b strings.Builder
	promptHeader(&b, m.title, m.hint)

	sep := "\n"
	if m.horizontal {
		sep = "    "
	}
	for i, opt := range m.options {
		if i > 0 {
			b.WriteString(sep)
		}
		if i != m.cursor {
			b.WriteString("  " + promptIdleStyle.Render(opt.Label))
			continue
		}
		b.WriteString(promptMarker + promptActiveStyle.Render(opt.Label))
		if opt.Description != "" && !m.horizontal {
			b.WriteString(promptDimStyle.Render(" - " + opt.Description))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(m.keys.help())
	return b.String()
}

// Result is the highlighted option and whether it was accepted.
func (m choicePrompt) Result() (SelectOption, bool) {
	if m.cursor < 0 || m.cursor >= len(m.options) {
		return SelectOption{}, false
	}
	return m.options[m.cursor], m.done && !m.cancelled
}

// Confirm asks a yes/no question. A cancelled prompt counts as no.
func Confirm(question, hint string, defaultYes bool) (bool, error) {
	final, err := tea.NewProgram(newConfirmPrompt(question, hint, defaultYes)).Run()
	if err != nil {
		return false, err
	}
	choice, ok := final.(choicePrompt).Result()
	return ok && choice.Value == "yes", nil
}

// Choose runs a selection prompt. ok is false when the user cancelled.
func Choose(title, hint string, options []SelectOption) (choice SelectOption, ok bool, err error) {
	final, err := tea.NewProgram(newChoicePrompt(title, hint, options)).Run()
	if err != nil {
		return SelectOption{}, false, err
	}
	choice, ok = final.(choicePrompt).Result()
	return choice, ok, nil
}

// askPrompt reads one line of text, falling back to a default.
type askPrompt struct {
	title     string
	hint      string
	fallback  string
	input     textinput.Model
	done      bool
	cancelled bool
}

func newAskPrompt(title, hint, placeholder, fallback string) askPrompt {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 256
	in.Width = 50
	in.Focus()
	return askPrompt{title: title, hint: hint, fallback: fallback, input: in}
}

func (m askPrompt) Init() tea.Cmd { return textinput.Blink }

func (m askPrompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.cancelled = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m askPrompt) View() string {
	var b strings.Builder
	promptHeader(&b, m.title, m.hint)
	b.WriteString("  " + m.input.View() + "\n")
	if m.fallback != "" && m.input.Value() == "" {
		b.WriteString(promptDimStyle.Render("  enter keeps " + m.fallback))
		b.WriteByte('\n')
	}
	b.WriteString("\n")
	b.WriteString(promptDimStyle.Render("  enter confirm • esc cancel"))
	return b.String()
}

// Result is the typed value, or the fallback when nothing was typed.
func (m askPrompt) Result() (string, bool) {
	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		value = m.fallback
	}
	return value, m.done && !m.cancelled
}

// Ask runs a text prompt. A cancelled prompt returns the fallback.
func Ask(title, hint, placeholder, fallback string) (string, error) {
	final, err := tea.NewProgram(newAskPrompt(title, hint, placeholder, fallback)).Run()
	if err != nil {
		return "", err
	}
	value, ok := final.(askPrompt).Result()
	if !ok {
		return fallback, nil
	}
	return value, nil
}
