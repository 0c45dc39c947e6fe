package ui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrInterrupted is returned when the user aborts a spinner with ctrl+c.
var ErrInterrupted = errors.New("interrupted")

type doneMsg struct{ err error }

type spinnerModel struct {
	title   string
	spinner spinner.Model
	result  <-chan error
	// cancel stops the work's context when the user aborts.
	cancel  context.CancelFunc
	err     error
	done    bool
	aborted bool
}

func newSpinnerModel(title string, result <-chan error, cancel context.CancelFunc) spinnerModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accentColor)
	return spinnerModel{title: title, spinner: sp, result: result, cancel: cancel}
}

func (m spinnerModel) Init() tea.Cmd {
	result := m.result
	return tea.Batch(m.spinner.Tick, func() tea.Msg { return doneMsg{err: <-result} })
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.done, m.err = true, msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.aborted = true
			m.cancel()
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done || m.aborted {
		return ""
	}
	return m.spinner.View() + " " + m.title + "\n"
}

// RunWithSpinner shows a spinner while work runs. Without a terminal, or
// when plain is set, it prints the title once and runs work directly.
//
// The terminal swallows SIGINT while the spinner is up, so ctrl+c cancels
// the context handed to work instead. RunWithSpinner returns only after work
// has returned.
func RunWithSpinner(ctx context.Context, title string, plain bool, work func(context.Context) error) error {
	if plain || !Interactive() {
		PrintInfo(title)
		return work(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	result := make(chan error, 1)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		result <- work(ctx)
	}()

	model, err := tea.NewProgram(newSpinnerModel(title, result, cancel), tea.WithOutput(Out)).Run()
	if err != nil {
		cancel()
		<-finished
		return err
	}
	m := model.(spinnerModel)
	if m.aborted {
		<-finished
		return ErrInterrupted
	}
	return m.err
}
