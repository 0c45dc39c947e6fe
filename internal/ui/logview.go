package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
)

const logRefresh = 500 * time.Millisecond

type logKeyMap struct {
	Quit   key.Binding
	Follow key.Binding
	Top    key.Binding
	Bottom key.Binding
}

func defaultLogKeyMap() logKeyMap {
	return logKeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Follow: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "toggle follow"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
	}
}

type logTickMsg time.Time

// logChangedMsg reports a write to the followed file.
type logChangedMsg struct{}

type logContentMsg struct {
	content string
	err     error
}

// logViewModel pages through one instance log, re-reading it while
// following so output from a running instance shows up.
type logViewModel struct {
	path     string
	viewport viewport.Model
	keys     logKeyMap
	follow   bool
	err      error
	ready    bool
	// changes carries watcher events; nil falls back to polling.
	changes <-chan fsnotify.Event
}

func newLogViewModel(path string, follow bool, changes <-chan fsnotify.Event) logViewModel {
	return logViewModel{
		path:     path,
		viewport: viewport.New(80, 20),
		keys:     defaultLogKeyMap(),
		follow:   follow,
		changes:  changes,
	}
}

func (m logViewModel) load() tea.Cmd {
	path := m.path
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		return logContentMsg{content: string(data), err: err}
	}
}

func logTick() tea.Cmd {
	return tea.Tick(logRefresh, func(t time.Time) tea.Msg { return logTickMsg(t) })
}

func (m logViewModel) waitForChange() tea.Cmd {
	changes := m.changes
	return func() tea.Msg {
		for ev := range changes {
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				return logChangedMsg{}
			}
		}
		return nil
	}
}

// next schedules the following refresh trigger.
func (m logViewModel) next() tea.Cmd {
	if m.changes != nil {
		return m.waitForChange()
	}
	return logTick()
}

func (m logViewModel) Init() tea.Cmd {
	return tea.Batch(m.load(), m.next())
}

func (m logViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Follow):
			m.follow = !m.follow
			if m.follow {
				m.viewport.GotoBottom()
			}
			return m, nil
		case key.Matches(msg, m.keys.Top):
			m.follow = false
			m.viewport.GotoTop()
			return m, nil
		case key.Matches(msg, m.keys.Bottom):
			m.viewport.GotoBottom()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 3 // title and footer
		m.ready = true

	case logTickMsg, logChangedMsg:
		cmds = append(cmds, m.next())
		if m.follow {
			cmds = append(cmds, m.load())
		}

	case logContentMsg:
		m.err = msg.err
		if msg.err == nil {
			m.viewport.SetContent(msg.content)
			if m.follow {
				m.viewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m logViewModel) View() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render(filepath.Base(m.path))
	mode := "paused"
	if m.follow {
		mode = "following"
	}
	footer := promptDimStyle.Render(fmt.Sprintf("%3.f%% • %s • %s: %s  %s: %s  %s: %s",
		m.viewport.ScrollPercent()*100, mode,
		m.keys.Follow.Help().Key, m.keys.Follow.Help().Desc,
		m.keys.Top.Help().Key, m.keys.Top.Help().Desc,
		m.keys.Quit.Help().Key, m.keys.Quit.Help().Desc))
	if m.err != nil {
		footer = lipgloss.NewStyle().Foreground(errorColor).Render(m.err.Error())
	}
	return title + "\n" + m.viewport.View() + "\n" + footer
}

// ViewLog opens an instance log in a pager. Without a terminal, or when
// plain is set, the file is copied to Out.
func ViewLog(path string, follow, plain bool) error {
	if plain || !Interactive() {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(Out, f)
		return err
	}

	var changes <-chan fsnotify.Event
	if w, err := fsnotify.NewWatcher(); err == nil {
		defer w.Close()
		go func() {
			for range w.Errors {
			}
		}()
		if err := w.Add(path); err == nil {
			changes = w.Events
		}
	}
	_, err := tea.NewProgram(newLogViewModel(path, follow, changes), tea.WithAltScreen()).Run()
	return err
}
