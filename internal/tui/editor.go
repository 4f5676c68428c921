// Package tui is a terminal host for a diagram session: a textarea editor
// with a live preview URL, submit and cancel.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/corbenferris/figjam-plantuml/internal/events"
	"github.com/corbenferris/figjam-plantuml/internal/render"
	"github.com/corbenferris/figjam-plantuml/internal/session"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	urlStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// CommitFunc persists a committed state.
type CommitFunc func(ctx context.Context, state session.State) error

// Options configures the editor.
type Options struct {
	Title    string
	Server   string
	Initial  session.State
	Fetcher  render.Fetcher
	Debounce time.Duration
	Commit   CommitFunc
	Logger   *slog.Logger
}

type eventMsg struct {
	name    string
	payload any
}

type submitDoneMsg struct{ err error }

type commitDoneMsg struct{ err error }

// Model is the bubbletea model of the editor.
type Model struct {
	title    string
	sess     *session.Session
	commit   CommitFunc
	logger   *slog.Logger
	events   chan eventMsg
	done     chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	editor   textarea.Model
	spinner  spinner.Model
	preview  string
	busy     bool
	errMsg   string
	errStack string

	committed bool
	cancelled bool
}

// New opens a session seeded with opts.Initial and wraps it in an editor.
func New(opts Options) *Model {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		title:  opts.Title,
		commit: opts.Commit,
		logger: opts.Logger,
		events: make(chan eventMsg, 64),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
	if m.title == "" {
		m.title = "PlantUML"
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}

	m.sess = session.New(session.Options{
		Server:   opts.Server,
		Initial:  opts.Initial,
		Fetcher:  opts.Fetcher,
		Emitter:  events.EmitterFunc(m.emit),
		Debounce: opts.Debounce,
		Logger:   m.logger,
	})
	m.preview = m.sess.PreviewURL()

	m.editor = textarea.New()
	m.editor.ShowLineNumbers = true
	m.editor.CharLimit = 0
	m.editor.SetWidth(80)
	m.editor.SetHeight(16)
	m.editor.SetValue(m.sess.Text())
	m.editor.Focus()

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot
	m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	return m
}

// emit hands session events to the bubbletea loop.
func (m *Model) emit(name string, payload any) error {
	select {
	case m.events <- eventMsg{name: name, payload: payload}:
		return nil
	case <-m.done:
		return session.ErrClosed
	}
}

func (m *Model) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-m.events:
			return ev
		case <-m.done:
			return nil
		}
	}
}

// Session returns the underlying session.
func (m *Model) Session() *session.Session { return m.sess }

// Committed reports whether a diagram was committed and persisted.
func (m *Model) Committed() bool { return m.committed }

// Cancelled reports whether editing was abandoned.
func (m *Model) Cancelled() bool { return m.cancelled }

// Close tears the session down.
func (m *Model) Close() {
	m.sess.Close()
	m.cancel()
	select {
	case <-m.done:
	default:
		close(m.done)
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.listenForEvent())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlS:
			if m.busy {
				return m, nil
			}
			m.errMsg, m.errStack = "", ""
			return m, m.submit()
		case tea.KeyEsc, tea.KeyCtrlC:
			m.cancelled = true
			m.sess.Cancel()
			return m, tea.Quit
		}
		before := m.editor.Value()
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		if after := m.editor.Value(); after != before {
			m.sess.Input(after)
		}
		return m, cmd
	case eventMsg:
		return m, tea.Batch(m.applyEvent(msg), m.listenForEvent())
	case submitDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, session.ErrBusy) && !errors.Is(msg.err, session.ErrClosed) {
			m.logger.Debug("submission failed", "error", msg.err)
		}
		return m, nil
	case commitDoneMsg:
		if msg.err != nil {
			m.errMsg = "saving diagram failed"
			m.errStack = msg.err.Error()
			return m, nil
		}
		m.committed = true
		return m, tea.Quit
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 4 {
			m.editor.SetWidth(msg.Width - 2)
		}
		if msg.Height > 8 {
			m.editor.SetHeight(msg.Height - 7)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m *Model) applyEvent(ev eventMsg) tea.Cmd {
	switch ev.name {
	case events.Preview:
		if p, ok := ev.payload.(events.PreviewPayload); ok {
			m.preview = p.URL
		}
	case events.Busy:
		if p, ok := ev.payload.(events.BusyPayload); ok {
			m.busy = p.Busy
			if m.busy {
				return m.spinner.Tick
			}
		}
	case events.Error:
		if p, ok := ev.payload.(events.ErrorPayload); ok {
			m.errMsg, m.errStack = p.Message, p.Stack
		}
	case events.UpdateUML:
		if state, ok := ev.payload.(session.State); ok {
			m.preview = state.URL
			return m.persist(state)
		}
	}
	return nil
}

func (m *Model) submit() tea.Cmd {
	return func() tea.Msg {
		return submitDoneMsg{err: m.sess.Submit(m.ctx)}
	}
}

func (m *Model) persist(state session.State) tea.Cmd {
	return func() tea.Msg {
		if m.commit == nil {
			return commitDoneMsg{}
		}
		return commitDoneMsg{err: m.commit(m.ctx, state)}
	}
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(m.editor.View())
	b.WriteString("\n\n")

	if m.busy {
		b.WriteString(fmt.Sprintf("%s Rendering...", m.spinner.View()))
	} else {
		b.WriteString("Preview: " + urlStyle.Render(m.preview))
	}
	b.WriteString("\n")

	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg))
		b.WriteString("\n")
		if m.errStack != "" {
			b.WriteString(errorStyle.Render(m.errStack))
			b.WriteString("\n")
		}
	}

	b.WriteString(helpStyle.Render("ctrl+s update diagram • esc cancel"))
	b.WriteString("\n")
	return b.String()
}

// Run shows the editor until the diagram is committed or editing is
// cancelled.
func Run(m *Model) error {
	defer m.Close()
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running editor: %w", err)
	}
	return nil
}
