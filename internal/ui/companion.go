package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/grabbit/internal/drop"
	"github.com/desertthunder/grabbit/internal/models"
	"github.com/desertthunder/grabbit/internal/queue"
	"github.com/desertthunder/grabbit/internal/shared"
)

// CompanionModel is the small companion surface: a drop zone with a paste
// shortcut and compact queue counters. Links land in the same queue the
// main surface shows.
type CompanionModel struct {
	ctx    context.Context
	bridge *drop.Bridge
	mirror *queue.Mirror

	counts models.QueueSnapshot
	input  textinput.Model
	typing bool
	status string
	err    error

	pushes chan models.QueueSnapshot
	sub    *queue.Subscription

	help help.Model
	keys companionKeyMap
}

type companionKeyMap struct {
	paste key.Binding
	typed key.Binding
	back  key.Binding
	quit  key.Binding
}

func newCompanionKeyMap() companionKeyMap {
	return companionKeyMap{
		paste: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "paste link"),
		),
		typed: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "type link"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k companionKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.paste, k.typed, k.quit}
}

func (k companionKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.paste, k.typed, k.back, k.quit}}
}

type dropHandledMsg struct {
	status string
	err    error
}

// NewCompanionModel creates the companion surface and subscribes it to
// mirror pushes so its counters track the main surface.
func NewCompanionModel(ctx context.Context, bridge *drop.Bridge, mirror *queue.Mirror) *CompanionModel {
	input := textinput.New()
	input.Placeholder = "https://..."
	input.CharLimit = 512

	m := &CompanionModel{
		ctx:    ctx,
		bridge: bridge,
		mirror: mirror,
		input:  input,
		pushes: make(chan models.QueueSnapshot, 16),
		help:   help.New(),
		keys:   newCompanionKeyMap(),
	}

	m.sub = mirror.Subscribe(func(s models.QueueSnapshot) {
		select {
		case m.pushes <- s:
		default:
		}
	})

	return m
}

func (m *CompanionModel) Init() tea.Cmd {
	return m.waitForPush()
}

func (m *CompanionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.typing {
			return m.handleTypingKeys(msg)
		}

		switch {
		case key.Matches(msg, m.keys.quit):
			m.sub.Unsubscribe()
			return m, tea.Quit

		case key.Matches(msg, m.keys.paste):
			return m, m.pasteCmd()

		case key.Matches(msg, m.keys.typed):
			m.typing = true
			m.input.Reset()
			m.input.Focus()
			return m, textinput.Blink
		}
		return m, nil

	case snapshotMsg:
		m.counts = models.QueueSnapshot(msg)
		return m, m.waitForPush()

	case dropHandledMsg:
		m.err = msg.err
		m.status = msg.status
		if errors.Is(msg.err, shared.ErrManualEntry) {
			// nothing usable on the clipboard, fall through to typing
			m.err = nil
			m.typing = true
			m.input.Reset()
			m.input.Focus()
			return m, textinput.Blink
		}
		return m, nil
	}

	return m, nil
}

func (m *CompanionModel) handleTypingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.typing = false
		m.input.Blur()
		return m, nil

	case msg.Type == tea.KeyEnter:
		link := m.input.Value()
		m.typing = false
		m.input.Blur()
		return m, func() tea.Msg {
			if err := m.mirror.Enqueue(m.ctx, link); err != nil {
				return dropHandledMsg{err: err}
			}
			return dropHandledMsg{status: "queued"}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *CompanionModel) View() string {
	zone := styles.zone.Render("Drop a link here\nor press p to paste")
	if m.bridge.Dragging() {
		zone = styles.zone.Render(styles.ok.Render("Release to queue"))
	}
	if m.typing {
		zone = styles.zone.Render(fmt.Sprintf("%s\n%s",
			m.input.View(), styles.help.Render("enter to queue • esc to cancel")))
	}

	counters := styles.help.Render(fmt.Sprintf("%d active • %d queued • %d done • %d failed",
		m.counts.ActiveCount, m.counts.QueuedCount, m.counts.CompletedCount, m.counts.ErrorCount))

	footer := ""
	if m.err != nil {
		footer = styles.err.Render(fmt.Sprintf("error: %v", m.err))
	} else if m.status != "" {
		footer = styles.ok.Render(m.status)
	}

	return fmt.Sprintf("%s\n\n%s\n%s\n%s",
		zone, counters, footer, m.help.View(m.keys))
}

func (m *CompanionModel) waitForPush() tea.Cmd {
	return func() tea.Msg {
		snapshot, ok := <-m.pushes
		if !ok {
			return nil
		}
		return snapshotMsg(snapshot)
	}
}

func (m *CompanionModel) pasteCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.bridge.Tap(m.ctx); err != nil {
			return dropHandledMsg{err: err}
		}
		return dropHandledMsg{status: "queued from clipboard"}
	}
}
