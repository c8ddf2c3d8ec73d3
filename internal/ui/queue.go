package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/grabbit/internal/auth"
	"github.com/desertthunder/grabbit/internal/models"
	"github.com/desertthunder/grabbit/internal/queue"
)

// queueView enumerates the main surface's sub-views.
type queueView int

const (
	jobListView queueView = iota
	addLinkView
)

// QueueModel is the main window: the full queue with session controls.
type QueueModel struct {
	ctx     context.Context
	session *auth.Manager
	mirror  *queue.Mirror

	view    queueView
	width   int
	height  int
	jobList list.Model
	input   textinput.Model
	status  string
	err     error

	pushes chan models.QueueSnapshot
	sub    *queue.Subscription

	help help.Model
	keys queueKeyMap
}

type queueKeyMap struct {
	add      key.Binding
	remove   key.Binding
	clearOld key.Binding
	clearAll key.Binding
	start    key.Binding
	refresh  key.Binding
	login    key.Binding
	logout   key.Binding
	back     key.Binding
	quit     key.Binding
}

func newQueueKeyMap() queueKeyMap {
	return queueKeyMap{
		add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add link"),
		),
		remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "remove"),
		),
		clearOld: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear done"),
		),
		clearAll: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "clear all"),
		),
		start: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start"),
		),
		refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		login: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "login"),
		),
		logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "logout"),
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

func (k queueKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.add, k.remove, k.start, k.quit}
}

func (k queueKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.add, k.remove, k.clearOld, k.clearAll},
		{k.start, k.refresh},
		{k.login, k.logout, k.back, k.quit},
	}
}

// jobItem wraps [models.DownloadJob] to implement list.Item.
type jobItem struct {
	job models.DownloadJob
}

func (i jobItem) FilterValue() string { return i.job.DisplayTitle() }
func (i jobItem) Title() string       { return i.job.DisplayTitle() }
func (i jobItem) Description() string {
	switch i.job.Status {
	case models.StatusDownloading, models.StatusConverting:
		desc := fmt.Sprintf("%s %.0f%%", i.job.Status, i.job.Progress)
		if i.job.Message != "" {
			desc = fmt.Sprintf("%s • %s", desc, i.job.Message)
		}
		return desc
	case models.StatusError:
		if i.job.Err != "" {
			return fmt.Sprintf("error • %s", i.job.Err)
		}
		return "error"
	default:
		return fmt.Sprintf("%s • %s", i.job.Status, i.job.Service.DisplayName())
	}
}

type snapshotMsg models.QueueSnapshot

type actionDoneMsg struct {
	status string
	err    error
}

type loginDoneMsg struct {
	err error
}

// NewQueueModel creates the main surface and subscribes it to mirror pushes.
func NewQueueModel(ctx context.Context, session *auth.Manager, mirror *queue.Mirror) *QueueModel {
	input := textinput.New()
	input.Placeholder = "https://open.spotify.com/track/..."
	input.CharLimit = 512

	m := &QueueModel{
		ctx:     ctx,
		session: session,
		mirror:  mirror,
		jobList: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		input:   input,
		pushes:  make(chan models.QueueSnapshot, 16),
		help:    help.New(),
		keys:    newQueueKeyMap(),
	}
	m.jobList.Title = "Download Queue"
	m.jobList.SetShowHelp(false)

	m.sub = mirror.Subscribe(func(s models.QueueSnapshot) {
		select {
		case m.pushes <- s:
		default:
		}
	})

	return m
}

func (m *QueueModel) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), m.waitForPush())
}

func (m *QueueModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.jobList.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case tea.KeyMsg:
		if m.view == addLinkView {
			return m.handleAddLinkKeys(msg)
		}
		return m.handleListKeys(msg)

	case snapshotMsg:
		m.applySnapshot(models.QueueSnapshot(msg))
		return m, m.waitForPush()

	case actionDoneMsg:
		m.err = msg.err
		m.status = msg.status
		return m, nil

	case loginDoneMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = "signed in"
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.jobList, cmd = m.jobList.Update(msg)
	return m, cmd
}

func (m *QueueModel) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.sub.Unsubscribe()
		return m, tea.Quit

	case key.Matches(msg, m.keys.add):
		m.view = addLinkView
		m.input.Reset()
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.remove):
		if item, ok := m.jobList.SelectedItem().(jobItem); ok {
			return m, m.actionCmd("removed job", func(ctx context.Context) error {
				return m.mirror.RemoveJob(ctx, item.job.ID)
			})
		}
		return m, nil

	case key.Matches(msg, m.keys.clearOld):
		return m, m.actionCmd("cleared finished jobs", func(ctx context.Context) error {
			return m.mirror.ClearCompleted(ctx)
		})

	case key.Matches(msg, m.keys.clearAll):
		return m, m.actionCmd("cleared the queue", func(ctx context.Context) error {
			return m.mirror.ClearAll(ctx)
		})

	case key.Matches(msg, m.keys.start):
		return m, m.actionCmd("processing started", func(ctx context.Context) error {
			return m.mirror.StartProcessing(ctx)
		})

	case key.Matches(msg, m.keys.refresh):
		return m, m.refreshCmd()

	case key.Matches(msg, m.keys.login):
		return m, m.loginCmd()

	case key.Matches(msg, m.keys.logout):
		m.session.Logout()
		m.status = "signed out"
		return m, nil
	}

	var cmd tea.Cmd
	m.jobList, cmd = m.jobList.Update(msg)
	return m, cmd
}

func (m *QueueModel) handleAddLinkKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = jobListView
		m.input.Blur()
		return m, nil

	case msg.Type == tea.KeyEnter:
		link := m.input.Value()
		m.view = jobListView
		m.input.Blur()
		return m, m.actionCmd("queued", func(ctx context.Context) error {
			return m.mirror.Enqueue(ctx, link)
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *QueueModel) View() string {
	header := styles.title.Render("grabbit")

	session := styles.warn.Render("signed out • press l to login")
	if s := m.session.Session(); s != nil {
		session = styles.ok.Render(fmt.Sprintf("signed in as %s", s.Email))
	}

	license := styles.warn.Render("license: unchecked")
	if status := m.session.License(); status != nil {
		if status.IsValid {
			license = styles.ok.Render(fmt.Sprintf("license: %s", status.Status))
		} else {
			license = styles.err.Render(fmt.Sprintf("license: %s • register at %s", status.Status, status.RegistrationURL))
		}
	}

	body := m.jobList.View()
	if !m.mirror.HasSnapshot() {
		body = styles.help.Render("Waiting for the download daemon...")
	}
	if m.view == addLinkView {
		body = fmt.Sprintf("Paste a link to download:\n\n%s\n\n%s",
			m.input.View(), styles.help.Render("enter to queue • esc to cancel"))
	}

	footer := ""
	if m.err != nil {
		footer = styles.err.Render(fmt.Sprintf("error: %v", m.err))
	} else if m.status != "" {
		footer = styles.help.Render(m.status)
	}

	return fmt.Sprintf("%s\n%s\n%s\n\n%s\n\n%s\n%s",
		header, session, license, body, footer, m.help.View(m.keys))
}

func (m *QueueModel) applySnapshot(snapshot models.QueueSnapshot) {
	items := make([]list.Item, len(snapshot.Jobs))
	for i, job := range snapshot.Jobs {
		items[i] = jobItem{job: job}
	}
	m.jobList.SetItems(items)
	m.jobList.Title = fmt.Sprintf("Download Queue • %d active • %d queued • %d done",
		snapshot.ActiveCount, snapshot.QueuedCount, snapshot.CompletedCount)
}

func (m *QueueModel) waitForPush() tea.Cmd {
	return func() tea.Msg {
		snapshot, ok := <-m.pushes
		if !ok {
			return nil
		}
		return snapshotMsg(snapshot)
	}
}

// refreshCmd pulls from the daemon; the resulting push arrives through the
// subscription channel like any other snapshot.
func (m *QueueModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.mirror.Refresh(m.ctx); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{}
	}
}

func (m *QueueModel) actionCmd(status string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(m.ctx); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: status}
	}
}

func (m *QueueModel) loginCmd() tea.Cmd {
	return func() tea.Msg {
		return loginDoneMsg{err: m.session.BeginLogin(m.ctx)}
	}
}
