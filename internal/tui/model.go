// ABOUTME: Bubble Tea model for the single-screen notes client.
// ABOUTME: Login/register form when logged out; list, add, edit and delete when logged in.

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/harper/notes/internal/models"
	"github.com/harper/notes/internal/session"
	"github.com/harper/notes/internal/state"
)

// Auth is the session manager surface used by the screen.
type Auth interface {
	Login(ctx context.Context, email, password string) (session.Session, error)
	Register(ctx context.Context, email, password string) (session.Session, error)
	Logout() error
	IsAuthenticated() bool
}

// Notes is the synchronizer surface used by the screen.
type Notes interface {
	LoadAll(ctx context.Context) ([]models.Note, error)
	Create(ctx context.Context, title, content string) (models.Note, error)
	BeginEdit(ref string) (*models.EditDraft, error)
	SetDraft(title, content string) error
	CancelEdit()
	SaveDraft(ctx context.Context) (models.Note, error)
	Delete(ctx context.Context, id string) error
}

type mode int

const (
	modeAuth mode = iota
	modeList
	modeAdd
	modeEdit
	modeConfirmDelete
)

type opKind int

const (
	opLogin opKind = iota
	opRegister
	opLoad
	opCreate
	opSave
	opDelete
	opLogout
)

// opDoneMsg reports the completion of a network operation.
type opDoneMsg struct {
	op  opKind
	err error
}

// stateChangedMsg is delivered after any shared state mutation.
type stateChangedMsg struct {
	event state.Event
}

type Model struct {
	ctx   context.Context
	st    *state.State
	auth  Auth
	notes Notes

	events      chan state.Event
	unsubscribe func()

	mode     mode
	cursor   int
	pending  int
	deleteID string

	email     textinput.Model
	password  textinput.Model
	authFocus int

	title     textinput.Model
	content   textarea.Model
	formFocus int

	spinner spinner.Model
}

// New builds the screen and subscribes it to st. Call Close when done.
func New(ctx context.Context, st *state.State, auth Auth, notes Notes) Model {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254
	email.Width = 40
	email.Prompt = "Email:    "
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.Width = 40
	password.Prompt = "Password: "

	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 200
	title.Width = 60

	content := textarea.New()
	content.Placeholder = "Content"
	content.ShowLineNumbers = false
	content.SetWidth(60)
	content.SetHeight(8)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	events := make(chan state.Event, 64)
	unsubscribe := st.Subscribe(func(ev state.Event) {
		select {
		case events <- ev:
		default:
		}
	})

	m := Model{
		ctx:         ctx,
		st:          st,
		auth:        auth,
		notes:       notes,
		events:      events,
		unsubscribe: unsubscribe,
		email:       email,
		password:    password,
		title:       title,
		content:     content,
		spinner:     sp,
	}
	if auth.IsAuthenticated() {
		m.mode = modeList
	}
	return m
}

// Close detaches the screen from state notifications.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Run shows the screen until the user quits or ctx ends.
func Run(ctx context.Context, st *state.State, auth Auth, notes Notes) error {
	m := New(ctx, st, auth, notes)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func waitForEvent(events <-chan state.Event) tea.Cmd {
	return func() tea.Msg {
		return stateChangedMsg{event: <-events}
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, waitForEvent(m.events), m.spinner.Tick}
	if m.mode == modeList {
		cmds = append(cmds, m.loadCmd())
	}
	return tea.Batch(cmds...)
}

// --- operations ---

func (m Model) run(op opKind, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

func (m Model) loadCmd() tea.Cmd {
	return m.run(opLoad, func(ctx context.Context) error {
		_, err := m.notes.LoadAll(ctx)
		return err
	})
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	return m.run(opLogin, func(ctx context.Context) error {
		_, err := m.auth.Login(ctx, email, password)
		return err
	})
}

func (m Model) registerCmd(email, password string) tea.Cmd {
	return m.run(opRegister, func(ctx context.Context) error {
		_, err := m.auth.Register(ctx, email, password)
		return err
	})
}

func (m Model) createCmd(title, content string) tea.Cmd {
	return m.run(opCreate, func(ctx context.Context) error {
		_, err := m.notes.Create(ctx, title, content)
		return err
	})
}

func (m Model) saveCmd() tea.Cmd {
	return m.run(opSave, func(ctx context.Context) error {
		_, err := m.notes.SaveDraft(ctx)
		return err
	})
}

func (m Model) deleteCmd(id string) tea.Cmd {
	return m.run(opDelete, func(ctx context.Context) error {
		return m.notes.Delete(ctx, id)
	})
}

func (m Model) logoutCmd() tea.Cmd {
	return m.run(opLogout, func(context.Context) error {
		return m.auth.Logout()
	})
}

// start marks an operation in flight and returns its command.
func (m *Model) start(cmd tea.Cmd) tea.Cmd {
	m.pending++
	return cmd
}

// --- update ---

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.mode {
		case modeAuth:
			return m.updateAuth(msg)
		case modeList:
			return m.updateList(msg)
		case modeAdd, modeEdit:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		}

	case opDoneMsg:
		return m.finish(msg)

	case stateChangedMsg:
		m.syncMode()
		return m, waitForEvent(m.events)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateInputs(msg)
}

// syncMode falls back to the login form once the session is gone.
func (m *Model) syncMode() {
	if m.mode != modeAuth && !m.auth.IsAuthenticated() {
		m.mode = modeAuth
		m.password.SetValue("")
		m.focusAuth(0)
	}
}

func (m Model) finish(msg opDoneMsg) (tea.Model, tea.Cmd) {
	if m.pending > 0 {
		m.pending--
	}

	switch msg.op {
	case opLogin, opRegister:
		if msg.err == nil {
			m.mode = modeList
			m.cursor = 0
			m.password.SetValue("")
			return m, m.start(m.loadCmd())
		}
	case opCreate, opSave:
		if msg.err == nil {
			m.mode = modeList
			m.resetForm()
		}
	case opDelete:
		m.mode = modeList
		m.deleteID = ""
	}

	m.syncMode()
	m.clampCursor()
	return m, nil
}

func (m *Model) focusAuth(i int) {
	m.authFocus = i
	if i == 0 {
		m.email.Focus()
		m.password.Blur()
	} else {
		m.password.Focus()
		m.email.Blur()
	}
}

func (m *Model) focusForm(i int) {
	m.formFocus = i
	if i == 0 {
		m.title.Focus()
		m.content.Blur()
	} else {
		m.content.Focus()
		m.title.Blur()
	}
}

func (m *Model) resetForm() {
	m.title.SetValue("")
	m.content.SetValue("")
	m.focusForm(0)
}

func (m *Model) clampCursor() {
	n := len(m.st.Notes())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selected() (models.Note, bool) {
	notes := m.st.Notes()
	if m.cursor < 0 || m.cursor >= len(notes) {
		return models.Note{}, false
	}
	return notes[m.cursor], true
}

func (m Model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.focusAuth(1 - m.authFocus)
		return m, nil
	case "enter":
		if m.authFocus == 0 {
			m.focusAuth(1)
			return m, nil
		}
		return m, m.start(m.loginCmd(m.email.Value(), m.password.Value()))
	case "ctrl+r":
		return m, m.start(m.registerCmd(m.email.Value(), m.password.Value()))
	}
	return m.updateInputs(msg)
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "j", "down":
		m.cursor++
		m.clampCursor()
	case "k", "up":
		m.cursor--
		m.clampCursor()
	case "a":
		m.mode = modeAdd
		m.resetForm()
		return m, textinput.Blink
	case "e", "enter":
		n, ok := m.selected()
		if !ok {
			return m, nil
		}
		d, err := m.notes.BeginEdit(n.ID)
		if err != nil {
			m.st.SetError(err.Error())
			return m, nil
		}
		m.mode = modeEdit
		m.title.SetValue(d.Title)
		m.content.SetValue(d.Content)
		m.focusForm(0)
		return m, textinput.Blink
	case "d":
		if n, ok := m.selected(); ok {
			m.deleteID = n.ID
			m.mode = modeConfirmDelete
		}
	case "r":
		return m, m.start(m.loadCmd())
	case "L":
		return m, m.start(m.logoutCmd())
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.mode == modeEdit {
			m.notes.CancelEdit()
		}
		m.mode = modeList
		m.resetForm()
		return m, nil
	case "tab", "shift+tab":
		m.focusForm(1 - m.formFocus)
		return m, nil
	case "ctrl+s":
		title, content := m.title.Value(), m.content.Value()
		if m.mode == modeAdd {
			return m, m.start(m.createCmd(title, content))
		}
		if err := m.notes.SetDraft(title, content); err != nil {
			m.st.SetError(err.Error())
			return m, nil
		}
		return m, m.start(m.saveCmd())
	}
	return m.updateInputs(msg)
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id := m.deleteID
		m.mode = modeList
		return m, m.start(m.deleteCmd(id))
	case "n", "N", "esc":
		m.mode = modeList
		m.deleteID = ""
	}
	return m, nil
}

// updateInputs forwards msg to whichever input has focus.
func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.mode {
	case modeAuth:
		if m.authFocus == 0 {
			m.email, cmd = m.email.Update(msg)
		} else {
			m.password, cmd = m.password.Update(msg)
		}
	case modeAdd, modeEdit:
		if m.formFocus == 0 {
			m.title, cmd = m.title.Update(msg)
		} else {
			m.content, cmd = m.content.Update(msg)
		}
	}
	return m, cmd
}

// --- view ---

func (m Model) View() string {
	snap := m.st.Snapshot()

	var sb strings.Builder
	sb.WriteString(captionStyle.Render("notes"))
	sb.WriteString("\n")

	if snap.Notice != "" {
		sb.WriteString(noticeStyle.Render(snap.Notice) + "\n")
	}
	if snap.Error != "" {
		sb.WriteString(errorStyle.Render(snap.Error) + "\n")
	}
	if snap.Loading || m.pending > 0 {
		sb.WriteString(helpStyle.Render(m.spinner.View()+" Loading...") + "\n")
	}

	switch m.mode {
	case modeAuth:
		sb.WriteString(m.viewAuth())
	case modeList, modeConfirmDelete:
		sb.WriteString(m.viewList(snap))
	case modeAdd, modeEdit:
		sb.WriteString(m.viewForm())
	}
	return sb.String()
}

func (m Model) viewAuth() string {
	body := fmt.Sprintf("%s\n\n%s\n%s",
		titleStyle.Render("Login"),
		m.email.View(),
		m.password.View())
	help := "enter: login • ctrl+r: register • tab: switch field • ctrl+c: quit"
	return bodyStyle.Render(body) + "\n" + helpStyle.Render(help) + "\n"
}

func (m Model) viewList(snap state.Snapshot) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("Your notes (%d)", len(snap.Notes))))
	sb.WriteString("\n\n")

	if len(snap.Notes) == 0 {
		sb.WriteString(emptyStyle.Render("No notes yet. Press a to add one."))
	}
	for i, n := range snap.Notes {
		line := fmt.Sprintf("%s  %s", faintStyle.Render(n.ShortID()), n.Title)
		if i == m.cursor {
			line = selectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		sb.WriteString(line + "\n")
		if i == m.cursor && n.Content != "" {
			sb.WriteString(faintStyle.Render("    "+firstLine(n.Content)) + "\n")
		}
	}

	help := "j/k: move • a: add • e: edit • d: delete • r: reload • L: logout • q: quit"
	if m.mode == modeConfirmDelete {
		help = "Delete this note? y/n"
	}
	return bodyStyle.Render(sb.String()) + "\n" + helpStyle.Render(help) + "\n"
}

func (m Model) viewForm() string {
	heading := "New note"
	if m.mode == modeEdit {
		heading = "Edit note"
	}
	body := fmt.Sprintf("%s\n\n%s\n\n%s",
		titleStyle.Render(heading),
		m.title.View(),
		m.content.View())
	help := "ctrl+s: save • esc: cancel • tab: switch field"
	return bodyStyle.Render(body) + "\n" + helpStyle.Render(help) + "\n"
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
