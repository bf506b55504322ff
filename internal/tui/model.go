// Package tui renders a conversation controller as a full-screen terminal
// chat.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/medassist/medchat/internal/model/assistant"
	"github.com/medassist/medchat/internal/model/chat"
	chatservice "github.com/medassist/medchat/internal/service/chat"
	"github.com/medassist/medchat/internal/ui/scroll"
)

const (
	headerHeight = 4
	inputHeight  = 3
	footerHeight = 2
	minViewport  = 5
)

type (
	eventMsg struct{ ev chatservice.Event }
	sentMsg  struct{}
)

// Model is the bubbletea model. The transcript is rebuilt from controller
// events delivered on the program loop.
type Model struct {
	ctx        context.Context
	controller *chatservice.Controller
	profile    assistant.Profile
	events     <-chan chatservice.Event

	messages []chat.Message
	loading  bool

	input   textinput.Model
	spinner spinner.Model
	vp      *viewport.Model

	feed     *feed
	scroller *scroll.AutoScroller

	width  int
	height int
}

// New subscribes to controller for the lifetime of ctx.
func New(ctx context.Context, controller *chatservice.Controller, profile assistant.Profile) Model {
	input := textinput.New()
	input.Placeholder = profile.Placeholder
	input.CharLimit = profile.MaxInput
	input.Prompt = "› "
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Ellipsis

	f := &feed{}
	snapshot := controller.Snapshot()

	return Model{
		ctx:        ctx,
		controller: controller,
		profile:    profile,
		events:     controller.Watch(ctx, 16),
		messages:   snapshot.Messages,
		loading:    snapshot.IsLoading,
		input:      input,
		spinner:    sp,
		feed:       f,
		// the viewport is created on the first WindowSizeMsg and attached then
		scroller: scroll.Follow(f, nil),
	}
}

// Run starts the program in the alternate screen and blocks until it exits.
func Run(ctx context.Context, controller *chatservice.Controller, profile assistant.Profile) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(New(ctx, controller, profile), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listen())
}

// listen waits for the next controller event.
func (m Model) listen() tea.Cmd {
	events, ctx := m.events, m.ctx
	return func() tea.Msg {
		select {
		case ev := <-events:
			return eventMsg{ev: ev}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) send(text string) tea.Cmd {
	controller, ctx := m.controller, m.ctx
	return func() tea.Msg {
		controller.Send(ctx, text)
		return sentMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.scroller.Stop()
			return m, tea.Quit
		case tea.KeyEnter:
			cmd := m.submit()
			return m, cmd
		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
			if m.vp != nil {
				var cmd tea.Cmd
				*m.vp, cmd = m.vp.Update(msg)
				return m, cmd
			}
		}
		if !m.loading {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case eventMsg:
		m.apply(msg.ev)
		cmds = append(cmds, m.listen())
		if msg.ev.Type == chatservice.EventStatus && msg.ev.IsLoading {
			cmds = append(cmds, m.spinner.Tick)
		}

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case sentMsg:
		// state already arrived through events
	}

	return m, tea.Batch(cmds...)
}

// submit sends the input as typed unless it is blank or a reply is pending.
func (m *Model) submit() tea.Cmd {
	text := m.input.Value()
	if m.loading || strings.TrimSpace(text) == "" {
		return nil
	}
	m.input.Reset()
	return m.send(text)
}

func (m *Model) apply(ev chatservice.Event) {
	switch ev.Type {
	case chatservice.EventMessage:
		if ev.Message != nil {
			m.messages = append(m.messages, *ev.Message)
		}
	case chatservice.EventStatus:
		m.loading = ev.IsLoading
		if m.loading {
			m.input.Blur()
		} else {
			m.input.Focus()
		}
	}
	m.refresh()
	m.feed.publish(ev)
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height

	vpHeight := height - headerHeight - inputHeight - footerHeight - 1
	if vpHeight < minViewport {
		vpHeight = minViewport
	}

	if m.vp == nil {
		vp := viewport.New(width, vpHeight)
		m.vp = &vp
		m.scroller.Attach(viewportScroller{vp: m.vp})
	} else {
		m.vp.Width = width
		m.vp.Height = vpHeight
	}
	m.input.Width = width - 6

	m.refresh()
	m.scroller.ScrollToBottom()
}

func (m *Model) refresh() {
	if m.vp == nil {
		return
	}
	m.vp.SetContent(renderMessages(m.messages, m.profile, m.width))
}

// viewportScroller adapts the bubbles viewport to scroll.Viewport.
type viewportScroller struct {
	vp *viewport.Model
}

func (v viewportScroller) ScrollToBottom() {
	v.vp.GotoBottom()
}

// feed re-publishes controller events on the program loop so observers can
// touch model state without locking.
type feed struct {
	observers []chatservice.Observer
}

func (f *feed) Subscribe(fn chatservice.Observer) func() {
	f.observers = append(f.observers, fn)
	idx := len(f.observers) - 1
	return func() { f.observers[idx] = nil }
}

func (f *feed) publish(ev chatservice.Event) {
	for _, fn := range f.observers {
		if fn != nil {
			fn(ev)
		}
	}
}
