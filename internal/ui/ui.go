package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Dicklesworthstone/rktop/internal/model"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

// Model renders live snapshots from the sampler in a scrollable view.
type Model struct {
	latest model.Snapshot
	stream <-chan model.Snapshot
	vp     viewport.Model
}

func New(stream <-chan model.Snapshot) *Model {
	vp := viewport.New(defaultWidth, defaultHeight)
	vp.KeyMap = scrollKeys()
	vp.MouseWheelEnabled = true
	m := &Model{latest: model.Zero(), stream: stream, vp: vp}
	m.refresh()
	return m
}

// Messages
type (
	snapshotMsg model.Snapshot
	closedMsg   struct{}
)

// waitForSnapshot blocks on the stream and hands the next snapshot to Update.
func waitForSnapshot(stream <-chan model.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-stream
		if !ok {
			return closedMsg{}
		}
		return snapshotMsg(snap)
	}
}

func (m *Model) Init() tea.Cmd { return waitForSnapshot(m.stream) }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.vp.Width, m.vp.Height = msg.Width, msg.Height
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Top):
			m.vp.GotoTop()
			return m, nil
		case key.Matches(msg, keys.Bottom):
			m.vp.GotoBottom()
			return m, nil
		}
	case snapshotMsg:
		m.latest = model.Snapshot(msg)
		m.refresh()
		return m, waitForSnapshot(m.stream)
	case closedMsg:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

// refresh re-renders the latest snapshot. The scroll offset is kept, clamped
// to the new content length.
func (m *Model) refresh() {
	offset := m.vp.YOffset
	m.vp.SetContent(strings.Join(Render(m.latest), "\n"))
	m.vp.SetYOffset(offset)
}

func (m *Model) View() string { return m.vp.View() }

// Latest returns the snapshot currently on screen.
func (m *Model) Latest() model.Snapshot { return m.latest }

// Run starts the Bubble Tea program and blocks until the user quits, the
// stream closes or ctx is cancelled.
func Run(ctx context.Context, stream <-chan model.Snapshot) error {
	prog := tea.NewProgram(New(stream),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err := prog.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
