package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/rktop/internal/model"
)

func isQuit(t *testing.T, cmd tea.Cmd) bool {
	t.Helper()
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestModel_Quit(t *testing.T) {
	for _, k := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyRunes, Runes: []rune{'Q'}},
		{Type: tea.KeyCtrlC},
	} {
		m := New(make(chan model.Snapshot))
		_, cmd := m.Update(k)
		assert.True(t, isQuit(t, cmd), k.String())
	}
}

func TestModel_ReceivesSnapshots(t *testing.T) {
	ch := make(chan model.Snapshot, 1)
	m := New(ch)

	snap := sampleSnapshot()
	ch <- snap
	msg := m.Init()()
	require.IsType(t, snapshotMsg{}, msg)

	_, cmd := m.Update(msg)
	assert.NotNil(t, cmd)
	assert.Equal(t, snap.Device, m.Latest().Device)
	assert.Contains(t, m.View(), "radxa,rock-5b")
}

func TestModel_StreamClosed(t *testing.T) {
	ch := make(chan model.Snapshot)
	close(ch)
	m := New(ch)

	msg := m.Init()()
	assert.Equal(t, closedMsg{}, msg)
	_, cmd := m.Update(msg)
	assert.True(t, isQuit(t, cmd))
}

func TestModel_ScrollSurvivesRefresh(t *testing.T) {
	m := New(make(chan model.Snapshot))
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 10})
	m.Update(snapshotMsg(sampleSnapshot()))

	for range 3 {
		m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	require.Equal(t, 3, m.vp.YOffset)

	m.Update(snapshotMsg(sampleSnapshot()))
	assert.Equal(t, 3, m.vp.YOffset)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	assert.Equal(t, 0, m.vp.YOffset)
}

func TestModel_OffsetClampedWhenContentShrinks(t *testing.T) {
	m := New(make(chan model.Snapshot))
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 10})
	m.Update(snapshotMsg(sampleSnapshot()))
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}})
	bottom := m.vp.YOffset
	require.Positive(t, bottom)

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 200})
	assert.Equal(t, 0, m.vp.YOffset)
}
