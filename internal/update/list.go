package update

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/todos/internal/views"
)

func (m Model) handleBrowseKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	items := m.board.Snapshot().Items
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.Cursor > 0 {
			m.Cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.Cursor < len(items)-1 {
			m.Cursor++
		}
	case key.Matches(msg, m.keys.Top):
		m.Cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.Cursor = max(len(items)-1, 0)
	case key.Matches(msg, m.keys.New):
		m.enterCapture()
	case key.Matches(msg, m.keys.Toggle):
		if item, ok := m.selected(items); ok {
			return m, m.toggleTask(item.ID)
		}
	case key.Matches(msg, m.keys.Edit):
		if item, ok := m.selected(items); ok {
			m.enterEdit(item)
		}
	case key.Matches(msg, m.keys.Delete):
		if item, ok := m.selected(items); ok {
			return m, m.destroyTask(item.ID)
		}
	case key.Matches(msg, m.keys.ToggleAll):
		if len(items) > 0 {
			return m, m.setAllDone(!m.board.Snapshot().SelectAll)
		}
	case key.Matches(msg, m.keys.Clear):
		return m, m.clearCompleted()
	}
	return m, nil
}

func (m Model) handleCaptureKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.Mode = ModeBrowse
		m.newInput.Blur()
		m.newInput.SetValue("")
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		title := strings.TrimSpace(m.newInput.Value())
		m.newInput.SetValue("")
		if title == "" {
			return m, nil
		}
		return m, m.submitNewTask(title)
	}
	m.newInput, _ = m.newInput.Update(msg)
	return m, nil
}

func (m Model) handleEditKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		if p, ok := m.ctrl.Presenter(m.EditingID); ok {
			p.EditCancelled()
		}
		m.leaveEdit()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		id, title := m.EditingID, m.editInput.Value()
		m.leaveEdit()
		return m, m.commitEdit(id, title)
	}
	m.editInput, _ = m.editInput.Update(msg)
	return m, nil
}

func (m *Model) enterCapture() {
	m.Mode = ModeCapture
	m.newInput.Focus()
}

func (m *Model) enterEdit(item views.BoardItem) {
	p, ok := m.ctrl.Presenter(item.ID)
	if !ok {
		return
	}
	p.EditRequested()
	m.Mode = ModeEdit
	m.EditingID = item.ID
	m.editInput.SetValue(item.Title)
	m.editInput.CursorEnd()
	m.editInput.Focus()
}

func (m *Model) leaveEdit() {
	m.Mode = ModeBrowse
	m.EditingID = ""
	m.editInput.Blur()
	m.editInput.SetValue("")
}

func (m Model) selected(items []views.BoardItem) (views.BoardItem, bool) {
	if m.Cursor < 0 || m.Cursor >= len(items) {
		return views.BoardItem{}, false
	}
	return items[m.Cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.board.Snapshot().Items)
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}
