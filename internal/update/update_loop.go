package update

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/todos/internal/views"
)

const maxNotifications = 20

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(typed, m.keys.ForceQuit) {
			m.Quitting = true
			return m, tea.Quit
		}
		switch m.Mode {
		case ModeCapture:
			return m.handleCaptureKey(typed)
		case ModeEdit:
			return m.handleEditKey(typed)
		case ModePalette:
			return m.handlePaletteKey(typed)
		}

		switch {
		case key.Matches(typed, m.keys.Quit):
			m.Quitting = true
			return m, tea.Quit
		case key.Matches(typed, m.keys.Help):
			m.HelpVisible = !m.HelpVisible
			if m.HelpVisible {
				m.Status = StatusBar{Text: "help shown", IsError: false}
			} else {
				m.Status = StatusBar{Text: "help hidden", IsError: false}
			}
			return m, nil
		case key.Matches(typed, m.keys.Palette):
			m.openPalette()
			return m, nil
		}
		return m.handleBrowseKey(typed)
	case IntentDoneMsg:
		if m.Pending > 0 {
			m.Pending--
		}
		m.clampCursor()
		if typed.Err != nil {
			m.LastError = typed.Err
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify(typed.Err.Error(), "error")
			return m, nil
		}
		m.Status = StatusBar{Text: typed.Label, IsError: false}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		m.notify(typed.Text, levelFromError(typed.IsError))
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify(typed.Err.Error(), "error")
		}
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	snap := m.board.Snapshot()

	input := m.newInput.View()
	if m.Mode != ModeCapture {
		input = m.newInput.Prompt + m.newInput.Placeholder + " (press n)"
	}
	cursor := m.Cursor
	if m.Mode != ModeBrowse && m.Mode != ModeEdit {
		cursor = -1
	}
	list := views.RenderListPanel(views.ListPanelData{
		InputView: input,
		Snapshot:  snap,
		Cursor:    cursor,
		EditingID: m.EditingID,
		EditView:  m.editInput.View(),
	})

	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}
	if m.Pending > 0 {
		status = strings.TrimSpace(status + fmt.Sprintf(" (%d pending)", m.Pending))
	}

	side := strings.TrimSpace(strings.Join([]string{m.renderCommandPalette(), m.renderHelpIfVisible()}, "\n"))

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("%s | mode: %s | %s", m.title, m.Mode, views.SummaryLine(snap.Summary)),
		ListPane:     list,
		SidePane:     side,
		StatusLine:   status,
		StatusError:  m.Status.IsError,
		Notification: m.renderNotificationsView(),
		Footer:       "keys: n new | space toggle | e edit | d delete | a all | c clear | / cmd | ? help | q quit",
	})
}

func (m *Model) notify(body, level string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	m.Notifications = append(m.Notifications, Notification{Body: body, Level: level, At: time.Now().UTC()})
	if len(m.Notifications) > maxNotifications {
		m.Notifications = m.Notifications[len(m.Notifications)-maxNotifications:]
	}
}

func (m Model) renderNotificationsView() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	n := m.Notifications[len(m.Notifications)-1]
	return views.RenderNotification(n.Level, n.Body)
}

func levelFromError(isErr bool) string {
	if isErr {
		return "error"
	}
	return "info"
}
