package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/todos/internal/commands"
	"github.com/sandeepkv93/todos/internal/views"
)

func (m *Model) openPalette() {
	m.Mode = ModePalette
	m.Palette.Active = true
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Focus()
	m.Status = StatusBar{Text: "command palette active", IsError: false}
}

func (m *Model) closePalette() {
	m.Mode = ModeBrowse
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed", IsError: false}
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	}
	m.commandInput, _ = m.commandInput.Update(msg)
	m.Palette.Input = m.commandInput.Value()
	return m, nil
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.closePalette()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	items := m.board.Snapshot().Items
	target := func(pos int) (views.BoardItem, error) {
		if pos < 1 || pos > len(items) {
			return views.BoardItem{}, &commands.CommandError{
				Code:    commands.ErrCodeInvalidArgument,
				Message: fmt.Sprintf("no task #%d (list has %d)", pos, len(items)),
			}
		}
		return items[pos-1], nil
	}

	var next tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			next = m.submitNewTask(a.Title)
			return commands.Result{Message: fmt.Sprintf("adding %q", a.Title)}, nil
		},
		Toggle: func(t commands.TargetArgs) (commands.Result, error) {
			item, err := target(t.Position)
			if err != nil {
				return commands.Result{}, err
			}
			next = m.toggleTask(item.ID)
			return commands.Result{Message: fmt.Sprintf("toggling #%d", t.Position)}, nil
		},
		Edit: func(e commands.EditArgs) (commands.Result, error) {
			item, err := target(e.Position)
			if err != nil {
				return commands.Result{}, err
			}
			next = m.commitEdit(item.ID, e.Title)
			return commands.Result{Message: fmt.Sprintf("renaming #%d", e.Position)}, nil
		},
		Remove: func(t commands.TargetArgs) (commands.Result, error) {
			item, err := target(t.Position)
			if err != nil {
				return commands.Result{}, err
			}
			next = m.destroyTask(item.ID)
			return commands.Result{Message: fmt.Sprintf("deleting #%d", t.Position)}, nil
		},
		Clear: func() (commands.Result, error) {
			next = m.clearCompleted()
			return commands.Result{Message: "clearing completed"}, nil
		},
		SetAll: func(done bool) (commands.Result, error) {
			next = m.setAllDone(done)
			return commands.Result{Message: "updating all tasks"}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify(err.Error(), "error")
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message, IsError: false}
	return m, next
}

func (m Model) renderCommandPalette() string {
	if !m.Palette.Active {
		return ""
	}
	return views.RenderCommandPalette(true, m.commandInput.Value())
}
