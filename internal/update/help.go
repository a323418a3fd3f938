package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/todos/internal/views"
)

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Top       key.Binding
	Bottom    key.Binding
	New       key.Binding
	Toggle    key.Binding
	Edit      key.Binding
	Delete    key.Binding
	ToggleAll key.Binding
	Clear     key.Binding
	Palette   key.Binding
	Help      key.Binding
	Quit      key.Binding
	Submit    key.Binding
	Cancel    key.Binding
	ForceQuit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/↑", "move up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/↓", "move down")),
		Top:       key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first task")),
		Bottom:    key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last task")),
		New:       key.NewBinding(key.WithKeys("n", "i"), key.WithHelp("n", "new task")),
		Toggle:    key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space/x", "toggle done")),
		Edit:      key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e/enter", "edit title")),
		Delete:    key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete task")),
		ToggleAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "mark all done/undone")),
		Clear:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear completed")),
		Palette:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "command palette")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	bindings := m.modeBindings()
	plain := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		plain = append(plain, fmt.Sprintf("- %s: %s", h.Key, h.Desc))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		Mode:     string(m.Mode),
		Bindings: plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: []key.Binding{m.keys.Help, m.keys.Quit},
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) modeBindings() []key.Binding {
	switch m.Mode {
	case ModeCapture, ModeEdit, ModePalette:
		return []key.Binding{m.keys.Submit, m.keys.Cancel, m.keys.ForceQuit}
	default:
		return []key.Binding{
			m.keys.Up, m.keys.Down, m.keys.Top, m.keys.Bottom,
			m.keys.New, m.keys.Toggle, m.keys.Edit, m.keys.Delete,
			m.keys.ToggleAll, m.keys.Clear, m.keys.Palette, m.keys.Help, m.keys.Quit,
		}
	}
}
