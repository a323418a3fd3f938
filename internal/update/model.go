package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	log "github.com/sirupsen/logrus"

	"github.com/sandeepkv93/todos/internal/controller"
	"github.com/sandeepkv93/todos/internal/dispatch"
	"github.com/sandeepkv93/todos/internal/views"
)

type Mode string

const (
	ModeBrowse  Mode = "browse"
	ModeCapture Mode = "capture"
	ModeEdit    Mode = "edit"
	ModePalette Mode = "palette"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type Notification struct {
	Body  string
	Level string
	At    time.Time
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

// Deps wires the model to the list controller and the board it renders
// from. Queue may be nil, in which case intents run on the command
// goroutine directly.
type Deps struct {
	Context    context.Context
	Controller *controller.Controller
	Board      *views.Board
	Queue      *dispatch.Queue
	Logger     *log.Entry
	Title      string
	ShowHelp   bool
}

type Model struct {
	Mode          Mode
	Cursor        int
	EditingID     string
	Palette       CommandPaletteState
	HelpVisible   bool
	Notifications []Notification
	Status        StatusBar
	Quitting      bool
	LastError     error
	// Pending counts intents submitted but not yet reported back.
	Pending       int

	ctx    context.Context
	ctrl   *controller.Controller
	board  *views.Board
	queue  *dispatch.Queue
	logger *log.Entry
	title  string
	keys   keyMap

	newInput     textinput.Model
	editInput    textinput.Model
	commandInput textinput.Model
	helpModel    help.Model
}

// IntentDoneMsg reports the outcome of an intent that ran on the queue.
type IntentDoneMsg struct {
	Label string
	Err   error
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

func NewModel(deps Deps) Model {
	ctx := deps.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	board := deps.Board
	if board == nil {
		board = views.NewBoard()
	}
	title := deps.Title
	if title == "" {
		title = "todos"
	}

	m := Model{
		Mode:        ModeBrowse,
		HelpVisible: deps.ShowHelp,
		ctx:         ctx,
		ctrl:        deps.Controller,
		board:       board,
		queue:       deps.Queue,
		logger:      logger,
		title:       title,
		keys:        defaultKeyMap(),
	}
	m.initBubbleComponents()
	if len(board.Snapshot().Items) == 0 {
		m.enterCapture()
	}
	return m
}

func (m *Model) initBubbleComponents() {
	m.newInput = newTextInput("> ", "What needs to be done?")
	m.editInput = newTextInput("edit> ", "")
	m.commandInput = newTextInput("/", "add, toggle n, edit n title, rm n, clear, all, none")
	m.helpModel = help.New()
}

func newTextInput(prompt, placeholder string) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = 256
	in.Width = 48
	in.Cursor.SetMode(cursor.CursorStatic)
	return in
}
