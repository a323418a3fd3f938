package update

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/sandeepkv93/todos/internal/controller"
	"github.com/sandeepkv93/todos/internal/dispatch"
	"github.com/sandeepkv93/todos/internal/event"
	"github.com/sandeepkv93/todos/internal/storage"
	"github.com/sandeepkv93/todos/internal/store"
	"github.com/sandeepkv93/todos/internal/views"
)

type fixture struct {
	store *store.Store
	board *views.Board
	ctrl  *controller.Controller
}

func setup(t *testing.T, titles ...string) fixture {
	t.Helper()
	logger, _ := test.NewNullLogger()
	hub := event.NewHub(logger)
	s := store.New(hub, storage.NewMemoryAdapter(), store.WithLogger(log.NewEntry(logger)))
	board := views.NewBoard()
	ctrl, err := controller.New(t.Context(), hub, s, board)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	t.Cleanup(ctrl.Close)
	for _, title := range titles {
		if err := ctrl.SubmitNewTask(t.Context(), title); err != nil {
			t.Fatalf("seed %q: %v", title, err)
		}
	}
	return fixture{store: s, board: board, ctrl: ctrl}
}

func (f fixture) model(t *testing.T, queue *dispatch.Queue) Model {
	t.Helper()
	logger, _ := test.NewNullLogger()
	return NewModel(Deps{
		Context:    t.Context(),
		Controller: f.ctrl,
		Board:      f.board,
		Queue:      queue,
		Logger:     log.NewEntry(logger),
		Title:      "todos-test",
	})
}

// send runs msg through Update and feeds an intent result back in.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	next := updated.(Model)
	if cmd == nil {
		return next
	}
	if done, ok := cmd().(IntentDoneMsg); ok {
		updated, _ = next.Update(done)
		next = updated.(Model)
	}
	return next
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	return send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	escKey   = tea.KeyMsg{Type: tea.KeyEsc}
	spaceKey = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

func TestNewModelStartsInCaptureWhenEmpty(t *testing.T) {
	m := setup(t).model(t, nil)
	if m.Mode != ModeCapture {
		t.Fatalf("expected capture mode, got %q", m.Mode)
	}

	m = setup(t, "a").model(t, nil)
	if m.Mode != ModeBrowse {
		t.Fatalf("expected browse mode with tasks, got %q", m.Mode)
	}
}

func TestCaptureCreatesTask(t *testing.T) {
	f := setup(t)
	m := f.model(t, nil)

	m = typeText(t, m, "buy milk")
	m = send(t, m, enterKey)

	all := f.store.All()
	if len(all) != 1 || all[0].Title != "buy milk" {
		t.Fatalf("unexpected tasks: %#v", all)
	}
	if m.newInput.Value() != "" || m.Mode != ModeCapture {
		t.Fatalf("expected cleared input in capture mode, value=%q mode=%q", m.newInput.Value(), m.Mode)
	}
	if m.Status.IsError || !strings.Contains(m.Status.Text, "buy milk") || m.Pending != 0 {
		t.Fatalf("unexpected status: %+v pending=%d", m.Status, m.Pending)
	}
}

func TestCaptureBlankIsIgnored(t *testing.T) {
	f := setup(t)
	m := f.model(t, nil)
	m = typeText(t, m, "   ")
	updated, cmd := m.Update(enterKey)
	if cmd != nil {
		t.Fatal("expected no intent for blank title")
	}
	if updated.(Model).Pending != 0 || f.store.Size() != 0 {
		t.Fatalf("expected nothing created, size=%d", f.store.Size())
	}
}

func TestBrowseToggleAndClearCompleted(t *testing.T) {
	f := setup(t, "a", "b", "c")
	m := f.model(t, nil)

	m = send(t, m, spaceKey)
	m = send(t, m, runeKey('j'))
	m = send(t, m, runeKey('j'))
	m = send(t, m, runeKey('x'))
	if got := len(f.store.Done()); got != 2 {
		t.Fatalf("expected 2 done tasks, got %d", got)
	}
	if f.board.Snapshot().Summary.DoneCount != 2 {
		t.Fatalf("unexpected summary: %#v", f.board.Snapshot().Summary)
	}

	m = send(t, m, runeKey('c'))
	items := f.board.Snapshot().Items
	if len(items) != 1 || items[0].Title != "b" {
		t.Fatalf("unexpected items after clear: %#v", items)
	}
	if m.Cursor != 0 {
		t.Fatalf("expected cursor clamped to 0, got %d", m.Cursor)
	}
}

func TestToggleAllFollowsSelectAll(t *testing.T) {
	f := setup(t, "a", "b")
	m := f.model(t, nil)

	m = send(t, m, runeKey('a'))
	if len(f.store.Remaining()) != 0 || !f.board.Snapshot().SelectAll {
		t.Fatal("expected every task done")
	}
	send(t, m, runeKey('a'))
	if len(f.store.Done()) != 0 || f.board.Snapshot().SelectAll {
		t.Fatal("expected every task active again")
	}
}

func TestEditCommitAndCancel(t *testing.T) {
	f := setup(t, "draft")
	m := f.model(t, nil)
	id := f.store.All()[0].ID

	m = send(t, m, runeKey('e'))
	if m.Mode != ModeEdit || m.EditingID != id {
		t.Fatalf("expected edit mode on %s, got %q %q", id, m.Mode, m.EditingID)
	}
	p, _ := f.ctrl.Presenter(id)
	if !p.Editing() {
		t.Fatal("expected presenter to be editing")
	}

	m = typeText(t, m, " v2")
	m = send(t, m, escKey)
	if got, _ := f.store.Get(id); got.Title != "draft" || p.Editing() || m.Mode != ModeBrowse {
		t.Fatalf("expected cancel to keep title, got %q", got.Title)
	}

	m = send(t, m, runeKey('e'))
	m = typeText(t, m, " v2  ")
	m = send(t, m, enterKey)
	if got, _ := f.store.Get(id); got.Title != "draft v2" {
		t.Fatalf("expected trimmed new title, got %q", got.Title)
	}
	if m.Mode != ModeBrowse || m.EditingID != "" {
		t.Fatalf("expected browse mode after commit, got %q", m.Mode)
	}
}

func TestEditCommitBlankDeletes(t *testing.T) {
	f := setup(t, "temporary")
	m := f.model(t, nil)
	m = send(t, m, runeKey('e'))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})
	send(t, m, enterKey)
	if f.store.Size() != 0 {
		t.Fatalf("expected task deleted, size=%d", f.store.Size())
	}
}

func TestDeleteKey(t *testing.T) {
	f := setup(t, "a", "b")
	m := f.model(t, nil)
	m = send(t, m, runeKey('G'))
	m = send(t, m, runeKey('d'))
	if f.store.Size() != 1 || f.store.All()[0].Title != "a" {
		t.Fatalf("unexpected tasks: %#v", f.store.All())
	}
	if m.Cursor != 0 {
		t.Fatalf("expected cursor clamped, got %d", m.Cursor)
	}
}

func TestPaletteCommands(t *testing.T) {
	f := setup(t, "a", "b")
	m := f.model(t, nil)

	m = send(t, m, runeKey('/'))
	if m.Mode != ModePalette || !m.Palette.Active {
		t.Fatalf("expected palette mode, got %q", m.Mode)
	}
	m = typeText(t, m, "toggle 2")
	m = send(t, m, enterKey)
	if m.Palette.Active || m.Mode != ModeBrowse {
		t.Fatal("expected palette to close after execute")
	}
	done := f.store.Done()
	if len(done) != 1 || done[0].Title != "b" {
		t.Fatalf("unexpected done tasks: %#v", done)
	}

	m = send(t, m, runeKey('/'))
	m = typeText(t, m, "edit 1 buy oat milk")
	m = send(t, m, enterKey)
	if f.store.All()[0].Title != "buy oat milk" {
		t.Fatalf("unexpected title: %q", f.store.All()[0].Title)
	}

	m = send(t, m, runeKey('/'))
	m = typeText(t, m, "rm 9")
	m = send(t, m, enterKey)
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "no task #9") {
		t.Fatalf("expected range error, got %+v", m.Status)
	}

	m = send(t, m, runeKey('/'))
	m = typeText(t, m, "add walk dog")
	m = send(t, m, enterKey)
	if f.store.Size() != 3 {
		t.Fatalf("expected 3 tasks, got %d", f.store.Size())
	}
}

func TestPaletteEscapeCloses(t *testing.T) {
	m := setup(t, "a").model(t, nil)
	m = send(t, m, runeKey('/'))
	m = typeText(t, m, "clear")
	m = send(t, m, escKey)
	if m.Palette.Active || m.Mode != ModeBrowse || m.Status.Text != "command palette closed" {
		t.Fatalf("unexpected state after esc: %+v", m)
	}
}

func TestIntentErrorShowsInStatus(t *testing.T) {
	m := setup(t).model(t, nil)
	m = send(t, m, IntentDoneMsg{Label: "x", Err: errors.New("boom")})
	if !m.Status.IsError || m.Status.Text != "boom" || m.LastError == nil {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
	if len(m.Notifications) != 1 || m.Notifications[0].Level != "error" {
		t.Fatalf("expected error notification, got %#v", m.Notifications)
	}

	m = send(t, m, ClearStatusMsg{})
	if m.Status.Text != "" {
		t.Fatalf("expected cleared status, got %+v", m.Status)
	}
}

func TestIntentsRunThroughQueue(t *testing.T) {
	logger, _ := test.NewNullLogger()
	q := dispatch.NewQueue(8, logger)
	q.Start()
	t.Cleanup(q.Stop)

	f := setup(t)
	m := f.model(t, q)
	m = typeText(t, m, "queued")
	send(t, m, enterKey)
	if f.store.Size() != 1 {
		t.Fatalf("expected task created through queue, size=%d", f.store.Size())
	}
	if q.Executed() != 1 {
		t.Fatalf("expected one executed intent, got %d", q.Executed())
	}
}

func TestQuitAndHelpKeys(t *testing.T) {
	m := setup(t, "a").model(t, nil)
	m = send(t, m, runeKey('?'))
	if !m.HelpVisible || !strings.Contains(m.View(), "help (browse)") {
		t.Fatal("expected help panel visible")
	}

	updated, cmd := m.Update(runeKey('q'))
	if !updated.(Model).Quitting || cmd == nil {
		t.Fatal("expected quit")
	}

	capture := setup(t).model(t, nil)
	updated, _ = capture.Update(runeKey('q'))
	if updated.(Model).Quitting {
		t.Fatal("q should be typed while capturing")
	}
	updated, cmd = capture.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !updated.(Model).Quitting || cmd == nil {
		t.Fatal("ctrl+c should always quit")
	}
}

func TestViewShowsListAndSummary(t *testing.T) {
	f := setup(t, "buy milk", "walk dog")
	m := f.model(t, nil)
	m = send(t, m, spaceKey)
	out := m.View()
	for _, want := range []string{"todos-test", "mode: browse", "buy milk", "walk dog", "1 item left", "Clear completed (1)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view:\n%s", want, out)
		}
	}
}
