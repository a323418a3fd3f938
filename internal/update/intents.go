package update

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/todos/internal/dispatch"
	"github.com/sandeepkv93/todos/internal/presenter"
)

// runIntent returns a command that executes fn on the dispatch queue and
// reports back with an IntentDoneMsg.
func (m *Model) runIntent(label string, fn dispatch.Intent) tea.Cmd {
	m.Pending++
	ctx, queue, logger := m.ctx, m.queue, m.logger
	return func() tea.Msg {
		var err error
		if queue == nil {
			err = fn(ctx)
		} else {
			err = queue.Do(ctx, fn)
		}
		if err != nil {
			logger.WithField("intent", label).WithError(err).Warn("intent failed")
		}
		return IntentDoneMsg{Label: label, Err: err}
	}
}

func (m *Model) submitNewTask(title string) tea.Cmd {
	ctrl := m.ctrl
	return m.runIntent(fmt.Sprintf("added %q", title), func(ctx context.Context) error {
		return ctrl.SubmitNewTask(ctx, title)
	})
}

func (m *Model) clearCompleted() tea.Cmd {
	ctrl := m.ctrl
	n := m.board.Snapshot().Summary.DoneCount
	return m.runIntent(fmt.Sprintf("cleared %d completed", n), func(ctx context.Context) error {
		return ctrl.ClearCompleted(ctx)
	})
}

func (m *Model) setAllDone(done bool) tea.Cmd {
	ctrl := m.ctrl
	label := "marked all as complete"
	if !done {
		label = "marked all as active"
	}
	return m.runIntent(label, func(ctx context.Context) error {
		return ctrl.SetAllDone(ctx, done)
	})
}

func (m *Model) presenterIntent(id, label string, fn func(ctx context.Context, p *presenter.Presenter) error) tea.Cmd {
	p, ok := m.ctrl.Presenter(id)
	if !ok {
		m.Status = StatusBar{Text: "task no longer exists", IsError: true}
		return nil
	}
	return m.runIntent(label, func(ctx context.Context) error {
		return fn(ctx, p)
	})
}

func (m *Model) toggleTask(id string) tea.Cmd {
	return m.presenterIntent(id, "toggled", func(ctx context.Context, p *presenter.Presenter) error {
		return p.ToggleRequested(ctx)
	})
}

func (m *Model) destroyTask(id string) tea.Cmd {
	return m.presenterIntent(id, "deleted", func(ctx context.Context, p *presenter.Presenter) error {
		return p.DestroyRequested(ctx)
	})
}

func (m *Model) commitEdit(id, title string) tea.Cmd {
	return m.presenterIntent(id, "saved", func(ctx context.Context, p *presenter.Presenter) error {
		return p.EditCommitted(ctx, title)
	})
}
