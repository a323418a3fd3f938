// Package controller coordinates the task list: it keeps one presenter per
// task, recomputes the summary after every store event and turns list level
// intents into store calls.
package controller

import (
	"context"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/sandeepkv93/todos/internal/event"
	"github.com/sandeepkv93/todos/internal/model"
	"github.com/sandeepkv93/todos/internal/presenter"
	"github.com/sandeepkv93/todos/internal/store"
	"github.com/sandeepkv93/todos/internal/views"
)

// TaskStore is what the controller needs from the store.
type TaskStore interface {
	presenter.Mutator
	store.Observable
	store.Persistable
	Create(ctx context.Context, fields model.Fields) (model.Task, error)
	All() []model.Task
	Done() []model.Task
	Remaining() []model.Task
	Size() int
}

var _ TaskStore = (*store.Store)(nil)

type Option func(*Controller)

func WithLogger(logger *log.Entry) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

type Controller struct {
	mu         sync.Mutex
	hub        *event.Hub
	store      TaskStore
	renderer   views.Renderer
	logger     *log.Entry
	listener   string
	presenters map[string]*presenter.Presenter
	summary    views.Summary
}

// New subscribes to the store and loads it. The returned controller is
// usable even when the load fails; the error is reported to the caller.
func New(ctx context.Context, hub *event.Hub, s TaskStore, renderer views.Renderer, opts ...Option) (*Controller, error) {
	c := &Controller{
		hub:        hub,
		store:      s,
		renderer:   renderer,
		listener:   "controller:" + s.SourceID(),
		logger:     log.NewEntry(log.StandardLogger()),
		presenters: make(map[string]*presenter.Presenter),
	}
	for _, opt := range opts {
		opt(c)
	}

	source := s.SourceID()
	hub.Subscribe(c.listener, source, store.EventAdd, c.onAdd)
	hub.Subscribe(c.listener, source, store.EventReset, c.onReset)
	hub.Subscribe(c.listener, source, store.EventRemove, c.onRemove)
	hub.Subscribe(c.listener, source, event.All, c.onAny)

	if err := s.Load(ctx); err != nil {
		c.logger.WithError(err).Error("initial load failed")
		c.refreshSummary()
		return c, err
	}
	return c, nil
}

// SubmitNewTask creates a task from the trimmed title. A blank title is
// ignored.
func (c *Controller) SubmitNewTask(ctx context.Context, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	_, err := c.store.Create(ctx, model.Title(title))
	return err
}

// ClearCompleted destroys every done task, one at a time, and stops at the
// first failure.
func (c *Controller) ClearCompleted(ctx context.Context) error {
	done := c.store.Done()
	for _, task := range done {
		if err := c.store.Destroy(ctx, task.ID); err != nil {
			return err
		}
	}
	c.logger.WithField("cleared", len(done)).Debug("completed tasks cleared")
	return nil
}

func (c *Controller) SetAllDone(ctx context.Context, done bool) error {
	for _, task := range c.store.All() {
		if _, err := c.store.Update(ctx, task.ID, model.Done(done)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) Presenter(id string) (*presenter.Presenter, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.presenters[id]
	return p, ok
}

func (c *Controller) Summary() views.Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summary
}

// Close removes the controller's subscriptions and those of every presenter
// it created.
func (c *Controller) Close() {
	c.hub.UnsubscribeAll(c.listener)
	c.mu.Lock()
	presenters := c.presenters
	c.presenters = make(map[string]*presenter.Presenter)
	c.mu.Unlock()
	for _, p := range presenters {
		p.Close()
	}
}

func (c *Controller) onAdd(e event.Event) {
	task, ok := e.Payload.(model.Task)
	if !ok {
		return
	}
	c.addPresenter(task)
}

func (c *Controller) onReset(e event.Event) {
	tasks, _ := e.Payload.([]model.Task)

	c.mu.Lock()
	old := c.presenters
	c.presenters = make(map[string]*presenter.Presenter, len(tasks))
	c.mu.Unlock()
	for id, p := range old {
		p.Close()
		c.renderer.RemoveTask(id)
	}

	for _, task := range tasks {
		c.addPresenter(task)
	}
	c.logger.WithField("size", len(tasks)).Debug("list rebuilt")
}

func (c *Controller) onRemove(e event.Event) {
	task, ok := e.Payload.(model.Task)
	if !ok {
		return
	}
	c.mu.Lock()
	p, ok := c.presenters[task.ID]
	delete(c.presenters, task.ID)
	c.mu.Unlock()
	if ok {
		p.Close()
	}
}

func (c *Controller) onAny(event.Event) {
	c.refreshSummary()
}

func (c *Controller) addPresenter(task model.Task) {
	c.mu.Lock()
	prev, exists := c.presenters[task.ID]
	c.mu.Unlock()
	if exists {
		prev.Close()
	}

	p := presenter.New(c.hub, c.store, c.renderer, task)
	c.mu.Lock()
	c.presenters[task.ID] = p
	c.mu.Unlock()
	p.Render()
}

func (c *Controller) refreshSummary() {
	remaining := len(c.store.Remaining())
	summary := views.Summary{
		DoneCount:      len(c.store.Done()),
		RemainingCount: remaining,
		IsListNonEmpty: c.store.Size() > 0,
	}
	c.mu.Lock()
	c.summary = summary
	c.mu.Unlock()
	c.renderer.RenderSummary(summary)
	c.renderer.SetSelectAll(remaining == 0)
}
