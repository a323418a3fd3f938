// Package presenter binds a single task to its rendered row.
package presenter

import (
	"context"
	"strings"
	"sync"

	"github.com/sandeepkv93/todos/internal/event"
	"github.com/sandeepkv93/todos/internal/model"
	"github.com/sandeepkv93/todos/internal/store"
	"github.com/sandeepkv93/todos/internal/views"
)

// Mutator is the subset of the store a presenter forwards intents to.
type Mutator interface {
	Toggle(ctx context.Context, id string) (model.Task, error)
	Update(ctx context.Context, id string, fields model.Fields) (model.Task, error)
	Destroy(ctx context.Context, id string) error
	// TaskSourceID names the hub source the task's events arrive on.
	TaskSourceID(id string) string
}

var _ Mutator = (*store.Store)(nil)

type Presenter struct {
	mu       sync.Mutex
	hub      *event.Hub
	mutator  Mutator
	renderer views.Renderer
	task     model.Task
	listener string
	editing  bool
	closed   bool
}

func New(hub *event.Hub, mutator Mutator, renderer views.Renderer, task model.Task) *Presenter {
	p := &Presenter{
		hub:      hub,
		mutator:  mutator,
		renderer: renderer,
		task:     task,
	}
	source := mutator.TaskSourceID(task.ID)
	p.listener = "presenter:" + source
	hub.Subscribe(p.listener, source, store.EventChange, p.onChange)
	hub.Subscribe(p.listener, source, store.EventDestroy, p.onDestroy)
	return p
}

func (p *Presenter) TaskID() string {
	return p.task.ID
}

// Task returns the last snapshot the presenter saw.
func (p *Presenter) Task() model.Task {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.task
}

func (p *Presenter) Editing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.editing
}

func (p *Presenter) Render() {
	p.renderer.RenderTask(p.task.ID, toView(p.Task()))
}

func (p *Presenter) ToggleRequested(ctx context.Context) error {
	_, err := p.mutator.Toggle(ctx, p.task.ID)
	return err
}

func (p *Presenter) EditRequested() {
	p.mu.Lock()
	p.editing = true
	p.mu.Unlock()
}

// EditCommitted saves the trimmed title. A blank title destroys the task.
func (p *Presenter) EditCommitted(ctx context.Context, title string) error {
	p.mu.Lock()
	p.editing = false
	p.mu.Unlock()

	title = strings.TrimSpace(title)
	if title == "" {
		return p.mutator.Destroy(ctx, p.task.ID)
	}
	_, err := p.mutator.Update(ctx, p.task.ID, model.Title(title))
	return err
}

func (p *Presenter) EditCancelled() {
	p.mu.Lock()
	p.editing = false
	p.mu.Unlock()
}

func (p *Presenter) DestroyRequested(ctx context.Context) error {
	return p.mutator.Destroy(ctx, p.task.ID)
}

// Close drops every subscription the presenter holds. It is safe to call
// more than once.
func (p *Presenter) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()
	p.hub.UnsubscribeAll(p.listener)
}

func (p *Presenter) onChange(e event.Event) {
	task, ok := e.Payload.(model.Task)
	if !ok {
		return
	}
	p.mu.Lock()
	p.task = task
	p.mu.Unlock()
	p.renderer.RenderTask(task.ID, toView(task))
}

func (p *Presenter) onDestroy(event.Event) {
	p.Close()
	p.renderer.RemoveTask(p.task.ID)
}

func toView(t model.Task) views.TaskView {
	return views.TaskView{Title: t.Title, Order: t.Order, Done: t.Done}
}
