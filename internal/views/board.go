package views

import (
	"sort"
	"sync"
)

// Renderer receives presentation state pushed by presenters and the list
// controller. Implementations never call back into the store.
type Renderer interface {
	RenderTask(id string, t TaskView)
	RemoveTask(id string)
	RenderSummary(s Summary)
	SetSelectAll(checked bool)
}

type TaskView struct {
	Title string
	Order int
	Done  bool
}

type Summary struct {
	DoneCount      int
	RemainingCount int
	IsListNonEmpty bool
}

type BoardItem struct {
	ID string
	TaskView
}

type BoardSnapshot struct {
	Items     []BoardItem
	Summary   Summary
	SelectAll bool
}

// Board is a Renderer that keeps the last pushed state so a frame can be
// drawn from it at any time.
type Board struct {
	mu        sync.RWMutex
	items     map[string]TaskView
	summary   Summary
	selectAll bool
	version   uint64
}

func NewBoard() *Board {
	return &Board{items: make(map[string]TaskView)}
}

func (b *Board) RenderTask(id string, t TaskView) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items[id] = t
	b.version++
}

func (b *Board) RemoveTask(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.items, id)
	b.version++
}

func (b *Board) RenderSummary(s Summary) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.summary = s
	b.version++
}

func (b *Board) SetSelectAll(checked bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selectAll = checked
	b.version++
}

// Version increases on every push.
func (b *Board) Version() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// Snapshot returns the pushed items sorted by order.
func (b *Board) Snapshot() BoardSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	items := make([]BoardItem, 0, len(b.items))
	for id, view := range b.items {
		items = append(items, BoardItem{ID: id, TaskView: view})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Order == items[j].Order {
			return items[i].ID < items[j].ID
		}
		return items[i].Order < items[j].Order
	})
	return BoardSnapshot{Items: items, Summary: b.summary, SelectAll: b.selectAll}
}

var _ Renderer = (*Board)(nil)
