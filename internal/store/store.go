// Package store holds the ordered, persisted collection of tasks and
// announces every change on an event hub.
//
// Store-level events are emitted with the store's namespace as source:
// "add", "change", "remove", "update" and "reset". Task-level events use the
// task id as source: "change" and "destroy". Every mutation writes through
// the adapter before any event is emitted, and a failed write leaves the
// in-memory set exactly as it was.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sandeepkv93/todos/internal/event"
	"github.com/sandeepkv93/todos/internal/model"
	"github.com/sandeepkv93/todos/internal/storage"
)

const DefaultNamespace = "todos-backbone"

const (
	EventAdd     = "add"
	EventChange  = "change"
	EventDestroy = "destroy"
	EventRemove  = "remove"
	EventUpdate  = "update"
	EventReset   = "reset"
)

const tracerName = "github.com/sandeepkv93/todos/internal/store"

type Option func(*Store)

func WithNamespace(namespace string) Option {
	return func(s *Store) {
		if strings.TrimSpace(namespace) != "" {
			s.namespace = namespace
		}
	}
}

func WithLogger(logger *log.Entry) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Store) {
		if tp != nil {
			s.tracer = tp.Tracer(tracerName)
		}
	}
}

func WithIDGenerator(next func() string) Option {
	return func(s *Store) {
		if next != nil {
			s.newID = next
		}
	}
}

type Store struct {
	mu        sync.RWMutex
	tasks     map[string]model.Task
	namespace string
	hub       *event.Hub
	adapter   storage.Adapter
	logger    *log.Entry
	tracer    trace.Tracer
	newID     func() string
}

func New(hub *event.Hub, adapter storage.Adapter, opts ...Option) *Store {
	s := &Store{
		tasks:     make(map[string]model.Task),
		namespace: DefaultNamespace,
		hub:       hub,
		adapter:   adapter,
		logger:    log.NewEntry(log.StandardLogger()),
		tracer:    otel.GetTracerProvider().Tracer(tracerName),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithField("namespace", s.namespace)
	return s
}

func (s *Store) Hub() *event.Hub { return s.hub }

func (s *Store) SourceID() string { return s.namespace }

// TaskSourceID is the hub source carrying the change and destroy events of
// one task. Ids are only unique within a store, so the source is scoped by
// namespace.
func (s *Store) TaskSourceID(id string) string { return s.namespace + "/" + id }

func (s *Store) Namespace() string { return s.namespace }

func (s *Store) Create(ctx context.Context, fields model.Fields) (model.Task, error) {
	ctx, span := s.startSpan(ctx, "create", "")
	defer span.End()

	if err := validateCreate(fields); err != nil {
		return model.Task{}, s.fail(span, "create", "", err)
	}

	s.mu.Lock()
	task := fields.Apply(model.Task{
		ID:    s.newID(),
		Title: model.DefaultTitle,
		Order: s.nextOrderLocked(),
	})
	if _, exists := s.tasks[task.ID]; exists {
		s.mu.Unlock()
		return model.Task{}, s.fail(span, "create", task.ID, &ValidationError{Field: "id", Message: "generated id already in use"})
	}
	s.tasks[task.ID] = task
	if err := s.adapter.WriteOne(ctx, s.namespace, task.ID, toRecord(task)); err != nil {
		delete(s.tasks, task.ID)
		s.mu.Unlock()
		return model.Task{}, s.fail(span, "create", task.ID, &StorageError{Op: "create", ID: task.ID, Err: err})
	}
	s.mu.Unlock()

	span.SetAttributes(attribute.String("todos.task_id", task.ID), attribute.Int("todos.order", task.Order))
	s.logger.WithFields(log.Fields{"op": "create", "task_id": task.ID, "order": task.Order}).Debug("task created")
	s.hub.Emit(s.namespace, EventAdd, task)
	s.hub.Emit(s.namespace, EventUpdate, task)
	return task, nil
}

// Update merges fields into the task with the given id. An absent id is
// reported before the fields are checked.
func (s *Store) Update(ctx context.Context, id string, fields model.Fields) (model.Task, error) {
	return s.mutate(ctx, "update", id, func(model.Task) (model.Fields, error) {
		return fields, validatePatch(fields)
	})
}

// Toggle flips done on the task with the given id.
func (s *Store) Toggle(ctx context.Context, id string) (model.Task, error) {
	return s.mutate(ctx, "toggle", id, func(current model.Task) (model.Fields, error) {
		return model.Done(!current.Done), nil
	})
}

func (s *Store) mutate(ctx context.Context, op, id string, patch func(model.Task) (model.Fields, error)) (model.Task, error) {
	ctx, span := s.startSpan(ctx, op, id)
	defer span.End()

	s.mu.Lock()
	current, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		return model.Task{}, s.fail(span, op, id, &NotFoundError{ID: id})
	}
	fields, err := patch(current)
	if err != nil {
		s.mu.Unlock()
		return model.Task{}, s.fail(span, op, id, err)
	}
	next := fields.Apply(current)
	s.tasks[id] = next
	if err := s.adapter.WriteOne(ctx, s.namespace, id, toRecord(next)); err != nil {
		s.tasks[id] = current
		s.mu.Unlock()
		return model.Task{}, s.fail(span, op, id, &StorageError{Op: op, ID: id, Err: err})
	}
	s.mu.Unlock()

	s.logger.WithFields(log.Fields{"op": op, "task_id": id}).Debug("task changed")
	s.hub.Emit(s.TaskSourceID(id), EventChange, next)
	s.hub.Emit(s.namespace, EventChange, next)
	return next, nil
}

// Destroy removes the task from memory and storage. Destroying an id twice
// returns a NotFoundError.
func (s *Store) Destroy(ctx context.Context, id string) error {
	ctx, span := s.startSpan(ctx, "destroy", id)
	defer span.End()

	s.mu.Lock()
	current, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		return s.fail(span, "destroy", id, &NotFoundError{ID: id})
	}
	delete(s.tasks, id)
	if err := s.adapter.DeleteOne(ctx, s.namespace, id); err != nil {
		s.tasks[id] = current
		s.mu.Unlock()
		return s.fail(span, "destroy", id, &StorageError{Op: "destroy", ID: id, Err: err})
	}
	s.mu.Unlock()

	s.logger.WithFields(log.Fields{"op": "destroy", "task_id": id}).Debug("task destroyed")
	s.hub.Emit(s.TaskSourceID(id), EventDestroy, current)
	s.hub.Emit(s.namespace, EventRemove, current)
	s.hub.Emit(s.namespace, EventUpdate, current)
	return nil
}

// Load replaces the in-memory set with what the adapter holds and emits a
// single reset event carrying the tasks in order.
func (s *Store) Load(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "load", "")
	defer span.End()

	s.mu.Lock()
	recs, err := s.adapter.ReadAll(ctx, s.namespace)
	if err != nil {
		s.mu.Unlock()
		return s.fail(span, "load", "", &StorageError{Op: "load", Err: err})
	}
	next := make(map[string]model.Task, len(recs))
	for _, rec := range recs {
		task := fromRecord(rec)
		if err := task.Validate(); err != nil {
			s.logger.WithFields(log.Fields{"op": "load", "task_id": rec.ID}).WithError(err).Warn("skipping invalid record")
			continue
		}
		next[task.ID] = task
	}

	s.tasks = next
	snapshot := s.sortedLocked()
	s.mu.Unlock()

	span.SetAttributes(attribute.Int("todos.size", len(snapshot)))
	s.logger.WithFields(log.Fields{"op": "load", "size": len(snapshot)}).Debug("tasks loaded")
	s.hub.Emit(s.namespace, EventReset, snapshot)
	return nil
}

func (s *Store) Get(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	return task, ok
}

// All returns every task sorted by order.
func (s *Store) All() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked()
}

func (s *Store) Done() []model.Task {
	return s.where(true)
}

func (s *Store) Remaining() []model.Task {
	return s.where(false)
}

func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// NextOrder is one more than the highest order currently held, or 1 when
// the store is empty. Deleting the highest task makes its order available
// again.
func (s *Store) NextOrder() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextOrderLocked()
}

func (s *Store) where(done bool) []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Task, 0)
	for _, task := range s.sortedLocked() {
		if task.Done == done {
			out = append(out, task)
		}
	}
	return out
}

func (s *Store) nextOrderLocked() int {
	max := 0
	for _, task := range s.tasks {
		if task.Order > max {
			max = task.Order
		}
	}
	return max + 1
}

func (s *Store) sortedLocked() []model.Task {
	out := make([]model.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		out = append(out, task)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order == out[j].Order {
			return out[i].ID < out[j].ID
		}
		return out[i].Order < out[j].Order
	})
	return out
}

func (s *Store) startSpan(ctx context.Context, op, id string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String("todos.namespace", s.namespace)}
	if id != "" {
		attrs = append(attrs, attribute.String("todos.task_id", id))
	}
	return s.tracer.Start(ctx, "store."+op, trace.WithAttributes(attrs...))
}

func (s *Store) fail(span trace.Span, op, id string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	entry := s.logger.WithFields(log.Fields{"op": op, "task_id": id}).WithError(err)
	if _, ok := err.(*StorageError); ok {
		entry.Warn("storage operation failed")
	} else {
		entry.Debug("operation rejected")
	}
	return err
}

func validateCreate(fields model.Fields) error {
	if fields.ID != nil {
		return &ValidationError{Field: "id", Message: "identity is assigned by the store"}
	}
	if fields.Order != nil {
		return &ValidationError{Field: "order", Message: "order is assigned by the store"}
	}
	return validateTitle(fields)
}

func validatePatch(fields model.Fields) error {
	if fields.ID != nil {
		return &ValidationError{Field: "id", Message: "identity cannot change"}
	}
	if fields.Order != nil {
		return &ValidationError{Field: "order", Message: "order cannot change"}
	}
	return validateTitle(fields)
}

func validateTitle(fields model.Fields) error {
	if fields.Title != nil && strings.TrimSpace(*fields.Title) == "" {
		return &ValidationError{Field: "title", Message: "must not be empty"}
	}
	return nil
}

func toRecord(t model.Task) storage.Record {
	return storage.Record{ID: t.ID, Title: t.Title, Order: t.Order, Done: t.Done}
}

func fromRecord(r storage.Record) model.Task {
	return model.Task{ID: r.ID, Title: r.Title, Order: r.Order, Done: r.Done}
}
