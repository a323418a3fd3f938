package model

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultTitle is used when a task is created without a title.
const DefaultTitle = "empty todo..."

var (
	ErrMissingID    = errors.New("model: task id is required")
	ErrMissingTitle = errors.New("model: task title is required")
	ErrInvalidOrder = errors.New("model: task order must be positive")
)

type Task struct {
	ID    string
	Title string
	Order int
	Done  bool
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrMissingTitle
	}
	if t.Order < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidOrder, t.Order)
	}
	return nil
}

// Fields is a partial task. Nil pointers are fields the caller did not set.
type Fields struct {
	ID    *string
	Title *string
	Order *int
	Done  *bool
}

func Title(title string) Fields {
	return Fields{Title: &title}
}

func Done(done bool) Fields {
	return Fields{Done: &done}
}

func (f Fields) IsEmpty() bool {
	return f.ID == nil && f.Title == nil && f.Order == nil && f.Done == nil
}

// Apply merges title and done into t. Identity and order are never copied.
func (f Fields) Apply(t Task) Task {
	if f.Title != nil {
		t.Title = *f.Title
	}
	if f.Done != nil {
		t.Done = *f.Done
	}
	return t
}
