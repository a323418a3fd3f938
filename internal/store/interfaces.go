package store

import (
	"context"

	"github.com/sandeepkv93/todos/internal/event"
)

// Observable is implemented by anything that announces its changes on a hub.
type Observable interface {
	Hub() *event.Hub
	SourceID() string
	TaskSourceID(id string) string
}

// Persistable is implemented by anything that can rehydrate itself from
// durable storage.
type Persistable interface {
	Namespace() string
	Load(ctx context.Context) error
}

var (
	_ Observable  = (*Store)(nil)
	_ Persistable = (*Store)(nil)
)
