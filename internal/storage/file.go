package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
)

type fileDocument map[string]map[string]Record

// FileAdapter keeps every namespace in one JSON document on disk. Each write
// rewrites the document through a temp file and a rename.
type FileAdapter struct {
	mu   sync.Mutex
	path string
}

func NewFileAdapter(path string) (*FileAdapter, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, os.ErrInvalid
	}
	return &FileAdapter{path: trimmed}, nil
}

func (f *FileAdapter) ReadAll(_ context.Context, namespace string) ([]Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(doc[namespace]))
	for _, rec := range doc[namespace] {
		out = append(out, rec)
	}
	sortRecords(out)
	return out, nil
}

func (f *FileAdapter) WriteOne(_ context.Context, namespace, id string, rec Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}
	if doc[namespace] == nil {
		doc[namespace] = make(map[string]Record)
	}
	rec.ID = id
	doc[namespace][id] = rec
	return f.persist(doc)
}

func (f *FileAdapter) DeleteOne(_ context.Context, namespace, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := doc[namespace][id]; !ok {
		return ErrNotFound
	}
	delete(doc[namespace], id)
	return f.persist(doc)
}

func (f *FileAdapter) load() (fileDocument, error) {
	doc := make(fileDocument)
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return nil, err
	}
	if strings.TrimSpace(string(raw)) == "" {
		return doc, nil
	}
	if err := sonic.ConfigStd.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (f *FileAdapter) persist(doc fileDocument) error {
	dir := filepath.Dir(f.path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	payload, err := sonic.ConfigStd.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, append(payload, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
