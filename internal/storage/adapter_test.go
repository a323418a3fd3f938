package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupSQLite(t *testing.T) *SQLAdapter {
	t.Helper()
	adapter, err := OpenSQLite(t.Context(), filepath.Join(t.TempDir(), "todos-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = adapter.Close() })
	return adapter
}

func setupRedis(t *testing.T) *RedisAdapter {
	t.Helper()
	m, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(m.Close)

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() {
		if cerr := client.Close(); cerr != nil {
			t.Logf("redis close: %v", cerr)
		}
	})
	adapter, err := NewRedisAdapter(client, "")
	if err != nil {
		t.Fatalf("new redis adapter: %v", err)
	}
	return adapter
}

func setupFile(t *testing.T) *FileAdapter {
	t.Helper()
	adapter, err := NewFileAdapter(filepath.Join(t.TempDir(), "nested", "todos.json"))
	if err != nil {
		t.Fatalf("new file adapter: %v", err)
	}
	return adapter
}

func TestAdapterContract(t *testing.T) {
	cases := []struct {
		name  string
		setup func(t *testing.T) Adapter
	}{
		{"sqlite", func(t *testing.T) Adapter { return setupSQLite(t) }},
		{"redis", func(t *testing.T) Adapter { return setupRedis(t) }},
		{"file", func(t *testing.T) Adapter { return setupFile(t) }},
		{"memory", func(t *testing.T) Adapter { return NewMemoryAdapter() }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			runAdapterContract(t, tc.setup(t))
		})
	}
}

func runAdapterContract(t *testing.T, adapter Adapter) {
	t.Helper()
	ctx := context.Background()

	empty, err := adapter.ReadAll(ctx, "todos")
	if err != nil {
		t.Fatalf("read empty namespace: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no records, got %#v", empty)
	}

	second := Record{ID: "b", Title: "write docs", Order: 2}
	first := Record{ID: "a", Title: "buy milk", Order: 1}
	if err := adapter.WriteOne(ctx, "todos", second.ID, second); err != nil {
		t.Fatalf("write second: %v", err)
	}
	if err := adapter.WriteOne(ctx, "todos", first.ID, first); err != nil {
		t.Fatalf("write first: %v", err)
	}
	if err := adapter.WriteOne(ctx, "other", "z", Record{ID: "z", Title: "elsewhere", Order: 1}); err != nil {
		t.Fatalf("write other namespace: %v", err)
	}

	first.Done = true
	first.Title = "buy oat milk"
	if err := adapter.WriteOne(ctx, "todos", first.ID, first); err != nil {
		t.Fatalf("upsert first: %v", err)
	}

	got, err := adapter.ReadAll(ctx, "todos")
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %#v", got)
	}
	if got[0] != first || got[1] != second {
		t.Fatalf("unexpected records: %#v", got)
	}

	if err := adapter.DeleteOne(ctx, "todos", "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := adapter.DeleteOne(ctx, "todos", "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if err := adapter.DeleteOne(ctx, "todos", "z"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected namespaces to be isolated, got %v", err)
	}

	got, err = adapter.ReadAll(ctx, "todos")
	if err != nil {
		t.Fatalf("read after delete: %v", err)
	}
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("unexpected records after delete: %#v", got)
	}
}

func TestFileAdapterPersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.json")
	first, err := NewFileAdapter(path)
	if err != nil {
		t.Fatalf("new file adapter: %v", err)
	}
	if err := first.WriteOne(t.Context(), "todos", "a", Record{Title: "persist me", Order: 1}); err != nil {
		t.Fatalf("write: %v", err)
	}

	second, err := NewFileAdapter(path)
	if err != nil {
		t.Fatalf("reopen file adapter: %v", err)
	}
	got, err := second.ReadAll(t.Context(), "todos")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" || got[0].Title != "persist me" {
		t.Fatalf("unexpected records: %#v", got)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected temp file to be renamed away, stat err: %v", err)
	}
}

func TestFileAdapterRejectsCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}
	adapter, err := NewFileAdapter(path)
	if err != nil {
		t.Fatalf("new file adapter: %v", err)
	}
	if _, err := adapter.ReadAll(t.Context(), "todos"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestNewFileAdapterRequiresPath(t *testing.T) {
	if _, err := NewFileAdapter("  "); err == nil {
		t.Fatal("expected error for blank path")
	}
}

func TestTableEntityMapping(t *testing.T) {
	raw, err := entityFromRecord("todos", "task-1", Record{ID: "ignored", Title: "buy milk", Order: 4, Done: true})
	if err != nil {
		t.Fatalf("encode entity: %v", err)
	}
	rec, err := recordFromEntity(raw)
	if err != nil {
		t.Fatalf("decode entity: %v", err)
	}
	want := Record{ID: "task-1", Title: "buy milk", Order: 4, Done: true}
	if rec != want {
		t.Fatalf("unexpected record: %#v", rec)
	}
	if _, err := recordFromEntity([]byte("nope")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestPartitionFilterEscapesQuotes(t *testing.T) {
	got := partitionFilter("bob's list")
	if got != "PartitionKey eq 'bob''s list'" {
		t.Fatalf("unexpected filter: %s", got)
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	adapter, closer, err := Open(t.Context(), Options{Backend: "Memory"})
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if _, ok := adapter.(*MemoryAdapter); !ok {
		t.Fatalf("expected memory adapter, got %T", adapter)
	}
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	adapter, closer, err = Open(t.Context(), Options{Backend: BackendSQLite, SQLitePath: filepath.Join(t.TempDir(), "open.db")})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if _, ok := adapter.(*SQLAdapter); !ok {
		t.Fatalf("expected sql adapter, got %T", adapter)
	}
	_ = closer.Close()

	if _, _, err := Open(t.Context(), Options{Backend: "tape"}); err == nil {
		t.Fatal("expected unknown backend error")
	}
}

func TestUpsertStatementsShareColumnOrder(t *testing.T) {
	const columns = "INSERT INTO tasks (namespace, id, title, sort_order, done)"
	cases := map[string]string{
		DriverSQLite: "ON CONFLICT (namespace, id) DO UPDATE",
		DriverMySQL:  "ON DUPLICATE KEY UPDATE",
	}
	for driver, clause := range cases {
		stmt := upsertStatements[driver]
		if !strings.Contains(stmt, columns) {
			t.Fatalf("%s upsert does not insert %q:\n%s", driver, columns, stmt)
		}
		if !strings.Contains(stmt, clause) {
			t.Fatalf("%s upsert lacks %q:\n%s", driver, clause, stmt)
		}
		if n := strings.Count(stmt, "?"); n != 5 {
			t.Fatalf("%s upsert has %d placeholders, want 5", driver, n)
		}
		for _, col := range []string{"title", "sort_order", "done"} {
			if !strings.Contains(stmt, col+" = ") {
				t.Fatalf("%s upsert does not update %s:\n%s", driver, col, stmt)
			}
		}
		if strings.Contains(strings.SplitN(stmt, "UPDATE", 2)[1], "namespace =") {
			t.Fatalf("%s upsert must not rewrite the key:\n%s", driver, stmt)
		}
	}
	if len(upsertStatements) != len(cases) {
		t.Fatalf("untested drivers in upsertStatements: %d", len(upsertStatements))
	}
}
