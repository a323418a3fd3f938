package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
)

const (
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
	BackendRedis  = "redis"
	BackendTable  = "table"
	BackendFile   = "file"
	BackendMemory = "memory"
)

func Backends() []string {
	return []string{BackendSQLite, BackendMySQL, BackendRedis, BackendTable, BackendFile, BackendMemory}
}

type Options struct {
	Backend         string
	SQLitePath      string
	MySQLDSN        string
	RedisURL        string
	TableConnection string
	TableName       string
	FilePath        string
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the adapter named by opts.Backend. The returned closer
// releases its connection and is never nil on success.
func Open(ctx context.Context, opts Options) (Adapter, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case BackendSQLite:
		a, err := OpenSQLite(ctx, opts.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return a, a, nil
	case BackendMySQL:
		a, err := OpenMySQL(ctx, opts.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		return a, a, nil
	case BackendRedis:
		a, err := OpenRedis(ctx, opts.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return a, a, nil
	case BackendTable:
		a, err := OpenTable(ctx, opts.TableConnection, opts.TableName)
		if err != nil {
			return nil, nil, err
		}
		return a, nopCloser{}, nil
	case BackendFile:
		a, err := NewFileAdapter(opts.FilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("file backend: %w", err)
		}
		return a, nopCloser{}, nil
	case BackendMemory:
		return NewMemoryAdapter(), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("storage: unknown backend %q", opts.Backend)
	}
}
