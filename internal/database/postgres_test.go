package database

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestNewPostgresDB_ParseError(t *testing.T) {
	origParse := parsePGConfig
	t.Cleanup(func() { parsePGConfig = origParse })
	parsePGConfig = func(dsn string) (*pgxpool.Config, error) {
		return nil, errors.New("bad dsn")
	}

	_, err := NewPostgresDB("bad")
	if err == nil || !strings.Contains(err.Error(), "parsing database config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestNewPostgresDB_NewPoolError(t *testing.T) {
	origParse := parsePGConfig
	origNew := newPGPool
	t.Cleanup(func() {
		parsePGConfig = origParse
		newPGPool = origNew
	})

	parsePGConfig = func(dsn string) (*pgxpool.Config, error) {
		return &pgxpool.Config{}, nil
	}
	newPGPool = func(ctx context.Context, config *pgxpool.Config) (*pgxpool.Pool, error) {
		return nil, errors.New("new pool error")
	}

	_, err := NewPostgresDB("dsn")
	if err == nil || !strings.Contains(err.Error(), "creating connection pool") {
		t.Fatalf("expected pool error, got %v", err)
	}
}

func TestNewPostgresDB_PingErrorClosesPool(t *testing.T) {
	origParse := parsePGConfig
	origNew := newPGPool
	origPing := pingPGPool
	origClose := closePGPool
	t.Cleanup(func() {
		parsePGConfig = origParse
		newPGPool = origNew
		pingPGPool = origPing
		closePGPool = origClose
	})

	parsePGConfig = func(dsn string) (*pgxpool.Config, error) {
		return &pgxpool.Config{}, nil
	}
	pool := &pgxpool.Pool{}
	newPGPool = func(ctx context.Context, config *pgxpool.Config) (*pgxpool.Pool, error) {
		return pool, nil
	}
	pingPGPool = func(ctx context.Context, p *pgxpool.Pool) error {
		return errors.New("ping failed")
	}
	var closed bool
	closePGPool = func(p *pgxpool.Pool) {
		if p == pool {
			closed = true
		}
	}

	_, err := NewPostgresDB("dsn")
	if err == nil || !strings.Contains(err.Error(), "pinging database") {
		t.Fatalf("expected ping error, got %v", err)
	}
	if !closed {
		t.Fatal("expected pool closed after failed ping")
	}
}

func TestNewPostgresDB_SetsPoolConfig(t *testing.T) {
	origParse := parsePGConfig
	origNew := newPGPool
	origPing := pingPGPool
	t.Cleanup(func() {
		parsePGConfig = origParse
		newPGPool = origNew
		pingPGPool = origPing
	})

	cfg := &pgxpool.Config{}
	parsePGConfig = func(dsn string) (*pgxpool.Config, error) {
		return cfg, nil
	}
	pool := &pgxpool.Pool{}
	var got *pgxpool.Config
	newPGPool = func(ctx context.Context, config *pgxpool.Config) (*pgxpool.Pool, error) {
		got = config
		return pool, nil
	}
	pingPGPool = func(ctx context.Context, p *pgxpool.Pool) error {
		return nil
	}

	db, err := NewPostgresDB("dsn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db.Pool != pool {
		t.Fatal("expected pool on PostgresDB")
	}
	if got.MaxConns != 25 || got.MinConns != 5 {
		t.Fatalf("unexpected conn limits: max=%d min=%d", got.MaxConns, got.MinConns)
	}
	if got.MaxConnLifetime != time.Hour || got.MaxConnIdleTime != 30*time.Minute {
		t.Fatalf("unexpected lifetimes: %v %v", got.MaxConnLifetime, got.MaxConnIdleTime)
	}
}
