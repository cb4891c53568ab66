//go:build integration
// +build integration

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	goose "github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres spins up a Postgres container and returns a DSN and terminate func.
func startPostgres(t *testing.T) (dsn string, terminate func()) {
	t.Helper()
	ctx := context.Background()

	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "k4bridge",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
		},
		WaitingFor: wait.ForSQL("5432/tcp", "postgres", func(host string, port nat.Port) string {
			return fmt.Sprintf("host=%s port=%s user=postgres password=postgres dbname=k4bridge sslmode=disable", host, port.Port())
		}).WithStartupTimeout(60 * time.Second),
	}

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("container start: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", "postgres", "postgres", host, port.Port(), "k4bridge")
	terminate = func() { _ = container.Terminate(context.Background()) }
	return dsn, terminate
}

func openDB(t *testing.T, dsn string) *sql.DB {
	t.Helper()
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
	return db
}

func runMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	if err := goose.SetDialect("postgres"); err != nil {
		t.Fatalf("dialect: %v", err)
	}
	// migrations path relative to this test file (internal/storage → ../../db/migrations)
	path := filepath.Join("..", "..", "db", "migrations")
	if err := goose.Up(db, path); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
}

func TestConversionLog_Integration(t *testing.T) {
	dsn, terminate := startPostgres(t)
	defer terminate()
	db := openDB(t, dsn)
	defer db.Close()
	runMigrations(t, db)

	repo := NewConversionLogRepository(db)
	ctx := context.Background()

	entries := []ConversionLogEntry{
		{ID: "7c7f3a2e-0d6b-4f0e-9a57-4f4f1f5ad001", Filename: "2024.csv", TaxYear: "2024", TransactionCount: 2, UniqueSecurityCount: 1, NetResult: decimal.RequireFromString("52.25")},
		{ID: "7c7f3a2e-0d6b-4f0e-9a57-4f4f1f5ad002", Filename: "2024b.csv", TaxYear: "2024", TransactionCount: 5, UniqueSecurityCount: 3, NetResult: decimal.RequireFromString("-10.5")},
		{ID: "7c7f3a2e-0d6b-4f0e-9a57-4f4f1f5ad003", Filename: "2023.csv", TaxYear: "2023", TransactionCount: 1, UniqueSecurityCount: 1, NetResult: decimal.Zero},
	}
	for _, e := range entries {
		if err := repo.RecordConversion(ctx, e); err != nil {
			t.Fatalf("record %s: %v", e.ID, err)
		}
	}

	cases := []struct {
		year string
		want int
	}{
		{"2024", 2},
		{"2023", 1},
		{"2022", 0},
	}
	for _, c := range cases {
		t.Run(c.year, func(t *testing.T) {
			n, err := repo.CountByTaxYear(ctx, c.year)
			if err != nil {
				t.Fatalf("count: %v", err)
			}
			if n != c.want {
				t.Fatalf("count=%d want %d", n, c.want)
			}
		})
	}

	if err := repo.RecordConversion(ctx, entries[0]); !errors.Is(err, ErrDuplicateConversion) {
		t.Fatalf("expected ErrDuplicateConversion, got %v", err)
	}
	if err := repo.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
