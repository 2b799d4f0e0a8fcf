// Package testutil provides test utilities and helpers.
package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	containerOnce sync.Once
	containerURL  string
	containerErr  error
)

// PostgresURL returns the connection string of the integration test database.
// TEST_DATABASE_URL wins; with TESTCONTAINERS=1 a postgres container is
// started once per test binary. Otherwise the test is skipped.
func PostgresURL(t *testing.T) string {
	t.Helper()

	if url := os.Getenv("TEST_DATABASE_URL"); url != "" {
		return url
	}
	if os.Getenv("TESTCONTAINERS") == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}

	containerOnce.Do(func() {
		containerURL, containerErr = startPostgres(context.Background())
	})
	if containerErr != nil {
		t.Fatalf("failed to start postgres container: %v", containerErr)
	}
	return containerURL
}

// startPostgres starts a throwaway postgres container. The container is
// reaped by testcontainers when the test binary exits.
func startPostgres(ctx context.Context) (string, error) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "subvention_test",
			"POSTGRES_USER":     "subvention",
			"POSTGRES_PASSWORD": "subvention",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithDeadline(2 * time.Minute),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", err
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get postgres host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return "", fmt.Errorf("failed to get postgres port: %w", err)
	}

	return fmt.Sprintf("postgres://subvention:subvention@%s:%s/subvention_test?sslmode=disable", host, port.Port()), nil
}

// ResetTables removes all rows written by tests. Order respects foreign keys.
func ResetTables(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		TRUNCATE exclusion_keyword_events, exclusion_keywords, announcements, subventions
		RESTART IDENTITY CASCADE
	`)
	return err
}
