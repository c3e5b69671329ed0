package quota

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// backendURL returns the URL in env, or starts a throwaway container and
// returns a URL built from its mapped port. Without Docker the test is skipped.
func backendURL(t *testing.T, env string, req testcontainers.ContainerRequest, port nat.Port, format func(host string, port nat.Port) string) string {
	t.Helper()
	if url := os.Getenv(env); url != "" {
		return url
	}
	if testing.Short() {
		t.Skipf("%s not set and -short given", env)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("%s not set and no container runtime: %v", env, err)
	}
	t.Cleanup(func() {
		termCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = container.Terminate(termCtx)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mapped, err := container.MappedPort(ctx, port)
	require.NoError(t, err)
	return format(host, mapped)
}

func redisURL(t *testing.T) string {
	return backendURL(t, "PLAYLENS_TEST_REDIS_URL", testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
	}, "6379/tcp", func(host string, port nat.Port) string {
		return fmt.Sprintf("redis://%s:%s/0", host, port.Port())
	})
}

func postgresURL(t *testing.T) string {
	dsn := func(host string, port nat.Port) string {
		return fmt.Sprintf("postgres://playlens:playlens@%s:%s/playlens?sslmode=disable", host, port.Port())
	}
	return backendURL(t, "PLAYLENS_TEST_DATABASE_URL", testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "playlens",
			"POSTGRES_PASSWORD": "playlens",
			"POSTGRES_DB":       "playlens",
		},
		WaitingFor: wait.ForSQL("5432/tcp", "pgx", dsn).WithStartupTimeout(60 * time.Second),
	}, "5432/tcp", dsn)
}
