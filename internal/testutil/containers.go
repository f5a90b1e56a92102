package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cloo-solutions/dreamcourse/internal/database"
	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	pgCredential     = "dreamcourse"
	rustfsCredential = "rustfsadmin"
)

// service is a started container and the host address of its one exposed port.
type service struct {
	Container testcontainers.Container
	Host      string
	Port      string
}

// Terminate stops and removes the container.
func (s *service) Terminate(ctx context.Context) error {
	return testcontainers.TerminateContainer(s.Container)
}

func startService(ctx context.Context, t *testing.T, name string, req testcontainers.ContainerRequest) service {
	t.Helper()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start %s container: %v", name, err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("%s container host: %v", name, err)
	}
	port, err := c.MappedPort(ctx, servicePort(req))
	if err != nil {
		t.Fatalf("%s container port: %v", name, err)
	}

	return service{Container: c, Host: host, Port: port.Port()}
}

// servicePort is the first exposed port, the one callers connect to.
func servicePort(req testcontainers.ContainerRequest) nat.Port {
	return nat.Port(req.ExposedPorts[0])
}

// PostgresContainer is a pgvector-enabled Postgres holding the chunk index.
type PostgresContainer struct {
	service
}

// NewPostgresContainer starts Postgres with the vector extension available.
func NewPostgresContainer(ctx context.Context, t *testing.T) *PostgresContainer {
	svc := startService(ctx, t, "postgres", testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:0.8.1-pg18",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     pgCredential,
			"POSTGRES_PASSWORD": pgCredential,
			"POSTGRES_DB":       pgCredential,
		},
		// Postgres restarts once after initdb, so the ready line shows up twice.
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithStartupTimeout(60 * time.Second),
	})
	return &PostgresContainer{service: svc}
}

// ConnectionString returns a DSN for the container's database.
func (pc *PostgresContainer) ConnectionString() string {
	return fmt.Sprintf("postgres://%[1]s:%[1]s@%[2]s:%[3]s/%[1]s?sslmode=disable", pgCredential, pc.Host, pc.Port)
}

// RustFSContainer is an S3-compatible store that serves dataset CSVs.
type RustFSContainer struct {
	service
}

// NewRustFSContainer starts RustFS with the default admin key pair.
func NewRustFSContainer(ctx context.Context, t *testing.T) *RustFSContainer {
	svc := startService(ctx, t, "rustfs", testcontainers.ContainerRequest{
		Image:        "rustfs/rustfs:latest",
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"RUSTFS_ACCESS_KEY": rustfsCredential,
			"RUSTFS_SECRET_KEY": rustfsCredential,
		},
		WaitingFor: wait.ForListeningPort("9000/tcp").WithStartupTimeout(30 * time.Second),
	})
	return &RustFSContainer{service: svc}
}

// Endpoint returns the S3 endpoint URL.
func (rc *RustFSContainer) Endpoint() string {
	return "http://" + rc.Host + ":" + rc.Port
}

// NewTestPool opens a pool against the container and applies the embedded
// migrations. The pool is closed when the test ends.
func NewTestPool(ctx context.Context, t *testing.T, pc *PostgresContainer) *pgxpool.Pool {
	t.Helper()

	var (
		pool *pgxpool.Pool
		err  error
	)
	for attempt := 1; attempt <= 5; attempt++ {
		pool, err = pgxpool.New(ctx, pc.ConnectionString())
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				break
			}
			pool.Close()
		}
		time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("connect to postgres: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := database.Migrate(pc.ConnectionString()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pool
}
