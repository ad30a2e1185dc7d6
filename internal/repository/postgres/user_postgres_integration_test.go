package postgres

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"userapi/internal/config"
	"userapi/internal/database"
	"userapi/internal/database/migration"
	"userapi/internal/logging"
	"userapi/internal/model"
	"userapi/internal/repository"
)

// startPostgres runs PostgreSQL in a container and returns its connection config.
func startPostgres(t *testing.T) config.DatabaseConfig {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("skipping integration test: TEST_INTEGRATION is not set")
	}

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		tcpostgres.WithDatabase("userapi_test"),
		tcpostgres.WithUsername("userapi"),
		tcpostgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return config.DatabaseConfig{
		Host:         host,
		Port:         port.Port(),
		User:         "userapi",
		Password:     "test-password",
		Name:         "userapi_test",
		SSLMode:      "disable",
		MaxOpenConns: 20,
	}
}

// setupTestDB starts PostgreSQL and applies the embedded migrations.
func setupTestDB(t *testing.T) *UserPostgres {
	t.Helper()

	cfg := startPostgres(t)
	logger := logging.Discard()
	require.NoError(t, migration.Up(cfg, logger))

	db, err := database.NewPostgres(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewUserPostgres(db)
}

func TestUserPostgres_Integration_RoundTrip(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.User{ID: "u1", Name: "Ann", Age: 30}))
	assert.ErrorIs(t, repo.Create(ctx, &model.User{ID: "u1", Name: "Other", Age: 1}), repository.ErrAlreadyExists)

	got, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, &model.User{ID: "u1", Name: "Ann", Age: 30}, got)

	age := 31
	avatar := "https://cdn.example.com/u1.png"
	updated, err := repo.Update(ctx, "u1", model.UserPatch{Age: &age, Avatar: &avatar})
	require.NoError(t, err)
	assert.Equal(t, &model.User{ID: "u1", Name: "Ann", Age: 31, Avatar: avatar}, updated)

	_, err = repo.Update(ctx, "ghost", model.UserPatch{Age: &age})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	items, err := repo.List(ctx, repository.ScanLimit)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, repo.Delete(ctx, "u1"))
	assert.ErrorIs(t, repo.Delete(ctx, "u1"), repository.ErrNotFound)
	require.NoError(t, repo.Ping(ctx))
}

func TestUserPostgres_Integration_ConcurrentCreate(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	const workers = 10
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Create(ctx, &model.User{ID: "dup", Name: fmt.Sprintf("n%d", i), Age: i})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, repository.ErrAlreadyExists)
	}
	assert.Equal(t, 1, created)

	items, err := repo.List(ctx, repository.ScanLimit)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestUserPostgres_Integration_AgeBeyondInt32(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.User{ID: "old", Name: "Ann", Age: 3000000000}))
	got, err := repo.FindByID(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, 3000000000, got.Age)

	age := 4000000000
	updated, err := repo.Update(ctx, "old", model.UserPatch{Age: &age})
	require.NoError(t, err)
	assert.Equal(t, age, updated.Age)
}

func TestMigrationUp_Integration_SecondRunIsNoop(t *testing.T) {
	cfg := startPostgres(t)
	require.NoError(t, migration.Up(cfg, logging.Discard()))

	var buf bytes.Buffer
	require.NoError(t, migration.Up(cfg, logging.New(&buf, "info", time.UTC)))

	var skip string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.Equal(t, 1, strings.Count(line, `"msg":`), line)
		if strings.Contains(line, `"msg":"db_migration_skip"`) {
			skip = line
		}
	}
	require.NotEmpty(t, skip)
	assert.Contains(t, skip, `"detail":"schema up to date"`)
}
