package testutil

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/learning-service/pkg"
)

// Logger discards output so test runs stay quiet
func Logger(tb testing.TB) *slog.Logger {
	tb.Helper()
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// DB opens a migrated sqlite database that lives for the duration of the test
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := filepath.Join(tb.TempDir(), "test.db") + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	if err := pkg.Migrate(db); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}

	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Tx begins a transaction that is rolled back when the test ends
func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

// Redis starts an in-memory redis server and returns a client for it
func Redis(tb testing.TB) (*redis.Client, *miniredis.Miniredis) {
	tb.Helper()
	mr := miniredis.RunT(tb)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tb.Cleanup(func() { _ = client.Close() })
	return client, mr
}

// Env bundles what service and handler tests need
type Env struct {
	DB    *gorm.DB
	Redis *redis.Client
	Users *FakeUserRepository
	Repo  repositories.Repository
}

// NewEnv builds a repository over sqlite; withCache adds a miniredis-backed cache
func NewEnv(tb testing.TB, withCache bool) *Env {
	tb.Helper()

	env := &Env{
		DB:    DB(tb),
		Users: NewFakeUserRepository(),
	}
	if withCache {
		env.Redis, _ = Redis(tb)
	}

	env.Repo = postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{
		DB:             env.DB,
		RedisClient:    env.Redis,
		UserRepository: env.Users,
	})
	return env
}
