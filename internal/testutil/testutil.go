package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/mindlog/mindlog/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 731731

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops every table by applying the down migrations newest first,
// then applies the up migrations oldest first.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	ups, downs, err := migrationFiles()
	if err != nil {
		return err
	}

	for i := len(downs) - 1; i >= 0; i-- {
		if err := applySQLFile(ctx, pool, downs[i]); err != nil {
			return err
		}
	}
	for _, path := range ups {
		if err := applySQLFile(ctx, pool, path); err != nil {
			return err
		}
	}
	return nil
}

func migrationFiles() (ups, downs []string, err error) {
	root, err := ProjectRoot()
	if err != nil {
		return nil, nil, err
	}

	entries, err := os.ReadDir(filepath.Join(root, "migrations"))
	if err != nil {
		return nil, nil, fmt.Errorf("read migrations dir: %w", err)
	}

	for _, e := range entries {
		path := filepath.Join(root, "migrations", e.Name())
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups = append(ups, path)
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs = append(downs, path)
		}
	}
	sort.Strings(ups)
	sort.Strings(downs)
	return ups, downs, nil
}

func applySQLFile(ctx context.Context, pool *pgxpool.Pool, path string) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", filepath.Base(path), err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("apply migration %s: %w", filepath.Base(path), err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a user with sensible defaults. The password hash is a
// placeholder; use auth.HashPassword when the test authenticates.
func NewTestUser(t testing.TB, username string) *model.User {
	t.Helper()
	return &model.User{
		ID:           UniqueID("user"),
		Username:     username,
		PasswordHash: "$argon2id$placeholder",
		CreatedAt:    time.Now().UTC(),
	}
}

// NewTestMood creates a stamped mood entry owned by userID.
func NewTestMood(t testing.TB, userID string, score int, at time.Time) *model.MoodEntry {
	t.Helper()
	m := &model.MoodEntry{Score: score}
	m.Stamp(UniqueID("mood"), userID, at.UTC())
	return m
}

// NewTestJournal creates a stamped journal entry owned by userID.
func NewTestJournal(t testing.TB, userID, entry string, tags ...string) *model.JournalEntry {
	t.Helper()
	j := &model.JournalEntry{Entry: entry, Tags: tags}
	j.Stamp(UniqueID("journal"), userID, time.Now().UTC())
	return j
}

// UniqueUsername generates a unique username for tests.
func UniqueUsername(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// StrPtr returns a pointer to s.
func StrPtr(s string) *string {
	return &s
}
