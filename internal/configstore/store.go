// Package configstore provides durable per-user configuration storage:
// the GitHub credential and the tracked-repository list, keyed by user
// id and persisted to a single SQLite table.
//
// The on-disk schema is stable and shared with external inspection
// tooling: table user_config with columns user_id (primary key),
// credential, and tracked_repos (a JSON-encoded array of strings).
//
// Every mutation runs inside an IMMEDIATE transaction, so a crash
// leaves the row in either the pre- or post-operation state and
// concurrent mutations for the same user serialize on the SQLite write
// lock instead of losing updates.
package configstore

import (
	"context"
	"fmt"
	"io"
	"log"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/manikhere79/devops-metrics-agent/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS user_config (
	user_id       TEXT PRIMARY KEY,
	credential    TEXT NOT NULL DEFAULT '',
	tracked_repos TEXT NOT NULL DEFAULT '[]'
);
`

// AddOutcome is the result of AddTrackedRepo.
type AddOutcome string

const (
	Added          AddOutcome = "added"
	AlreadyTracked AddOutcome = "already_tracked"
)

// RemoveOutcome is the result of RemoveTrackedRepo.
type RemoveOutcome string

const (
	Removed    RemoveOutcome = "removed"
	NotTracked RemoveOutcome = "not_tracked"
)

// Config holds the parameters for opening a Store.
type Config struct {
	// Path is the filesystem path to the SQLite database file. The
	// parent directory must exist; the file is created on first open.
	Path string

	// PoolSize is the number of connections in the pool. Defaults to 4
	// if zero or negative. SQLite serializes writes regardless of pool
	// size; extra connections serve concurrent reads.
	PoolSize int

	// ResetReposOnCredentialSave controls what SaveCredential does to
	// an existing user's tracked-repo list: false (the default)
	// preserves it, true re-initializes it to empty.
	ResetReposOnCredentialSave bool

	// Logger receives operational messages. If nil, logs are discarded.
	Logger *log.Logger
}

// Store is the SQLite-backed configuration store. It is safe for
// concurrent use; individual connections are not shared across
// goroutines.
type Store struct {
	pool       *sqlitex.Pool
	logger     *log.Logger
	resetRepos bool
}

// Open creates the connection pool, applies the standard pragmas, and
// ensures the user_config table exists. The caller must Close the
// store when done.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("configstore: Path is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 4
	}

	pool, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConn,
	})
	if err != nil {
		return nil, fmt.Errorf("configstore: opening %s: %w", cfg.Path, err)
	}

	logger.Printf("configstore: opened %s (pool size %d)", cfg.Path, poolSize)

	return &Store{
		pool:       pool,
		logger:     logger,
		resetRepos: cfg.ResetReposOnCredentialSave,
	}, nil
}

// Close closes all connections in the pool. Blocks until borrowed
// connections are returned.
func (s *Store) Close() error {
	if err := s.pool.Close(); err != nil {
		return fmt.Errorf("configstore: close: %w", err)
	}
	return nil
}

// prepareConn runs once per pooled connection: standard pragmas, then
// the schema. WAL keeps readers unblocked by the single writer;
// busy_timeout makes contending writers wait instead of failing with
// SQLITE_BUSY.
func prepareConn(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// SaveCredential upserts the user's GitHub credential. A user that did
// not previously exist is created with an empty tracked-repo list.
// Whether an existing user's repo list survives is governed by
// Config.ResetReposOnCredentialSave.
func (s *Store) SaveCredential(ctx context.Context, userID, credential string) (err error) {
	if credential == "" {
		return domain.ErrMissingCredential
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("configstore: take: %w", err)
	}
	defer s.pool.Put(conn)

	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("configstore: begin: %w", err)
	}
	defer endFn(&err)

	exists, err := userExists(conn, userID)
	if err != nil {
		return err
	}

	if exists && !s.resetRepos {
		err = sqlitex.Execute(conn,
			`UPDATE user_config SET credential = ? WHERE user_id = ?`,
			&sqlitex.ExecOptions{Args: []any{credential, userID}})
	} else {
		err = sqlitex.Execute(conn,
			`INSERT INTO user_config (user_id, credential, tracked_repos) VALUES (?, ?, '[]')
			 ON CONFLICT(user_id) DO UPDATE SET credential = excluded.credential, tracked_repos = excluded.tracked_repos`,
			&sqlitex.ExecOptions{Args: []any{credential, userID}})
	}
	if err != nil {
		return fmt.Errorf("configstore: saving credential for %q: %w", userID, err)
	}

	s.logger.Printf("configstore: credential saved for user %q", userID)
	return nil
}

// GetConfig returns the user's stored configuration. A never-seen user
// yields a zero-value config (empty credential, empty repo list), not
// an error: absence is a valid state and callers should not have to
// branch on it.
func (s *Store) GetConfig(ctx context.Context, userID string) (domain.UserConfig, error) {
	cfg := domain.UserConfig{UserID: userID, TrackedRepos: []string{}}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return cfg, fmt.Errorf("configstore: take: %w", err)
	}
	defer s.pool.Put(conn)

	var rawRepos string
	var found bool
	err = sqlitex.Execute(conn,
		`SELECT credential, tracked_repos FROM user_config WHERE user_id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{userID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				cfg.Credential = stmt.ColumnText(0)
				rawRepos = stmt.ColumnText(1)
				return nil
			},
		})
	if err != nil {
		return cfg, fmt.Errorf("configstore: reading config for %q: %w", userID, err)
	}
	if !found {
		return cfg, nil
	}

	repos, err := decodeRepos(rawRepos)
	if err != nil {
		return cfg, fmt.Errorf("configstore: config for %q: %w", userID, err)
	}
	cfg.TrackedRepos = repos
	return cfg, nil
}

// AddTrackedRepo appends repoID to the user's tracked list. Idempotent:
// adding a repo that is already tracked returns AlreadyTracked without
// modifying the row. Fails with domain.ErrUserNotConfigured when no
// configuration row exists.
func (s *Store) AddTrackedRepo(ctx context.Context, userID, repoID string) (outcome AddOutcome, err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return "", fmt.Errorf("configstore: take: %w", err)
	}
	defer s.pool.Put(conn)

	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return "", fmt.Errorf("configstore: begin: %w", err)
	}
	defer endFn(&err)

	repos, found, err := readRepos(conn, userID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", domain.ErrUserNotConfigured
	}

	for _, r := range repos {
		if r == repoID {
			return AlreadyTracked, nil
		}
	}

	if err := writeRepos(conn, userID, append(repos, repoID)); err != nil {
		return "", err
	}
	s.logger.Printf("configstore: user %q now tracks %q", userID, repoID)
	return Added, nil
}

// RemoveTrackedRepo removes repoID from the user's tracked list.
// Removing a repo that was never tracked returns NotTracked and leaves
// the list unchanged.
func (s *Store) RemoveTrackedRepo(ctx context.Context, userID, repoID string) (outcome RemoveOutcome, err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return "", fmt.Errorf("configstore: take: %w", err)
	}
	defer s.pool.Put(conn)

	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return "", fmt.Errorf("configstore: begin: %w", err)
	}
	defer endFn(&err)

	repos, found, err := readRepos(conn, userID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", domain.ErrUserNotConfigured
	}

	kept := repos[:0]
	removed := false
	for _, r := range repos {
		if r == repoID {
			removed = true
			continue
		}
		kept = append(kept, r)
	}
	if !removed {
		return NotTracked, nil
	}

	if err := writeRepos(conn, userID, kept); err != nil {
		return "", err
	}
	s.logger.Printf("configstore: user %q no longer tracks %q", userID, repoID)
	return Removed, nil
}

// ListTrackedRepos returns the user's tracked repositories in insertion
// order. Empty slice for unknown users.
func (s *Store) ListTrackedRepos(ctx context.Context, userID string) ([]string, error) {
	cfg, err := s.GetConfig(ctx, userID)
	if err != nil {
		return nil, err
	}
	return cfg.TrackedRepos, nil
}

// ListUsers enumerates all configured user ids, sorted. Used by the
// diagnostic CLI.
func (s *Store) ListUsers(ctx context.Context) ([]string, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("configstore: take: %w", err)
	}
	defer s.pool.Put(conn)

	users := []string{}
	err = sqlitex.Execute(conn,
		`SELECT user_id FROM user_config ORDER BY user_id`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				users = append(users, stmt.ColumnText(0))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("configstore: listing users: %w", err)
	}
	return users, nil
}

func userExists(conn *sqlite.Conn, userID string) (bool, error) {
	var exists bool
	err := sqlitex.Execute(conn,
		`SELECT 1 FROM user_config WHERE user_id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{userID},
			ResultFunc: func(*sqlite.Stmt) error {
				exists = true
				return nil
			},
		})
	if err != nil {
		return false, fmt.Errorf("configstore: checking user %q: %w", userID, err)
	}
	return exists, nil
}

func readRepos(conn *sqlite.Conn, userID string) (repos []string, found bool, err error) {
	var raw string
	err = sqlitex.Execute(conn,
		`SELECT tracked_repos FROM user_config WHERE user_id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{userID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				raw = stmt.ColumnText(0)
				return nil
			},
		})
	if err != nil {
		return nil, false, fmt.Errorf("configstore: reading repos for %q: %w", userID, err)
	}
	if !found {
		return nil, false, nil
	}
	repos, err = decodeRepos(raw)
	if err != nil {
		return nil, false, fmt.Errorf("configstore: repos for %q: %w", userID, err)
	}
	return repos, true, nil
}

func writeRepos(conn *sqlite.Conn, userID string, repos []string) error {
	raw, err := encodeRepos(repos)
	if err != nil {
		return fmt.Errorf("configstore: repos for %q: %w", userID, err)
	}
	err = sqlitex.Execute(conn,
		`UPDATE user_config SET tracked_repos = ? WHERE user_id = ?`,
		&sqlitex.ExecOptions{Args: []any{raw, userID}})
	if err != nil {
		return fmt.Errorf("configstore: writing repos for %q: %w", userID, err)
	}
	return nil
}
