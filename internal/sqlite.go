package internal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements CommitStore on an embedded SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path. Pass ":memory:"
// for an ephemeral database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	inMemory := path == ":memory:"

	dsn := path
	if !inMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		// Per-connection pragmas for the whole pool: a contended writer
		// waits out the lock instead of failing with SQLITE_BUSY.
		dsn += "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if inMemory {
		// Every pooled connection to ":memory:" is its own empty
		// database; pin everything to one connection.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	} else {
		// WAL lets readers proceed while a writer holds the database.
		// The mode persists in the file, so setting it once is enough.
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS commits (
		hash TEXT PRIMARY KEY,
		category TEXT NOT NULL,
		branch TEXT NOT NULL,
		parent_hash TEXT NOT NULL DEFAULT '',
		delta TEXT NOT NULL,
		snapshot TEXT NOT NULL,
		message TEXT NOT NULL,
		confidence TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS branches (
		category TEXT NOT NULL,
		name TEXT NOT NULL,
		head TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		PRIMARY KEY (category, name)
	);

	CREATE INDEX IF NOT EXISTS idx_commits_lineage ON commits(category, branch);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendCommit(ctx context.Context, commit *Commit, expectedHead string) error {
	delta, err := json.Marshal(commit.Delta)
	if err != nil {
		return fmt.Errorf("encode delta: %w", err)
	}
	snapshot, err := json.Marshal(commit.Snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO commits (hash, category, branch, parent_hash, delta, snapshot, message, confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		commit.Hash, commit.Category, commit.Branch, commit.ParentHash,
		string(delta), string(snapshot), commit.Message, string(commit.Confidence),
		commit.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert commit: %w", err)
	}

	// Compare-and-swap on the stored head: the advance only lands if the
	// head is still what the caller read.
	res, err := tx.ExecContext(ctx,
		`UPDATE branches SET head = ? WHERE category = ? AND name = ? AND head = ?`,
		commit.Hash, commit.Category, commit.Branch, expectedHead,
	)
	if err != nil {
		return fmt.Errorf("advance head: %w", err)
	}
	moved, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("advance head: %w", err)
	}
	if moved != 1 {
		return ErrStaleHead
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetCommit(ctx context.Context, hash string) (*Commit, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT hash, category, branch, parent_hash, delta, snapshot, message, confidence, created_at
		 FROM commits WHERE hash = ?`, hash)
	return scanCommit(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCommit(row rowScanner) (*Commit, error) {
	var c Commit
	var delta, snapshot, createdAt string

	err := row.Scan(&c.Hash, &c.Category, &c.Branch, &c.ParentHash,
		&delta, &snapshot, &c.Message, &c.Confidence, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan commit: %w", err)
	}

	if err := json.Unmarshal([]byte(delta), &c.Delta); err != nil {
		return nil, fmt.Errorf("decode delta: %w", err)
	}
	if err := json.Unmarshal([]byte(snapshot), &c.Snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	c.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &c, nil
}

func (s *SQLiteStore) GetBranch(ctx context.Context, category, name string) (*Branch, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT category, name, head, created_at FROM branches WHERE category = ? AND name = ?`,
		category, name)
	return scanBranch(row)
}

func scanBranch(row rowScanner) (*Branch, error) {
	var b Branch
	var createdAt string

	err := row.Scan(&b.Category, &b.Name, &b.Head, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan branch: %w", err)
	}

	b.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &b, nil
}

func (s *SQLiteStore) CreateBranch(ctx context.Context, branch *Branch) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO branches (category, name, head, created_at) VALUES (?, ?, ?, ?)`,
		branch.Category, branch.Name, branch.Head,
		branch.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrBranchExists
		}
		return fmt.Errorf("insert branch: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListBranches(ctx context.Context, category string) ([]*Branch, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, name, head, created_at FROM branches WHERE category = ? ORDER BY name`,
		category)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer rows.Close()

	var branches []*Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

func (s *SQLiteStore) DeleteBranch(ctx context.Context, category, name string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM branches WHERE category = ? AND name = ?`, category, name)
	if err != nil {
		return 0, fmt.Errorf("delete branch: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete branch: %w", err)
	}
	if removed == 0 {
		return 0, ErrNotFound
	}

	res, err = tx.ExecContext(ctx,
		`DELETE FROM commits WHERE category = ? AND branch = ?`, category, name)
	if err != nil {
		return 0, fmt.Errorf("delete commits: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete commits: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return int(deleted), nil
}

func (s *SQLiteStore) CountCommits(ctx context.Context, category, name string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM commits WHERE category = ? AND branch = ?`,
		category, name).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count commits: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) WalkParents(ctx context.Context, head string, limit int) ([]*Commit, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx, `
		WITH RECURSIVE chain(hash, category, branch, parent_hash, delta, snapshot, message, confidence, created_at, depth) AS (
			SELECT hash, category, branch, parent_hash, delta, snapshot, message, confidence, created_at, 0
			FROM commits WHERE hash = ?
			UNION ALL
			SELECT c.hash, c.category, c.branch, c.parent_hash, c.delta, c.snapshot, c.message, c.confidence, c.created_at, chain.depth + 1
			FROM commits c JOIN chain ON c.hash = chain.parent_hash
		)
		SELECT hash, category, branch, parent_hash, delta, snapshot, message, confidence, created_at
		FROM chain ORDER BY depth LIMIT ?`, head, limit)
	if err != nil {
		return nil, fmt.Errorf("walk parents: %w", err)
	}
	defer rows.Close()

	var chain []*Commit
	for rows.Next() {
		c, err := scanCommit(rows)
		if err != nil {
			return nil, err
		}
		chain = append(chain, c)
	}
	return chain, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite surfaces constraint failures in the error text.
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}
