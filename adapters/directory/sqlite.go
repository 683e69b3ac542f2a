// Package directory implements the user-directory collaborator on sqlite:
// credential rows, the friendship graph and issued login sessions.
package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/songclash/songclash/core"
)

// SQLite backs ports.Directory and ports.SessionStore with one database
// file. Friendship edges are stored once and matched from either side.
type SQLite struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		uid TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS friendships (
		user_a INTEGER NOT NULL REFERENCES users(id),
		user_b INTEGER NOT NULL REFERENCES users(id),
		PRIMARY KEY (user_a, user_b)
	);

	CREATE TABLE IF NOT EXISTS login_sessions (
		uid TEXT NOT NULL,
		secret TEXT NOT NULL UNIQUE,
		timeout INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_login_sessions_timeout ON login_sessions(timeout);
	`
	_, err := s.db.Exec(schema)
	return err
}

// LookupCredentials resolves username/password to an identity. A missing row
// and a wrong password are indistinguishable to the caller.
func (s *SQLite) LookupCredentials(ctx context.Context, username, password string) (*core.Identity, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, uid FROM users WHERE username = ? AND password = ?",
		username, password,
	)

	var id core.Identity
	id.Username = username
	if err := row.Scan(&id.RowID, &id.UID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNoSuchUser
		}
		return nil, fmt.Errorf("credential lookup: %w", err)
	}
	return &id, nil
}

// ListFriendships returns every edge touching rowID, whichever side of the
// stored pair it is on.
func (s *SQLite) ListFriendships(ctx context.Context, rowID int64) ([]core.Friendship, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.uid, u.username FROM friendships f JOIN users u ON u.id = f.user_b WHERE f.user_a = ?
		UNION
		SELECT u.uid, u.username FROM friendships f JOIN users u ON u.id = f.user_a WHERE f.user_b = ?`,
		rowID, rowID,
	)
	if err != nil {
		return nil, fmt.Errorf("friendship lookup: %w", err)
	}
	defer rows.Close()

	var out []core.Friendship
	for rows.Next() {
		var f core.Friendship
		if err := rows.Scan(&f.UID, &f.Username); err != nil {
			return nil, fmt.Errorf("friendship scan: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Save persists an issued session secret.
func (s *SQLite) Save(ctx context.Context, session *core.Session) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO login_sessions (uid, secret, timeout) VALUES (?, ?, ?)",
		session.UID, session.Secret, session.ExpiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

// PurgeExpired deletes sessions whose expiry precedes now.
func (s *SQLite) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM login_sessions WHERE timeout < ?", now.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("session purge: %w", err)
	}
	return res.RowsAffected()
}

// CreateUser inserts a directory row and returns its identity. Used by
// seeding and tests; the server itself never writes users.
func (s *SQLite) CreateUser(ctx context.Context, username, password, uid string) (*core.Identity, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, password, uid) VALUES (?, ?, ?)",
		username, password, uid,
	)
	if err != nil {
		return nil, fmt.Errorf("user insert: %w", err)
	}
	rowID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &core.Identity{UID: uid, Username: username, RowID: rowID}, nil
}

// AddFriendship records an edge between two directory rows. The edge is
// stored once; lookups match it from either side.
func (s *SQLite) AddFriendship(ctx context.Context, a, b int64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO friendships (user_a, user_b) VALUES (?, ?)", a, b,
	)
	if err != nil {
		return fmt.Errorf("friendship insert: %w", err)
	}
	return nil
}
