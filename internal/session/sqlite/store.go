package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"codeladder/internal/session"
)

type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ session.Store = (*Store)(nil)

func NewStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		path = "session.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &Store{db: db, now: time.Now}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	// Single-row table: id is pinned to 1 so Save always overwrites.
	statements := []string{
		`CREATE TABLE IF NOT EXISTS session (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			username TEXT NOT NULL,
			token TEXT NOT NULL,
			saved_at_unix INTEGER NOT NULL
		);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Save(ctx context.Context, current session.Session) error {
	if current.Username == "" || current.Token == "" {
		return errors.New("username and token are required")
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO session (id, username, token, saved_at_unix) VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			token = excluded.token,
			saved_at_unix = excluded.saved_at_unix`,
		current.Username,
		current.Token,
		s.now().UTC().Unix(),
	)
	return err
}

// Load returns the zero Session when nothing has been saved.
func (s *Store) Load(ctx context.Context) (session.Session, error) {
	var username, token string
	err := s.db.QueryRowContext(ctx, `SELECT username, token FROM session WHERE id = 1`).Scan(&username, &token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return session.Session{}, nil
		}
		return session.Session{}, err
	}
	return session.New(username, token), nil
}

func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session`)
	return err
}
