// Package history keeps a log of builds in a sqlite database.
package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned by Get when no build matches.
var ErrNotFound = errors.New("build not found")

// ErrAmbiguous is returned by Get when an ID prefix matches several builds.
var ErrAmbiguous = errors.New("ambiguous build id")

// Status values of a Build.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Build is one recorded run of the build command.
type Build struct {
	ID        string         `json:"id"`
	Source    string         `json:"source"`
	Dest      string         `json:"dest"`
	Root      string         `json:"root"`
	Dirs      int            `json:"dirs"`
	Files     int            `json:"files"`
	DryRun    bool           `json:"dry_run"`
	Status    string         `json:"status"`
	Error     string         `json:"error,omitempty"`
	Actions   map[string]int `json:"actions,omitempty"` // filesystem steps per action
	CreatedAt time.Time      `json:"created_at"`
}

// Store manages the build log.
type Store struct {
	db      *sql.DB
	dataDir string
}

// Open opens or creates history.db inside dataDir.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "history.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{
		db:      db,
		dataDir: dataDir,
	}

	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize history: %w", err)
	}

	return s, nil
}

func (s *Store) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		dest TEXT NOT NULL,
		root TEXT NOT NULL,
		dirs INTEGER NOT NULL DEFAULT 0,
		files INTEGER NOT NULL DEFAULT 0,
		dry_run BOOLEAN NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		error TEXT,
		actions TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_builds_created ON builds(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record stores b. An empty ID is filled with a new UUID and a zero
// CreatedAt with the current time.
func (s *Store) Record(b *Build) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	if b.Status == "" {
		b.Status = StatusOK
	}

	actions, err := json.Marshal(b.Actions)
	if err != nil {
		return fmt.Errorf("marshal actions: %w", err)
	}

	query := `
	INSERT OR REPLACE INTO builds (id, source, dest, root, dirs, files, dry_run, status, error, actions, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.Exec(query, b.ID, b.Source, b.Dest, b.Root, b.Dirs, b.Files, b.DryRun,
		b.Status, b.Error, string(actions), b.CreatedAt)
	return err
}

const selectBuilds = `
	SELECT id, source, dest, root, dirs, files, dry_run, status, error, actions, created_at
	FROM builds`

// Get retrieves a build by its ID or by a unique prefix of it.
func (s *Store) Get(id string) (*Build, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrNotFound)
	}

	rows, err := s.db.Query(selectBuilds+` WHERE id = ? OR id LIKE ? || '%' ORDER BY id = ? DESC LIMIT 2`, id, id, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found []*Build
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch {
	case len(found) == 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case found[0].ID == id, len(found) == 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguous, id)
	}
}

// List returns the most recent builds first. A limit of zero or less
// returns every build.
func (s *Store) List(limit int) ([]*Build, error) {
	query := selectBuilds + ` ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var builds []*Build
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}
	return builds, rows.Err()
}

// Remove deletes a build.
func (s *Store) Remove(id string) error {
	_, err := s.db.Exec("DELETE FROM builds WHERE id = ?", id)
	return err
}

// Close closes the history database
func (s *Store) Close() error {
	return s.db.Close()
}

func scanBuild(rows *sql.Rows) (*Build, error) {
	b := &Build{}
	var errText, actions sql.NullString
	err := rows.Scan(
		&b.ID, &b.Source, &b.Dest, &b.Root, &b.Dirs, &b.Files, &b.DryRun,
		&b.Status, &errText, &actions, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Error = errText.String

	if actions.String != "" && actions.String != "null" {
		if err := json.Unmarshal([]byte(actions.String), &b.Actions); err != nil {
			return nil, fmt.Errorf("unmarshal actions: %w", err)
		}
	}
	return b, nil
}
