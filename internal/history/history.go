// Package history keeps an audit log of verdicts in SQLite.
package history

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/raysh454/phishguard/internal/logging"
	"github.com/raysh454/phishguard/internal/model"

	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed schema.sql
var schemaFS embed.FS

var ErrNotFound = errors.New("verdict not found")

const (
	DefaultListLimit = 50
	MaxListLimit     = 1000
)

// Entry is one recorded verdict.
type Entry struct {
	ID               string    `json:"id"`
	URL              string    `json:"url"`
	FinalURL         string    `json:"final_url"`
	Label            string    `json:"label"`
	Stage            string    `json:"stage"`
	HeuristicScore   int       `json:"heuristic_score"`
	ScoreKind        string    `json:"score_kind,omitempty"`
	Score            float64   `json:"score"`
	Threshold        float64   `json:"threshold"`
	RegisteredDomain string    `json:"registered_domain,omitempty"`
	Trusted          bool      `json:"trusted"`
	Fetched          bool      `json:"fetched"`
	Redirected       bool      `json:"redirected"`
	Info             []string  `json:"info"`
	DurationMs       int64     `json:"duration_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

// SQLiteStore records verdicts and lists them newest first.
type SQLiteStore struct {
	db     *sql.DB
	owned  bool
	logger logging.Logger
	now    func() time.Time
}

// Open creates (if needed) and opens the database at path.
func Open(path string, logger logging.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	s, err := New(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// New applies the schema to db. The caller keeps ownership of db.
func New(db *sql.DB, logger logging.Logger) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("history: db is nil")
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	if err := applySchema(db); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{
		db:     db,
		logger: logger.With(logging.Field{Key: "component", Value: "history"}),
		now:    time.Now,
	}, nil
}

func applySchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Record stores v under a new id.
func (s *SQLiteStore) Record(ctx context.Context, v *model.Verdict) error {
	if v == nil {
		return errors.New("history: nil verdict")
	}
	info, err := json.Marshal(nonNil(v.Info))
	if err != nil {
		return fmt.Errorf("encode info: %w", err)
	}
	created := v.ClassifiedAt
	if created.IsZero() {
		created = s.now()
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO verdicts (id, url, final_url, label, stage, heuristic_score, score_kind, score,
                               threshold, registered_domain, trusted, fetched, redirected, info,
                               duration_ms, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, v.URL, v.FinalURL, v.Label.Name(), string(v.Stage), v.HeuristicScore, v.ScoreKind, v.Score,
		v.Threshold, v.RegisteredDomain, v.Trusted, v.Fetched, v.Redirected, string(info),
		v.Duration.Milliseconds(), created.UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert verdict: %w", err)
	}
	s.logger.Debug("verdict recorded", logging.Field{Key: "id", Value: id}, logging.Field{Key: "url", Value: v.URL})
	return nil
}

const selectColumns = `SELECT id, url, final_url, label, stage, heuristic_score, score_kind, score,
       threshold, registered_domain, trusted, fetched, redirected, info, duration_ms, created_at
FROM verdicts`

// List returns up to limit entries, newest first. A non-positive limit means
// DefaultListLimit; limits above MaxListLimit are clamped.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)

	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query verdicts: %w", err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// Get returns the entry with id or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ? LIMIT 1`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// Close closes the database if Open created it.
func (s *SQLiteStore) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var (
		e       Entry
		info    string
		created int64
	)
	err := row.Scan(&e.ID, &e.URL, &e.FinalURL, &e.Label, &e.Stage, &e.HeuristicScore, &e.ScoreKind, &e.Score,
		&e.Threshold, &e.RegisteredDomain, &e.Trusted, &e.Fetched, &e.Redirected, &info, &e.DurationMs, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan verdict: %w", err)
	}
	if err := json.Unmarshal([]byte(info), &e.Info); err != nil {
		return nil, fmt.Errorf("decode info for %s: %w", e.ID, err)
	}
	e.CreatedAt = time.Unix(0, created).UTC()
	return &e, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
