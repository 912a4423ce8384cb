// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists ranked canonical documents between runs. The
// pipeline core never touches this store directly: the orchestrator loads
// the recent window before a run (novelty scoring consumes it read-only)
// and saves the ranked output after.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/pdiddy/digest-engine/pkg/types"
)

const dbFile = "digest.db"

// Store manages the history SQLite database.
type Store struct {
	db         *sql.DB
	recentDays int
	log        zerolog.Logger
}

// NewStore opens or creates the history database at dataDir/digest.db,
// creating the schema when absent.
func NewStore(cfg types.StorageConfig, log zerolog.Logger) (*Store, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	recentDays := cfg.RecentWindowDays
	if recentDays <= 0 {
		recentDays = 14
	}

	s := &Store{db: db, recentDays: recentDays, log: log}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			topics TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS items (
			fingerprint TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			authors TEXT,
			source TEXT,
			doi TEXT,
			arxiv_id TEXT,
			url TEXT,
			published_at TEXT,
			relevance REAL,
			recency REAL,
			credibility REAL,
			novelty REAL,
			total REAL,
			relevance_fallback INTEGER NOT NULL DEFAULT 0,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_created_at ON items(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_items_run_id ON items(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveRun records a run and its ranked documents, returning the run ID.
// A document already stored from an earlier run keeps its original row;
// reappearance is expected and not an error.
func (s *Store) SaveRun(ctx context.Context, topics []string, ranked []types.ScoredDocument) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, topics) VALUES (?, ?)`,
		now, strings.Join(topics, ", "),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	for _, sd := range ranked {
		doc := sd.Document
		var published string
		if !doc.Date.IsZero() {
			published = doc.Date.UTC().Format(time.RFC3339)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO items
			 (fingerprint, title, authors, source, doi, arxiv_id, url, published_at,
			  relevance, recency, credibility, novelty, total, relevance_fallback, run_id, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sd.PrimaryFingerprint().Key(),
			doc.Title,
			strings.Join(doc.Authors, "; "),
			doc.Source,
			doc.ExternalIDs["doi"],
			doc.ExternalIDs["arxiv"],
			doc.URL,
			published,
			sd.Scores.Relevance,
			sd.Scores.Recency,
			sd.Scores.Credibility,
			sd.Scores.Novelty,
			sd.Total,
			boolToInt(sd.Scores.RelevanceFallback),
			runID,
			now,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting item %q: %w", doc.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}

	s.log.Debug().Int64("run_id", runID).Int("items", len(ranked)).Msg("run saved")
	return runID, nil
}

// RecentWindow returns documents stored within the configured window,
// newest first. The result feeds novelty scoring and is never mutated by
// the pipeline.
func (s *Store) RecentWindow(ctx context.Context) ([]types.CandidateDocument, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.recentDays).Format(time.RFC3339)

	rows, err := s.db.QueryContext(ctx,
		`SELECT title, authors, source, doi, arxiv_id, url, published_at
		 FROM items WHERE created_at >= ? ORDER BY created_at DESC`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("querying recent window: %w", err)
	}
	defer rows.Close()

	var docs []types.CandidateDocument
	for rows.Next() {
		var title, authors, source, doi, arxivID, url, published string
		if err := rows.Scan(&title, &authors, &source, &doi, &arxivID, &url, &published); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}

		doc := types.CandidateDocument{
			Title:  title,
			Source: source,
			URL:    url,
		}
		if authors != "" {
			doc.Authors = strings.Split(authors, "; ")
		}
		ids := make(map[string]string)
		if doi != "" {
			ids["doi"] = doi
		}
		if arxivID != "" {
			ids["arxiv"] = arxivID
		}
		if len(ids) > 0 {
			doc.ExternalIDs = ids
		}
		if published != "" {
			if t, parseErr := time.Parse(time.RFC3339, published); parseErr == nil {
				doc.Date = t
			}
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Seen reports which of the given fingerprints already exist in the
// store, keyed by Fingerprint.Key().
func (s *Store) Seen(ctx context.Context, fps []types.Fingerprint) (map[string]bool, error) {
	seen := make(map[string]bool, len(fps))
	for _, fp := range fps {
		var one int
		err := s.db.QueryRowContext(ctx,
			`SELECT 1 FROM items WHERE fingerprint = ?`, fp.Key()).Scan(&one)
		switch {
		case err == sql.ErrNoRows:
		case err != nil:
			return nil, fmt.Errorf("checking fingerprint %s: %w", fp.Key(), err)
		default:
			seen[fp.Key()] = true
		}
	}
	return seen, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
