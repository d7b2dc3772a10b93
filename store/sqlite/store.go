package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jonwraymond/coachkit/engine"
	"github.com/jonwraymond/coachkit/quota"
	"github.com/jonwraymond/coachkit/tier"
)

// Store is a SQLite-backed user and conversation store. It implements
// quota.Store and engine.ConversationStore.
type Store struct {
	db *sql.DB
}

var (
	_ quota.Store              = (*Store)(nil)
	_ engine.ConversationStore = (*Store)(nil)
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	tier TEXT NOT NULL DEFAULT 'free',
	scenarios_accessed INTEGER NOT NULL DEFAULT 0,
	last_reset DATETIME NOT NULL
);
`

const createConversationsTable = `
CREATE TABLE IF NOT EXISTS conversations (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	user_input TEXT NOT NULL,
	ai_response TEXT NOT NULL,
	feedback TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversations_user_time ON conversations(user_id, created_at);
`

// New opens (creating if needed) the database at dbPath and runs
// auto-migration. Use ":memory:" for an ephemeral store.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store db: %w", err)
	}

	// The driver serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createUsersTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate users table: %w", err)
	}
	if _, err := db.Exec(createConversationsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate conversations table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// PingContext reports whether the database is reachable.
func (s *Store) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetQuota implements quota.Store.
func (s *Store) GetQuota(ctx context.Context, userID string) (quota.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT tier, scenarios_accessed, last_reset FROM users WHERE id = ?`, userID)

	var tierName string
	var rec quota.Record
	if err := row.Scan(&tierName, &rec.ScenariosAccessed, &rec.LastReset); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return quota.Record{}, quota.ErrUserNotFound
		}
		return quota.Record{}, fmt.Errorf("load user %s: %w", userID, err)
	}
	rec.UserID = userID
	rec.Tier = tier.ParseOrFree(tierName)
	return rec, nil
}

// SaveQuota implements quota.Store.
func (s *Store) SaveQuota(ctx context.Context, rec quota.Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, tier, scenarios_accessed, last_reset)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			tier = excluded.tier,
			scenarios_accessed = excluded.scenarios_accessed,
			last_reset = excluded.last_reset`,
		rec.UserID, rec.Tier.String(), rec.ScenariosAccessed, rec.LastReset.UTC())
	if err != nil {
		return fmt.Errorf("save user %s: %w", rec.UserID, err)
	}
	return nil
}

// SetTier updates a user's subscription tier, creating the user when
// absent.
func (s *Store) SetTier(ctx context.Context, userID string, t tier.Tier) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, tier, scenarios_accessed, last_reset)
		 VALUES (?, ?, 0, ?)
		 ON CONFLICT(id) DO UPDATE SET tier = excluded.tier`,
		userID, t.String(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set tier for %s: %w", userID, err)
	}
	return nil
}

// SaveConversation implements engine.ConversationStore.
func (s *Store) SaveConversation(ctx context.Context, rec engine.ConversationRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, user_id, user_input, ai_response, feedback, category, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Input, rec.Response, rec.Feedback, rec.Category, rec.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("save conversation %s: %w", rec.ID, err)
	}
	return nil
}

// ListConversations returns a user's most recent exchanges, newest
// first, at most limit rows.
func (s *Store) ListConversations(ctx context.Context, userID string, limit int) ([]engine.ConversationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, user_input, ai_response, feedback, category, created_at
		 FROM conversations WHERE user_id = ?
		 ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversations for %s: %w", userID, err)
	}
	defer rows.Close()

	var recs []engine.ConversationRecord
	for rows.Next() {
		var rec engine.ConversationRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Input, &rec.Response, &rec.Feedback, &rec.Category, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
