package email

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStateStore tracks which newsletter messages have been processed so
// repeated runs don't refetch or reindex them.
type SQLiteStateStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStateStore opens (or creates) the processing-state database.
func NewSQLiteStateStore(dbPath string) (*SQLiteStateStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=30000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	store := &SQLiteStateStore{db: db, path: dbPath}

	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStateStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS processed_newsletters (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		message_id TEXT UNIQUE NOT NULL,
		thread_id TEXT,
		processed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		newsletter_name TEXT,
		subject TEXT,
		sender TEXT,
		primary_url TEXT,
		status TEXT NOT NULL,
		error_message TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_message_id ON processed_newsletters(message_id);
	CREATE INDEX IF NOT EXISTS idx_processed_at ON processed_newsletters(processed_at);
	CREATE INDEX IF NOT EXISTS idx_newsletter_name ON processed_newsletters(newsletter_name);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// IsProcessed reports whether a message has already been handled.
func (s *SQLiteStateStore) IsProcessed(messageID string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM processed_newsletters WHERE message_id = ?", messageID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check processing state: %w", err)
	}

	return count > 0, nil
}

// MarkProcessed records (or updates) the outcome for one message.
func (s *SQLiteStateStore) MarkProcessed(entry *StateEntry) error {
	query := `
		INSERT INTO processed_newsletters (
			message_id, thread_id, processed_at, newsletter_name,
			subject, sender, primary_url, status, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(message_id) DO UPDATE SET
			thread_id = excluded.thread_id,
			processed_at = excluded.processed_at,
			newsletter_name = excluded.newsletter_name,
			subject = excluded.subject,
			sender = excluded.sender,
			primary_url = excluded.primary_url,
			status = excluded.status,
			error_message = excluded.error_message
	`

	processedAt := entry.ProcessedAt
	if processedAt.IsZero() {
		processedAt = time.Now()
	}

	_, err := s.db.Exec(query,
		entry.MessageID,
		entry.ThreadID,
		processedAt,
		entry.NewsletterName,
		entry.Subject,
		entry.Sender,
		entry.PrimaryURL,
		entry.Status,
		entry.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to mark message as processed: %w", err)
	}

	return nil
}

// GetEntry retrieves the state for one message, or nil when unknown.
func (s *SQLiteStateStore) GetEntry(messageID string) (*StateEntry, error) {
	query := `
		SELECT id, message_id, thread_id, processed_at, newsletter_name,
		       subject, sender, primary_url, status, COALESCE(error_message, '')
		FROM processed_newsletters
		WHERE message_id = ?
	`

	var entry StateEntry
	err := s.db.QueryRow(query, messageID).Scan(
		&entry.ID,
		&entry.MessageID,
		&entry.ThreadID,
		&entry.ProcessedAt,
		&entry.NewsletterName,
		&entry.Subject,
		&entry.Sender,
		&entry.PrimaryURL,
		&entry.Status,
		&entry.ErrorMessage,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	return &entry, nil
}

// GetRecentEntries returns the most recently processed messages.
func (s *SQLiteStateStore) GetRecentEntries(limit int) ([]StateEntry, error) {
	query := `
		SELECT id, message_id, thread_id, processed_at, newsletter_name,
		       subject, sender, primary_url, status, COALESCE(error_message, '')
		FROM processed_newsletters
		ORDER BY processed_at DESC
		LIMIT ?
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent entries: %w", err)
	}
	defer rows.Close()

	var entries []StateEntry
	for rows.Next() {
		var entry StateEntry
		err := rows.Scan(
			&entry.ID,
			&entry.MessageID,
			&entry.ThreadID,
			&entry.ProcessedAt,
			&entry.NewsletterName,
			&entry.Subject,
			&entry.Sender,
			&entry.PrimaryURL,
			&entry.Status,
			&entry.ErrorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// GetStats returns processing statistics from the local state database.
func (s *SQLiteStateStore) GetStats() (*StateStats, error) {
	stats := &StateStats{}

	rows, err := s.db.Query("SELECT status, COUNT(*) FROM processed_newsletters GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to query status counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}

		switch status {
		case "processed":
			stats.ProcessedMessages = count
		case "skipped":
			stats.SkippedMessages = count
		case "error":
			stats.ErrorMessages = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	var lastProcessed sql.NullTime
	if err := s.db.QueryRow("SELECT MAX(processed_at) FROM processed_newsletters").Scan(&lastProcessed); err != nil {
		return nil, fmt.Errorf("failed to get last processed time: %w", err)
	}
	if lastProcessed.Valid {
		stats.LastProcessed = lastProcessed.Time
	}

	stats.TotalMessages = stats.ProcessedMessages + stats.SkippedMessages + stats.ErrorMessages

	return stats, nil
}

// Cleanup removes entries older than the given time.
func (s *SQLiteStateStore) Cleanup(olderThan time.Time) error {
	if _, err := s.db.Exec("DELETE FROM processed_newsletters WHERE processed_at < ?", olderThan); err != nil {
		return fmt.Errorf("failed to cleanup old entries: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStateStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
