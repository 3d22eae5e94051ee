// Package sqlite provides a SQLite-backed contact message store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"shrikavin.dev/internal/models"
	"shrikavin.dev/internal/storage/sqlite/migrations"
	"shrikavin.dev/internal/storage/sqlitemigrate"
)

// ErrNotFound is returned when a message does not exist
var ErrNotFound = errors.New("message not found")

// Store persists contact messages in SQLite
type Store struct {
	db *sql.DB
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Open opens the database at path and applies embedded migrations
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise get its own database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(ctx, db, migrations.FS, "."); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the SQLite handle
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveMessage inserts one accepted submission
func (s *Store) SaveMessage(ctx context.Context, msg models.ContactMessage) error {
	if msg.ID == uuid.Nil {
		return errors.New("message id is required")
	}
	var delivered any
	if msg.DeliveredAt != nil {
		delivered = toMillis(*msg.DeliveredAt)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contact_messages
		   (id, name, email, subject, message, remote_hash, created_at, delivered_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.ID.String(), msg.Name, msg.Email, msg.Subject, msg.Message,
		msg.RemoteHash, toMillis(msg.CreatedAt), delivered,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// MarkDelivered records the delivery time of a message
func (s *Store) MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE contact_messages SET delivered_at = ? WHERE id = ?`,
		toMillis(at), id.String(),
	)
	if err != nil {
		return fmt.Errorf("mark delivered: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark delivered: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetMessage loads one message by id
func (s *Store) GetMessage(ctx context.Context, id uuid.UUID) (*models.ContactMessage, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, subject, message, remote_hash, created_at, delivered_at
		   FROM contact_messages WHERE id = ?`, id.String())
	msg, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return msg, nil
}

// ListMessages returns the most recent messages first
func (s *Store) ListMessages(ctx context.Context, limit int) ([]models.ContactMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, subject, message, remote_hash, created_at, delivered_at
		   FROM contact_messages ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []models.ContactMessage
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, *msg)
	}
	return out, rows.Err()
}

// PurgeBefore deletes messages older than cutoff and returns how many
// were removed
func (s *Store) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM contact_messages WHERE created_at < ?`, toMillis(cutoff))
	if err != nil {
		return 0, fmt.Errorf("purge messages: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(row scanner) (*models.ContactMessage, error) {
	var (
		msg       models.ContactMessage
		id        string
		created   int64
		delivered sql.NullInt64
	)
	if err := row.Scan(&id, &msg.Name, &msg.Email, &msg.Subject, &msg.Message,
		&msg.RemoteHash, &created, &delivered); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse id %q: %w", id, err)
	}
	msg.ID = parsed
	msg.CreatedAt = fromMillis(created)
	if delivered.Valid {
		at := fromMillis(delivered.Int64)
		msg.DeliveredAt = &at
	}
	return &msg, nil
}
