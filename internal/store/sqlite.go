package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/domain"
	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS users (
		username TEXT PRIMARY KEY,
		password_hash TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS medical_history (
		username TEXT NOT NULL,
		date TEXT,
		substance TEXT,
		dosage TEXT,
		reaction TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_medical_history_username ON medical_history(username);

	CREATE TABLE IF NOT EXISTS chat_messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_messages_username ON chat_messages(username, id);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// storeErr wraps a driver error, mapping lock contention onto
// domain.ErrStoreUnavailable so callers see a typed failure.
func storeErr(op string, err error) error {
	if shared.IsSQLiteBusyError(err) {
		return fmt.Errorf("%s: %w", op, domain.ErrStoreUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// CreateUser inserts a new user row.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, passwordHash string) error {
	query := `INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, username, passwordHash, time.Now().Unix())
	if err != nil {
		if shared.IsSQLiteUniqueError(err) {
			return domain.ErrDuplicateUsername
		}
		return storeErr("insert user", err)
	}
	return nil
}

// GetUser retrieves a user by username. Returns nil, nil when absent.
func (s *SQLiteStore) GetUser(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT username, password_hash, created_at FROM users WHERE username = ?`
	row := s.db.QueryRowContext(ctx, query, username)

	var user domain.User
	var createdAt int64
	err := row.Scan(&user.Username, &user.PasswordHash, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}

	user.CreatedAt = time.Unix(createdAt, 0)
	return &user, nil
}

// SeedMedicalHistory inserts the demo record set for a new user.
func (s *SQLiteStore) SeedMedicalHistory(ctx context.Context, username string) error {
	records := demoRecords(username)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	query := `INSERT INTO medical_history (username, date, substance, dosage, reaction) VALUES (?, ?, ?, ?, ?)`
	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, query, username, rec.Date, rec.Substance, rec.Dosage, rec.Reaction); err != nil {
			return storeErr("insert medical record", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed transaction: %w", err)
	}
	return nil
}

// MedicalHistory returns all records for a user in storage order.
func (s *SQLiteStore) MedicalHistory(ctx context.Context, username string) ([]domain.MedicalRecord, error) {
	query := `SELECT username, date, substance, dosage, reaction FROM medical_history WHERE username = ? ORDER BY rowid`
	rows, err := s.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("query medical history: %w", err)
	}
	defer rows.Close()

	var records []domain.MedicalRecord
	for rows.Next() {
		var rec domain.MedicalRecord
		if err := rows.Scan(&rec.Username, &rec.Date, &rec.Substance, &rec.Dosage, &rec.Reaction); err != nil {
			return nil, fmt.Errorf("scan medical record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate medical history: %w", err)
	}
	return records, nil
}

// AppendMessage inserts one conversation entry and returns its ID.
func (s *SQLiteStore) AppendMessage(ctx context.Context, username, role, content string) (int64, error) {
	query := `INSERT INTO chat_messages (username, role, content, created_at) VALUES (?, ?, ?, ?)`
	result, err := s.db.ExecContext(ctx, query, username, role, content, time.Now().Unix())
	if err != nil {
		return 0, storeErr("insert chat message", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get message id: %w", err)
	}
	return id, nil
}

// ChatHistory returns a user's conversation oldest-first. A positive
// limit keeps only the most recent limit entries: the inner query
// selects the newest rows, the outer restores chronological order.
func (s *SQLiteStore) ChatHistory(ctx context.Context, username string, limit int) ([]domain.ChatMessage, error) {
	query := `SELECT id, username, role, content, created_at FROM chat_messages WHERE username = ? ORDER BY id`
	args := []interface{}{username}

	if limit > 0 {
		query = `
		SELECT id, username, role, content, created_at FROM (
			SELECT id, username, role, content, created_at
			FROM chat_messages WHERE username = ?
			ORDER BY id DESC LIMIT ?
		) ORDER BY id`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query chat history: %w", err)
	}
	defer rows.Close()

	var messages []domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		var createdAt int64
		if err := rows.Scan(&msg.ID, &msg.Username, &msg.Role, &msg.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		msg.CreatedAt = time.Unix(createdAt, 0)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat history: %w", err)
	}
	return messages, nil
}

// DeleteExchange removes a user message and its paired assistant reply.
// Both deletes run in one transaction so a crash cannot leave the
// assistant half of the pair orphaned.
func (s *SQLiteStore) DeleteExchange(ctx context.Context, username string, userMsgID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	result, err := tx.ExecContext(ctx,
		`DELETE FROM chat_messages WHERE id = ? AND username = ? AND role = ?`,
		userMsgID, username, domain.RoleUser,
	)
	if err != nil {
		return storeErr("delete user message", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		// No matching user message: a no-op, and the assistant side
		// must not be touched either.
		return tx.Commit()
	}

	// Only the single nearest assistant reply after the user message.
	_, err = tx.ExecContext(ctx, `
		DELETE FROM chat_messages WHERE id = (
			SELECT id FROM chat_messages
			WHERE username = ? AND role = ? AND id > ?
			ORDER BY id LIMIT 1
		)`,
		username, domain.RoleAssistant, userMsgID,
	)
	if err != nil {
		return storeErr("delete assistant message", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete transaction: %w", err)
	}
	return nil
}
