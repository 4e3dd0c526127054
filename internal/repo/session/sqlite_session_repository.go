package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mkrupp/skillsphere/internal/domain"
	"github.com/mkrupp/skillsphere/internal/infra/logging"
)

// SQLiteSessionRepositoryConfig holds configuration for the SQLite session repository.
type SQLiteSessionRepositoryConfig struct {
	// DatabasePath is the filesystem path to the SQLite database file
	DatabasePath string `env:"DATABASE_PATH" default:"var/storage/sessions.db"`
}

// SQLiteSessionRepository implements Repository using SQLite as the storage backend.
type SQLiteSessionRepository struct {
	db        *sql.DB
	log       logging.Logger
	writeLock *sync.Mutex // go-sqlite does not support concurrent writes
}

var _ Repository = (*SQLiteSessionRepository)(nil)

// SQLiteSessionRepositoryFactory creates a factory function that returns a new SQLiteSessionRepository.
func SQLiteSessionRepositoryFactory(cfg SQLiteSessionRepositoryConfig) RepositoryFactory {
	return func() (Repository, error) {
		return NewSQLiteSessionRepository(cfg)
	}
}

// NewSQLiteSessionRepository opens the database and creates the schema if needed.
func NewSQLiteSessionRepository(cfg SQLiteSessionRepositoryConfig) (*SQLiteSessionRepository, error) {
	log := logging.GetLogger("repo.session.sqlite_session_repository").With(
		logging.Group("db", "path", cfg.DatabasePath),
	)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir all: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := initializeDB(db); err != nil {
		return nil, fmt.Errorf("initialize db: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &SQLiteSessionRepository{
		db:        db,
		log:       log,
		writeLock: new(sync.Mutex),
	}, nil
}

func initializeDB(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS tokens (
			session_id TEXT    PRIMARY KEY,
			token      TEXT    NOT NULL,
			updated_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS flashes (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT    NOT NULL,
			kind       TEXT    NOT NULL CHECK (kind IN ('success', 'error')),
			message    TEXT    NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS flashes_session_idx ON flashes (session_id, id);
	`); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

// SaveToken implements Repository.SaveToken using SQLite.
func (r *SQLiteSessionRepository) SaveToken(ctx context.Context, sessionID, token string) (err error) {
	defer r.logResult(ctx, "save token", sessionID, &err)

	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO tokens (session_id, token, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (session_id) DO UPDATE SET token = excluded.token, updated_at = excluded.updated_at
	`, sessionID, token, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("upsert token: %w", err)
	}

	return nil
}

// GetToken implements Repository.GetToken using SQLite.
func (r *SQLiteSessionRepository) GetToken(ctx context.Context, sessionID string) (string, bool, error) {
	var token string

	err := r.db.QueryRowContext(ctx,
		"SELECT token FROM tokens WHERE session_id = ?",
		sessionID,
	).Scan(&token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("query token: %w", err)
	}

	return token, token != "", nil
}

// DeleteToken implements Repository.DeleteToken using SQLite.
func (r *SQLiteSessionRepository) DeleteToken(ctx context.Context, sessionID string) (err error) {
	defer r.logResult(ctx, "delete token", sessionID, &err)

	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	if _, err := r.db.ExecContext(ctx, "DELETE FROM tokens WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}

	return nil
}

// PushFlash implements Repository.PushFlash using SQLite.
func (r *SQLiteSessionRepository) PushFlash(ctx context.Context, sessionID string, flash domain.Flash) (err error) {
	defer r.logResult(ctx, "push flash", sessionID, &err)

	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO flashes (session_id, kind, message, created_at) VALUES (?, ?, ?, ?)",
		sessionID,
		string(flash.Kind),
		flash.Message,
		time.Now().Unix(),
	)
	if err != nil {
		var liteErr *sqlite.Error
		if errors.As(err, &liteErr) && liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_CHECK {
			err = errors.Join(domain.ErrValidation, err)
		}

		return fmt.Errorf("insert flash: %w", err)
	}

	return nil
}

// PopFlashes implements Repository.PopFlashes using SQLite.
func (r *SQLiteSessionRepository) PopFlashes(ctx context.Context, sessionID string) (flashes []domain.Flash, err error) {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx,
		"SELECT kind, message FROM flashes WHERE session_id = ? ORDER BY id",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query flashes: %w", err)
	}

	for rows.Next() {
		var flash domain.Flash
		if err := rows.Scan(&flash.Kind, &flash.Message); err != nil {
			rows.Close()

			return nil, fmt.Errorf("scan flash: %w", err)
		}

		flashes = append(flashes, flash)
	}

	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("close rows: %w", err)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flashes: %w", err)
	}

	if len(flashes) == 0 {
		return nil, tx.Rollback()
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM flashes WHERE session_id = ?", sessionID); err != nil {
		return nil, fmt.Errorf("delete flashes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return flashes, nil
}

// PurgeIdle implements Repository.PurgeIdle using SQLite.
func (r *SQLiteSessionRepository) PurgeIdle(ctx context.Context, cutoff time.Time) (purged int64, err error) {
	defer func() {
		if err != nil {
			r.log.ErrorContext(ctx, "purge idle sessions failed", "error", err)
		} else {
			r.log.InfoContext(ctx, "idle sessions purged", "count", purged, "cutoff", cutoff)
		}
	}()

	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	res, err := r.db.ExecContext(ctx, "DELETE FROM tokens WHERE updated_at < ?", cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("delete tokens: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, "DELETE FROM flashes WHERE created_at < ?", cutoff.Unix()); err != nil {
		return 0, fmt.Errorf("delete flashes: %w", err)
	}

	purged, err = res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return purged, nil
}

// Close implements Repository.Close by closing the database connection.
func (r *SQLiteSessionRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}

func (r *SQLiteSessionRepository) logResult(ctx context.Context, op, sessionID string, err *error) {
	log := r.log.With(logging.Group("session", "id", sessionID))

	if *err != nil {
		log.ErrorContext(ctx, op+" failed", "error", *err)
	} else {
		log.DebugContext(ctx, op+" done")
	}
}
