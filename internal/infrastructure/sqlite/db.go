// Package sqlite provides SQLite storage for brainstorm sessions and workflow
// runs. It handles connection lifecycle, migrations, and repository
// implementations.
package sqlite

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/brainstorm/internal/infrastructure/migrations"
	"github.com/zjrosen/brainstorm/internal/log"
	"github.com/zjrosen/brainstorm/internal/sessions/domain"
)

// dsnPragmas are applied by the driver to every pooled connection.
const dsnPragmas = "?_pragma=journal_mode(wal)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// DB manages the SQLite connection.
type DB struct {
	conn *sql.DB
	path string
}

// NewDB opens path, configures pragmas, and runs migrations. An existing
// database is copied to {path}.bak before migrating.
func NewDB(path string) (*DB, error) {
	log.Debug(log.CatDB, "opening database", "path", path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		log.ErrorErr(log.CatDB, "failed to create database directory", err, "path", dir)
		return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
	}

	if _, err := os.Stat(path); err == nil {
		backup := path + ".bak"
		if err := copyFile(path, backup); err != nil {
			log.ErrorErr(log.CatDB, "failed to back up database", err, "path", path, "backup", backup)
			return nil, fmt.Errorf("backing up database: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", "file:"+path+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		log.ErrorErr(log.CatDB, "failed to ping database", err, "path", path)
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if err := migrations.RunMigrations(conn); err != nil {
		_ = conn.Close()
		log.ErrorErr(log.CatDB, "failed to run migrations", err)
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	log.Info(log.CatDB, "database ready", "path", path)
	return &DB{conn: conn, path: path}, nil
}

// Close releases database resources.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	log.Debug(log.CatDB, "closing database", "path", db.path)
	return db.conn.Close()
}

// SessionRepository returns a session repository on this connection.
func (db *DB) SessionRepository() domain.SessionRepository {
	return newSessionRepository(db.conn)
}

// RunRepository returns a workflow run repository on this connection.
func (db *DB) RunRepository() domain.RunRepository {
	return newRunRepository(db.conn)
}

// Connection returns the underlying *sql.DB.
func (db *DB) Connection() *sql.DB {
	return db.conn
}

func copyFile(src, dst string) (retErr error) {
	in, err := os.Open(src) //nolint:gosec // src is the configured database path
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, info.Mode()) //nolint:gosec // dst is derived from the database path
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && retErr == nil {
			retErr = fmt.Errorf("closing backup: %w", cerr)
		}
	}()

	_, err = io.Copy(out, in)
	return err
}
