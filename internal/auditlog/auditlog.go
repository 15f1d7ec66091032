// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auditlog persists an append-only trail of login attempts and
// executed requests to a local SQLite database.
package auditlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// Log writes audit records to a SQLite database. Every write is a plain
// INSERT — rows are never updated or deleted, matching the append-only
// contract.
type Log struct {
	db *sql.DB
}

// Open creates (if needed) and opens the SQLite database at path.
func Open(path string) (*Log, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit log directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	// SQLite permits exactly one writer; keep the pool matched to that.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	l := &Log{db: db}
	if err := l.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

func (l *Log) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS login_attempts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		occurred_at TIMESTAMP NOT NULL,
		remote_addr TEXT NOT NULL,
		username TEXT NOT NULL,
		success INTEGER NOT NULL,
		reason TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		occurred_at TIMESTAMP NOT NULL,
		username TEXT NOT NULL,
		raw_command TEXT NOT NULL,
		success INTEGER NOT NULL
	);
	`
	_, err := l.db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (l *Log) Close() error { return l.db.Close() }

// RecordLogin appends one login-attempt record.
func (l *Log) RecordLogin(ctx context.Context, remoteAddr, username string, success bool, reason string) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO login_attempts (occurred_at, remote_addr, username, success, reason) VALUES (?, ?, ?, ?, ?)`,
		time.Now().UTC(), remoteAddr, username, success, reason,
	)
	return err
}

// RecordRequest appends one executed-command record.
func (l *Log) RecordRequest(ctx context.Context, username, rawCommand string, success bool) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO requests (occurred_at, username, raw_command, success) VALUES (?, ?, ?, ?)`,
		time.Now().UTC(), username, rawCommand, success,
	)
	return err
}

// LoginAttemptCount returns how many login-attempt rows are recorded for
// username, used by tests and diagnostics.
func (l *Log) LoginAttemptCount(ctx context.Context, username string) (int, error) {
	var count int
	err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM login_attempts WHERE username = ?`, username).Scan(&count)
	return count, err
}
