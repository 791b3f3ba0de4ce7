package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/RichardoC/couples-gpt/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS turns (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    input_text TEXT NOT NULL,
    gpt_response TEXT NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id)
);`

var ErrNotFound = errors.New("not found")

// ImportEntry is one record of an uploaded history file.
type ImportEntry struct {
	UserInput   string `json:"user_input"`
	GPTResponse string `json:"gpt_response"`
}

type Database struct {
	db *sql.DB
}

func New(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	// A single connection keeps writers off each other's file lock.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Database{db: db}, nil
}

func (db *Database) Close() error {
	return db.db.Close()
}

// EnsureUser returns the user with the given name, creating it on first use.
func (db *Database) EnsureUser(ctx context.Context, username string) (*models.User, error) {
	if _, err := db.db.ExecContext(ctx,
		`INSERT INTO users (username) VALUES (?) ON CONFLICT(username) DO NOTHING`,
		username); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user := &models.User{}
	err := db.db.QueryRowContext(ctx,
		`SELECT id, username FROM users WHERE username = ?`, username).
		Scan(&user.ID, &user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (db *Database) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	err := db.db.QueryRowContext(ctx,
		`SELECT id, username FROM users WHERE id = ?`, id).
		Scan(&user.ID, &user.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (db *Database) AppendTurn(ctx context.Context, turn *models.Turn) error {
	query := `
        INSERT INTO turns (user_id, input_text, gpt_response)
        VALUES (?, ?, ?)
        RETURNING id`

	return db.db.QueryRowContext(ctx, query, turn.UserID, turn.InputText, turn.GPTResponse).Scan(&turn.ID)
}

// RecentTurns returns up to limit turns for the user, newest first.
func (db *Database) RecentTurns(ctx context.Context, userID int64, limit int) ([]models.Turn, error) {
	query := `
        SELECT id, user_id, input_text, gpt_response
        FROM turns
        WHERE user_id = ?
        ORDER BY id DESC
        LIMIT ?`

	rows, err := db.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	turns := make([]models.Turn, 0, limit)
	for rows.Next() {
		var t models.Turn
		if err := rows.Scan(&t.ID, &t.UserID, &t.InputText, &t.GPTResponse); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// ImportTurns stores every entry as its own row. Either all rows land or none do.
func (db *Database) ImportTurns(ctx context.Context, userID int64, entries []ImportEntry) (int, error) {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO turns (user_id, input_text, gpt_response) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, userID, e.UserInput, e.GPTResponse); err != nil {
			return 0, fmt.Errorf("failed to insert entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(entries), nil
}

func (db *Database) CountTurns(ctx context.Context, userID int64) (int, error) {
	var n int
	err := db.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM turns WHERE user_id = ?`, userID).Scan(&n)
	return n, err
}

func (db *Database) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := db.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
