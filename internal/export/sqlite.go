package export

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/iksnae/weather-chat/internal/chat"
	_ "modernc.org/sqlite"
)

var sqliteSchema = []string{`
CREATE TABLE transcript (
	id         TEXT PRIMARY KEY,
	started_at TEXT NOT NULL
)`, `
CREATE TABLE messages (
	position     INTEGER PRIMARY KEY,
	id           TEXT NOT NULL,
	role         TEXT NOT NULL,
	content      TEXT NOT NULL,
	weather_data TEXT,
	timestamp    TEXT NOT NULL
)`}

// SQLiteExporter exports transcripts as a SQLite database file. The database
// is built in a temporary directory and its bytes are copied to the writer.
type SQLiteExporter struct{}

// Export exports a transcript to a SQLite database
func (e *SQLiteExporter) Export(transcript *chat.Transcript, w io.Writer) error {
	dir, err := os.MkdirTemp("", "weather-chat-export-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	path := filepath.Join(dir, "transcript.db")
	if err := writeSQLite(path, transcript); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to copy database: %w", err)
	}
	return nil
}

func writeSQLite(path string, transcript *chat.Transcript) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT INTO transcript (id, started_at) VALUES (?, ?)`,
		transcript.ID, transcript.StartedAt.Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("failed to insert transcript: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO messages (position, id, role, content, weather_data, timestamp) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, msg := range transcript.Messages {
		var weather sql.NullString
		if msg.WeatherData != nil {
			data, err := json.Marshal(msg.WeatherData)
			if err != nil {
				return fmt.Errorf("failed to encode weather data: %w", err)
			}
			weather = sql.NullString{String: string(data), Valid: true}
		}
		if _, err := stmt.Exec(i, msg.ID, string(msg.Role), msg.Content, weather,
			msg.Timestamp.Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("failed to insert message %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Extension returns the file extension for this format
func (e *SQLiteExporter) Extension() string {
	return "db"
}
