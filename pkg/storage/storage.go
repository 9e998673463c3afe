// Package storage keeps the durable change log in SQLite, so change history
// survives restarts and can be inspected via the CLI and the web API.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matchscope/matchscope/pkg/detect"
)

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS match_changes (
  id             INTEGER PRIMARY KEY,
  occurred_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  match_id       TEXT NOT NULL,
  match_number   TEXT,
  category       TEXT NOT NULL,
  priority       TEXT NOT NULL CHECK (priority IN ('critical','high','medium','low')),
  stakeholders   TEXT NOT NULL,
  field_name     TEXT NOT NULL,
  previous_value TEXT,
  current_value  TEXT,
  description    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_changes_time ON match_changes(occurred_at);
CREATE INDEX IF NOT EXISTS idx_changes_match ON match_changes(match_id, occurred_at);
CREATE INDEX IF NOT EXISTS idx_changes_category ON match_changes(category);
	`); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// LogChanges appends all field-level change records from one comparison pass.
func (d *DB) LogChanges(ctx context.Context, changes []detect.Change) error {
	if len(changes) == 0 {
		return nil
	}

	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, c := range changes {
		stakeholders := make([]string, 0, len(c.Stakeholders))
		for _, s := range c.Stakeholders {
			stakeholders = append(stakeholders, string(s))
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO match_changes(occurred_at, match_id, match_number, category, priority, stakeholders, field_name, previous_value, current_value, description)
			 VALUES(?,?,?,?,?,?,?,?,?,?)`,
			c.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			c.MatchID.String(),
			nullIfEmpty(c.MatchNumber),
			string(c.Category),
			string(c.Priority),
			strings.Join(stakeholders, ","),
			c.FieldName,
			marshalValue(c.Previous),
			marshalValue(c.Current),
			c.Description,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoggedChange is one persisted change row.
type LoggedChange struct {
	OccurredAt   time.Time
	MatchID      string
	MatchNumber  string
	Category     string
	Priority     string
	Stakeholders []string
	FieldName    string
	Description  string
}

// ListRecentChanges returns the most recent N changes across all matches.
func (d *DB) ListRecentChanges(ctx context.Context, limit int) ([]LoggedChange, error) {
	if limit <= 0 {
		limit = 50
	}
	q := "SELECT occurred_at, match_id, match_number, category, priority, stakeholders, field_name, description FROM match_changes ORDER BY occurred_at DESC, id DESC LIMIT ?"
	rows, err := d.sql.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	changes := []LoggedChange{}
	for rows.Next() {
		var c LoggedChange
		var occurredAtStr, stakeholders string
		var matchNumber sql.NullString
		if err := rows.Scan(&occurredAtStr, &c.MatchID, &matchNumber, &c.Category, &c.Priority, &stakeholders, &c.FieldName, &c.Description); err != nil {
			return nil, err
		}
		// Parse SQLite CURRENT_TIMESTAMP format, then RFC3339
		if t, perr := time.Parse("2006-01-02 15:04:05", occurredAtStr); perr == nil {
			c.OccurredAt = t
		} else if t2, perr2 := time.Parse(time.RFC3339, occurredAtStr); perr2 == nil {
			c.OccurredAt = t2
		} else {
			c.OccurredAt = time.Time{}
		}
		c.MatchNumber = matchNumber.String
		if stakeholders != "" {
			c.Stakeholders = strings.Split(stakeholders, ",")
		}
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return changes, nil
}

type CategoryStats struct {
	Category string
	Count    int
	Critical int
}

// GetStats returns per-category change counts for the whole log.
func (d *DB) GetStats(ctx context.Context) ([]CategoryStats, error) {
	query := `
		SELECT
			category,
			COUNT(*),
			SUM(CASE WHEN priority = 'critical' THEN 1 ELSE 0 END)
		FROM
			match_changes
		GROUP BY
			category
		ORDER BY
			category;
	`
	rows, err := d.sql.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []CategoryStats
	for rows.Next() {
		var s CategoryStats
		if err := rows.Scan(&s.Category, &s.Count, &s.Critical); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// marshalValue stores heterogeneous previous/current values as JSON text.
func marshalValue(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return string(b)
}
