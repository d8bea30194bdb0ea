// Package persistence provides SQLite-based campaign state storage.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/sims1253/kataphraktus/internal/campaign"
	"github.com/sims1253/kataphraktus/internal/dice"
)

// DB wraps a SQLite connection for campaign persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		campaign_id INTEGER NOT NULL,
		day INTEGER NOT NULL,
		part TEXT NOT NULL,
		state_json TEXT NOT NULL,
		PRIMARY KEY (campaign_id, day, part)
	);

	CREATE TABLE IF NOT EXISTS audit_entries (
		campaign_id INTEGER NOT NULL,
		seq INTEGER NOT NULL,
		day INTEGER NOT NULL,
		part TEXT NOT NULL,
		subsystem TEXT NOT NULL,
		seed TEXT NOT NULL,
		notation TEXT NOT NULL,
		total INTEGER NOT NULL,
		fixed INTEGER NOT NULL,
		effect TEXT NOT NULL,
		entry_json TEXT NOT NULL,
		PRIMARY KEY (campaign_id, seq)
	);

	CREATE TABLE IF NOT EXISTS campaign_meta (
		campaign_id INTEGER NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (campaign_id, key)
	);

	CREATE INDEX IF NOT EXISTS idx_audit_day ON audit_entries(campaign_id, day);
	CREATE INDEX IF NOT EXISTS idx_snapshots_day ON snapshots(campaign_id, day);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveSnapshot stores the full campaign state at its current tick. The
// whole aggregate goes to one JSON document; the map is regenerated or
// stored separately since it never changes mid-campaign.
func (db *DB) SaveSnapshot(c *campaign.Campaign) error {
	state, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal campaign %d: %w", c.ID, err)
	}
	_, err = db.conn.Exec(
		`INSERT OR REPLACE INTO snapshots (campaign_id, day, part, state_json) VALUES (?, ?, ?, ?)`,
		c.ID, c.CurrentDay, string(c.Part), string(state),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	slog.Debug("snapshot saved", "campaign", c.ID, "day", c.CurrentDay, "part", c.Part)
	return nil
}

// LoadSnapshot restores the latest campaign state at or before the given
// day. A negative day means the latest snapshot of any day. Returns nil
// without error when the campaign has no saved state. The caller reattaches
// the world map afterwards.
func (db *DB) LoadSnapshot(id campaign.CampaignID, day int) (*campaign.Campaign, error) {
	query := `SELECT state_json FROM snapshots
		 WHERE campaign_id = ? AND day <= ?
		 ORDER BY day DESC, part DESC LIMIT 1`
	args := []any{id, day}
	if day < 0 {
		query = `SELECT state_json FROM snapshots
		 WHERE campaign_id = ?
		 ORDER BY day DESC, part DESC LIMIT 1`
		args = []any{id}
	}
	var stateJSON string
	err := db.conn.Get(&stateJSON, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot for campaign %d: %w", id, err)
	}
	var c campaign.Campaign
	if err := json.Unmarshal([]byte(stateJSON), &c); err != nil {
		return nil, fmt.Errorf("unmarshal campaign %d: %w", id, err)
	}
	return &c, nil
}

// AppendAudit stores audit entries past the already persisted sequence
// number, so repeated saves after each day stay idempotent.
func (db *DB) AppendAudit(id campaign.CampaignID, entries []dice.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var lastSeq int64
	if err := tx.Get(&lastSeq,
		"SELECT COALESCE(MAX(seq), 0) FROM audit_entries WHERE campaign_id = ?", id); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO audit_entries
		(campaign_id, seq, day, part, subsystem, seed, notation, total, fixed, effect, entry_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if e.Seq <= lastSeq {
			continue
		}
		entryJSON, _ := json.Marshal(e)
		fixed := 0
		if e.Fixed {
			fixed = 1
		}
		if _, err := stmt.Exec(
			id, e.Seq, e.Day, e.Part, e.Subsystem, e.Seed, e.Notation,
			e.Total, fixed, e.Effect, string(entryJSON),
		); err != nil {
			return fmt.Errorf("insert audit entry %d: %w", e.Seq, err)
		}
	}

	return tx.Commit()
}

// AuditSince returns the audit entries recorded from the given day onward,
// in sequence order.
func (db *DB) AuditSince(id campaign.CampaignID, day int) ([]dice.Entry, error) {
	var rows []string
	err := db.conn.Select(&rows,
		`SELECT entry_json FROM audit_entries
		 WHERE campaign_id = ? AND day >= ? ORDER BY seq`,
		id, day,
	)
	if err != nil {
		return nil, err
	}
	entries := make([]dice.Entry, 0, len(rows))
	for _, raw := range rows {
		var e dice.Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("unmarshal audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// SaveMeta stores a key-value pair for a campaign.
func (db *DB) SaveMeta(id campaign.CampaignID, key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO campaign_meta (campaign_id, key, value) VALUES (?, ?, ?)",
		id, key, value,
	)
	return err
}

// GetMeta retrieves a metadata value for a campaign.
func (db *DB) GetMeta(id campaign.CampaignID, key string) (string, error) {
	var value string
	err := db.conn.Get(&value,
		"SELECT value FROM campaign_meta WHERE campaign_id = ? AND key = ?", id, key)
	return value, err
}
