package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Database is the append-only action-log store. Detection state (windows,
// snapshots, warned set) is deliberately never persisted; only the audit
// trail of actions taken survives a restart.
type Database struct {
	db *sql.DB
}

var globalDB *Database

// Initialize opens the SQLite database and creates the schema.
func Initialize(dbPath string) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	globalDB = &Database{db: db}

	if err := globalDB.createTables(); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

func GetDB() *Database {
	return globalDB
}

func Close() error {
	if globalDB != nil && globalDB.db != nil {
		return globalDB.db.Close()
	}
	return nil
}

func (d *Database) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS action_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		incident_id TEXT NOT NULL UNIQUE,
		guild_id TEXT NOT NULL,
		description TEXT NOT NULL,
		timestamp INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_action_logs_guild ON action_logs(guild_id);
	CREATE INDEX IF NOT EXISTS idx_action_logs_timestamp ON action_logs(timestamp);
	`

	_, err := d.db.Exec(schema)
	return err
}

// AddActionLog appends a containment action to the audit trail.
func (d *Database) AddActionLog(incidentID, guildID, description string, ts time.Time) error {
	_, err := d.db.Exec(
		`INSERT INTO action_logs (incident_id, guild_id, description, timestamp) VALUES (?, ?, ?, ?)`,
		incidentID, guildID, description, ts.Unix(),
	)
	return err
}

// ActionLog is one persisted containment action.
type ActionLog struct {
	IncidentID  string
	GuildID     string
	Description string
	Timestamp   time.Time
}

// RecentActions returns the newest actions for a guild, most recent first.
func (d *Database) RecentActions(guildID string, limit int) ([]ActionLog, error) {
	rows, err := d.db.Query(
		`SELECT incident_id, guild_id, description, timestamp
		 FROM action_logs WHERE guild_id = ? ORDER BY timestamp DESC LIMIT ?`,
		guildID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []ActionLog
	for rows.Next() {
		var log ActionLog
		var ts int64
		if err := rows.Scan(&log.IncidentID, &log.GuildID, &log.Description, &ts); err != nil {
			return nil, err
		}
		log.Timestamp = time.Unix(ts, 0)
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

// CountActions returns the total number of logged actions for a guild.
func (d *Database) CountActions(guildID string) (int, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM action_logs WHERE guild_id = ?`, guildID).Scan(&n)
	return n, err
}
