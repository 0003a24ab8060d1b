package repos

import (
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- The whole application state lives in one JSON row (localStorage style).
CREATE TABLE IF NOT EXISTS documents(
  key TEXT PRIMARY KEY,
  body TEXT NOT NULL,
  updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);

-- Session side channel: sid cookie -> account projection, no digest.
CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  user_json TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen TEXT
);

-- Per-farmer set of approved notice ids already surfaced as notifications.
CREATE TABLE IF NOT EXISTS seen_notices(
  user_id TEXT NOT NULL,
  notice_id TEXT NOT NULL,
  seen_at TEXT DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY(user_id, notice_id)
);
`
	_, err := db.Exec(schema)
	return err
}
