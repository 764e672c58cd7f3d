// ABOUTME: Database schema definitions and migrations
// ABOUTME: Stores backend records as JSON payloads keyed by table and id
package db

import (
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	tbl TEXT NOT NULL,
	id INTEGER NOT NULL,
	payload TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (tbl, id)
);

CREATE INDEX IF NOT EXISTS idx_records_created ON records(tbl, created_at);
`

func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
