package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const catalogSchemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	equation   TEXT NOT NULL DEFAULT '',
	integrator TEXT NOT NULL DEFAULT '',
	t0         REAL NOT NULL,
	tn         REAL NOT NULL,
	samples    INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	metadata   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`

// catalog indexes saved runs so listing does not read every run directory.
// The metadata column holds the same document as the run's metadata.json.
type catalog struct {
	conn *sql.DB
}

func openCatalog(path string) (*catalog, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("storage: open catalog: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: ping catalog: %w", err)
	}
	if _, err := conn.Exec(catalogSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: apply catalog schema: %w", err)
	}
	return &catalog{conn: conn}, nil
}

func (c *catalog) insert(m *RunMetadata) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", m.ID, err)
	}
	_, err = c.conn.Exec(`
		INSERT INTO runs (id, name, equation, integrator, t0, tn, samples, created_at, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Name, m.Equation, m.Integrator, m.T0, m.TN, m.Samples, m.Timestamp.UTC(), string(doc))
	if err != nil {
		return fmt.Errorf("storage: catalog insert %s: %w", m.ID, err)
	}
	return nil
}

func (c *catalog) delete(id string) error {
	if _, err := c.conn.Exec(`DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("storage: catalog delete %s: %w", id, err)
	}
	return nil
}

func (c *catalog) list() ([]RunMetadata, error) {
	rows, err := c.conn.Query(`
		SELECT id, metadata
		FROM runs
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("storage: catalog list: %w", err)
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		var (
			id  string
			doc string
			m   RunMetadata
		)
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(doc), &m); err != nil {
			return nil, fmt.Errorf("%w: %s: catalog entry: %v", ErrCorruptRun, id, err)
		}
		runs = append(runs, m)
	}
	return runs, rows.Err()
}

func (c *catalog) close() error {
	return c.conn.Close()
}
