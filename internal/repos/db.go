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

-- Watchlist entries, TEMP until email activation binds them
CREATE TABLE IF NOT EXISTS watch_entries(
  id TEXT PRIMARY KEY,
  product_name TEXT NOT NULL,
  product_url TEXT NOT NULL,
  image_url TEXT,
  source TEXT NOT NULL CHECK (source IN ('SSG','NAVER','ELEVENTH_STREET')),
  current_price INTEGER NOT NULL CHECK (current_price >= 0),
  target_price INTEGER,
  user_email TEXT NOT NULL,
  state TEXT NOT NULL CHECK (state IN ('TEMP','ACTIVATED')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_watch_entries_temp_url
  ON watch_entries(product_url) WHERE state = 'TEMP';
CREATE INDEX IF NOT EXISTS idx_watch_entries_state ON watch_entries(state);
CREATE INDEX IF NOT EXISTS idx_watch_entries_email ON watch_entries(user_email);

-- Append-only price observations
CREATE TABLE IF NOT EXISTS price_history(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id TEXT NOT NULL REFERENCES watch_entries(id) ON DELETE CASCADE,
  price INTEGER NOT NULL CHECK (price >= 0),
  recorded_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_price_history_product  ON price_history(product_id);
CREATE INDEX IF NOT EXISTS idx_price_history_recorded ON price_history(recorded_at);
`
	_, err := db.Exec(schema)
	return err
}
