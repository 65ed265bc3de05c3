package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS quotes (
	symbol         TEXT PRIMARY KEY,
	name           TEXT NOT NULL DEFAULT '',
	price          REAL NOT NULL,
	previous_close REAL NOT NULL DEFAULT 0,
	change         REAL NOT NULL DEFAULT 0,
	change_percent REAL NOT NULL DEFAULT 0,
	day_high       REAL NOT NULL DEFAULT 0,
	day_low        REAL NOT NULL DEFAULT 0,
	volume         INTEGER NOT NULL DEFAULT 0,
	exchange       TEXT NOT NULL DEFAULT '',
	sector         TEXT NOT NULL DEFAULT '',
	is_real_time   INTEGER NOT NULL DEFAULT 0 CHECK(is_real_time IN (0, 1)),
	last_updated   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	message    TEXT NOT NULL,
	kind       TEXT NOT NULL DEFAULT 'info',
	priority   TEXT NOT NULL DEFAULT 'normal',
	read       INTEGER NOT NULL DEFAULT 0 CHECK(read IN (0, 1)),
	symbol     TEXT NOT NULL DEFAULT '',
	position   INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS watchlist (
	symbol   TEXT PRIMARY KEY,
	name     TEXT NOT NULL DEFAULT '',
	added_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	position INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_notifications_read ON notifications(read);
CREATE INDEX IF NOT EXISTS idx_notifications_position ON notifications(position);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_watchlist_position ON watchlist(position);
CREATE INDEX IF NOT EXISTS idx_quotes_last_updated ON quotes(last_updated);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
