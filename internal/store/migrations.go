package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
//
// created_at is stored as Unix nanoseconds so that ordering is exact.
// title_key and description_key hold query.Fold of the text columns and are
// what search and title ordering run against. seq records insertion order
// and breaks ties between equal sort keys.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	seq             INTEGER PRIMARY KEY AUTOINCREMENT,
	id              TEXT NOT NULL UNIQUE,
	title           TEXT NOT NULL DEFAULT '',
	description     TEXT NOT NULL DEFAULT '',
	completed       INTEGER NOT NULL DEFAULT 0 CHECK(completed IN (0, 1)),
	created_at      INTEGER NOT NULL,
	title_key       TEXT NOT NULL DEFAULT '',
	description_key TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks(created_at, seq);
CREATE INDEX IF NOT EXISTS idx_tasks_title_key ON tasks(title_key, seq);
CREATE INDEX IF NOT EXISTS idx_tasks_completed ON tasks(completed);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
