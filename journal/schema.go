// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS deals (
	id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	pair TEXT NOT NULL,
	direction TEXT NOT NULL DEFAULT '',
	open REAL,
	sl REAL,
	tp REAL,
	lots REAL NOT NULL DEFAULT 0,
	deposit REAL NOT NULL DEFAULT 0,
	deposit_currency TEXT NOT NULL DEFAULT '',
	created INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_deals_position ON deals(position);

CREATE TABLE IF NOT EXISTS params (
	deal_id TEXT PRIMARY KEY,
	data TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	total_risk REAL NOT NULL,
	max_risk REAL NOT NULL,
	usefulness_share REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS allocation_runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	total_risk REAL NOT NULL,
	used_risk REAL NOT NULL,
	leftover REAL NOT NULL,
	active_count INTEGER NOT NULL,
	active_weight REAL NOT NULL,
	enabled_count INTEGER NOT NULL,
	invalid_count INTEGER NOT NULL,
	note TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS allocation_results (
	run_id TEXT NOT NULL REFERENCES allocation_runs(run_id) ON DELETE CASCADE,
	deal_id TEXT NOT NULL,
	pair TEXT NOT NULL,
	risk REAL NOT NULL,
	active INTEGER NOT NULL,
	status TEXT NOT NULL,
	weight REAL NOT NULL,
	lots REAL,
	PRIMARY KEY (run_id, deal_id)
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON allocation_runs(created);
`
