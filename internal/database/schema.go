package database

// schema is applied on every open; all statements are idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS persons (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        born INTEGER NOT NULL,
        died INTEGER,
        fame INTEGER NOT NULL DEFAULT 0,
        domains TEXT NOT NULL DEFAULT '[]',
        region TEXT NOT NULL DEFAULT '',
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    )`,

	// Known relations between persons, display enrichment only
	`CREATE TABLE IF NOT EXISTS relations (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        source TEXT NOT NULL,
        target TEXT NOT NULL,
        relation_type TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (source) REFERENCES persons(id),
        FOREIGN KEY (target) REFERENCES persons(id)
    )`,

	// Single-row counters; generation changes on every catalog write
	`CREATE TABLE IF NOT EXISTS catalog_meta (
        key TEXT PRIMARY KEY,
        value INTEGER NOT NULL
    )`,
	`INSERT OR IGNORE INTO catalog_meta (key, value) VALUES ('generation', 0)`,

	`CREATE INDEX IF NOT EXISTS idx_persons_name ON persons(name)`,
	`CREATE INDEX IF NOT EXISTS idx_persons_fame ON persons(fame DESC, id)`,
	`CREATE INDEX IF NOT EXISTS idx_persons_born ON persons(born)`,
	`CREATE INDEX IF NOT EXISTS idx_relations_source ON relations(source)`,
	`CREATE INDEX IF NOT EXISTS idx_relations_target ON relations(target)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_relations_src_tgt_type ON relations(source, target, relation_type)`,
}
