package storage

const schema = `
-- The 'sources' table tracks where vocabulary items come from, either a
-- local directory of word lists or a git repository.
CREATE TABLE IF NOT EXISTS sources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL UNIQUE,
    type TEXT NOT NULL DEFAULT 'local', -- 'local' or 'git'
    last_synced DATETIME
);

-- The 'items' table stores vocabulary items keyed by the hash of their
-- normalized term.
CREATE TABLE IF NOT EXISTS items (
    key TEXT PRIMARY KEY,
    term TEXT NOT NULL,
    source_id INTEGER,

    FOREIGN KEY(source_id) REFERENCES sources(id)
);

-- The 'reviews' table holds one scheduling record per (learner, item).
-- next_review is NULL until the record's first scoring pass.
-- quality_history is the encoded rolling window of recent scores.
-- version backs the optimistic check on updates.
CREATE TABLE IF NOT EXISTS reviews (
    learner_id TEXT NOT NULL,
    item_key TEXT NOT NULL,
    ease_factor REAL NOT NULL,
    interval_days INTEGER NOT NULL,
    next_review DATETIME,
    review_count INTEGER NOT NULL DEFAULT 0,
    quality_history TEXT NOT NULL DEFAULT '',
    version INTEGER NOT NULL DEFAULT 1,

    PRIMARY KEY(learner_id, item_key),
    FOREIGN KEY(item_key) REFERENCES items(key) ON DELETE CASCADE
);
`
