package store

// Corpus schema. The database file is rebuilt from scratch on every
// run, so there is no versioning or migration layer: this is applied
// exactly once, right after the fresh file is created.
//
// links and tags have no single-column natural key; their unique index
// covers the full tuple so INSERT OR IGNORE dedups exact re-ingestion.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS sentences (
  sentence_id INTEGER PRIMARY KEY,
  lang TEXT NOT NULL,
  text TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sentences_lang ON sentences(lang);

CREATE TABLE IF NOT EXISTS sentences_with_audio (
  sentence_id INTEGER PRIMARY KEY,
  username TEXT,
  license TEXT,
  attribution_url TEXT
);

CREATE TABLE IF NOT EXISTS links (
  sentence_id INTEGER NOT NULL,
  translation_id INTEGER NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_links_pair ON links(sentence_id, translation_id);

CREATE TABLE IF NOT EXISTS tags (
  sentence_id INTEGER NOT NULL,
  tag_name TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_tags_pair ON tags(sentence_id, tag_name);
`
