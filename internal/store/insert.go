package store

import (
	"database/sql"

	"github.com/franz/tatodeck/internal/corpus"
)

// Write helpers used by the batch loader. Every statement is
// INSERT OR IGNORE on the table's natural unique key, so re-ingesting
// the same export file is a no-op rather than a constraint error.

// InsertSentence writes one sentence inside the given transaction
func InsertSentence(tx *sql.Tx, rec corpus.Sentence) error {
	_, err := tx.Exec(
		`INSERT OR IGNORE INTO sentences (sentence_id, lang, text) VALUES (?, ?, ?)`,
		rec.ID, rec.Lang, rec.Text)
	return err
}

// InsertAudioMeta writes one audio-availability row inside the given transaction
func InsertAudioMeta(tx *sql.Tx, rec corpus.AudioMeta) error {
	_, err := tx.Exec(
		`INSERT OR IGNORE INTO sentences_with_audio (sentence_id, username, license, attribution_url) VALUES (?, ?, ?, ?)`,
		rec.SentenceID, rec.Username, rec.License, rec.AttributionURL)
	return err
}

// InsertLink writes one translation edge inside the given transaction.
// Edges arrive in both directions for mutual translations and are
// preserved as given; referential integrity is checked only at export
// time, because link rows may precede their endpoint sentences.
func InsertLink(tx *sql.Tx, rec corpus.Link) error {
	_, err := tx.Exec(
		`INSERT OR IGNORE INTO links (sentence_id, translation_id) VALUES (?, ?)`,
		rec.SentenceID, rec.TranslationID)
	return err
}

// InsertTag writes one tag row inside the given transaction
func InsertTag(tx *sql.Tx, rec corpus.Tag) error {
	_, err := tx.Exec(
		`INSERT OR IGNORE INTO tags (sentence_id, tag_name) VALUES (?, ?)`,
		rec.SentenceID, rec.Name)
	return err
}
