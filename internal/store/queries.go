package store

import (
	"context"
	"fmt"
	"strings"
)

// ExportPair is one flashcard row before serialization: a
// learning-language sentence with audio, its base-language translation,
// and the sentence's tags.
type ExportPair struct {
	SentenceID   int64
	LearningText string
	BaseText     string
	Tags         []string
}

// tagSeparator joins tag names inside group_concat. U+001F cannot
// appear in corpus text, so splitting on it is unambiguous.
const tagSeparator = "\x1f"

// ExportPairs streams every qualifying (learning, base) sentence pair
// to fn, ordered by learning sentence id. A pair qualifies when a
// translation link connects a learning-language sentence to a
// base-language sentence and the learning side has an audio row.
// Language codes come from CLI configuration, never the corpus, but are
// still bound as parameters rather than interpolated.
func (s *Store) ExportPairs(ctx context.Context, learningLang, baseLang string, fn func(ExportPair) error) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			s1.sentence_id,
			s1.text,
			s2.text,
			COALESCE((
				SELECT group_concat(tag_name, ?)
				FROM tags
				WHERE tags.sentence_id = s1.sentence_id
			), '')
		FROM sentences s1
		JOIN links ON s1.sentence_id = links.sentence_id
		JOIN sentences s2 ON links.translation_id = s2.sentence_id
		WHERE s1.lang = ?
		  AND s2.lang = ?
		  AND s1.sentence_id IN (SELECT sentence_id FROM sentences_with_audio)
		ORDER BY s1.sentence_id, s2.sentence_id`,
		tagSeparator, learningLang, baseLang)
	if err != nil {
		return fmt.Errorf("failed to query export pairs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p ExportPair
		var tags string
		if err := rows.Scan(&p.SentenceID, &p.LearningText, &p.BaseText, &tags); err != nil {
			return fmt.Errorf("failed to scan export pair: %w", err)
		}
		if tags != "" {
			p.Tags = strings.Split(tags, tagSeparator)
		}
		if err := fn(p); err != nil {
			return err
		}
	}
	return rows.Err()
}

// AudioSentenceIDs returns the ids of every sentence in lang that has
// an audio row. This is the asset fetcher's work list.
func (s *Store) AudioSentenceIDs(ctx context.Context, lang string) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sentence_id
		FROM sentences
		WHERE lang = ?
		  AND sentence_id IN (SELECT sentence_id FROM sentences_with_audio)
		ORDER BY sentence_id`,
		lang)
	if err != nil {
		return nil, fmt.Errorf("failed to query audio sentence ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan sentence id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// TableCounts holds per-table row counts for the status command and tests
type TableCounts struct {
	Sentences int64
	Audio     int64
	Links     int64
	Tags      int64
}

// Counts returns row counts for all four corpus tables
func (s *Store) Counts(ctx context.Context) (*TableCounts, error) {
	c := &TableCounts{}
	for _, q := range []struct {
		table string
		dest  *int64
	}{
		{"sentences", &c.Sentences},
		{"sentences_with_audio", &c.Audio},
		{"links", &c.Links},
		{"tags", &c.Tags},
	} {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+q.table).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", q.table, err)
		}
	}
	return c, nil
}
