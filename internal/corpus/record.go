// Package corpus parses lines of the Tatoeba tab-delimited exports into
// typed records. Parsing a single line never touches the database and a
// bad line never aborts the stream: every parse function returns a
// *ParseError the caller can count and skip.
package corpus

import (
	"fmt"
	"strconv"
	"strings"
)

// Export file names as extracted from the Tatoeba archives.
const (
	SentencesFile = "sentences.csv"
	AudioFile     = "sentences_with_audio.csv"
	LinksFile     = "links.csv"
	TagsFile      = "tags.csv"
)

// Kind identifies which export file a record came from.
type Kind string

const (
	KindSentence  Kind = "sentence"
	KindAudioMeta Kind = "audio"
	KindLink      Kind = "link"
	KindTag       Kind = "tag"
)

// ParseReason classifies why a line was rejected.
type ParseReason string

const (
	// MalformedRow means the line has fewer fields than the record kind requires.
	MalformedRow ParseReason = "malformed row"
	// InvalidID means a numeric id field did not parse as an integer.
	InvalidID ParseReason = "invalid id"
)

// ParseError reports one rejected input line.
type ParseError struct {
	Kind   Kind
	Reason ParseReason
	Line   string
}

func (e *ParseError) Error() string {
	line := e.Line
	if len(line) > 80 {
		line = line[:80] + "..."
	}
	return fmt.Sprintf("%s record: %s: %q", e.Kind, e.Reason, line)
}

// Sentence is one corpus sentence. The id is globally unique across all
// languages; re-ingesting the same id is an ignore, never a second row.
type Sentence struct {
	ID   int64
	Lang string
	Text string
}

// AudioMeta marks a sentence as having a retrievable audio recording.
type AudioMeta struct {
	SentenceID     int64
	Username       string
	License        string
	AttributionURL string
}

// Link is a directed translation edge. The corpus supplies both
// directions for mutual translations, so the edge is stored as given.
type Link struct {
	SentenceID    int64
	TranslationID int64
}

// Tag attaches one tag name to a sentence.
type Tag struct {
	SentenceID int64
	Name       string
}

// ParseSentence parses an "id<TAB>lang<TAB>text" line. Trailing extra
// fields are ignored.
func ParseSentence(line string) (Sentence, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 3 {
		return Sentence{}, &ParseError{KindSentence, MalformedRow, line}
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Sentence{}, &ParseError{KindSentence, InvalidID, line}
	}
	return Sentence{ID: id, Lang: fields[1], Text: Unquote(fields[2])}, nil
}

// ParseAudioMeta parses a sentences_with_audio line. The export carries
// more columns than we keep; only the first four are taken positionally
// and anything after them is ignored.
func ParseAudioMeta(line string) (AudioMeta, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 4 {
		return AudioMeta{}, &ParseError{KindAudioMeta, MalformedRow, line}
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return AudioMeta{}, &ParseError{KindAudioMeta, InvalidID, line}
	}
	return AudioMeta{
		SentenceID:     id,
		Username:       fields[1],
		License:        fields[2],
		AttributionURL: fields[3],
	}, nil
}

// ParseLink parses an "id<TAB>translation_id" line.
func ParseLink(line string) (Link, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 2 {
		return Link{}, &ParseError{KindLink, MalformedRow, line}
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Link{}, &ParseError{KindLink, InvalidID, line}
	}
	tid, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return Link{}, &ParseError{KindLink, InvalidID, line}
	}
	return Link{SentenceID: id, TranslationID: tid}, nil
}

// ParseTag parses an "id<TAB>tag_name" line.
func ParseTag(line string) (Tag, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 2 {
		return Tag{}, &ParseError{KindTag, MalformedRow, line}
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Tag{}, &ParseError{KindTag, InvalidID, line}
	}
	return Tag{SentenceID: id, Name: Unquote(fields[1])}, nil
}

// Unquote strips one layer of wrapping literal quote characters. Text
// fields in the exports arrive pre-escaped; unquoting means removing
// the surrounding quotes, not interpreting any inner escapes.
func Unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
