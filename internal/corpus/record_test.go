package corpus

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseSentence(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		want       Sentence
		wantReason ParseReason
	}{
		{
			name: "simple sentence",
			line: "1276\tjpn\t私は学生です。",
			want: Sentence{ID: 1276, Lang: "jpn", Text: "私は学生です。"},
		},
		{
			name: "quoted text is unwrapped",
			line: "42\teng\t\"He said hello.\"",
			want: Sentence{ID: 42, Lang: "eng", Text: "He said hello."},
		},
		{
			name: "inner quotes survive",
			line: "7\teng\tShe said \"no\" twice.",
			want: Sentence{ID: 7, Lang: "eng", Text: "She said \"no\" twice."},
		},
		{
			name: "extra trailing fields ignored",
			line: "9\tfra\tBonjour.\textra\tfields",
			want: Sentence{ID: 9, Lang: "fra", Text: "Bonjour."},
		},
		{
			name:       "too few fields",
			line:       "9\tfra",
			wantReason: MalformedRow,
		},
		{
			name:       "empty line",
			line:       "",
			wantReason: MalformedRow,
		},
		{
			name:       "non-numeric id",
			line:       "abc\tjpn\tこんにちは",
			wantReason: InvalidID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSentence(tt.line)
			if tt.wantReason != "" {
				assertParseError(t, err, KindSentence, tt.wantReason)
				return
			}
			if err != nil {
				t.Fatalf("ParseSentence(%q) returned error: %v", tt.line, err)
			}
			if got != tt.want {
				t.Errorf("ParseSentence(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseSentenceRoundTrip(t *testing.T) {
	// Re-serializing a parsed unquoted line must reproduce it exactly.
	records := []Sentence{
		{ID: 1, Lang: "jpn", Text: "私は学生です。"},
		{ID: 999999999, Lang: "eng", Text: "A plain sentence."},
		{ID: 3, Lang: "epo", Text: "Saluton, mondo!"},
	}
	for _, want := range records {
		line := fmt.Sprintf("%d\t%s\t%s", want.ID, want.Lang, want.Text)
		got, err := ParseSentence(line)
		if err != nil {
			t.Fatalf("ParseSentence(%q) returned error: %v", line, err)
		}
		if got != want {
			t.Errorf("round trip of %q: got %+v, want %+v", line, got, want)
		}
	}
}

func TestParseAudioMeta(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		want       AudioMeta
		wantReason ParseReason
	}{
		{
			name: "exactly four fields",
			line: "1276\tfucyfluff\tCC BY-NC 4.0\thttps://example.org/fucyfluff",
			want: AudioMeta{
				SentenceID:     1276,
				Username:       "fucyfluff",
				License:        "CC BY-NC 4.0",
				AttributionURL: "https://example.org/fucyfluff",
			},
		},
		{
			name: "wider row takes first four",
			line: "88\tuser\tCC0\thttps://example.org/u\t2034\textra",
			want: AudioMeta{
				SentenceID:     88,
				Username:       "user",
				License:        "CC0",
				AttributionURL: "https://example.org/u",
			},
		},
		{
			name:       "three fields is malformed",
			line:       "88\tuser\tCC0",
			wantReason: MalformedRow,
		},
		{
			name:       "bad id",
			line:       "x\tuser\tCC0\thttps://example.org/u",
			wantReason: InvalidID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAudioMeta(tt.line)
			if tt.wantReason != "" {
				assertParseError(t, err, KindAudioMeta, tt.wantReason)
				return
			}
			if err != nil {
				t.Fatalf("ParseAudioMeta(%q) returned error: %v", tt.line, err)
			}
			if got != tt.want {
				t.Errorf("ParseAudioMeta(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseLink(t *testing.T) {
	got, err := ParseLink("1\t2")
	if err != nil {
		t.Fatalf("ParseLink returned error: %v", err)
	}
	if got != (Link{SentenceID: 1, TranslationID: 2}) {
		t.Errorf("ParseLink = %+v, want {1 2}", got)
	}

	if _, err := ParseLink("1"); err == nil {
		t.Error("expected MalformedRow for single-field link line")
	} else {
		assertParseError(t, err, KindLink, MalformedRow)
	}

	if _, err := ParseLink("1\tbeta"); err == nil {
		t.Error("expected InvalidID for non-numeric translation id")
	} else {
		assertParseError(t, err, KindLink, InvalidID)
	}
}

func TestParseTag(t *testing.T) {
	got, err := ParseTag("1276\t\"JLPT N5\"")
	if err != nil {
		t.Fatalf("ParseTag returned error: %v", err)
	}
	if got != (Tag{SentenceID: 1276, Name: "JLPT N5"}) {
		t.Errorf("ParseTag = %+v, want {1276 JLPT N5}", got)
	}

	if _, err := ParseTag("1276"); err == nil {
		t.Error("expected MalformedRow for tag line without a name field")
	}
}

func TestUnquote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"wrapped"`, "wrapped"},
		{`plain`, "plain"},
		{`""`, ""},
		{`"`, `"`},
		{`"only leading`, `"only leading`},
		{`trailing only"`, `trailing only"`},
		// One layer only, by contract.
		{`""double""`, `"double"`},
	}
	for _, tt := range tests {
		if got := Unquote(tt.in); got != tt.want {
			t.Errorf("Unquote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func assertParseError(t *testing.T, err error, kind Kind, reason ParseReason) {
	t.Helper()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if perr.Kind != kind {
		t.Errorf("ParseError.Kind = %q, want %q", perr.Kind, kind)
	}
	if perr.Reason != reason {
		t.Errorf("ParseError.Reason = %q, want %q", perr.Reason, reason)
	}
}
