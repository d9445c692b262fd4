package pubsite

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFrontmatterValid(t *testing.T) {
	fm, err := ValidateFrontmatter(map[string]any{
		"title":       "  Hello  ",
		"date":        "2024-03-09",
		"image":       "./cover.png",
		"imageAlt":    "A cover",
		"description": "About things",
		"tags":        []any{"Go", " web "},
		"series":      "intro",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello", fm.Title)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), fm.Date)
	assert.Equal(t, "./cover.png", fm.Image)
	assert.Equal(t, "A cover", fm.ImageAlt)
	assert.Equal(t, "About things", fm.Description)
	assert.Equal(t, []string{"go", "web"}, fm.Tags)
	assert.Equal(t, map[string]any{"series": "intro"}, fm.Extra)
}

func TestValidateFrontmatterFieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		raw    map[string]any
		fields []string
	}{
		{"missing title", map[string]any{"date": "2024-01-01"}, []string{"title"}},
		{"blank title", map[string]any{"title": "   ", "date": "2024-01-01"}, []string{"title"}},
		{"non-string title", map[string]any{"title": 42, "date": "2024-01-01"}, []string{"title"}},
		{"missing date", map[string]any{"title": "x"}, []string{"date"}},
		{"bad date", map[string]any{"title": "x", "date": "yesterday"}, []string{"date"}},
		{"image without alt", map[string]any{"title": "x", "date": "2024-01-01", "image": "a.png"}, []string{"imageAlt"}},
		{"blank alt", map[string]any{"title": "x", "date": "2024-01-01", "image": "a.png", "imageAlt": " "}, []string{"imageAlt"}},
		{"bad draft", map[string]any{"title": "x", "date": "2024-01-01", "draft": "yes"}, []string{"draft"}},
		{"bad tags", map[string]any{"title": "x", "date": "2024-01-01", "tags": 7}, []string{"tags"}},
		{"everything", map[string]any{"image": "a.png"}, []string{"date", "imageAlt", "title"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateFrontmatter(tt.raw)
			var fe FieldErrors
			require.True(t, errors.As(err, &fe), "want FieldErrors, got %v", err)
			var got []string
			for _, e := range fe {
				got = append(got, e.Field)
			}
			assert.Equal(t, tt.fields, got)

			var ve *ValidationError
			assert.True(t, errors.As(err, &ve))
		})
	}
}

func TestParseDateFormats(t *testing.T) {
	want := time.Date(2021, 6, 5, 0, 0, 0, 0, time.UTC)
	for _, in := range []any{
		"2021-06-05",
		"2021-06-05T14:30:00Z",
		"2021-06-05 14:30:00",
		"June 5, 2021",
		time.Date(2021, 6, 5, 23, 0, 0, 0, time.UTC),
	} {
		got, err := parseDate(in)
		require.NoError(t, err, "parseDate(%v)", in)
		assert.Equal(t, want, got, "parseDate(%v)", in)
	}
}

func TestParseTagsString(t *testing.T) {
	tags, err := parseTags("Go, Web,, ")
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "web"}, tags)
}

func TestParseSourceYAML(t *testing.T) {
	raw, body, err := parseSource(strings.NewReader(article("Hello", "2024-03-09", "Body text.\n", "draft: true")))
	require.NoError(t, err)
	assert.Equal(t, "Hello", raw["title"])
	assert.Equal(t, true, raw["draft"])
	assert.Contains(t, string(body), "Body text.")

	fm, err := ValidateFrontmatter(raw)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), fm.Date)
	assert.True(t, fm.Draft)
}

func TestParseSourceTOML(t *testing.T) {
	src := "+++\ntitle = \"Hello\"\ndate = 2024-03-09\ntags = [\"a\", \"B\"]\n+++\nBody\n"
	raw, body, err := parseSource(strings.NewReader(src))
	require.NoError(t, err)
	assert.Contains(t, string(body), "Body")

	fm, err := ValidateFrontmatter(raw)
	require.NoError(t, err)
	assert.Equal(t, "Hello", fm.Title)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), fm.Date)
	assert.Equal(t, []string{"a", "b"}, fm.Tags)
}

func TestParseSourceWithoutMetadata(t *testing.T) {
	raw, body, err := parseSource(strings.NewReader("just a body"))
	require.NoError(t, err)
	assert.Empty(t, raw)
	assert.Equal(t, "just a body", string(body))

	_, err = ValidateFrontmatter(raw)
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.True(t, fe.Has("title"))
	assert.True(t, fe.Has("date"))
}
