package pubsite

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Known frontmatter keys. Anything else lands in Frontmatter.Extra.
const (
	fieldTitle       = "title"
	fieldDate        = "date"
	fieldImage       = "image"
	fieldImageAlt    = "imageAlt"
	fieldDescription = "description"
	fieldTags        = "tags"
	fieldDraft       = "draft"
)

var knownFields = map[string]struct{}{
	fieldTitle: {}, fieldDate: {}, fieldImage: {}, fieldImageAlt: {},
	fieldDescription: {}, fieldTags: {}, fieldDraft: {},
}

// dateLayouts are tried in order for string dates.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"January 2, 2006",
}

var frontmatterFormats = []*frontmatter.Format{
	frontmatter.NewFormat("---", "---", yaml.Unmarshal),
	frontmatter.NewFormat("+++", "+++", toml.Unmarshal),
}

// parseSource splits a source file into its raw metadata and body.
// A file without a metadata block yields an empty map and the whole file as body.
func parseSource(r io.Reader) (map[string]any, []byte, error) {
	raw := map[string]any{}
	body, err := frontmatter.Parse(r, &raw, frontmatterFormats...)
	if err != nil {
		return nil, nil, err
	}
	return raw, body, nil
}

// ValidateFrontmatter normalizes raw metadata. On failure it returns FieldErrors
// describing every invalid field, not just the first.
func ValidateFrontmatter(raw map[string]any) (Frontmatter, error) {
	var fm Frontmatter
	var errs FieldErrors
	fail := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)})
	}

	switch v, ok := raw[fieldTitle]; {
	case !ok || v == nil:
		fail(fieldTitle, "is required")
	default:
		s, isString := v.(string)
		if !isString {
			fail(fieldTitle, "must be a string, got %T", v)
		} else if strings.TrimSpace(s) == "" {
			fail(fieldTitle, "must not be blank")
		} else {
			fm.Title = strings.TrimSpace(s)
		}
	}

	if v, ok := raw[fieldDate]; !ok || v == nil {
		fail(fieldDate, "is required")
	} else if d, err := parseDate(v); err != nil {
		fail(fieldDate, "%v", err)
	} else {
		fm.Date = d
	}

	if v, ok := raw[fieldImage]; ok && v != nil {
		s, isString := v.(string)
		switch {
		case !isString:
			fail(fieldImage, "must be a string, got %T", v)
		case strings.TrimSpace(s) == "":
			fail(fieldImage, "must not be blank")
		default:
			fm.Image = strings.TrimSpace(s)
		}
	}

	alt, _ := raw[fieldImageAlt].(string)
	fm.ImageAlt = strings.TrimSpace(alt)
	if fm.Image != "" && fm.ImageAlt == "" {
		fail(fieldImageAlt, "is required when image is set")
	}

	if v, ok := raw[fieldDescription]; ok && v != nil {
		s, isString := v.(string)
		if !isString {
			fail(fieldDescription, "must be a string, got %T", v)
		}
		fm.Description = strings.TrimSpace(s)
	}

	if v, ok := raw[fieldTags]; ok && v != nil {
		tags, err := parseTags(v)
		if err != nil {
			fail(fieldTags, "%v", err)
		}
		fm.Tags = tags
	}

	if v, ok := raw[fieldDraft]; ok && v != nil {
		b, isBool := v.(bool)
		if !isBool {
			fail(fieldDraft, "must be true or false, got %T", v)
		}
		fm.Draft = b
	}

	for k, v := range raw {
		if _, known := knownFields[k]; known {
			continue
		}
		if fm.Extra == nil {
			fm.Extra = make(map[string]any)
		}
		fm.Extra[k] = v
	}

	if len(errs) > 0 {
		sort.SliceStable(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
		return Frontmatter{}, errs
	}
	return fm, nil
}

func parseDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return calendarDate(d), nil
	case toml.LocalDate:
		return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC), nil
	case toml.LocalDateTime:
		return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC), nil
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return calendarDate(t), nil
			}
		}
		return time.Time{}, fmt.Errorf("cannot parse %q as a date, use YYYY-MM-DD", s)
	default:
		return time.Time{}, fmt.Errorf("must be a date, got %T", v)
	}
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parseTags(v any) ([]string, error) {
	var raw []string
	switch t := v.(type) {
	case string:
		raw = strings.Split(t, ",")
	case []any:
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("tag must be a string, got %T", item)
			}
			raw = append(raw, s)
		}
	case []string:
		raw = t
	default:
		return nil, fmt.Errorf("must be a list of strings, got %T", v)
	}
	var tags []string
	for _, s := range raw {
		if tag := normalizeTag(s); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
