package pubsite

import (
	"sort"
	"strings"
)

// SortOrder selects how ListPosts orders records.
type SortOrder int

const (
	// DateDescending lists newest first. This is the primary listing order.
	DateDescending SortOrder = iota
	// TitleAscending lists alphabetically by title, case-insensitively.
	TitleAscending
)

func (o SortOrder) String() string {
	switch o {
	case DateDescending:
		return "date-desc"
	case TitleAscending:
		return "title-asc"
	default:
		return "unknown"
	}
}

// ContentIndex is the read-only set of records for one build, in insertion order.
type ContentIndex struct {
	records []ContentRecord
	byID    map[string]int
	bySlug  map[string]int
}

// NewContentIndex builds an index over records in the given order.
// It does not check slug uniqueness; the Indexer does that before calling it.
func NewContentIndex(records ...ContentRecord) *ContentIndex {
	ix := &ContentIndex{
		records: append([]ContentRecord(nil), records...),
		byID:    make(map[string]int, len(records)),
		bySlug:  make(map[string]int, len(records)),
	}
	for i, r := range ix.records {
		ix.byID[r.ID] = i
		ix.bySlug[r.Slug] = i
	}
	return ix
}

// Len returns the number of records.
func (ix *ContentIndex) Len() int {
	return len(ix.records)
}

// Records returns every record in insertion order.
func (ix *ContentIndex) Records() []ContentRecord {
	return append([]ContentRecord(nil), ix.records...)
}

// Get returns the record with the given ID.
func (ix *ContentIndex) Get(id string) (ContentRecord, error) {
	i, ok := ix.byID[id]
	if !ok {
		return ContentRecord{}, ErrNotFound
	}
	return ix.records[i], nil
}

// GetBySlug returns the record with the given slug.
func (ix *ContentIndex) GetBySlug(slug string) (ContentRecord, error) {
	i, ok := ix.bySlug[slug]
	if !ok {
		return ContentRecord{}, ErrNotFound
	}
	return ix.records[i], nil
}

// ListPosts returns every record in the requested order. Equal sort keys fall
// back to ID ascending, so identical input always yields identical output.
func (ix *ContentIndex) ListPosts(order SortOrder) []ContentRecord {
	posts := ix.Records()
	sortPosts(posts, order)
	return posts
}

func sortPosts(posts []ContentRecord, order SortOrder) {
	sort.Slice(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		switch order {
		case TitleAscending:
			ta, tb := strings.ToLower(a.Frontmatter.Title), strings.ToLower(b.Frontmatter.Title)
			if ta != tb {
				return ta < tb
			}
		default:
			if !a.Frontmatter.Date.Equal(b.Frontmatter.Date) {
				return a.Frontmatter.Date.After(b.Frontmatter.Date)
			}
		}
		return a.ID < b.ID
	})
}
