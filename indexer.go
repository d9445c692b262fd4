package pubsite

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/pubsite/markdown"
)

// idNamespace seeds name-based record IDs so the same source path gets the
// same ID on every build.
var idNamespace = uuid.MustParse("6f1c3b52-8f0e-4c51-9b8e-2d7a4e1f0a93")

var sourceExtensions = map[string]struct{}{
	".md":       {},
	".mdx":      {},
	".markdown": {},
}

// Indexer walks a content directory and turns every source file into a ContentRecord.
type Indexer struct {
	AssetsDir      string
	WordsPerMinute int
	Workers        int
	IncludeDrafts  bool
	Logger         *slog.Logger
}

// NewIndexer configures an Indexer from the site configuration.
func NewIndexer(cfg SiteConfig, logger *slog.Logger) *Indexer {
	return &Indexer{
		AssetsDir:      cfg.AssetsDir,
		WordsPerMinute: cfg.WordsPerMinute,
		Workers:        cfg.Workers,
		IncludeDrafts:  cfg.IncludeDrafts,
		Logger:         logger,
	}
}

// parsedSource is the outcome of one file. Exactly one of record or err is meaningful.
type parsedSource struct {
	rel    string
	slug   string
	record ContentRecord
	draft  bool
	kind   IndexErrorKind
	err    error
}

// Build indexes every source file under dir. Files are parsed in parallel but
// merged in path order. Every problem is collected before anything is reported,
// so one bad file never hides another.
func (ix *Indexer) Build(ctx context.Context, dir string) (*ContentIndex, error) {
	paths, err := collectSources(dir)
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	results := make([]parsedSource, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.workers())
	for i, rel := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = ix.parseFile(dir, rel)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var problems []IndexProblem
	var records []ContentRecord
	slugOwners := make(map[string][]string)
	var slugOrder []string
	for _, r := range results {
		if r.err != nil {
			problems = append(problems, IndexProblem{Kind: r.kind, Paths: []string{r.rel}, Err: r.err})
		}
		if r.draft {
			ix.logger().Debug("skipping draft", "path", r.rel)
			continue
		}
		if r.slug != "" {
			if _, seen := slugOwners[r.slug]; !seen {
				slugOrder = append(slugOrder, r.slug)
			}
			slugOwners[r.slug] = append(slugOwners[r.slug], r.rel)
		}
		if r.err == nil {
			records = append(records, r.record)
		}
	}
	for _, slug := range slugOrder {
		owners := slugOwners[slug]
		if len(owners) < 2 {
			continue
		}
		problems = append(problems, IndexProblem{
			Kind:  KindDuplicateSlug,
			Paths: owners,
			Err:   &DuplicateSlugError{Slug: slug, Paths: owners},
		})
	}

	if len(problems) > 0 {
		sort.SliceStable(problems, func(i, j int) bool {
			return problems[i].Paths[0] < problems[j].Paths[0]
		})
		return nil, &IndexError{Problems: problems}
	}

	ix.logger().Info("indexed content", "dir", dir, "files", len(paths), "records", len(records))
	return NewContentIndex(records...), nil
}

func (ix *Indexer) parseFile(dir, rel string) parsedSource {
	p := parsedSource{rel: rel, slug: SlugFromPath(rel)}

	f, err := os.Open(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		p.kind, p.err = KindUnreadable, fmt.Errorf("%s: %w", rel, err)
		return p
	}
	defer f.Close()

	raw, body, err := parseSource(f)
	if err != nil {
		p.kind = KindValidation
		p.err = FieldErrors{{Path: rel, Field: "frontmatter", Reason: err.Error()}}
		return p
	}

	fm, err := ValidateFrontmatter(raw)
	fieldErrs, _ := err.(FieldErrors)
	if p.slug == "" {
		fieldErrs = append(fieldErrs, &ValidationError{Field: "slug", Reason: "path normalizes to an empty slug"})
	}
	if len(fieldErrs) > 0 {
		p.kind, p.err = KindValidation, fieldErrs.withPath(rel)
		return p
	}
	if fm.Draft && !ix.IncludeDrafts {
		p.draft = true
		return p
	}

	words := markdown.WordCount(body)
	minutes := EstimateReadingMinutes(words, ix.WordsPerMinute)
	label, _ := MinutesToLabel(minutes)

	derived := DerivedFields{
		WordCount:               words,
		EstimatedReadingMinutes: minutes,
		ReadingTimeLabel:        label,
	}
	if fm.Image != "" {
		derived.ImageSource = ix.imageSource(dir, rel, fm.Image)
	}

	p.record = ContentRecord{
		ID:          uuid.NewSHA1(idNamespace, []byte(rel)).String(),
		Slug:        p.slug,
		SourcePath:  rel,
		Frontmatter: fm,
		Body:        body,
		Derived:     derived,
	}
	return p
}

// imageSource resolves an image reference: root-relative references live in
// the assets directory, everything else is relative to the article file.
func (ix *Indexer) imageSource(dir, rel, ref string) string {
	if strings.HasPrefix(ref, "/") {
		return filepath.Join(ix.AssetsDir, filepath.FromSlash(strings.TrimPrefix(ref, "/")))
	}
	return filepath.Join(dir, filepath.Dir(filepath.FromSlash(rel)), filepath.FromSlash(ref))
}

func (ix *Indexer) workers() int {
	if ix.Workers > 0 {
		return ix.Workers
	}
	return runtime.NumCPU()
}

func (ix *Indexer) logger() *slog.Logger {
	if ix.Logger != nil {
		return ix.Logger
	}
	return slog.Default()
}

// collectSources returns slash-separated paths of every article under dir, sorted.
// Entries starting with '.' or '_' are skipped.
func collectSources(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if p != dir && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := sourceExtensions[strings.ToLower(filepath.Ext(name))]; !ok {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
