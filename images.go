package pubsite

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"
)

const (
	defaultMaxImageWidth = 800
	defaultJPEGQuality   = 80
	placeholderWidth     = 20
	placeholderQuality   = 40
	imagesSubdir         = "images"
)

// Format is an output encoding for image variants.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

func (f Format) ext() string {
	if f == FormatPNG {
		return ".png"
	}
	return ".jpg"
}

// Layout describes how an image will be displayed: which widths the page may
// request, in which formats, and an optional width/height ratio to crop to.
type Layout struct {
	AspectRatio float64  `json:"aspectRatio,omitempty"`
	Widths      []int    `json:"widths"`
	Formats     []Format `json:"formats"`
	Quality     int      `json:"quality"`
}

// ConstrainedLayout renders at most maxWidth CSS pixels wide, with variants
// for small screens and 2x displays.
func ConstrainedLayout(maxWidth int, formats ...Format) Layout {
	if maxWidth <= 0 {
		maxWidth = defaultMaxImageWidth
	}
	return Layout{
		Widths:  []int{maxWidth / 4, maxWidth / 2, maxWidth, maxWidth * 2},
		Formats: formats,
	}
}

// normalized returns the canonical form used for hashing, so equivalent
// layouts share cache entries.
func (l Layout) normalized() Layout {
	out := Layout{AspectRatio: l.AspectRatio, Quality: l.Quality}
	seen := make(map[int]bool)
	for _, w := range l.Widths {
		if w > 0 && !seen[w] {
			seen[w] = true
			out.Widths = append(out.Widths, w)
		}
	}
	sort.Ints(out.Widths)
	if len(out.Widths) == 0 {
		out.Widths = []int{defaultMaxImageWidth}
	}
	seenFmt := make(map[Format]bool)
	for _, f := range l.Formats {
		if (f == FormatJPEG || f == FormatPNG) && !seenFmt[f] {
			seenFmt[f] = true
			out.Formats = append(out.Formats, f)
		}
	}
	if len(out.Formats) == 0 {
		out.Formats = []Format{FormatJPEG}
	}
	if out.Quality <= 0 || out.Quality > 100 {
		out.Quality = defaultJPEGQuality
	}
	return out
}

func (l Layout) hash() string {
	b, _ := json.Marshal(l.normalized())
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Variant is one encoded rendition of a source image.
type Variant struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format Format `json:"format"`
	File   string `json:"file"` // name inside the resolver's cache directory
	URL    string `json:"url"`
	Size   int    `json:"size"`
}

// Placeholder is the tiny blur-up image shown while a variant loads.
type Placeholder struct {
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	DataURI string `json:"dataURI"`
}

// ImageVariantSet is every rendition of one source image for one layout.
// Sets are shared between callers and must not be modified.
type ImageVariantSet struct {
	Key          string      `json:"key"`
	SourceHash   string      `json:"sourceHash"`
	LayoutHash   string      `json:"layoutHash"`
	SourceWidth  int         `json:"sourceWidth"`
	SourceHeight int         `json:"sourceHeight"`
	Variants     []Variant   `json:"variants"`
	Placeholder  Placeholder `json:"placeholder"`
}

// SrcSet returns the srcset attribute value for one format.
func (s *ImageVariantSet) SrcSet(f Format) string {
	var b bytes.Buffer
	for _, v := range s.Variants {
		if v.Format != f {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v.URL + " " + strconv.Itoa(v.Width) + "w")
	}
	return b.String()
}

// Fallback returns the widest variant of the first format, for plain <img src>.
func (s *ImageVariantSet) Fallback() Variant {
	var best Variant
	for _, v := range s.Variants {
		if v.Format == s.Variants[0].Format && v.Width > best.Width {
			best = v
		}
	}
	return best
}

// Formats lists the formats present in the set, in layout order.
func (s *ImageVariantSet) Formats() []Format {
	var out []Format
	seen := make(map[Format]bool)
	for _, v := range s.Variants {
		if !seen[v.Format] {
			seen[v.Format] = true
			out = append(out, v.Format)
		}
	}
	return out
}

// ImageResolver turns a source image into responsive variants.
type ImageResolver interface {
	Resolve(ctx context.Context, source string, layout Layout) (*ImageVariantSet, error)
}

// Resolver is the content-addressed ImageResolver. A given (source bytes,
// layout) pair is computed at most once: concurrent requests share one
// in-flight computation, later requests hit the in-memory cache, and later
// builds hit the manifest store.
type Resolver struct {
	dir       string
	urlPrefix string
	store     *Store
	cache     *VariantCache
	group     singleflight.Group
	computed  atomic.Int64
	logger    *slog.Logger

	mu   sync.Mutex
	used map[string]struct{}
}

// NewResolver stores variant files under cacheDir/images. store may be nil,
// in which case nothing survives the process.
func NewResolver(cacheDir, urlPrefix string, store *Store, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		dir:       filepath.Join(cacheDir, imagesSubdir),
		urlPrefix: urlPrefix,
		store:     store,
		cache:     NewVariantCache(),
		logger:    logger,
		used:      make(map[string]struct{}),
	}
}

// Dir is where variant files are written.
func (r *Resolver) Dir() string {
	return r.dir
}

// Computed returns how many sets were actually decoded and encoded.
func (r *Resolver) Computed() int64 {
	return r.computed.Load()
}

// Resolve returns the variant set for source under layout. A missing or
// undecodable source yields an *ImageResolutionError.
func (r *Resolver) Resolve(ctx context.Context, source string, layout Layout) (*ImageVariantSet, error) {
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, &ImageResolutionError{Source: source, Err: err}
	}
	layout = layout.normalized()
	sourceHash := sha256.Sum256(data)
	key := hex.EncodeToString(sourceHash[:]) + "-" + layout.hash()[:16]
	r.markUsed(key)

	if set, ok := r.cache.Get(key); ok {
		return set, nil
	}

	ch := r.group.DoChan(key, func() (interface{}, error) {
		// A flight that finished between our cache check and DoChan has
		// already filled the cache.
		if set, ok := r.cache.Get(key); ok {
			return set, nil
		}
		set, err := r.load(key)
		if errors.Is(err, ErrNotFound) {
			set, err = r.compute(source, key, data, layout)
		}
		if err != nil {
			return nil, err
		}
		r.cache.Put(key, set)
		return set, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*ImageVariantSet), nil
	}
}

// load returns a stored set whose files are all still present.
func (r *Resolver) load(key string) (*ImageVariantSet, error) {
	if r.store == nil {
		return nil, ErrNotFound
	}
	set, err := r.store.GetDerivative(key)
	if err != nil {
		return nil, err
	}
	for _, v := range set.Variants {
		if _, err := os.Stat(filepath.Join(r.dir, v.File)); err != nil {
			r.logger.Debug("stored variant missing, recomputing", "key", key, "file", v.File)
			return nil, ErrNotFound
		}
	}
	return set, nil
}

func (r *Resolver) compute(source, key string, data []byte, layout Layout) (*ImageVariantSet, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &ImageResolutionError{Source: source, Err: fmt.Errorf("decode image: %w", err)}
	}
	img = cropToAspect(img, layout.AspectRatio)
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image cache dir: %w", err)
	}

	set := &ImageVariantSet{
		Key:          key,
		SourceHash:   key[:64],
		LayoutHash:   layout.hash(),
		SourceWidth:  w,
		SourceHeight: h,
	}
	base := key[:16] + key[64:73]
	for _, width := range targetWidths(layout.Widths, w) {
		scaled, height := resize(img, width)
		for _, f := range layout.Formats {
			var buf bytes.Buffer
			if err := encode(&buf, scaled, f, layout.Quality); err != nil {
				return nil, fmt.Errorf("encode %s: %w", f, err)
			}
			name := base + "-" + strconv.Itoa(width) + "w" + f.ext()
			if err := writeFileAtomic(filepath.Join(r.dir, name), buf.Bytes()); err != nil {
				return nil, fmt.Errorf("write variant: %w", err)
			}
			set.Variants = append(set.Variants, Variant{
				Width:  width,
				Height: height,
				Format: f,
				File:   name,
				URL:    r.urlPrefix + name,
				Size:   buf.Len(),
			})
		}
	}

	placeholder, err := blurPlaceholder(img)
	if err != nil {
		return nil, fmt.Errorf("placeholder: %w", err)
	}
	set.Placeholder = placeholder

	if r.store != nil {
		if err := r.store.SaveDerivative(set); err != nil {
			return nil, fmt.Errorf("save derivative manifest: %w", err)
		}
	}
	r.computed.Add(1)

	var total int
	for _, v := range set.Variants {
		total += v.Size
	}
	r.logger.Info("processed image", "source", source, "variants", len(set.Variants), "size", humanize.Bytes(uint64(total)))
	return set, nil
}

func (r *Resolver) markUsed(key string) {
	r.mu.Lock()
	r.used[key] = struct{}{}
	r.mu.Unlock()
}

// beginBuild forgets which sets were asked for, so the next Prune keeps only
// what the current build uses.
func (r *Resolver) beginBuild() {
	r.mu.Lock()
	r.used = make(map[string]struct{})
	r.mu.Unlock()
}

// Prune drops stored sets and files that no Resolve call asked for since the
// last build started. It returns the number of sets removed.
func (r *Resolver) Prune() (int, error) {
	if r.store == nil {
		return 0, nil
	}
	r.mu.Lock()
	keep := make(map[string]struct{}, len(r.used))
	for k := range r.used {
		keep[k] = struct{}{}
	}
	r.mu.Unlock()

	stale, err := r.store.Prune(keep)
	if err != nil {
		return 0, err
	}
	for _, set := range stale {
		for _, v := range set.Variants {
			_ = os.Remove(filepath.Join(r.dir, v.File)) // already gone is fine
		}
	}
	return len(stale), nil
}

// targetWidths drops widths wider than the source. If nothing is left the
// source width itself is used, so images are never upscaled.
func targetWidths(widths []int, sourceWidth int) []int {
	var out []int
	for _, w := range widths {
		if w <= sourceWidth {
			out = append(out, w)
		}
	}
	if len(out) == 0 {
		out = []int{sourceWidth}
	}
	return out
}

func resize(img image.Image, width int) (image.Image, int) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if width == w {
		return img, h
	}
	newH := h * width / w
	if newH < 1 {
		newH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst, newH
}

// cropToAspect center-crops img to ratio (width/height). Zero keeps the source.
func cropToAspect(img image.Image, ratio float64) image.Image {
	if ratio <= 0 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	cw, ch := w, int(float64(w)/ratio)
	if ch > h {
		cw, ch = int(float64(h)*ratio), h
	}
	if cw == w && ch == h || cw < 1 || ch < 1 {
		return img
	}
	x0 := b.Min.X + (w-cw)/2
	y0 := b.Min.Y + (h-ch)/2
	dst := image.NewRGBA(image.Rect(0, 0, cw, ch))
	draw.Copy(dst, image.Point{}, img, image.Rect(x0, y0, x0+cw, y0+ch), draw.Src, nil)
	return dst
}

func encode(buf *bytes.Buffer, img image.Image, f Format, quality int) error {
	switch f {
	case FormatPNG:
		return png.Encode(buf, img)
	default:
		return jpeg.Encode(buf, img, &jpeg.Options{Quality: quality})
	}
}

// blurPlaceholder shrinks img to a few pixels wide; the browser's upscaling
// supplies the blur.
func blurPlaceholder(img image.Image) (Placeholder, error) {
	b := img.Bounds()
	w := placeholderWidth
	if b.Dx() < w {
		w = b.Dx()
	}
	h := b.Dy() * w / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: placeholderQuality}); err != nil {
		return Placeholder{}, err
	}
	return Placeholder{
		Width:   w,
		Height:  h,
		DataURI: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
