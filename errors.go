package pubsite

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a requested record or cache entry does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateSlug matches any DuplicateSlugError.
	ErrDuplicateSlug = errors.New("duplicate slug")

	// ErrRouteCollision matches any RouteCollisionError.
	ErrRouteCollision = errors.New("route collision")
)

// ValidationError is a single bad or missing frontmatter field.
type ValidationError struct {
	Path   string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Field, e.Reason)
}

// FieldErrors collects every ValidationError found in one file.
type FieldErrors []*ValidationError

func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, e := range fe {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// Unwrap exposes the individual field errors to errors.As.
func (fe FieldErrors) Unwrap() []error {
	errs := make([]error, len(fe))
	for i, e := range fe {
		errs[i] = e
	}
	return errs
}

// Has reports whether field failed validation.
func (fe FieldErrors) Has(field string) bool {
	for _, e := range fe {
		if e.Field == field {
			return true
		}
	}
	return false
}

func (fe FieldErrors) withPath(path string) FieldErrors {
	for _, e := range fe {
		e.Path = path
	}
	return fe
}

// DuplicateSlugError names every source file that normalized to the same slug.
type DuplicateSlugError struct {
	Slug  string
	Paths []string
}

func (e *DuplicateSlugError) Error() string {
	return fmt.Sprintf("slug %q is produced by %s", e.Slug, strings.Join(e.Paths, ", "))
}

func (e *DuplicateSlugError) Is(target error) bool {
	return target == ErrDuplicateSlug
}

// IndexErrorKind classifies an IndexProblem.
type IndexErrorKind string

const (
	KindValidation    IndexErrorKind = "validation"
	KindUnreadable    IndexErrorKind = "unreadable"
	KindDuplicateSlug IndexErrorKind = "duplicate_slug"
)

// IndexProblem is one reportable problem. Validation and unreadable problems
// name one file; duplicate-slug problems name every colliding file.
type IndexProblem struct {
	Kind  IndexErrorKind
	Paths []string
	Err   error
}

// IndexError is the complete report of a failed index build.
type IndexError struct {
	Problems []IndexProblem
}

func (e *IndexError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "index: %d problem(s)", len(e.Problems))
	for _, p := range e.Problems {
		fmt.Fprintf(&b, "\n  [%s] %s", p.Kind, p.Err)
	}
	return b.String()
}

// Unwrap exposes every problem's error to errors.Is and errors.As.
func (e *IndexError) Unwrap() []error {
	errs := make([]error, len(e.Problems))
	for i, p := range e.Problems {
		errs[i] = p.Err
	}
	return errs
}

// Count returns the number of problems of the given kind.
func (e *IndexError) Count(kind IndexErrorKind) int {
	n := 0
	for _, p := range e.Problems {
		if p.Kind == kind {
			n++
		}
	}
	return n
}

// ImageResolutionError means a source image could not be turned into variants.
// It is recoverable: the page renders without an image.
type ImageResolutionError struct {
	Source string
	Err    error
}

func (e *ImageResolutionError) Error() string {
	return fmt.Sprintf("resolve image %s: %v", e.Source, e.Err)
}

func (e *ImageResolutionError) Unwrap() error {
	return e.Err
}

// RouteCollisionError means two pages resolved to the same route.
type RouteCollisionError struct {
	Route  string
	First  RenderKind
	Second RenderKind
}

func (e *RouteCollisionError) Error() string {
	return fmt.Sprintf("route %s is claimed by both %s and %s", e.Route, e.First, e.Second)
}

func (e *RouteCollisionError) Is(target error) bool {
	return target == ErrRouteCollision
}
