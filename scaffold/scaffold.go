// Package scaffold creates a new pubsite project from embedded templates.
package scaffold

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
	"time"
)

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

const root = "templates"

// Data holds the template variables passed to every scaffold template.
type Data struct {
	ProjectName string
	SiteName    string
	Date        string // first post date, 2006-01-02
}

// NewData derives template data from a project directory name.
func NewData(dir string, now time.Time) Data {
	name := filepath.Base(filepath.Clean(dir))
	return Data{
		ProjectName: name,
		SiteName:    ToTitle(name),
		Date:        now.Format("2006-01-02"),
	}
}

// Generate writes the project into dir, which must not exist yet. Every
// created file is reported to out.
func Generate(dir string, data Data, out io.Writer) error {
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("directory %q already exists", dir)
	}

	return fs.WalkDir(Templates, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		outPath := filepath.Join(dir, filepath.FromSlash(strings.TrimSuffix(rel, ".tmpl")))

		// Dotfiles are stored without the dot so tooling does not pick them up.
		if path.Base(rel) == "gitignore.tmpl" {
			outPath = filepath.Join(filepath.Dir(outPath), ".gitignore")
		}

		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		content, err := Templates.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		if !strings.HasSuffix(p, ".tmpl") {
			if err := os.WriteFile(outPath, content, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(out, "  created %s\n", outPath)
			return nil
		}

		tmpl, err := template.New(path.Base(p)).Parse(string(content))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", p, err)
		}
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		defer f.Close()
		if err := tmpl.Execute(f, data); err != nil {
			return fmt.Errorf("execute template %s: %w", p, err)
		}
		fmt.Fprintf(out, "  created %s\n", outPath)
		return nil
	})
}

// ToTitle converts a hyphenated or lowercase name to a title-case string.
// e.g. "my-blog" -> "My Blog", "myblog" -> "Myblog"
func ToTitle(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
