package scaffold

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"my-blog", "My Blog"},
		{"myblog", "Myblog"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToTitle(tt.in))
	}
}

func TestGenerate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "my-blog")
	data := NewData(dir, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC))
	var out bytes.Buffer
	require.NoError(t, Generate(dir, data, &out))

	cfg, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(cfg), `title: "My Blog"`)

	post, err := os.ReadFile(filepath.Join(dir, "content", "posts", "hello-world.md"))
	require.NoError(t, err)
	assert.Contains(t, string(post), "date: 2024-03-09")

	for _, name := range []string{".gitignore", "static/robots.txt", "assets/.gitkeep"} {
		assert.FileExists(t, filepath.Join(dir, filepath.FromSlash(name)))
	}
	assert.Contains(t, out.String(), "config.yaml")
}

func TestGenerateRefusesExistingDir(t *testing.T) {
	dir := t.TempDir()
	err := Generate(dir, NewData(dir, time.Now()), &bytes.Buffer{})
	assert.ErrorContains(t, err, "already exists")
}
