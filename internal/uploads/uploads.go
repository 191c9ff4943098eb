package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shinejewelry/internal/validate"
)

// WebPrefix is the path prefix stored in product image lists and used by
// the public /uploads/* route.
const WebPrefix = "uploads/"

// Manager owns the upload root. Every delete it performs first checks
// the resolved path is a descendant of the root, so a poisoned stored
// path can never unlink files elsewhere on disk.
type Manager struct {
	root string
}

func NewManager(root string) (*Manager, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &Manager{root: abs}, nil
}

func (m *Manager) Root() string { return m.root }

// Save stores one multipart file under the category subdirectory and
// returns its web-relative path.
func (m *Manager) Save(fh *multipart.FileHeader, category string) (string, error) {
	cat := validate.Slug(category)
	if cat == "" {
		cat = "misc"
	}
	dir := filepath.Join(m.root, cat)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), validate.Filename(fh.Filename))
	dst := filepath.Join(dir, name)

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", err
	}
	return WebPrefix + cat + "/" + name, nil
}

// ErrTooManyFiles is returned by SaveAll when a request carries more
// files than the caller's limit. Nothing is written in that case.
var ErrTooManyFiles = errors.New("too many files")

// SaveAll saves the given files, cleaning up already-saved ones if a
// later save fails. Requests over the limit are rejected outright
// rather than silently truncated.
func (m *Manager) SaveAll(files []*multipart.FileHeader, category string, max int) ([]string, error) {
	if len(files) > max {
		return nil, fmt.Errorf("%w: got %d, max %d", ErrTooManyFiles, len(files), max)
	}
	saved := make([]string, 0, len(files))
	for _, fh := range files {
		rel, err := m.Save(fh, category)
		if err != nil {
			m.RemoveAll(saved)
			return nil, err
		}
		saved = append(saved, rel)
	}
	return saved, nil
}

// Within reports whether the absolute path sits inside the upload root.
func (m *Manager) Within(abs string) bool {
	abs = filepath.Clean(abs)
	return strings.HasPrefix(abs, m.root+string(filepath.Separator))
}

// Resolve maps a stored web-relative image path to an absolute path
// inside the root, or "" if the path escapes it.
func (m *Manager) Resolve(rel string) string {
	trimmed := strings.TrimPrefix(rel, WebPrefix)
	abs := filepath.Join(m.root, filepath.FromSlash(trimmed))
	if !m.Within(abs) {
		return ""
	}
	return abs
}

// Remove unlinks one stored image. Best effort: unknown or out-of-root
// paths are ignored.
func (m *Manager) Remove(rel string) {
	if abs := m.Resolve(rel); abs != "" {
		_ = os.Remove(abs)
	}
}

func (m *Manager) RemoveAll(rels []string) {
	for _, rel := range rels {
		m.Remove(rel)
	}
}

// RemoveCategoryDir deletes the whole upload subdirectory for a category.
func (m *Manager) RemoveCategoryDir(category string) {
	cat := validate.Slug(category)
	if cat == "" {
		return
	}
	dir := filepath.Join(m.root, cat)
	if m.Within(dir) {
		_ = os.RemoveAll(dir)
	}
}
