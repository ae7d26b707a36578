package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no artifact exists under the id.
	ErrNotFound = errors.New("storage: artifact not found")
	// ErrExists is returned when writing to an id that is already taken.
	ErrExists = errors.New("storage: artifact already exists")
)

// Assets are the three generated text blobs of one app.
type Assets struct {
	HTML string
	CSS  string
	JS   string
}

const (
	fileHTML     = "index.html"
	fileCSS      = "style.css"
	fileJS       = "script.js"
	fileCombined = "app.html"
)

// FileStore persists generated app assets on the local filesystem, one
// directory per artifact id.
type FileStore struct {
	basePath string
}

// NewFileStore initializes a FileStore rooted at basePath.
func NewFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// Write persists the three assets plus the synthesized combined document
// under a fresh artifact id. The files are staged in a temporary directory
// and renamed into place so a crash cannot leave a partially written
// artifact. Writing to an existing id fails with ErrExists.
func (s *FileStore) Write(ctx context.Context, id string, assets Assets) error {
	if s == nil {
		return errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	dir, err := s.artifactDir(id)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("%w: %s", ErrExists, id)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("storage: stat artifact: %w", err)
	}

	staging := dir + ".tmp-" + uuid.NewString()
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return fmt.Errorf("storage: create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	files := map[string]string{
		fileHTML:     assets.HTML,
		fileCSS:      assets.CSS,
		fileJS:       assets.JS,
		fileCombined: CombineDocument(assets.HTML, assets.CSS, assets.JS),
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(staging, name), []byte(content), 0o644); err != nil {
			return fmt.Errorf("storage: write %s: %w", name, err)
		}
	}

	if err := os.Rename(staging, dir); err != nil {
		return fmt.Errorf("storage: publish artifact: %w", err)
	}
	return nil
}

// Read returns the three assets stored under id.
func (s *FileStore) Read(ctx context.Context, id string) (Assets, error) {
	var assets Assets
	if s == nil {
		return assets, errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return assets, err
	}
	dir, err := s.artifactDir(id)
	if err != nil {
		return assets, err
	}
	html, err := os.ReadFile(filepath.Join(dir, fileHTML))
	if err != nil {
		if os.IsNotExist(err) {
			return assets, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return assets, fmt.Errorf("storage: read %s: %w", fileHTML, err)
	}
	css, err := os.ReadFile(filepath.Join(dir, fileCSS))
	if err != nil {
		return assets, fmt.Errorf("storage: read %s: %w", fileCSS, err)
	}
	js, err := os.ReadFile(filepath.Join(dir, fileJS))
	if err != nil {
		return assets, fmt.Errorf("storage: read %s: %w", fileJS, err)
	}
	assets.HTML = string(html)
	assets.CSS = string(css)
	assets.JS = string(js)
	return assets, nil
}

// ReadCombined returns the stored combined document for direct rendering.
func (s *FileStore) ReadCombined(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir, err := s.artifactDir(id)
	if err != nil {
		return "", err
	}
	doc, err := os.ReadFile(filepath.Join(dir, fileCombined))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return "", fmt.Errorf("storage: read %s: %w", fileCombined, err)
	}
	return string(doc), nil
}

// Delete removes every file stored under id. Deleting an absent id is not an
// error.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	if s == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	dir, err := s.artifactDir(id)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("storage: delete artifact: %w", err)
	}
	return nil
}

// artifactDir validates the id and resolves its directory. Ids are freshly
// generated UUIDs but path separators are rejected regardless.
func (s *FileStore) artifactDir(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.New("storage: artifact id is required")
	}
	if strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return "", fmt.Errorf("storage: invalid artifact id %q", id)
	}
	return filepath.Join(s.basePath, id), nil
}
