// Package scratch is the per-deployment scratch folder that holds the uploaded
// resume and saved match results between page visits.
package scratch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// DefaultJSONFilename is used by SaveJSON when no name is given.
const DefaultJSONFilename = "matches.json"

var (
	// ErrNotFound is returned when no stored file matches a lookup.
	ErrNotFound = errors.New("scratch file not found")
	// ErrInvalidFilename is returned for names that are empty, hidden or contain path elements.
	ErrInvalidFilename = errors.New("invalid filename")
)

// Mirror receives a copy of every write. Implementations must be safe for concurrent use.
type Mirror interface {
	Put(ctx context.Context, name string, data []byte, contentType string) error
	Delete(ctx context.Context, names []string) error
}

// Store manages files in a single directory.
type Store struct {
	dir    string
	mirror Mirror
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithMirror copies writes and deletes to m.
func WithMirror(m Mirror) Option {
	return func(s *Store) { s.mirror = m }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Store rooted at dir. The directory is created lazily on first write.
func New(dir string, opts ...Option) *Store {
	s := &Store{dir: dir, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("scratch")
	return s
}

// Dir returns the root directory.
func (s *Store) Dir() string {
	return s.dir
}

// SanitizeFilename reduces name to a single path element, rejecting names
// that would escape the store or hide from listings.
func SanitizeFilename(name string) (string, error) {
	name = strings.TrimSpace(name)
	// Treat both separators alike so Windows-style names from browsers are handled.
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "" || base == "." || base == ".." || base == "/" || strings.HasPrefix(base, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	return base, nil
}

// Clear removes every file in the store. A missing directory is not an error.
func (s *Store) Clear(ctx context.Context) (int, error) {
	names, err := s.List()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, name := range names {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("failed to remove %s: %w", name, err)
		}
		removed++
	}

	if s.mirror != nil && len(names) > 0 {
		if err := s.mirror.Delete(ctx, names); err != nil {
			s.logger.Warn("failed to clear mirrored files", zap.Error(err))
		}
	}

	s.logger.Info("scratch folder cleared", zap.Int("files", removed))
	return removed, nil
}

// SaveJSON writes data as indented JSON and returns the stored filename.
func (s *Store) SaveJSON(ctx context.Context, filename string, data any) (string, error) {
	if filename == "" {
		filename = DefaultJSONFilename
	}
	body, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s: %w", filename, err)
	}
	return s.write(ctx, filename, body, "application/json")
}

// SaveFile copies r into the store and returns the stored filename.
func (s *Store) SaveFile(ctx context.Context, filename string, r io.Reader) (string, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return s.write(ctx, filename, body, "")
}

func (s *Store) write(ctx context.Context, filename string, body []byte, contentType string) (string, error) {
	name, err := SanitizeFilename(filename)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create scratch dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), body, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}

	if s.mirror != nil {
		if contentType == "" {
			contentType = mime.TypeByExtension(filepath.Ext(name))
		}
		if err := s.mirror.Put(ctx, name, body, contentType); err != nil {
			// The local copy is authoritative; a failed mirror only loses the backup.
			s.logger.Warn("failed to mirror file", zap.String("file", name), zap.Error(err))
		}
	}

	s.logger.Info("file saved", zap.String("file", name), zap.Int("bytes", len(body)))
	return name, nil
}

// List returns the names of regular files in the store, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list scratch dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// FindFirst returns the first file (in name order) with the given extension.
func (s *Store) FindFirst(ext string) (string, error) {
	names, err := s.List()
	if err != nil {
		return "", err
	}
	for _, name := range names {
		if strings.EqualFold(filepath.Ext(name), ext) {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: no %s file", ErrNotFound, ext)
}

// Read returns the contents of a stored file.
func (s *Store) Read(filename string) ([]byte, error) {
	name, err := SanitizeFilename(filename)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}
