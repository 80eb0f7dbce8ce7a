// Package assets serves the bot's static files (the photo sent by /Photo)
// from an afero filesystem rooted at a configured directory.
package assets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/Bukinich-Pavel/resume-bot/internal/domain/shared"
)

// Config contains configuration for the asset store.
type Config struct {
	// Dir is the directory assets are read from.
	Dir string

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultConfig returns the default asset configuration.
func DefaultConfig() Config {
	return Config{
		Dir:    "Files",
		Logger: slog.Default(),
	}
}

// Store opens assets by name. Names are relative to the root and may not
// escape it.
type Store struct {
	fs     afero.Fs
	logger *slog.Logger
}

// NewStore creates a read-only store over Dir on the OS filesystem.
func NewStore(config Config) *Store {
	if config.Dir == "" {
		config.Dir = DefaultConfig().Dir
	}
	return NewStoreFs(afero.NewBasePathFs(afero.NewOsFs(), config.Dir), config.Logger)
}

// NewStoreFs wraps an arbitrary filesystem. Used by tests with afero.MemMapFs.
func NewStoreFs(fsys afero.Fs, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		fs:     afero.NewReadOnlyFs(fsys),
		logger: logger,
	}
}

// Open opens the named asset for reading.
func (s *Store) Open(name string) (io.ReadCloser, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	f, err := s.fs.Open(clean)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, shared.WrapError("assets", "Open", shared.ErrAssetNotFound, fmt.Sprintf("asset %q not found", name), err)
		}
		return nil, fmt.Errorf("open asset %q: %w", name, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat asset %q: %w", name, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, shared.NewDomainError("assets", "Open", shared.ErrAssetNotFound, fmt.Sprintf("asset %q is a directory", name))
	}

	s.logger.Debug("asset opened", "name", clean, "size", info.Size())
	return f, nil
}

// Exists reports whether the named asset can be opened. Used by readiness
// checks.
func (s *Store) Exists(name string) bool {
	clean, err := cleanName(name)
	if err != nil {
		return false
	}
	ok, err := afero.Exists(s.fs, clean)
	return err == nil && ok
}

func cleanName(name string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))
	if clean == "/" {
		return "", shared.NewDomainError("assets", "Open", shared.ErrInvalidInput, "empty asset name")
	}
	return clean, nil
}
