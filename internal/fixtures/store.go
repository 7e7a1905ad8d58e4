package fixtures

import (
	"log/slog"
	"sync"
)

// Store hands out the current dataset and swaps it on reload.
type Store struct {
	mu      sync.RWMutex
	path    string
	data    *Dataset
	version int64
	logger  *slog.Logger
}

// NewStore loads the dataset at path, or the embedded default when path is
// empty.
func NewStore(path string, logger *slog.Logger) (*Store, error) {
	s := &Store{path: path, logger: logger}
	ds, err := s.load()
	if err != nil {
		return nil, err
	}
	s.data = ds
	s.version = 1
	return s, nil
}

// NewStaticStore wraps an already decoded dataset.
func NewStaticStore(ds *Dataset) *Store {
	return &Store{data: ds, version: 1}
}

// Dataset returns the current dataset. Callers must not mutate it.
func (s *Store) Dataset() *Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Version increases every time Reload swaps the dataset.
func (s *Store) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Reload re-reads the source. The previous dataset stays active on error.
func (s *Store) Reload() error {
	ds, err := s.load()
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("fixture reload failed", slog.String("path", s.path), slog.Any("error", err))
		}
		return err
	}
	s.mu.Lock()
	s.data = ds
	s.version++
	version := s.version
	s.mu.Unlock()
	if s.logger != nil {
		s.logger.Info("fixtures reloaded", slog.String("path", s.path), slog.Int64("version", version))
	}
	return nil
}

func (s *Store) load() (*Dataset, error) {
	if s.path == "" {
		return Default()
	}
	return LoadFile(s.path)
}
