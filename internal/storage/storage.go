// Package storage persists dashboard settings across restarts.
//
// Two backends implement Store:
//  1. FileStore: a small CSV file of key,value rows mirrored in memory
//  2. SQLiteStore: a single settings table in an SQLite database
//
// Thread-safety:
//   - Both backends are safe for concurrent use
//   - FileStore serialises every operation behind one mutex
//   - SQLiteStore relies on database/sql pooling
package storage

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	apperrors "centerhub/internal/errors"
)

// SheetIDKey is the settings key holding the active spreadsheet id.
const SheetIDKey = "election_sheet_id"

// bufferSize for buffered I/O (64KB)
const bufferSize = 64 * 1024

// Store is a string key/value settings store.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
	Close() error
}

// SheetID returns the stored spreadsheet id, or fallback when none is stored.
func SheetID(s Store, fallback string) (string, error) {
	v, ok, err := s.Get(SheetIDKey)
	if err != nil {
		return fallback, err
	}
	if !ok || v == "" {
		return fallback, nil
	}
	return v, nil
}

// FileStore keeps settings in a CSV file.
//
// Data flow:
//
//	Read:  CSV → Load into map → Serve from map
//	Write: Update map → Rewrite entire CSV
type FileStore struct {
	mu     sync.Mutex
	path   string
	values map[string]string
	logger *zap.Logger
}

// OpenFile creates a FileStore backed by path and loads any existing rows.
//
// A missing file is normal on first run; it is created on the first Set.
func OpenFile(path string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &FileStore{
		path:   path,
		values: make(map[string]string),
		logger: logger,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("📋 No settings file found, starting with defaults", zap.String("path", s.path))
			return nil
		}
		return apperrors.NewStorageError("open", s.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReaderSize(file, bufferSize))
	reader.FieldsPerRecord = -1

	count := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return apperrors.NewStorageError("read", s.path, err)
		}
		if len(row) < 2 || row[0] == "" {
			s.logger.Warn("⚠️  Skipping malformed settings row", zap.Strings("row", row))
			continue
		}
		s.values[row[0]] = row[1]
		count++
	}

	s.logger.Debug("📚 Loaded settings", zap.Int("count", count), zap.String("path", s.path))
	return nil
}

// Get returns the value for key.
func (s *FileStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores value and rewrites the file.
//
// The map is only updated after the file has been written, so a failed
// write leaves memory and disk consistent.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]string, len(s.values)+1)
	for k, v := range s.values {
		next[k] = v
	}
	next[key] = value

	if err := s.rewriteFile(next); err != nil {
		return apperrors.NewStorageError("set", key, err)
	}
	s.values = next
	return nil
}

// Close is a no-op; every Set is already on disk.
func (s *FileStore) Close() error {
	return nil
}

// rewriteFile writes values to a temp file and renames it over the target.
//
// Note: Caller must hold the mutex lock
func (s *FileStore) rewriteFile(values map[string]string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.csv")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	bufferedWriter := bufio.NewWriterSize(tmp, bufferSize)
	writer := csv.NewWriter(bufferedWriter)
	for _, k := range keys {
		if err := writer.Write([]string{k, values[k]}); err != nil {
			tmp.Close()
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := bufferedWriter.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
