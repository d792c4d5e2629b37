// Package jsonstore persists course snapshots and query results as
// pretty-printed JSON files.
//
// Reads never fail loudly: a missing file or malformed JSON is reported as
// "no data" (false / zero) and logged, so callers can fall back to fetching.
package jsonstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/andybalholm/brotli"

	"course-catalog/internal/domain"
)

// CompressedExt marks snapshots stored brotli-compressed.
const CompressedExt = ".br"

type Store struct {
	log *slog.Logger
}

func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{log: logger}
}

// Save writes v to path atomically (temp file + rename). Parent directories
// are created as needed.
func (s *Store) Save(path string, v any) error {
	data, err := encode(v)
	if err != nil {
		return fmt.Errorf("jsonstore: encode %s: %w", path, err)
	}

	if isCompressed(path) {
		var buf bytes.Buffer
		bw := brotli.NewWriterLevel(&buf, brotli.DefaultCompression)
		if _, err := bw.Write(data); err != nil {
			return fmt.Errorf("jsonstore: compress %s: %w", path, err)
		}
		if err := bw.Close(); err != nil {
			return fmt.Errorf("jsonstore: compress %s: %w", path, err)
		}
		data = buf.Bytes()
	}

	if err := writeAtomic(path, data); err != nil {
		return err
	}
	s.log.Info("saved json", "path", path, "bytes", len(data))
	return nil
}

// WriteFile stores data at path unchanged, with the same atomic replace as
// Save. Exports that are not JSON (the mapping CSV) go through here.
func (s *Store) WriteFile(path string, data []byte) error {
	if err := writeAtomic(path, data); err != nil {
		return err
	}
	s.log.Info("wrote file", "path", path, "bytes", len(data))
	return nil
}

func writeAtomic(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("jsonstore: mkdir %s: %w", dir, err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("jsonstore: create temp for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("jsonstore: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("jsonstore: close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("jsonstore: chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("jsonstore: rename %s: %w", path, err)
	}
	return nil
}

// Load decodes path into v. It returns false when the file is missing or does
// not hold valid JSON for v.
func (s *Store) Load(path string, v any) bool {
	data, ok := s.read(path)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.log.Warn("malformed json", "path", path, "err", err)
		return false
	}
	return true
}

// LoadCourses reads a course snapshot. Both shapes produced over time are
// accepted: a JSON array of course objects, or a JSON object keyed by course
// id. For the keyed form, records come back in key order and a missing "id"
// is filled from the key.
func (s *Store) LoadCourses(path string) ([]domain.CourseRecord, bool) {
	data, ok := s.read(path)
	if !ok {
		return nil, false
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		s.log.Warn("empty json file", "path", path)
		return nil, false
	}

	switch trimmed[0] {
	case '[':
		out := []domain.CourseRecord{}
		if err := json.Unmarshal(trimmed, &out); err != nil {
			s.log.Warn("malformed course list", "path", path, "err", err)
			return nil, false
		}
		return out, true

	case '{':
		var byID map[string]domain.CourseRecord
		if err := json.Unmarshal(trimmed, &byID); err != nil {
			s.log.Warn("malformed course map", "path", path, "err", err)
			return nil, false
		}
		keys := make([]string, 0, len(byID))
		for k := range byID {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		out := make([]domain.CourseRecord, 0, len(keys))
		for _, k := range keys {
			rec := byID[k]
			if rec.ID == "" {
				rec.ID = domain.CourseID(k)
			}
			out = append(out, rec)
		}
		return out, true
	}

	s.log.Warn("unexpected json document", "path", path)
	return nil, false
}

// Count returns the number of top-level elements of the JSON array or object
// stored at path, or 0 when there is no usable data.
func (s *Store) Count(path string) int {
	var raw json.RawMessage
	if !s.Load(path, &raw) {
		return 0
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		return len(list)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		return len(obj)
	}
	return 0
}

func (s *Store) read(path string) ([]byte, bool) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Debug("json file not found", "path", path)
		} else {
			s.log.Warn("open json file", "path", path, "err", err)
		}
		return nil, false
	}
	defer f.Close()

	var r io.Reader = f
	if isCompressed(path) {
		r = brotli.NewReader(f)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		s.log.Warn("read json file", "path", path, "err", err)
		return nil, false
	}
	return data, true
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isCompressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), CompressedExt)
}
