// Package imagestore is a two tier (memory + disk) cache of image bytes keyed
// by an opaque identifier. It is best effort: disk failures are treated as
// misses and never reported to callers.
package imagestore

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gosimple/slug"
	"github.com/natefinch/atomic"
	gocache "github.com/patrickmn/go-cache"
)

// Store is safe for concurrent use. Writes to the same identifier are
// last-write-wins.
type Store struct {
	dir    string
	memory *gocache.Cache
	logger *slog.Logger
}

// New opens a store rooted at dir, creating the directory when needed.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("imagestore: directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("imagestore: create directory: %w", err)
	}

	return &Store{
		dir:    dir,
		memory: gocache.New(gocache.NoExpiration, 0),
		logger: logger,
	}, nil
}

// Dir returns the cache root.
func (s *Store) Dir() string {
	return s.dir
}

// Get returns a copy of the bytes stored under id, or nil when id is empty or
// the entry is in neither tier. A disk hit is promoted into memory.
func (s *Store) Get(id string) []byte {
	p := s.Path(id)
	if p == "" {
		return nil
	}

	if v, ok := s.memory.Get(p); ok {
		cacheLookups.WithLabelValues("memory").Inc()
		return bytes.Clone(v.([]byte))
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("image cache read failed", "path", p, "error", err)
		}
		cacheLookups.WithLabelValues("miss").Inc()
		return nil
	}

	cacheLookups.WithLabelValues("disk").Inc()
	s.memory.Set(p, data, gocache.NoExpiration)
	return bytes.Clone(data)
}

// Put stores data under id in both tiers. A nil data removes the entry from
// both tiers instead.
func (s *Store) Put(id string, data []byte) {
	p := s.Path(id)
	if p == "" {
		return
	}

	if data == nil {
		s.memory.Delete(p)
		// Already absent is fine.
		_ = os.Remove(p)
		s.logger.Debug("image evicted", "id", id)
		return
	}

	data = bytes.Clone(data)
	s.memory.Set(p, data, gocache.NoExpiration)

	if err := atomic.WriteFile(p, bytes.NewReader(data)); err != nil {
		s.logger.Debug("image cache write failed", "path", p, "error", err)
		return
	}

	s.logger.Debug("image stored", "id", id, "size", humanize.Bytes(uint64(len(data))))
}

// Remove evicts id from both tiers.
func (s *Store) Remove(id string) {
	s.Put(id, nil)
}

// Len reports the number of entries held in the memory tier.
func (s *Store) Len() int {
	return s.memory.ItemCount()
}

// Path maps an identifier to its file in the cache root. The file name is
// derived from the identifier's last path component, sanitized so that any
// identifier resolves to a single flat file. It returns "" for identifiers
// that carry no usable name.
func (s *Store) Path(id string) string {
	name := FileName(id)
	if name == "" {
		return ""
	}
	return filepath.Join(s.dir, name)
}

// FileName sanitizes the last path component of id into a file name.
func FileName(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}

	base := path.Base(strings.ReplaceAll(id, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}

	ext := path.Ext(base)
	stem := slug.Make(strings.TrimSuffix(base, ext))
	ext = slug.Make(strings.TrimPrefix(ext, "."))

	switch {
	case stem == "" && ext == "":
		return ""
	case stem == "":
		return ext
	case ext == "":
		return stem
	default:
		return stem + "." + ext
	}
}
