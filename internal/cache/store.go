// Package cache persists TTL-governed records in a single JSON document
// keyed by ticker.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"MarketOverview/internal/logger"
	"MarketOverview/internal/model"
)

const (
	fieldTimestamp = "timestamp"
	fieldTTL       = "ttl_seconds"
)

// Store is a file-backed TTL cache. T must marshal to a JSON object; its
// fields are stored next to the "timestamp" field of each record.
type Store[T any] struct {
	path  string
	clock func() time.Time

	mu    sync.Mutex // guards keys
	keys  map[string]*sync.Mutex
	docMu sync.Mutex // serializes read-modify-write of the document
}

// Option configures a Store.
type Option func(*options)

type options struct {
	clock func() time.Time
}

// WithClock injects the time source used for freshness checks and stamps.
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

// Open returns a store persisting to path. The file is created on first Put.
func Open[T any](path string, opts ...Option) (*Store[T], error) {
	if path == "" {
		return nil, errors.New("cache path is required")
	}
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	return &Store[T]{path: path, clock: o.clock, keys: map[string]*sync.Mutex{}}, nil
}

// Path returns the backing file.
func (s *Store[T]) Path() string { return s.path }

func (s *Store[T]) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.keys[key]
	if !ok {
		l = &sync.Mutex{}
		s.keys[key] = l
	}
	return l
}

// load reads the document. A missing or malformed file yields an empty one.
func (s *Store[T]) load() map[string]map[string]json.RawMessage {
	doc := map[string]map[string]json.RawMessage{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Get().Warnw("cache read failed", "path", s.path, "error", err)
		}
		return doc
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Get().Warnw("cache document malformed, treating as empty", "path", s.path, "error", err)
		return map[string]map[string]json.RawMessage{}
	}
	return doc
}

// save writes the document to a temp file and renames it into place.
func (s *Store[T]) save(doc map[string]map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename cache: %w", err)
	}
	return nil
}

// Get returns the entry for key if present and fresh. Absent, stale and
// unreadable entries are indistinguishable misses.
func (s *Store[T]) Get(key string) (model.CacheEntry[T], bool) {
	var zero model.CacheEntry[T]
	rec, ok := s.load()[key]
	if !ok {
		return zero, false
	}
	entry, err := decodeRecord[T](key, rec)
	if err != nil {
		logger.Get().Debugw("cache record unreadable", "key", key, "error", err)
		return zero, false
	}
	if !entry.Fresh(s.clock()) {
		return zero, false
	}
	return entry, true
}

// Put stores payload under key stamped with the current time.
func (s *Store[T]) Put(key string, payload T, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	rec, err := encodeRecord(payload, s.clock(), ttl)
	if err != nil {
		return err
	}

	kl := s.keyLock(key)
	kl.Lock()
	defer kl.Unlock()

	s.docMu.Lock()
	defer s.docMu.Unlock()
	doc := s.load()
	doc[key] = rec
	return s.save(doc)
}

// Invalidate removes key. Removing an absent key is not an error.
func (s *Store[T]) Invalidate(key string) error {
	kl := s.keyLock(key)
	kl.Lock()
	defer kl.Unlock()

	s.docMu.Lock()
	defer s.docMu.Unlock()
	doc := s.load()
	if _, ok := doc[key]; !ok {
		return nil
	}
	delete(doc, key)
	return s.save(doc)
}

// Keys lists every stored key, fresh or not, sorted.
func (s *Store[T]) Keys() []string {
	doc := s.load()
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func encodeRecord[T any](payload T, now time.Time, ttl time.Duration) (map[string]json.RawMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	rec := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("payload must encode as an object: %w", err)
	}
	ts, _ := json.Marshal(now.UTC().Format(time.RFC3339Nano))
	rec[fieldTimestamp] = ts
	delete(rec, fieldTTL)
	if ttl != DefaultTTL {
		rec[fieldTTL], _ = json.Marshal(int64(ttl / time.Second))
	}
	return rec, nil
}

func decodeRecord[T any](key string, rec map[string]json.RawMessage) (model.CacheEntry[T], error) {
	entry := model.CacheEntry[T]{Key: key, TTL: DefaultTTL}

	var ts string
	if err := json.Unmarshal(rec[fieldTimestamp], &ts); err != nil {
		return entry, fmt.Errorf("timestamp: %w", err)
	}
	fetched, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		// Older writers stored naive ISO timestamps.
		if fetched, err = time.Parse("2006-01-02T15:04:05.999999", ts); err != nil {
			return entry, fmt.Errorf("timestamp: %w", err)
		}
	}
	entry.FetchedAt = fetched

	if raw, ok := rec[fieldTTL]; ok {
		var secs int64
		if err := json.Unmarshal(raw, &secs); err == nil && secs > 0 {
			entry.TTL = time.Duration(secs) * time.Second
		}
	}

	body := make(map[string]json.RawMessage, len(rec))
	for k, v := range rec {
		if k != fieldTimestamp && k != fieldTTL {
			body[k] = v
		}
	}
	data, err := json.Marshal(body)
	if err != nil {
		return entry, err
	}
	if err := json.Unmarshal(data, &entry.Payload); err != nil {
		return entry, fmt.Errorf("payload: %w", err)
	}
	return entry, nil
}
