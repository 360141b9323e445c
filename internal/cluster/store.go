// Package cluster buckets categorized entities into named clusters.
//
// Clusters are keyed by canonical name within a category and preserve
// insertion order. They never merge across categories. The store is an index
// of values: downstream consumers refer to entities by uuid, not by pointer.
//
// The JSON layout written by [Store.WriteAll] is one file per non-empty
// category, each an object mapping cluster key to an ordered entity array.
// encoding/json emits object keys sorted, so the outer mapping is sorted
// while each cluster keeps its insertion order. Uncategorized entities are
// written as a flat array to uncategorized.json.
package cluster

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/MrWong99/hexforge/internal/category"
	"github.com/MrWong99/hexforge/internal/entity"
)

// UncategorizedFile is the file name holding entities without a category.
const UncategorizedFile = "uncategorized.json"

// keyUUIDPrefix is how many uuid characters form a fallback cluster key.
const keyUUIDPrefix = 8

// Cluster is a named, ordered group of entities of one category.
type Cluster struct {
	Key      string             `json:"key"`
	Category category.Category  `json:"category"`
	Entities []entity.RawEntity `json:"entities"`
}

// KeyResolver maps an extracted entity name to its canonical cluster key.
type KeyResolver interface {
	Resolve(name string) string
}

// Option is a functional option for configuring a [Store].
type Option func(*Store)

// WithResolver routes named entities through r before keying them.
func WithResolver(r KeyResolver) Option {
	return func(s *Store) {
		s.resolver = r
	}
}

// bucket holds the clusters of a single category.
type bucket struct {
	keys  []string
	byKey map[string][]entity.RawEntity
	all   []entity.RawEntity
}

// Store accumulates clusters during one run. It is owned by a single caller
// and is not safe for concurrent mutation.
type Store struct {
	buckets       map[category.Category]*bucket
	uncategorized []entity.RawEntity
	resolver      KeyResolver
}

// New returns an empty [Store].
func New(opts ...Option) *Store {
	s := &Store{buckets: make(map[category.Category]*bucket)}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Key returns the cluster key for e: its extracted name, or
// "{category}_{first 8 chars of uuid}" when no name was found.
func Key(e entity.RawEntity) string {
	if e.HasName() {
		return e.EntityName
	}
	id := e.UUID
	if len(id) > keyUUIDPrefix {
		id = id[:keyUUIDPrefix]
	}
	return fmt.Sprintf("%s_%s", e.Category, id)
}

// Add appends e to its cluster, or to the uncategorized list.
func (s *Store) Add(e entity.RawEntity) {
	if e.Category == category.Uncategorized {
		s.uncategorized = append(s.uncategorized, e)
		return
	}

	key := Key(e)
	if s.resolver != nil && e.HasName() {
		key = s.resolver.Resolve(key)
	}

	b := s.buckets[e.Category]
	if b == nil {
		b = &bucket{byKey: make(map[string][]entity.RawEntity)}
		s.buckets[e.Category] = b
	}
	if _, ok := b.byKey[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.byKey[key] = append(b.byKey[key], e)
	b.all = append(b.all, e)
}

// Keys returns the cluster keys of cat in first-seen order.
func (s *Store) Keys(cat category.Category) []string {
	b := s.buckets[cat]
	if b == nil {
		return nil
	}
	return append([]string(nil), b.keys...)
}

// Cluster returns the cluster stored under key in cat.
func (s *Store) Cluster(cat category.Category, key string) (Cluster, bool) {
	b := s.buckets[cat]
	if b == nil {
		return Cluster{}, false
	}
	ents, ok := b.byKey[key]
	if !ok {
		return Cluster{}, false
	}
	return Cluster{Key: key, Category: cat, Entities: append([]entity.RawEntity(nil), ents...)}, true
}

// Combined returns one cluster holding every entity of cat in encounter
// order. Its key is the category name.
func (s *Store) Combined(cat category.Category) Cluster {
	c := Cluster{Key: cat.String(), Category: cat}
	if cat == category.Uncategorized {
		c.Entities = append([]entity.RawEntity(nil), s.uncategorized...)
		return c
	}
	if b := s.buckets[cat]; b != nil {
		c.Entities = append([]entity.RawEntity(nil), b.all...)
	}
	return c
}

// Uncategorized returns the entities that matched no category.
func (s *Store) Uncategorized() []entity.RawEntity {
	return append([]entity.RawEntity(nil), s.uncategorized...)
}

// Counts returns the number of entities per category, including
// [category.Uncategorized]. Categories without entities are omitted.
func (s *Store) Counts() map[category.Category]int {
	counts := make(map[category.Category]int, len(s.buckets)+1)
	for cat, b := range s.buckets {
		counts[cat] = len(b.all)
	}
	if len(s.uncategorized) > 0 {
		counts[category.Uncategorized] = len(s.uncategorized)
	}
	return counts
}

// Total returns the number of entities added.
func (s *Store) Total() int {
	n := len(s.uncategorized)
	for _, b := range s.buckets {
		n += len(b.all)
	}
	return n
}

// Snapshot is the serializable view of a store.
type Snapshot struct {
	Clusters      map[category.Category]map[string][]entity.RawEntity
	Uncategorized []entity.RawEntity
}

// Snapshot returns a deep copy of the store's contents.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		Clusters:      make(map[category.Category]map[string][]entity.RawEntity, len(s.buckets)),
		Uncategorized: append([]entity.RawEntity(nil), s.uncategorized...),
	}
	for cat, b := range s.buckets {
		m := make(map[string][]entity.RawEntity, len(b.byKey))
		for k, v := range b.byKey {
			m[k] = append([]entity.RawEntity(nil), v...)
		}
		snap.Clusters[cat] = m
	}
	return snap
}

// WriteAll writes one pretty-printed JSON file per non-empty category plus
// uncategorized.json into dir, creating it if needed. Files of empty
// categories left by an earlier run are removed, so [Load] sees exactly this
// store. Identical stores produce byte-identical files. It returns the paths
// written.
func (s *Store) WriteAll(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cluster: create %q: %w", dir, err)
	}

	var written []string
	for _, cat := range category.All {
		if cat == category.Uncategorized {
			continue
		}
		path := filepath.Join(dir, cat.String()+".json")
		b := s.buckets[cat]
		if b == nil || len(b.all) == 0 {
			if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return written, fmt.Errorf("cluster: remove stale %q: %w", path, err)
			}
			continue
		}
		if err := writeJSON(path, b.byKey); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	uncategorized := s.uncategorized
	if uncategorized == nil {
		uncategorized = []entity.RawEntity{}
	}
	path := filepath.Join(dir, UncategorizedFile)
	if err := writeJSON(path, uncategorized); err != nil {
		return written, err
	}
	return append(written, path), nil
}

// Load reads the files written by [Store.WriteAll] back into a [Snapshot].
// Missing category files are treated as empty.
func Load(dir string) (Snapshot, error) {
	snap := Snapshot{Clusters: make(map[category.Category]map[string][]entity.RawEntity)}
	for _, cat := range category.All {
		if cat == category.Uncategorized {
			continue
		}
		var m map[string][]entity.RawEntity
		ok, err := readJSON(filepath.Join(dir, cat.String()+".json"), &m)
		if err != nil {
			return Snapshot{}, err
		}
		if ok && len(m) > 0 {
			snap.Clusters[cat] = m
		}
	}
	if _, err := readJSON(filepath.Join(dir, UncategorizedFile), &snap.Uncategorized); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("cluster: encode %q: %w", path, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cluster: write %q: %w", path, err)
	}
	return nil
}

func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("cluster: read %q: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("cluster: decode %q: %w", path, err)
	}
	return true, nil
}
