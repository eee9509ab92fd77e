package store

import (
	"encoding/json"
	"math"
	"sort"
	"sync"

	bolt "go.etcd.io/bbolt"

	"ragassist/internal/port"
)

// BoltVectorStore keeps vectors in the index database with a full in-memory
// copy for search. Brute-force cosine similarity; fine for the corpus sizes
// this tool targets.
type BoltVectorStore struct {
	store *Store

	mu    sync.RWMutex
	items map[string]vectorEntry
}

type vectorEntry struct {
	Vector   []float32         `json:"vector"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// NewBoltVectorStore loads all persisted vectors into memory.
func NewBoltVectorStore(s *Store) (*BoltVectorStore, error) {
	vs := &BoltVectorStore{
		store: s,
		items: make(map[string]vectorEntry),
	}

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketVectors).ForEach(func(k, v []byte) error {
			var entry vectorEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}
			vs.items[string(k)] = entry
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return vs, nil
}

func (vs *BoltVectorStore) Upsert(items []port.VectorItem) error {
	err := vs.store.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketVectors)
		for _, item := range items {
			data, err := json.Marshal(vectorEntry{Vector: item.Vector, Metadata: item.Metadata})
			if err != nil {
				return err
			}
			if err := bucket.Put([]byte(item.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	vs.mu.Lock()
	for _, item := range items {
		vs.items[item.ID] = vectorEntry{Vector: item.Vector, Metadata: item.Metadata}
	}
	vs.mu.Unlock()
	return nil
}

func (vs *BoltVectorStore) Search(query []float32, k int, filter map[string]string) ([]port.VectorResult, error) {
	vs.mu.RLock()
	defer vs.mu.RUnlock()

	results := make([]port.VectorResult, 0, len(vs.items))
	for id, entry := range vs.items {
		if !matchesFilter(entry.Metadata, filter) {
			continue
		}
		results = append(results, port.VectorResult{
			ID:       id,
			Score:    cosine(query, entry.Vector),
			Metadata: entry.Metadata,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (vs *BoltVectorStore) Delete(ids []string) error {
	err := vs.store.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketVectors)
		for _, id := range ids {
			if err := bucket.Delete([]byte(id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	vs.mu.Lock()
	for _, id := range ids {
		delete(vs.items, id)
	}
	vs.mu.Unlock()
	return nil
}

func (vs *BoltVectorStore) Count() (int, error) {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return len(vs.items), nil
}

func matchesFilter(metadata, filter map[string]string) bool {
	for k, v := range filter {
		if metadata[k] != v {
			return false
		}
	}
	return true
}

// cosine returns cosine similarity in [-1,1]; 0 for mismatched or zero
// vectors.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
