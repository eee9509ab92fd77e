// Package store persists documents, chunks and vectors in a local bbolt
// database. Values are JSON; one database file holds everything.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"ragassist/internal/domain"
)

var (
	bucketDocuments = []byte("documents")
	bucketChunks    = []byte("chunks")
	bucketDocChunks = []byte("doc_chunks")
	bucketVectors   = []byte("vectors")
)

// Store is the local index database.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) the index database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open index db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketDocuments, bucketChunks, bucketDocChunks, bucketVectors} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// ChunkID derives the stable storage key for a chunk of a document.
func ChunkID(docID string, index int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", docID, index)))
	return hex.EncodeToString(sum[:8])
}

// PutDocument registers or updates a document record.
func (s *Store) PutDocument(doc domain.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDocuments).Put([]byte(doc.ID), data)
	})
}

// GetDocument returns the document record and whether it exists.
func (s *Store) GetDocument(id string) (domain.Document, bool, error) {
	var doc domain.Document
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketDocuments).Get([]byte(id))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &doc)
	})
	return doc, found, err
}

// Documents lists all registered documents.
func (s *Store) Documents() ([]domain.Document, error) {
	var docs []domain.Document
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDocuments).ForEach(func(_, v []byte) error {
			var doc domain.Document
			if err := json.Unmarshal(v, &doc); err != nil {
				return err
			}
			docs = append(docs, doc)
			return nil
		})
	})
	return docs, err
}

// PutChunks replaces the stored chunks of a document.
func (s *Store) PutChunks(docID string, chunks []domain.TextChunk) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := deleteDocChunks(tx, docID); err != nil {
			return err
		}

		chunkBucket := tx.Bucket(bucketChunks)
		ids := make([]string, 0, len(chunks))
		for _, ch := range chunks {
			id := ChunkID(docID, ch.Metadata.ChunkIndex)
			data, err := json.Marshal(ch)
			if err != nil {
				return err
			}
			if err := chunkBucket.Put([]byte(id), data); err != nil {
				return err
			}
			ids = append(ids, id)
		}

		idsData, err := json.Marshal(ids)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketDocChunks).Put([]byte(docID), idsData)
	})
}

// GetChunks returns the stored chunks of a document in index order.
func (s *Store) GetChunks(docID string) ([]domain.TextChunk, error) {
	var chunks []domain.TextChunk
	err := s.db.View(func(tx *bolt.Tx) error {
		idsData := tx.Bucket(bucketDocChunks).Get([]byte(docID))
		if idsData == nil {
			return nil
		}
		var ids []string
		if err := json.Unmarshal(idsData, &ids); err != nil {
			return err
		}

		chunkBucket := tx.Bucket(bucketChunks)
		for _, id := range ids {
			data := chunkBucket.Get([]byte(id))
			if data == nil {
				continue
			}
			var ch domain.TextChunk
			if err := json.Unmarshal(data, &ch); err != nil {
				return err
			}
			chunks = append(chunks, ch)
		}
		return nil
	})
	return chunks, err
}

// DeleteDocument removes a document and its chunks.
func (s *Store) DeleteDocument(docID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := deleteDocChunks(tx, docID); err != nil {
			return err
		}
		return tx.Bucket(bucketDocuments).Delete([]byte(docID))
	})
}

func deleteDocChunks(tx *bolt.Tx, docID string) error {
	docChunks := tx.Bucket(bucketDocChunks)
	idsData := docChunks.Get([]byte(docID))
	if idsData == nil {
		return nil
	}
	var ids []string
	if err := json.Unmarshal(idsData, &ids); err != nil {
		return err
	}
	chunkBucket := tx.Bucket(bucketChunks)
	for _, id := range ids {
		if err := chunkBucket.Delete([]byte(id)); err != nil {
			return err
		}
	}
	return docChunks.Delete([]byte(docID))
}

// Stats reports document and chunk counts.
func (s *Store) Stats() (docs, chunks int, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		docs = tx.Bucket(bucketDocuments).Stats().KeyN
		chunks = tx.Bucket(bucketChunks).Stats().KeyN
		return nil
	})
	return docs, chunks, err
}
