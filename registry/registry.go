// Package registry keeps a durable record of emitted fixture batches.
//
// LMS leaves are one-time keys, so it is worth remembering which leaf
// indices each generated fixture consumed and under which key tree. The
// registry is optional; the generator runs fine without one.
package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"github.com/verifiable-state-chains/lms-testgen/testgen"
)

const bucketName = "fixture_batches"

// BatchRecord describes one emitted fixture batch.
type BatchRecord struct {
	Artifact        string    `json:"artifact"`
	CreatedAt       time.Time `json:"created_at"`
	N               int       `json:"n"`
	W               int       `json:"w"`
	Height          int       `json:"tree_height"`
	LmsType         uint32    `json:"lms_type"`
	OtsType         uint32    `json:"ots_type"`
	LeafIndices     []uint32  `json:"leaf_indices"`
	PublicKeySHA256 string    `json:"public_key_sha256"`
}

// Registry manages persistent storage for batch records.
type Registry struct {
	db   *bbolt.DB
	mu   sync.RWMutex
	path string
}

// Open creates or opens a batch registry database.
func Open(dbPath string) (*Registry, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create registry directory: %v", err)
	}

	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry database: %v", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %v", err)
	}

	return &Registry{db: db, path: dbPath}, nil
}

// Record stores the batch record for an emitted fixture, keyed by the
// artifact filename. Re-generating the same artifact overwrites the
// previous record, matching the overwrite of the file itself.
func (r *Registry) Record(cfg testgen.Config, fx *testgen.Fixture, artifact string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	digest := sha256.Sum256(fx.PublicKey)
	rec := &BatchRecord{
		Artifact:        artifact,
		CreatedAt:       time.Now().UTC(),
		N:               cfg.N,
		W:               cfg.W,
		Height:          cfg.Height,
		LmsType:         uint32(fx.LmsType),
		OtsType:         uint32(fx.OtsType),
		LeafIndices:     fx.LeafIndices(),
		PublicKeySHA256: hex.EncodeToString(digest[:]),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal batch record: %v", err)
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		return bucket.Put([]byte(artifact), data)
	})
}

// Get retrieves the record for an artifact.
func (r *Registry) Get(artifact string) (*BatchRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rec *BatchRecord
	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		data := bucket.Get([]byte(artifact))
		if data == nil {
			return fmt.Errorf("batch record not found: %s", artifact)
		}
		rec = &BatchRecord{}
		return json.Unmarshal(data, rec)
	})

	return rec, err
}

// List returns all batch records in the registry.
func (r *Registry) List() ([]*BatchRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []*BatchRecord
	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		return bucket.ForEach(func(k, v []byte) error {
			rec := &BatchRecord{}
			if err := json.Unmarshal(v, rec); err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	})

	return records, err
}

// Delete removes the record for an artifact.
func (r *Registry) Delete(artifact string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		return bucket.Delete([]byte(artifact))
	})
}

// Close closes the registry database.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.db.Close()
}
