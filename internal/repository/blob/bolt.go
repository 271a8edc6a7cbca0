package blob

import (
	"context"
	"fmt"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/msomdec/code-journal/internal/domain"
)

var documentsBucket = []byte("documents")

// BoltStore keeps documents in a single bbolt bucket.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the bbolt file at path and ensures the
// documents bucket exists.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(documentsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create documents bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Put(ctx context.Context, key string, data []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(documentsBucket).Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("put document: %w", err)
	}
	return nil
}

func (s *BoltStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(documentsBucket).Get([]byte(key))
		if v == nil {
			return domain.ErrNotFound
		}
		// v is only valid inside the transaction.
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return data, nil
}

func (s *BoltStore) Delete(ctx context.Context, key string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(documentsBucket)
		if b.Get([]byte(key)) == nil {
			return domain.ErrNotFound
		}
		return b.Delete([]byte(key))
	})
	if err != nil {
		if err == domain.ErrNotFound {
			return err
		}
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func (s *BoltStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(documentsBucket).Cursor()
		p := []byte(prefix)
		for k, _ := c.Seek(p); k != nil && strings.HasPrefix(string(k), prefix); k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return keys, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
