package tracker

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/SASINDU20013d/newsfirst-telegram-bot/internal/logger"
)

var (
	bucketArticles = []byte("sent_articles")
	bucketMeta     = []byte("meta")
	keyUpdatedAt   = []byte("updated_at")
)

// BoltBackend stores tracking state in a bbolt database. Records live in
// the sent_articles bucket keyed by URL, so key order doubles as a stable
// load order.
type BoltBackend struct {
	path string
	log  logger.Logger
}

// NewBoltBackend builds a bolt backend at the given path.
func NewBoltBackend(path string, log logger.Logger) *BoltBackend {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &BoltBackend{path: path, log: log}
}

func (b *BoltBackend) open() (*bbolt.DB, error) {
	return bbolt.Open(b.path, 0o600, &bbolt.Options{Timeout: time.Second})
}

// Load reads all records. Open failures and undecodable values degrade to
// an empty or partial store with a warning, mirroring the file backend's
// tolerance.
func (b *BoltBackend) Load() *Store {
	store := NewStore()

	db, err := b.open()
	if err != nil {
		b.log.WarnObj("failed to open tracking database, starting empty", "store_load_error", map[string]any{
			"path":  b.path,
			"error": err.Error(),
		})
		return store
	}
	defer db.Close()

	err = db.View(func(tx *bbolt.Tx) error {
		if bucket := tx.Bucket(bucketArticles); bucket != nil {
			cursor := bucket.Cursor()
			for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
				var rec Record
				if err := json.Unmarshal(v, &rec); err != nil {
					b.log.WarnObj("skipping undecodable tracking record", "store_load_error", map[string]any{
						"path":  b.path,
						"url":   string(k),
						"error": err.Error(),
					})
					continue
				}
				store.Articles = append(store.Articles, rec)
			}
		}
		if meta := tx.Bucket(bucketMeta); meta != nil {
			store.UpdatedAt = string(meta.Get(keyUpdatedAt))
		}
		return nil
	})
	if err != nil {
		b.log.WarnObj("failed to read tracking database, starting empty", "store_load_error", map[string]any{
			"path":  b.path,
			"error": err.Error(),
		})
		return NewStore()
	}

	return store
}

// Persist replaces the stored records with the given store's contents.
func (b *BoltBackend) Persist(store *Store) error {
	db, err := b.open()
	if err != nil {
		return fmt.Errorf("open tracking database: %w", err)
	}
	defer db.Close()

	err = db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketArticles) != nil {
			if err := tx.DeleteBucket(bucketArticles); err != nil {
				return err
			}
		}
		bucket, err := tx.CreateBucket(bucketArticles)
		if err != nil {
			return err
		}
		for _, rec := range store.Articles {
			data, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if err := bucket.Put([]byte(rec.URL), data); err != nil {
				return err
			}
		}

		meta, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}
		return meta.Put(keyUpdatedAt, []byte(store.UpdatedAt))
	})
	if err != nil {
		return fmt.Errorf("write tracking database: %w", err)
	}
	return nil
}
