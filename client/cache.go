package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/taskdeck/backend/domain"
)

// Cache persists the last fetched todo list per user so a fresh process can
// render immediately. Mutations invalidate the owning user's entry; entries
// older than maxAge count as misses.
type Cache struct {
	db     *bolt.DB
	bucket []byte
	maxAge time.Duration
}

type cacheEntry struct {
	FetchedAt time.Time     `json:"fetched_at"`
	Todos     []domain.Todo `json:"todos"`
}

// OpenCache initializes the bbolt file and ensures the bucket exists.
func OpenCache(path string, maxAge time.Duration) (*Cache, error) {
	if maxAge <= 0 {
		maxAge = 5 * time.Minute
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	bucket := []byte("todo_lists")
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Cache{
		db:     db,
		bucket: bucket,
		maxAge: maxAge,
	}, nil
}

// Get returns the cached list for the user, or a miss when absent or stale.
func (c *Cache) Get(userID string) ([]domain.Todo, bool) {
	if c == nil || c.db == nil || userID == "" {
		return nil, false
	}

	var entry cacheEntry
	found := false
	_ = c.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(c.bucket).Get([]byte(userID))
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil
		}
		found = true
		return nil
	})

	if !found || time.Since(entry.FetchedAt) > c.maxAge {
		return nil, false
	}
	return entry.Todos, true
}

// Put stores the freshly fetched list for the user.
func (c *Cache) Put(userID string, todos []domain.Todo) error {
	if c == nil || c.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if userID == "" {
		return nil
	}

	payload, err := json.Marshal(cacheEntry{
		FetchedAt: time.Now(),
		Todos:     todos,
	})
	if err != nil {
		return err
	}

	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(c.bucket).Put([]byte(userID), payload)
	})
}

// Invalidate drops the user's cached list.
func (c *Cache) Invalidate(userID string) error {
	if c == nil || c.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(c.bucket).Delete([]byte(userID))
	})
}

// Sweep removes entries older than maxAge.
func (c *Cache) Sweep() error {
	if c == nil || c.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	cutoff := time.Now().Add(-c.maxAge)
	return c.db.Update(func(tx *bolt.Tx) error {
		cur := tx.Bucket(c.bucket).Cursor()
		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			var entry cacheEntry
			if err := json.Unmarshal(v, &entry); err != nil || entry.FetchedAt.Before(cutoff) {
				if err := cur.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Close closes the Bolt database.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}
