package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	bolt "go.etcd.io/bbolt"
)

const (
	sourcesBktName = "sources"
	prefsBktName   = "prefs"
	metaBktName    = "meta"

	schemaVersionKey = "schema_version"
	schemaVersion    = 1
)

// Bolt is a preferences storage that uses BoltDB as a backend. It holds
// only ephemeral editorial state (custom sources, per-profile prefs),
// content lives in WordPress.
type Bolt struct {
	db *bolt.DB
}

// NewBolt creates new Bolt storage and migrates the schema if needed.
func NewBolt(dir string) (*Bolt, error) {
	db, err := bolt.Open(path.Join(dir, "prefs.db"), 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to make boltdb for %s: %w", dir, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{sourcesBktName, prefsBktName, metaBktName} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create top-level bucket %s: %w", name, err)
			}
		}
		return migrate(tx)
	})
	if err != nil {
		return nil, fmt.Errorf("make buckets: %w", err)
	}

	return &Bolt{db: db}, nil
}

// migrate brings the schema to the current version. Each step is applied
// in the same transaction that bumps the version, so an interrupted
// migration is retried on next open.
func migrate(tx *bolt.Tx) error {
	meta := tx.Bucket([]byte(metaBktName))

	current := 0
	if bts := meta.Get([]byte(schemaVersionKey)); len(bts) == 8 {
		current = int(binary.BigEndian.Uint64(bts))
	}

	for v := current; v < schemaVersion; v++ {
		switch v {
		case 0:
			// v0 -> v1: sources used to be stored without a group;
			// re-mark them as custom.
			bkt := tx.Bucket([]byte(sourcesBktName))
			err := bkt.ForEach(func(k, bts []byte) error {
				var src FeedSource
				if err := json.Unmarshal(bts, &src); err != nil {
					return fmt.Errorf("unmarshal source %s: %w", k, err)
				}
				if src.Group.Valid() {
					return nil
				}
				src.Group = GroupCustom
				upd, err := json.Marshal(src)
				if err != nil {
					return fmt.Errorf("marshal source %s: %w", k, err)
				}
				return bkt.Put(k, upd)
			})
			if err != nil {
				return fmt.Errorf("migrate sources to v1: %w", err)
			}
		}
	}

	bts := make([]byte, 8)
	binary.BigEndian.PutUint64(bts, uint64(schemaVersion))
	if err := meta.Put([]byte(schemaVersionKey), bts); err != nil {
		return fmt.Errorf("store schema version: %w", err)
	}

	return nil
}

// PutSource puts a custom feed source to storage.
func (b *Bolt) PutSource(_ context.Context, src FeedSource) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(sourcesBktName))

		bts, err := json.Marshal(src)
		if err != nil {
			return fmt.Errorf("marshal source: %w", err)
		}

		if err := bkt.Put([]byte(src.Key), bts); err != nil {
			return fmt.Errorf("put source to storage: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("update storage: %w", err)
	}

	return nil
}

// GetSource returns a source from storage.
func (b *Bolt) GetSource(_ context.Context, key string) (src FeedSource, err error) {
	err = b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(sourcesBktName))

		bts := bkt.Get([]byte(key))
		if bts == nil {
			return ErrNotFound
		}

		if err := json.Unmarshal(bts, &src); err != nil {
			return fmt.Errorf("unmarshal source: %w", err)
		}

		return nil
	})
	if err != nil {
		return FeedSource{}, fmt.Errorf("view storage: %w", err)
	}

	return src, nil
}

// ListSources returns all custom sources from storage.
func (b *Bolt) ListSources(context.Context) ([]FeedSource, error) {
	var result []FeedSource
	err := b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(sourcesBktName))
		err := bkt.ForEach(func(k, v []byte) error {
			var src FeedSource
			if err := json.Unmarshal(v, &src); err != nil {
				return fmt.Errorf("unmarshal source %s: %w", k, err)
			}
			result = append(result, src)
			return nil
		})
		if err != nil {
			return fmt.Errorf("foreach: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("view storage: %w", err)
	}
	return result, nil
}

// DeleteSource removes a source from storage.
func (b *Bolt) DeleteSource(_ context.Context, key string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(sourcesBktName))

		if bkt.Get([]byte(key)) == nil {
			return ErrNotFound
		}

		if err := bkt.Delete([]byte(key)); err != nil {
			return fmt.Errorf("remove: %w", err)
		}

		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update storage: %w", err)
	}

	return nil
}

// PutPrefs puts profile preferences to storage.
func (b *Bolt) PutPrefs(_ context.Context, profileID string, p Prefs) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(prefsBktName))

		bts, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshal prefs: %w", err)
		}

		if err := bkt.Put([]byte(profileID), bts); err != nil {
			return fmt.Errorf("put prefs to storage: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("update storage: %w", err)
	}

	return nil
}

// GetPrefs returns profile preferences from storage.
func (b *Bolt) GetPrefs(_ context.Context, profileID string) (p Prefs, err error) {
	err = b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(prefsBktName))

		bts := bkt.Get([]byte(profileID))
		if bts == nil {
			return ErrNotFound
		}

		if err := json.Unmarshal(bts, &p); err != nil {
			return fmt.Errorf("unmarshal prefs: %w", err)
		}

		return nil
	})
	if err != nil {
		return Prefs{}, fmt.Errorf("view storage: %w", err)
	}

	return p, nil
}

// Close closes the storage.
func (b *Bolt) Close() error { return b.db.Close() }
