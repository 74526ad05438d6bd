package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/salutethegenius/bahamasopendata/internal/data/redisstore"
	"github.com/salutethegenius/bahamasopendata/internal/domain/document"
)

const (
	recordKeyPrefix = "doc:"
	indexKey        = "doc:index"
)

// RedisStore persists registry records as JSON values keyed by content
// hash, with a companion set for listing.
type RedisStore struct {
	store *redisstore.Store
}

func NewRedisStore(store *redisstore.Store) *RedisStore {
	return &RedisStore{store: store}
}

func (s *RedisStore) Get(ctx context.Context, hash string) (document.Record, bool, error) {
	var rec document.Record

	val, err := s.store.Get(ctx, recordKeyPrefix+hash)
	if s.store.IsNil(err) {
		return rec, false, nil
	}
	if err != nil {
		return rec, false, err
	}

	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return rec, false, fmt.Errorf("decode record %s: %w", hash, err)
	}
	return rec, true, nil
}

func (s *RedisStore) Put(ctx context.Context, rec document.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, recordKeyPrefix+rec.Hash, data); err != nil {
		return err
	}
	return s.store.SetAdd(ctx, indexKey, rec.Hash)
}

func (s *RedisStore) List(ctx context.Context) ([]document.Record, error) {
	hashes, err := s.store.SetMembers(ctx, indexKey)
	if err != nil {
		return nil, err
	}
	sort.Strings(hashes)

	records := make([]document.Record, 0, len(hashes))
	for _, h := range hashes {
		rec, found, err := s.Get(ctx, h)
		if err != nil {
			return nil, err
		}
		if found {
			records = append(records, rec)
		}
	}
	return records, nil
}
