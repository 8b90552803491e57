package cache

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/repository"
)

const keyPrefix = "recipient:"

// RecipientCache is a cache-aside lookup of recipient profiles used by the fan-out engine.
// A nil backend means every lookup goes to the user store.
type RecipientCache struct {
	users   repository.UserRepository
	backend Backend
	ttl     time.Duration
	log     *zap.Logger

	hits    atomic.Int64
	dbLoads atomic.Int64
}

func NewRecipientCache(users repository.UserRepository, backend Backend, ttl time.Duration, log *zap.Logger) *RecipientCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecipientCache{users: users, backend: backend, ttl: ttl, log: log}
}

// LookupRecipients returns profiles keyed by id. Unknown ids are absent from the map.
// Cache errors degrade to the store; store errors are returned.
func (c *RecipientCache) LookupRecipients(ctx context.Context, ids []string) (map[string]model.RecipientProfile, error) {
	out := make(map[string]model.RecipientProfile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	missing := ids
	if c.backend != nil {
		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = keyPrefix + id
		}
		cached, err := c.backend.GetMany(ctx, keys)
		if err != nil {
			c.log.Debug("recipient cache read failed", zap.Error(err))
		}
		missing = make([]string, 0, len(ids))
		for i, id := range ids {
			raw, ok := cached[keys[i]]
			if !ok {
				missing = append(missing, id)
				continue
			}
			var p model.RecipientProfile
			if err := json.Unmarshal(raw, &p); err != nil {
				missing = append(missing, id)
				continue
			}
			out[id] = p
			c.hits.Add(1)
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	c.dbLoads.Add(1)
	users, err := c.users.ListByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	fill := make(map[string][]byte, len(users))
	for _, u := range users {
		p := u.Profile()
		out[u.ID] = p
		if c.backend == nil {
			continue
		}
		if payload, err := json.Marshal(p); err == nil {
			fill[keyPrefix+u.ID] = payload
		}
	}
	if c.backend != nil {
		if err := c.backend.SetMany(ctx, fill, c.ttl); err != nil {
			c.log.Debug("recipient cache write failed", zap.Error(err))
		}
	}
	return out, nil
}

// Invalidate drops a cached profile after its preferences change.
func (c *RecipientCache) Invalidate(ctx context.Context, id string) error {
	if c.backend == nil {
		return nil
	}
	return c.backend.Delete(ctx, keyPrefix+id)
}

// Counters reports cache hits and store loads since creation.
func (c *RecipientCache) Counters() RecipientCounters {
	return RecipientCounters{Hits: c.hits.Load(), DBLoads: c.dbLoads.Load()}
}

// RecipientCounters summarises lookups.
type RecipientCounters struct {
	Hits    int64
	DBLoads int64
}
