package db

import (
	"context"
	"fmt"
	"time"

	"go-photomap/mapview"
	"go-photomap/types"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	snapshotKey = "locations"

	defaultReadTimeout = time.Minute
)

// CachedStore keeps the last listing of a LocationStore for ttl. Concurrent
// misses share one backend read. The returned payload is shared and must not
// be modified.
type CachedStore struct {
	store  LocationStore
	cache  *cache.Cache
	group  singleflight.Group
	logger *zap.Logger

	readTimeout time.Duration
}

func NewCachedStore(store LocationStore, ttl time.Duration, logger *zap.Logger) *CachedStore {
	return &CachedStore{
		store:  store,
		cache:  cache.New(ttl, 2*ttl),
		logger: logger,

		readTimeout: defaultReadTimeout,
	}
}

// FetchLocations returns the cached snapshot, loading it on a miss.
func (s *CachedStore) FetchLocations(ctx context.Context) (*types.LocationsPayload, error) {
	if cached, ok := s.cache.Get(snapshotKey); ok {
		return cached.(*types.LocationsPayload), nil
	}
	return s.load(ctx)
}

// Refresh reloads the snapshot from the backend and returns its size.
func (s *CachedStore) Refresh(ctx context.Context) (int, error) {
	s.cache.Delete(snapshotKey)
	payload, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(payload.Locations), nil
}

// Invalidate drops the snapshot so the next fetch reads the backend.
func (s *CachedStore) Invalidate() {
	s.cache.Delete(snapshotKey)
}

// load reads the backend once for all concurrent callers. The read ignores
// the caller's cancellation and is bounded by readTimeout; each caller stops
// waiting when its own ctx ends.
func (s *CachedStore) load(ctx context.Context) (*types.LocationsPayload, error) {
	ch := s.group.DoChan(snapshotKey, func() (any, error) {
		readCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.readTimeout)
		defer cancel()

		locations, err := s.store.ListLocations(readCtx)
		if err != nil {
			return nil, fmt.Errorf("list locations: %w", err)
		}

		payload := &types.LocationsPayload{
			Locations:    locations,
			Competitions: mapview.Competitions(locations),
		}
		s.cache.SetDefault(snapshotKey, payload)
		s.logger.Info("Location snapshot loaded",
			zap.Int("locations", len(locations)),
			zap.Int("competitions", len(payload.Competitions)))
		return payload, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			s.logger.Error("Failed to load location snapshot", zap.Error(res.Err))
			return nil, res.Err
		}
		return res.Val.(*types.LocationsPayload), nil
	}
}
