package wizard

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clinsys/onboarding/pkg/helpers"
)

// SnapshotStore persists wizard snapshots in Redis so an interrupted wizard
// can resume after a reload. Snapshots carry no server-side identifiers and
// expire on their own.
type SnapshotStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSnapshotStore(rdb *redis.Client, ttl time.Duration) *SnapshotStore {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &SnapshotStore{rdb: rdb, ttl: ttl}
}

func snapshotKey(identityID string) string {
	return "wizard:snapshot:" + identityID
}

func (s *SnapshotStore) Save(ctx context.Context, identityID string, snap Snapshot) error {
	return helpers.RedisSetJSON(ctx, s.rdb, snapshotKey(identityID), snap, s.ttl)
}

func (s *SnapshotStore) Load(ctx context.Context, identityID string) (*Snapshot, bool, error) {
	var snap Snapshot
	found, err := helpers.RedisGetJSON(ctx, s.rdb, snapshotKey(identityID), &snap)
	if err != nil || !found {
		return nil, false, err
	}
	return &snap, true, nil
}

func (s *SnapshotStore) Clear(ctx context.Context, identityID string) error {
	return helpers.RedisDel(ctx, s.rdb, snapshotKey(identityID))
}
