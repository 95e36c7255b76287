package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jason-s-yu/sleepingqueens/engine"
	"github.com/redis/go-redis/v9"
)

// SnapshotStore keeps the latest snapshot and the applied move ids of each
// live game. Keys expire after ttl and are dropped when the game ends.
type SnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSnapshotStore(client *redis.Client, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{client: client, ttl: ttl}
}

func snapshotKey(gameID string) string { return "game:" + gameID + ":snapshot" }
func movesKey(gameID string) string    { return "game:" + gameID + ":moves" }

// Save overwrites the stored snapshot with g.
func (s *SnapshotStore) Save(ctx context.Context, g *engine.GameState) error {
	if s == nil || s.client == nil {
		return ErrNoClient
	}
	b, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode snapshot %s v%d: %w", g.ID, g.Version, err)
	}
	return s.client.Set(ctx, snapshotKey(g.ID), b, s.ttl).Err()
}

// Delete drops a finished game's snapshot and move log.
func (s *SnapshotStore) Delete(ctx context.Context, gameID string) error {
	if s == nil || s.client == nil {
		return ErrNoClient
	}
	return s.client.Del(ctx, snapshotKey(gameID), movesKey(gameID)).Err()
}

// Seen reports whether moveID was already applied to the game.
func (s *SnapshotStore) Seen(ctx context.Context, gameID, moveID string) (bool, error) {
	if s == nil || s.client == nil {
		return false, ErrNoClient
	}
	return s.client.SIsMember(ctx, movesKey(gameID), moveID).Result()
}

// MarkApplied records moveID as applied.
func (s *SnapshotStore) MarkApplied(ctx context.Context, gameID, moveID string) error {
	if s == nil || s.client == nil {
		return ErrNoClient
	}
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, movesKey(gameID), moveID)
	pipe.Expire(ctx, movesKey(gameID), s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}
