package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ActionQueue is the list a historian worker drains into long-term storage.
const ActionQueue = "game_actions_queue"

// GameActionRecord is one applied move in a game's history.
type GameActionRecord struct {
	GameID        uuid.UUID              `json:"gameId"`
	ActionIndex   int                    `json:"actionIndex"`
	ActorUserID   uuid.UUID              `json:"actorUserId"`
	ActionType    string                 `json:"actionType"`
	ActionPayload map[string]interface{} `json:"actionPayload,omitempty"`
	Version       uint64                 `json:"version"`
	Timestamp     int64                  `json:"timestamp"` // unix ms
}

// PublishGameAction appends rec to the history queue.
func PublishGameAction(ctx context.Context, rec GameActionRecord) error {
	if Rdb == nil {
		return ErrNoClient
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode action %d of game %s: %w", rec.ActionIndex, rec.GameID, err)
	}
	return Rdb.RPush(ctx, ActionQueue, b).Err()
}
