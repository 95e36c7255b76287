package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/sleepingqueens/engine"
	"github.com/sirupsen/logrus"
)

const writeTimeout = 5 * time.Second

// UpsertInitialGameState records the dealt state of a game. It is meant to
// run in its own goroutine and only logs failures.
func UpsertInitialGameState(gameID uuid.UUID, g *engine.GameState) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := upsertInitial(ctx, gameID, g); err != nil {
		logrus.WithError(err).WithField("game", gameID).Error("store initial state")
	}
}

func upsertInitial(ctx context.Context, gameID uuid.UUID, g *engine.GameState) error {
	if DB == nil {
		return nil
	}
	b, err := json.Marshal(g)
	if err != nil {
		return err
	}
	_, err = DB.Exec(ctx, `
		INSERT INTO games (id, room_code, initial_state)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET initial_state = EXCLUDED.initial_state`,
		gameID, g.RoomCode, b)
	return err
}

// SaveSnapshot appends a versioned snapshot. Saving the same version twice
// is a no-op.
func SaveSnapshot(ctx context.Context, gameID uuid.UUID, g *engine.GameState) error {
	if DB == nil {
		return nil
	}
	b, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode snapshot v%d: %w", g.Version, err)
	}
	// The games row may not exist yet; the initial-state write runs concurrently.
	if _, err = DB.Exec(ctx, `
		INSERT INTO games (id, room_code) VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING`,
		gameID, g.RoomCode); err != nil {
		return fmt.Errorf("ensure game row: %w", err)
	}
	_, err = DB.Exec(ctx, `
		INSERT INTO game_snapshots (game_id, version, checksum, state)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (game_id, version) DO NOTHING`,
		gameID, int64(g.Version), strconv.FormatUint(g.Checksum(), 16), b)
	return err
}

// StoreFinalGameStateInDB records the final state and winner.
func StoreFinalGameStateInDB(ctx context.Context, gameID uuid.UUID, g *engine.GameState) error {
	if DB == nil {
		return nil
	}
	b, err := json.Marshal(g)
	if err != nil {
		return err
	}
	_, err = DB.Exec(ctx, `
		UPDATE games SET final_state = $2, winner_id = $3, ended_at = now()
		WHERE id = $1`,
		gameID, b, g.WinnerID)
	return err
}
