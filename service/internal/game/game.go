// internal/game/game.go
package game

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/sleepingqueens/engine"
	"github.com/jason-s-yu/sleepingqueens/service/internal/cache"
	"github.com/jason-s-yu/sleepingqueens/service/internal/database"
	"github.com/jason-s-yu/sleepingqueens/service/internal/models"
	"github.com/sirupsen/logrus"
)

// OnGameEndFunc is called once when a game finishes. winner is uuid.Nil when
// the game was abandoned.
type OnGameEndFunc func(gameID uuid.UUID, winner uuid.UUID, scores map[uuid.UUID]int)

// GameEventType represents the type of a game-related event broadcast via WebSockets.
type GameEventType string

const (
	EventPlayerJoin          GameEventType = "player_join"             // Public: a player took a seat.
	EventPlayerLeave         GameEventType = "player_leave"            // Public: a player left before the deal.
	EventGameStart           GameEventType = "game_start"              // Public: cards dealt, play begins.
	EventPlayerMove          GameEventType = "player_move"             // Public: a move was applied.
	EventAttackPending       GameEventType = "game_attack_pending"     // Public: a steal or sleep awaits the target's answer.
	EventAttackResolved      GameEventType = "game_attack_resolved"    // Public: the attack was blocked or went through.
	EventQueenExcluded       GameEventType = "game_queen_excluded"     // Public: cat/dog conflict sent a queen back to sleep.
	EventReveal              GameEventType = "game_reveal"             // Public: a reveal card turned up a card.
	EventBonusPick           GameEventType = "game_bonus_pick"         // Public: a player earned an extra queen.
	EventGamePlayerTurn      GameEventType = "game_player_turn"        // Public: whose move it is now.
	EventPrivateSyncState    GameEventType = "private_sync_state"      // Private: full obfuscated state.
	EventPrivateMoveRejected GameEventType = "private_move_rejected"   // Private: why a move was refused.
	EventPrivateChoice       GameEventType = "private_choice_required" // Private: the player must answer a suspension.
	EventGameEnd             GameEventType = "game_end"                // Public: final scores and winner.
)

// EventUser identifies a user within a GameEvent payload.
type EventUser struct {
	ID uuid.UUID `json:"id"`
}

// EventQueen describes a queen changing hands. A nil From or To is the
// sleeping pool.
type EventQueen struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Points int        `json:"points"`
	From   *EventUser `json:"from,omitempty"`
	To     *EventUser `json:"to,omitempty"`
}

// GameEvent is the standard structure for broadcasting game state changes and actions.
type GameEvent struct {
	Type   GameEventType `json:"type"`
	User   *EventUser    `json:"user,omitempty"`   // Who acted, or who must act.
	Target *EventUser    `json:"target,omitempty"` // Who was acted upon.
	Card   *engine.Card  `json:"card,omitempty"`
	Queens []EventQueen  `json:"queens,omitempty"`

	Payload map[string]interface{} `json:"payload,omitempty"`

	State *ObfGameState `json:"state,omitempty"` // Full obfuscated state for sync events.
}

// SnapshotStore keeps the latest snapshot of a live game.
type SnapshotStore interface {
	Save(ctx context.Context, g *engine.GameState) error
}

// MoveLog remembers which move ids a game has already applied, so a
// resubmitted move is dropped before it reaches the engine.
type MoveLog interface {
	Seen(ctx context.Context, gameID, moveID string) (bool, error)
	MarkApplied(ctx context.Context, gameID, moveID string) error
}

// QueensGame is one table: the authoritative engine snapshot plus the
// connections, timers and persistence around it.
type QueensGame struct {
	ID       uuid.UUID
	RoomCode string
	HostID   uuid.UUID

	Players []*models.Player

	// State is replaced, never mutated, on every applied move.
	State *engine.GameState

	engine       *engine.Engine
	passwordHash []byte

	// Optional stores; nil disables them. NewQueensGame starts with an
	// in-memory move log.
	Snapshots SnapshotStore
	Moves     MoveLog

	// Defense timer. attackSeq changes whenever the pending attack does, so a
	// stale timer can tell it has nothing to do.
	defenseTimer *time.Timer
	attackSeq    int

	TurnID      int // Increments on every change of the awaited player.
	actionIndex int // Sequential index for history records.

	Started  bool
	GameOver bool

	log *logrus.Entry
	Mu  sync.Mutex

	// Communication Callbacks
	BroadcastFn         func(ev GameEvent)                     // Sends an event to all connected players.
	BroadcastToPlayerFn func(playerID uuid.UUID, ev GameEvent) // Sends an event to a single player.
	OnGameEnd           OnGameEndFunc                          // Callback executed when the game finishes.
}

// NewQueensGame creates a waiting table driven by eng.
func NewQueensGame(eng *engine.Engine, roomCode string) *QueensGame {
	id := uuid.New()
	return &QueensGame{
		ID:       id,
		RoomCode: roomCode,
		State:    eng.NewGame(id.String(), roomCode),
		Moves:    NewMemoryMoveLog(),
		engine:   eng,
		log: logrus.WithFields(logrus.Fields{
			"game": id,
			"room": roomCode,
		}),
	}
}

// AddPlayer seats p before the deal, or treats a known player as a
// reconnect. Newcomers to a running game are turned away.
// Assumes lock is held by caller.
func (g *QueensGame) AddPlayer(p *models.Player) error {
	if existing := g.getPlayerByID(p.ID); existing != nil {
		if p.User != nil {
			existing.User = p.User
		}
		g.HandleReconnect(p.ID, p.Conn)
		return nil
	}
	if g.Started || g.GameOver {
		g.log.WithField("player", p.ID).Info("join refused, game in progress")
		if p.Conn != nil {
			p.Conn.Close(websocket.StatusPolicyViolation, "Game already in progress.")
		}
		return ErrGameInProgress
	}

	next, err := g.engine.AddPlayer(g.State, p.ID.String(), p.Name())
	if err != nil {
		return err
	}
	g.State = next
	g.Players = append(g.Players, p)
	if g.HostID == uuid.Nil {
		g.HostID = p.ID
	}
	g.log.WithFields(logrus.Fields{"player": p.ID, "name": p.Name()}).Info("player joined")

	g.logAction(p.ID, string(EventPlayerJoin), map[string]interface{}{"username": p.Name()})
	g.fireEvent(GameEvent{Type: EventPlayerJoin, User: &EventUser{ID: p.ID}, Payload: map[string]interface{}{"username": p.Name()}})
	g.broadcastSyncStateToAll()
	return nil
}

// RemovePlayer unseats a player before the deal.
// Assumes lock is held by caller.
func (g *QueensGame) RemovePlayer(playerID uuid.UUID) error {
	if g.Started {
		return ErrGameInProgress
	}
	next, err := g.engine.RemovePlayer(g.State, playerID.String())
	if err != nil {
		return err
	}
	g.State = next
	for i, p := range g.Players {
		if p.ID == playerID {
			g.Players = append(g.Players[:i], g.Players[i+1:]...)
			break
		}
	}
	if g.HostID == playerID {
		g.HostID = uuid.Nil
		if len(g.Players) > 0 {
			g.HostID = g.Players[0].ID
		}
	}
	g.logAction(playerID, string(EventPlayerLeave), nil)
	g.fireEvent(GameEvent{Type: EventPlayerLeave, User: &EventUser{ID: playerID}})
	g.broadcastSyncStateToAll()
	return nil
}

// Start deals and opens play. Only the host may start.
// Assumes lock is held by caller.
func (g *QueensGame) Start(requester uuid.UUID) error {
	if g.Started || g.GameOver {
		return ErrGameInProgress
	}
	if requester != g.HostID {
		return ErrNotHost
	}
	next, err := g.engine.Start(g.State)
	if err != nil {
		return err
	}
	g.State = next
	g.Started = true
	g.log.WithField("players", len(g.Players)).Info("game started")

	g.persistInitialGameState()
	g.saveSnapshot()
	g.logAction(requester, string(EventGameStart), map[string]interface{}{"players": len(g.Players)})
	g.fireEvent(GameEvent{Type: EventGameStart, Payload: map[string]interface{}{"version": next.Version}})
	g.TurnID++
	g.broadcastPlayerTurn()
	g.broadcastSyncStateToAll()
	return nil
}

// persistInitialGameState stores the dealt snapshot for audit and replay.
// Assumes lock is held by caller.
func (g *QueensGame) persistInitialGameState() {
	if database.DB != nil {
		go database.UpsertInitialGameState(g.ID, g.State)
	}
}

// saveSnapshot writes the current snapshot to the live store and, when a
// database is configured, appends it to the snapshot history.
// Assumes lock is held by caller.
func (g *QueensGame) saveSnapshot() {
	snap := g.State
	if g.Snapshots != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := g.Snapshots.Save(ctx, snap); err != nil {
			g.log.WithError(err).WithField("version", snap.Version).Warn("save snapshot")
		}
	}
	if database.DB != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := database.SaveSnapshot(ctx, g.ID, snap); err != nil {
				g.log.WithError(err).WithField("version", snap.Version).Warn("store snapshot")
			}
		}()
	}
}

// logAction publishes an action record to the history queue.
// Assumes lock is held by caller.
func (g *QueensGame) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	g.actionIndex++
	rec := cache.GameActionRecord{
		GameID:        g.ID,
		ActionIndex:   g.actionIndex,
		ActorUserID:   actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Version:       g.State.Version,
		Timestamp:     time.Now().UnixMilli(),
	}
	if cache.Rdb == nil {
		return
	}
	go func(r cache.GameActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishGameAction(ctx, r); err != nil {
			g.log.WithError(err).WithField("action", r.ActionType).Warn("publish action")
		}
	}(rec)
}

// fireEvent broadcasts an event to all connected players via the BroadcastFn callback.
// Assumes lock is held by caller.
func (g *QueensGame) fireEvent(ev GameEvent) {
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	} else {
		g.log.WithField("event", ev.Type).Warn("BroadcastFn is nil, cannot broadcast")
	}
}

// fireEventToPlayer sends an event to one connected player.
// Assumes lock is held by caller.
func (g *QueensGame) fireEventToPlayer(playerID uuid.UUID, ev GameEvent) {
	if g.BroadcastToPlayerFn == nil {
		g.log.WithField("event", ev.Type).Warn("BroadcastToPlayerFn is nil, cannot send private event")
		return
	}
	if p := g.getPlayerByID(playerID); p != nil && p.Connected {
		g.BroadcastToPlayerFn(playerID, ev)
	}
}

// sendSyncState sends the current obfuscated game state to a single player.
// Assumes lock is held by caller.
func (g *QueensGame) sendSyncState(playerID uuid.UUID) {
	state := g.GetCurrentObfuscatedGameState(playerID)
	g.fireEventToPlayer(playerID, GameEvent{Type: EventPrivateSyncState, State: &state})
}

// broadcastSyncStateToAll sends each connected player their own view.
// Assumes lock is held by caller.
func (g *QueensGame) broadcastSyncStateToAll() {
	for _, p := range g.Players {
		if p.Connected {
			g.sendSyncState(p.ID)
		}
	}
}

// countConnectedPlayers returns the number of players currently marked as connected.
// Assumes lock is held by caller.
func (g *QueensGame) countConnectedPlayers() int {
	count := 0
	for _, p := range g.Players {
		if p.Connected {
			count++
		}
	}
	return count
}

// Player returns the seated player with id, or nil.
// Assumes lock is held by caller.
func (g *QueensGame) Player(id uuid.UUID) *models.Player { return g.getPlayerByID(id) }

func (g *QueensGame) getPlayerByID(id uuid.UUID) *models.Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// HandleDisconnect marks a player as disconnected. Before the deal the seat
// is freed; afterwards it is kept, and the game is abandoned once nobody is
// left connected.
// Assumes lock is held by caller.
func (g *QueensGame) HandleDisconnect(playerID uuid.UUID) {
	p := g.getPlayerByID(playerID)
	if p == nil {
		g.log.WithField("player", playerID).Debug("disconnect for unknown player")
		return
	}
	if !p.Connected {
		return
	}
	p.Connected = false
	p.Conn = nil
	g.logAction(playerID, "player_disconnect", nil)
	g.log.WithField("player", playerID).Info("player disconnected")

	if !g.Started {
		if err := g.RemovePlayer(playerID); err != nil {
			g.log.WithError(err).Warn("remove disconnected player")
		}
		return
	}
	if g.GameOver {
		return
	}

	g.State = g.engine.SetConnected(g.State, playerID.String(), false)
	if g.countConnectedPlayers() == 0 {
		g.log.Info("all players disconnected, abandoning game")
		g.EndGame()
		return
	}
	g.broadcastSyncStateToAll()
}

// HandleReconnect marks a player as connected and sends them the current game state.
// Assumes lock is held by caller.
func (g *QueensGame) HandleReconnect(playerID uuid.UUID, conn *websocket.Conn) {
	p := g.getPlayerByID(playerID)
	if p == nil {
		g.log.WithField("player", playerID).Info("reconnect for player not in game")
		if conn != nil {
			conn.Close(websocket.StatusPolicyViolation, "Game not found or you were removed.")
		}
		return
	}
	if p.Conn != nil && p.Conn != conn {
		p.Conn.CloseNow()
	}
	p.Connected = true
	p.Conn = conn
	g.State = g.engine.SetConnected(g.State, playerID.String(), true)
	g.logAction(playerID, "player_reconnect", nil)

	g.promptAwaitedPlayer()
	g.broadcastSyncStateToAll()
}

// EndGame finalises the game, broadcasts results and triggers OnGameEnd.
// Assumes lock is held by caller.
func (g *QueensGame) EndGame() {
	if g.GameOver {
		return
	}
	g.GameOver = true
	g.stopDefenseTimer()

	scores := make(map[uuid.UUID]int, len(g.State.Players))
	for _, p := range g.State.Players {
		if id, err := uuid.Parse(p.ID); err == nil {
			scores[id] = p.Score
		}
	}
	var winner uuid.UUID
	if g.State.WinnerID != "" {
		winner, _ = uuid.Parse(g.State.WinnerID)
	}
	reason := "abandoned"
	if res := engine.EvaluateWin(g.State); res.Decided {
		reason = string(res.Reason)
	}
	if !g.State.IsOver() {
		g.State = g.engine.Abandon(g.State)
	}
	g.log.WithFields(logrus.Fields{"winner": winner, "reason": reason}).Info("game over")

	g.logAction(uuid.Nil, string(EventGameEnd), map[string]interface{}{
		"scores": scores,
		"winner": winner,
		"reason": reason,
	})
	g.persistFinalGameState()

	ev := GameEvent{
		Type:    EventGameEnd,
		Payload: map[string]interface{}{"scores": scores, "reason": reason},
	}
	if winner != uuid.Nil {
		ev.User = &EventUser{ID: winner}
	}
	g.fireEvent(ev)
	g.broadcastSyncStateToAll()

	if g.OnGameEnd != nil {
		g.OnGameEnd(g.ID, winner, scores)
	}
}

// persistFinalGameState records the final snapshot.
// Assumes lock is held by caller.
func (g *QueensGame) persistFinalGameState() {
	g.saveSnapshot()
	if database.DB == nil {
		return
	}
	snap := g.State
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := database.StoreFinalGameStateInDB(ctx, g.ID, snap); err != nil {
			g.log.WithError(err).Error("store final state")
		}
	}()
}
