// internal/game/manager.go
package game

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/sleepingqueens/engine"
	"github.com/jason-s-yu/sleepingqueens/service/internal/auth"
	"github.com/sirupsen/logrus"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrWrongPassword  = errors.New("wrong room password")
	ErrGameInProgress = errors.New("game already in progress")
	ErrNotHost        = errors.New("only the host can start the game")
)

const (
	roomCodeLen   = 6
	forgetTimeout = 5 * time.Second
)

// gameForgetter is implemented by stores that can drop a finished game.
type gameForgetter interface {
	Delete(ctx context.Context, gameID string) error
}

// Manager owns every live game and the room codes that reach them.
type Manager struct {
	mu     sync.RWMutex
	games  map[uuid.UUID]*QueensGame
	byCode map[string]uuid.UUID

	newEngine func() *engine.Engine
	snapshots SnapshotStore
	moves     MoveLog
}

// NewManager builds a manager. newEngine is called once per game so each
// table gets its own shuffler. A nil moves falls back to an in-memory log.
func NewManager(newEngine func() *engine.Engine, snapshots SnapshotStore, moves MoveLog) *Manager {
	if moves == nil {
		moves = NewMemoryMoveLog()
	}
	return &Manager{
		games:     make(map[uuid.UUID]*QueensGame),
		byCode:    make(map[string]uuid.UUID),
		newEngine: newEngine,
		snapshots: snapshots,
		moves:     moves,
	}
}

// CreateGame opens a table under a fresh room code. An empty password
// leaves the room open.
func (m *Manager) CreateGame(password string) (*QueensGame, error) {
	var hash []byte
	if password != "" {
		var err error
		if hash, err = auth.HashPassword(password); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	code := m.freshCode()
	g := NewQueensGame(m.newEngine(), code)
	g.passwordHash = hash
	g.Snapshots = m.snapshots
	g.Moves = m.moves
	g.OnGameEnd = func(gameID, winner uuid.UUID, scores map[uuid.UUID]int) {
		go m.Remove(gameID)
	}
	m.games[g.ID] = g
	m.byCode[code] = g.ID
	logrus.WithFields(logrus.Fields{"game": g.ID, "room": code}).Info("game created")
	return g, nil
}

// freshCode returns an unused room code. Assumes m.mu is held.
func (m *Manager) freshCode() string {
	for {
		raw := strings.ReplaceAll(uuid.NewString(), "-", "")
		code := strings.ToUpper(raw[:roomCodeLen])
		if _, taken := m.byCode[code]; !taken {
			return code
		}
	}
}

// Get returns the game with id.
func (m *Manager) Get(id uuid.UUID) (*QueensGame, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	return g, ok
}

// Lookup finds a game by room code, case-insensitively, and checks the
// password.
func (m *Manager) Lookup(code, password string) (*QueensGame, error) {
	m.mu.RLock()
	id, ok := m.byCode[strings.ToUpper(strings.TrimSpace(code))]
	g := m.games[id]
	m.mu.RUnlock()
	if !ok || g == nil {
		return nil, ErrRoomNotFound
	}
	if !auth.CheckPassword(g.passwordHash, password) {
		return nil, ErrWrongPassword
	}
	return g, nil
}

// Remove forgets a game and drops whatever the stores still hold for it.
func (m *Manager) Remove(id uuid.UUID) {
	m.mu.Lock()
	g, ok := m.games[id]
	if ok {
		delete(m.games, id)
		delete(m.byCode, g.RoomCode)
	}
	m.mu.Unlock()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), forgetTimeout)
	defer cancel()
	var done []gameForgetter
	for _, store := range []interface{}{m.snapshots, m.moves} {
		f, ok := store.(gameForgetter)
		if !ok || containsForgetter(done, f) {
			continue
		}
		done = append(done, f)
		if err := f.Delete(ctx, id.String()); err != nil {
			logrus.WithError(err).WithField("game", id).Warn("drop stored game")
		}
	}
}

func containsForgetter(list []gameForgetter, f gameForgetter) bool {
	for _, x := range list {
		if x == f {
			return true
		}
	}
	return false
}

// Count returns the number of live games.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}
