// internal/game/movelog.go
package game

import (
	"context"
	"sync"
)

// MemoryMoveLog is the in-process MoveLog used when no shared store is
// configured. It forgets everything on restart.
type MemoryMoveLog struct {
	mu  sync.Mutex
	ids map[string]map[string]struct{} // gameID -> applied move ids
}

func NewMemoryMoveLog() *MemoryMoveLog {
	return &MemoryMoveLog{ids: make(map[string]map[string]struct{})}
}

func (l *MemoryMoveLog) Seen(_ context.Context, gameID, moveID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.ids[gameID][moveID]
	return ok, nil
}

func (l *MemoryMoveLog) MarkApplied(_ context.Context, gameID, moveID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	set, ok := l.ids[gameID]
	if !ok {
		set = make(map[string]struct{})
		l.ids[gameID] = set
	}
	set[moveID] = struct{}{}
	return nil
}

// Delete forgets every id recorded for the game.
func (l *MemoryMoveLog) Delete(_ context.Context, gameID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.ids, gameID)
	return nil
}
