package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/jason-s-yu/sleepingqueens/service/internal/game"
	"github.com/jason-s-yu/sleepingqueens/service/internal/models"
	"github.com/sirupsen/logrus"
)

const writeTimeout = 2 * time.Second

// Control messages handled here rather than by the engine.
const (
	msgStartGame = "start_game"
	msgLeave     = "leave_game"
)

// HandleGameWS joins the caller to a room and relays their actions until the
// socket closes.
func (h *Handlers) HandleGameWS(w http.ResponseWriter, r *http.Request) {
	userID, username, err := authenticate(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	g, err := h.Games.Lookup(r.PathValue("code"), r.URL.Query().Get("password"))
	switch {
	case errors.Is(err, game.ErrRoomNotFound):
		http.Error(w, "room not found", http.StatusNotFound)
		return
	case errors.Is(err, game.ErrWrongPassword):
		http.Error(w, "wrong password", http.StatusForbidden)
		return
	case err != nil:
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.OriginPatterns})
	if err != nil {
		logrus.WithError(err).Warn("websocket accept")
		return
	}
	defer conn.CloseNow()

	log := logrus.WithFields(logrus.Fields{"game": g.ID, "player": userID})
	player := &models.Player{
		ID:        userID,
		Connected: true,
		Conn:      conn,
		User:      &models.User{ID: userID, Username: username, IsEphemeral: true},
	}

	g.Mu.Lock()
	wireBroadcast(g)
	err = g.AddPlayer(player)
	g.Mu.Unlock()
	if err != nil {
		log.WithError(err).Info("join refused")
		conn.Close(websocket.StatusPolicyViolation, err.Error())
		return
	}
	log.Info("player connected")

	ctx := r.Context()
	for {
		var action models.GameAction
		if err := wsjson.Read(ctx, conn, &action); err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				log.WithError(err).Debug("read failed")
			}
			break
		}
		if done := h.dispatch(ctx, g, userID, action, log); done {
			break
		}
	}

	g.Mu.Lock()
	// A newer socket for the same player has taken over the seat.
	if p := g.Player(userID); p != nil && p.Conn == conn {
		g.HandleDisconnect(userID)
	}
	g.Mu.Unlock()
	conn.Close(websocket.StatusNormalClosure, "")
}

// dispatch handles one inbound message. It reports whether the client is
// leaving.
func (h *Handlers) dispatch(ctx context.Context, g *game.QueensGame, userID uuid.UUID, action models.GameAction, log *logrus.Entry) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	switch action.ActionType {
	case msgStartGame:
		if err := g.Start(userID); err != nil {
			log.WithError(err).Info("start refused")
			sendError(g, userID, err)
		}
	case msgLeave:
		return true
	default:
		g.HandleAction(ctx, userID, action)
	}
	return false
}

func sendError(g *game.QueensGame, userID uuid.UUID, err error) {
	if g.BroadcastToPlayerFn == nil {
		return
	}
	g.BroadcastToPlayerFn(userID, game.GameEvent{
		Type:    game.EventPrivateMoveRejected,
		Payload: map[string]interface{}{"code": "refused", "message": err.Error()},
	})
}

// wireBroadcast points the game's callbacks at its players' sockets.
// Assumes g.Mu is held.
func wireBroadcast(g *game.QueensGame) {
	if g.BroadcastFn != nil {
		return
	}
	send := func(p *models.Player, ev game.GameEvent) {
		if p.Conn == nil || !p.Connected {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := wsjson.Write(ctx, p.Conn, ev); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{"game": g.ID, "player": p.ID, "event": ev.Type}).Debug("write event")
		}
	}
	g.BroadcastFn = func(ev game.GameEvent) {
		for _, p := range g.Players {
			send(p, ev)
		}
	}
	g.BroadcastToPlayerFn = func(playerID uuid.UUID, ev game.GameEvent) {
		for _, p := range g.Players {
			if p.ID == playerID {
				send(p, ev)
				return
			}
		}
	}
}
