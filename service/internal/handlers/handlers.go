// Package handlers exposes the HTTP and WebSocket surface of the server.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jason-s-yu/sleepingqueens/service/internal/auth"
	"github.com/jason-s-yu/sleepingqueens/service/internal/game"
	"github.com/sirupsen/logrus"
)

// Handlers holds HTTP handler dependencies.
type Handlers struct {
	Games *game.Manager
	// OriginPatterns is passed to websocket.Accept; empty means same-origin only.
	OriginPatterns []string
}

func NewHandlers(games *game.Manager, originPatterns []string) *Handlers {
	return &Handlers{Games: games, OriginPatterns: originPatterns}
}

// Routes registers every endpoint on a new mux.
func (h *Handlers) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.HandleHealth)
	mux.HandleFunc("POST /auth/guest", h.HandleGuestLogin)
	mux.HandleFunc("POST /games", h.HandleCreateGame)
	mux.HandleFunc("GET /games/{code}/ws", h.HandleGameWS)
	return mux
}

func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "games": h.Games.Count()})
}

type guestRequest struct {
	Username string `json:"username"`
}

type guestResponse struct {
	UserID uuid.UUID `json:"userId"`
	Token  string    `json:"token"`
}

// HandleGuestLogin issues a session token for an ephemeral user.
func (h *Handlers) HandleGuestLogin(w http.ResponseWriter, r *http.Request) {
	var req guestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(req.Username)
	if name == "" || len(name) > 32 {
		http.Error(w, "username must be 1-32 characters", http.StatusBadRequest)
		return
	}
	id := uuid.New()
	token, err := auth.CreateJWT(id, name)
	if err != nil {
		logrus.WithError(err).Error("issue guest token")
		http.Error(w, "could not issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, guestResponse{UserID: id, Token: token})
}

type createGameRequest struct {
	Password string `json:"password,omitempty"`
}

type createGameResponse struct {
	GameID   uuid.UUID `json:"gameId"`
	RoomCode string    `json:"roomCode"`
}

// HandleCreateGame opens a new room for an authenticated user.
func (h *Handlers) HandleCreateGame(w http.ResponseWriter, r *http.Request) {
	if _, _, err := authenticate(r); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req createGameRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
	}
	g, err := h.Games.CreateGame(req.Password)
	if err != nil {
		logrus.WithError(err).Error("create game")
		http.Error(w, "could not create game", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, createGameResponse{GameID: g.ID, RoomCode: g.RoomCode})
}

// authenticate reads the session token from the Authorization header, the
// "token" query parameter or the "auth_token" cookie.
func authenticate(r *http.Request) (uuid.UUID, string, error) {
	token := ""
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		token = strings.TrimPrefix(h, "Bearer ")
	} else if q := r.URL.Query().Get("token"); q != "" {
		token = q
	} else if c, err := r.Cookie("auth_token"); err == nil {
		token = c.Value
	}
	if token == "" {
		return uuid.Nil, "", errors.New("no session token")
	}
	return auth.AuthenticateJWT(token)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("write response")
	}
}
