// internal/game/normalize.go
package game

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jason-s-yu/sleepingqueens/engine"
	"github.com/jason-s-yu/sleepingqueens/service/internal/models"
)

// actionAliases maps every accepted action name (after lower-casing and
// dropping an "action_" prefix) to its move kind. Card nicknames from the
// printed deck are accepted alongside the engine's names.
var actionAliases = map[string]engine.MoveKind{
	"wake_queen": engine.MoveWakeQueen, "wake": engine.MoveWakeQueen, "king": engine.MoveWakeQueen, "play_king": engine.MoveWakeQueen,
	"steal_queen": engine.MoveStealQueen, "steal": engine.MoveStealQueen, "knight": engine.MoveStealQueen, "play_knight": engine.MoveStealQueen,
	"sleep_queen": engine.MoveSleepQueen, "sleep": engine.MoveSleepQueen, "potion": engine.MoveSleepQueen, "play_potion": engine.MoveSleepQueen,
	"block": engine.MoveBlock, "defend": engine.MoveBlock, "dragon": engine.MoveBlock, "wand": engine.MoveBlock,
	"allow_attack": engine.MoveAllow, "allow": engine.MoveAllow, "accept": engine.MoveAllow, "skip": engine.MoveAllow,
	"reveal": engine.MoveReveal, "jester": engine.MoveReveal, "play_jester": engine.MoveReveal,
	"reveal_pick": engine.MoveRevealPick, "jester_pick": engine.MoveRevealPick,
	"bonus_pick": engine.MoveBonusPick, "rose_pick": engine.MoveBonusPick,
	"equation": engine.MoveEquation, "play_equation": engine.MoveEquation, "math": engine.MoveEquation,
	"discard": engine.MoveDiscard, "discard_cards": engine.MoveDiscard,
	"stage": engine.MoveStage, "select": engine.MoveStage,
	"clear_stage": engine.MoveClearStage, "deselect": engine.MoveClearStage,
}

// ResolveActionType maps a client action name to a move kind.
func ResolveActionType(actionType string) (engine.MoveKind, bool) {
	name := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(actionType)), "action_")
	kind, ok := actionAliases[name]
	return kind, ok
}

// NormalizeAction turns a raw client action into the engine's canonical
// move. It resolves field aliases only; legality is the engine's job. For a
// steal or sleep without an explicit target player, the current owner of
// the target queen is filled in from g.
func NormalizeAction(g *engine.GameState, playerID string, a models.GameAction) (engine.Move, error) {
	kind, ok := ResolveActionType(a.ActionType)
	if !ok {
		return engine.Move{}, fmt.Errorf("unknown action type %q", a.ActionType)
	}
	p := a.Payload
	m := engine.Move{Kind: kind, PlayerID: playerID}

	var err error
	if m.ID, err = firstString(p, "moveId", "id", "clientMoveId"); err != nil {
		return engine.Move{}, err
	}
	if m.CardIDs, err = cardIDs(p); err != nil {
		return engine.Move{}, err
	}
	if m.TargetQueenID, err = queenID(p); err != nil {
		return engine.Move{}, err
	}
	if m.TargetPlayerID, err = targetPlayerID(p); err != nil {
		return engine.Move{}, err
	}

	if m.TargetPlayerID == "" && m.TargetQueenID != "" && g != nil &&
		(kind == engine.MoveStealQueen || kind == engine.MoveSleepQueen) {
		if seat := g.QueenOwner(m.TargetQueenID); seat >= 0 {
			m.TargetPlayerID = g.Players[seat].ID
		}
	}
	return m, nil
}

// firstString returns the first of keys present in p. A present key with a
// non-string value is an error.
func firstString(p map[string]interface{}, keys ...string) (string, error) {
	for _, k := range keys {
		v, ok := p[k]
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("%s must be a string", k)
		}
		if s != "" {
			return s, nil
		}
	}
	return "", nil
}

// idOf accepts either a bare id or an object carrying one under "id".
func idOf(key string, v interface{}) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case map[string]interface{}:
		if s, ok := t["id"].(string); ok {
			return s, nil
		}
		return "", fmt.Errorf("%s: object without an id", key)
	default:
		return "", fmt.Errorf("%s: want an id or an object with one, got %T", key, v)
	}
}

// cardIDs reads "cardIds", "cards", "cardId" or "card".
func cardIDs(p map[string]interface{}) ([]string, error) {
	for _, k := range []string{"cardIds", "cards"} {
		v, ok := p[k]
		if !ok || v == nil {
			continue
		}
		list, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s must be a list", k)
		}
		ids := make([]string, 0, len(list))
		for _, item := range list {
			id, err := idOf(k, item)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, nil
	}
	for _, k := range []string{"cardId", "card"} {
		if v, ok := p[k]; ok && v != nil {
			id, err := idOf(k, v)
			if err != nil {
				return nil, err
			}
			return []string{id}, nil
		}
	}
	return nil, nil
}

// queenID reads "targetQueenId", "queenId", "queen", or "target.queenId".
func queenID(p map[string]interface{}) (string, error) {
	if s, err := firstString(p, "targetQueenId", "queenId"); err != nil || s != "" {
		return s, err
	}
	if v, ok := p["queen"]; ok && v != nil {
		return idOf("queen", v)
	}
	if t, ok := p["target"].(map[string]interface{}); ok {
		return firstString(t, "queenId")
	}
	return "", nil
}

// targetPlayerID reads "targetPlayerId", "targetUserId", "target.playerId"
// or "user.id" and canonicalises the uuid.
func targetPlayerID(p map[string]interface{}) (string, error) {
	raw, err := firstString(p, "targetPlayerId", "targetUserId")
	if err != nil {
		return "", err
	}
	if raw == "" {
		if t, ok := p["target"].(map[string]interface{}); ok {
			if raw, err = firstString(t, "playerId", "userId"); err != nil {
				return "", err
			}
		}
	}
	if raw == "" {
		if u, ok := p["user"].(map[string]interface{}); ok {
			if raw, err = firstString(u, "id"); err != nil {
				return "", err
			}
		}
	}
	if raw == "" {
		return "", nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("target player %q is not a valid id", raw)
	}
	return id.String(), nil
}
