package engine

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
)

// suspensionEnvelope tags a suspension with its variant so it survives a
// JSON round trip.
type suspensionEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type gameStateAlias GameState

// MarshalJSON encodes the snapshot, including the active suspension.
func (g GameState) MarshalJSON() ([]byte, error) {
	env, err := encodeSuspension(g.Suspension)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		gameStateAlias
		Suspension *suspensionEnvelope `json:"suspension,omitempty"`
	}{gameStateAlias(g), env})
}

// UnmarshalJSON decodes a snapshot written by MarshalJSON.
func (g *GameState) UnmarshalJSON(b []byte) error {
	aux := struct {
		*gameStateAlias
		Suspension *suspensionEnvelope `json:"suspension"`
	}{gameStateAlias: (*gameStateAlias)(g)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	s, err := decodeSuspension(aux.Suspension)
	if err != nil {
		return err
	}
	g.Suspension = s
	return nil
}

func encodeSuspension(s Suspension) (*suspensionEnvelope, error) {
	if s == nil {
		return nil, nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", s.suspensionKind(), err)
	}
	return &suspensionEnvelope{Type: s.suspensionKind(), Data: data}, nil
}

func decodeSuspension(env *suspensionEnvelope) (Suspension, error) {
	if env == nil {
		return nil, nil
	}
	var s Suspension
	switch env.Type {
	case "pending_attack":
		s = &PendingAttack{}
	case "reveal_in_progress":
		s = &RevealInProgress{}
	case "bonus_pick":
		s = &BonusPick{}
	case "staged_cards":
		s = &StagedCards{}
	default:
		return nil, fmt.Errorf("unknown suspension type %q", env.Type)
	}
	if err := json.Unmarshal(env.Data, s); err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.Type, err)
	}
	return s, nil
}

// SuspensionKind names the active suspension variant, or "" if none.
func (g *GameState) SuspensionKind() string {
	if g.Suspension == nil {
		return ""
	}
	return g.Suspension.suspensionKind()
}

// Checksum returns an FNV-1a fingerprint of the encoded snapshot. Two
// snapshots with equal checksums are, for practical purposes, equal.
func (g *GameState) Checksum() uint64 {
	b, err := json.Marshal(g)
	invariant(err == nil, "encode snapshot: %v", err)
	h := fnv.New64a()
	h.Write(b)
	return h.Sum64()
}
