package models

// GameAction is a raw client message. Payload keys vary between clients;
// the game package normalises them before anything reaches the engine.
type GameAction struct {
	ActionType string                 `json:"type"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}
