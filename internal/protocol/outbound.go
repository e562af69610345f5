package protocol

import (
	"github.com/runeboard/runeboard-client/internal/game/grid"
	"github.com/runeboard/runeboard-client/internal/game/targeting"
)

// Outbound message types.
const (
	TypeMove               = "move"
	TypeSummon             = "summon"
	TypeDirectAttack       = "direct-attack"
	TypeActivateSorcery    = "activate-sorcery"
	TypePlaceLand          = "place-land"
	TypeSorceryStep        = "sorcery-step"
	TypeEndTurn            = "end-turn"
	TypeEndTurnWithDiscard = "end-turn-with-discard"
)

// Outbound is one client to server frame.
type Outbound struct {
	Type    string            `json:"type"`
	UserID  grid.Seat         `json:"user_id,omitempty"`
	From    *grid.Pos         `json:"from,omitempty"`
	To      *grid.Pos         `json:"to,omitempty"`
	Pos     *grid.Pos         `json:"pos,omitempty"`
	Slot    *int              `json:"slot,omitempty"`
	Payload *targeting.Answer `json:"payload,omitempty"`
	Nonce   uint64            `json:"_nonce,omitempty"`
}

// Hello is the first frame sent after connecting.
type Hello struct {
	Username string `json:"username"`
}

// Move relocates a unit.
func Move(seat grid.Seat, from, to grid.Pos) Outbound {
	return Outbound{Type: TypeMove, UserID: seat, From: &from, To: &to}
}

// Summon plays the monster in hand slot onto to.
func Summon(seat grid.Seat, slot int, to grid.Pos) Outbound {
	return Outbound{Type: TypeSummon, UserID: seat, Slot: &slot, To: &to}
}

// DirectAttack attacks the opponent with the unit at pos.
func DirectAttack(seat grid.Seat, pos grid.Pos) Outbound {
	return Outbound{Type: TypeDirectAttack, UserID: seat, Pos: &pos}
}

// ActivateSorcery plays the sorcery in hand slot at pos.
func ActivateSorcery(seat grid.Seat, slot int, pos grid.Pos) Outbound {
	return Outbound{Type: TypeActivateSorcery, UserID: seat, Slot: &slot, Pos: &pos}
}

// PlaceLand plays the land in land deck slot at pos.
func PlaceLand(seat grid.Seat, slot int, pos grid.Pos) Outbound {
	return Outbound{Type: TypePlaceLand, UserID: seat, Slot: &slot, Pos: &pos}
}

// SorceryStep answers the pending script step.
func SorceryStep(seat grid.Seat, answer targeting.Answer, nonce uint64) Outbound {
	return Outbound{Type: TypeSorceryStep, UserID: seat, Payload: &answer, Nonce: nonce}
}

// EndTurn ends the local turn.
func EndTurn(seat grid.Seat) Outbound {
	return Outbound{Type: TypeEndTurn, UserID: seat}
}

// EndTurnWithDiscard ends the turn discarding hand slot.
func EndTurnWithDiscard(seat grid.Seat, slot int) Outbound {
	return Outbound{Type: TypeEndTurnWithDiscard, UserID: seat, Slot: &slot}
}
