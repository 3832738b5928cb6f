// Package protocol is the wire codec for the game socket: a closed set of
// message kinds, pure (de)serialization, no semantic validation.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownKind = errors.New("unknown message kind")

// Inbound message kinds (client -> hub).
const (
	KindJoin         = "join"
	KindBuzz         = "buzz"
	KindControl      = "control"
	KindSetWinner    = "set_winner"
	KindAdjustScore  = "adjust_score"
	KindNextTrack    = "next_track"
	KindSelectTrack  = "select_track"
	KindRemovePlayer = "remove_player"
)

// Inbound is the closed union of client messages. Each kind carries the
// payload shape fixed below; anything else fails Decode.
type Inbound interface{ kind() string }

type Join struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	RoomName string `json:"room_name"`
	Password string `json:"password"`
}

type Buzz struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
}

type Control struct {
	Type   string `json:"type"`
	Action string `json:"action"`
}

type SetWinner struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
}

type AdjustScore struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	Points   int    `json:"points"`
}

type NextTrack struct {
	Type string `json:"type"`
}

type SelectTrack struct {
	Type    string `json:"type"`
	TrackID string `json:"trackId"`
}

type RemovePlayer struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
}

func (Join) kind() string         { return KindJoin }
func (Buzz) kind() string         { return KindBuzz }
func (Control) kind() string      { return KindControl }
func (SetWinner) kind() string    { return KindSetWinner }
func (AdjustScore) kind() string  { return KindAdjustScore }
func (NextTrack) kind() string    { return KindNextTrack }
func (SelectTrack) kind() string  { return KindSelectTrack }
func (RemovePlayer) kind() string { return KindRemovePlayer }

// Decode parses one inbound frame. Unknown kinds and structurally malformed
// payloads are rejected, never coerced.
func Decode(data []byte) (Inbound, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	var msg Inbound
	var err error
	switch env.Type {
	case KindJoin:
		var m Join
		err = json.Unmarshal(data, &m)
		msg = m
	case KindBuzz:
		var m Buzz
		err = json.Unmarshal(data, &m)
		msg = m
	case KindControl:
		var m Control
		err = json.Unmarshal(data, &m)
		msg = m
	case KindSetWinner:
		var m SetWinner
		err = json.Unmarshal(data, &m)
		msg = m
	case KindAdjustScore:
		var m AdjustScore
		err = json.Unmarshal(data, &m)
		msg = m
	case KindNextTrack:
		var m NextTrack
		err = json.Unmarshal(data, &m)
		msg = m
	case KindSelectTrack:
		var m SelectTrack
		err = json.Unmarshal(data, &m)
		msg = m
	case KindRemovePlayer:
		var m RemovePlayer
		err = json.Unmarshal(data, &m)
		msg = m
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, env.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.Type, err)
	}
	return msg, nil
}
