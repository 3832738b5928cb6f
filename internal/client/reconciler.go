// Package client keeps a read-only mirror of a room by replaying the hub's
// message stream, and wraps it in a reconnecting websocket client.
package client

import (
	"encoding/json"
	"fmt"

	"github.com/GonzaloGRomero/Una-nota/internal/domain"
	"github.com/GonzaloGRomero/Una-nota/internal/protocol"
)

// Apply folds one hub message into the mirror and returns the next state.
// It never mutates its input; callers own both snapshots. A full state
// message replaces the mirror wholesale, deltas patch it in place. Deltas
// arriving before the first state are dropped: the snapshot that follows a
// (re)join already reflects them.
func Apply(state *protocol.Snapshot, env protocol.RawEnvelope) (*protocol.Snapshot, error) {
	if env.Type == protocol.KindState {
		var next protocol.Snapshot
		if err := json.Unmarshal(env.Payload, &next); err != nil {
			return state, fmt.Errorf("apply state: %w", err)
		}
		if next.Players == nil {
			next.Players = map[domain.PlayerID]domain.Player{}
		}
		return &next, nil
	}
	if state == nil {
		return nil, nil
	}

	next := clone(state)
	switch env.Type {
	case protocol.KindPlayerJoin, protocol.KindPlayerRejoin:
		var p domain.Player
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return state, fmt.Errorf("apply %s: %w", env.Type, err)
		}
		next.Players[p.ID] = p

	case protocol.KindPlayerLeave:
		var pl protocol.PlayerLeavePayload
		if err := json.Unmarshal(env.Payload, &pl); err != nil {
			return state, fmt.Errorf("apply %s: %w", env.Type, err)
		}
		delete(next.Players, pl.PlayerID)
		next.BuzzQueue = withoutPlayer(next.BuzzQueue, pl.PlayerID)

	case protocol.KindPlayerBanned:
		var pb protocol.PlayerBannedPayload
		if err := json.Unmarshal(env.Payload, &pb); err != nil {
			return state, fmt.Errorf("apply %s: %w", env.Type, err)
		}
		delete(next.Players, pb.PlayerID)
		next.BuzzQueue = withoutPlayer(next.BuzzQueue, pb.PlayerID)

	case protocol.KindBuzzer:
		var bp protocol.BuzzerPayload
		if err := json.Unmarshal(env.Payload, &bp); err != nil {
			return state, fmt.Errorf("apply %s: %w", env.Type, err)
		}
		next.BuzzQueue = bp.Queue

	case protocol.KindControl:
		var cp protocol.ControlPayload
		if err := json.Unmarshal(env.Payload, &cp); err != nil {
			return state, fmt.Errorf("apply %s: %w", env.Type, err)
		}
		next.Status = cp.Status

	case protocol.KindScores:
		var sp protocol.ScoresPayload
		if err := json.Unmarshal(env.Payload, &sp); err != nil {
			return state, fmt.Errorf("apply %s: %w", env.Type, err)
		}
		if sp.Players == nil {
			sp.Players = map[domain.PlayerID]domain.Player{}
		}
		next.Players = sp.Players

	case protocol.KindTrackChanged:
		var tp protocol.TrackChangedPayload
		if err := json.Unmarshal(env.Payload, &tp); err != nil {
			return state, fmt.Errorf("apply %s: %w", env.Type, err)
		}
		next.CurrentTrackID = tp.CurrentTrackID

	default:
		// join_ack, join_error, error and point_awarded carry no room
		// state; the wrapper surfaces them through its own channels.
	}
	return next, nil
}

func clone(s *protocol.Snapshot) *protocol.Snapshot {
	next := protocol.Snapshot{
		Tracks:     append([]domain.Track(nil), s.Tracks...),
		TrackOrder: append([]domain.TrackID(nil), s.TrackOrder...),
		Status:     s.Status,
		BuzzQueue:  append([]domain.PlayerID(nil), s.BuzzQueue...),
		Players:    make(map[domain.PlayerID]domain.Player, len(s.Players)),
	}
	if s.CurrentTrackID != nil {
		id := *s.CurrentTrackID
		next.CurrentTrackID = &id
	}
	for id, p := range s.Players {
		next.Players[id] = p
	}
	return &next
}

func withoutPlayer(queue []domain.PlayerID, id domain.PlayerID) []domain.PlayerID {
	out := queue[:0:0]
	for _, q := range queue {
		if q != id {
			out = append(out, q)
		}
	}
	return out
}
