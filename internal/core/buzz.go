package core

import (
	"github.com/rs/zerolog/log"

	"github.com/GonzaloGRomero/Una-nota/internal/domain"
	"github.com/GonzaloGRomero/Una-nota/internal/protocol"
)

// Buzz arbiter: first-come-first-served by hub-processing order. Network
// jitter does not matter; the order mutations acquire the room mutex is
// the order of the queue.

// Buzz appends the session's player to the buzz queue. A repeat buzz
// before the next reset is a no-op, not an error. The first accepted buzz
// of a round pauses playback so the organizer hears who rang in.
func (h *Hub) Buzz(sid SessionID, playerID domain.PlayerID) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.subs[sid]
	if !ok {
		return false, ErrNotJoined
	}
	if s.playerID != playerID {
		return false, ErrNotOwnBuzz
	}
	if _, ok := h.players[playerID]; !ok {
		return false, ErrUnknownPlayer
	}
	for _, id := range h.buzzQueue {
		if id == playerID {
			return false, nil
		}
	}

	first := len(h.buzzQueue) == 0
	h.buzzQueue = append(h.buzzQueue, playerID)
	if first {
		h.cancelPreviewLocked()
		h.status = domain.StatusPaused
	}

	h.broadcastLocked(protocol.Buzzer(h.buzzQueue))
	h.broadcastLocked(protocol.ControlStatus(h.status))
	log.Debug().Str("module", "core.buzz").Str("room", string(h.name)).
		Str("player", string(playerID)).Int("position", len(h.buzzQueue)).Msg("buzz accepted")
	return true, nil
}
