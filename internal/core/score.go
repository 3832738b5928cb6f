package core

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/GonzaloGRomero/Una-nota/internal/domain"
	"github.com/GonzaloGRomero/Una-nota/internal/protocol"
)

// Scoring and moderation mutations. All organizer-only.

// SetWinner awards one point. The buzz queue and status are deliberately
// left alone: the organizer may still want to see who else rang in before
// moving to the next track.
func (h *Hub) SetWinner(sid SessionID, playerID domain.PlayerID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.organizerLocked(sid); err != nil {
		return err
	}
	return h.awardLocked(playerID, 1)
}

// AdjustScore applies an arbitrary signed delta; scores may go negative.
func (h *Hub) AdjustScore(sid SessionID, playerID domain.PlayerID, points int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.organizerLocked(sid); err != nil {
		return err
	}
	return h.awardLocked(playerID, points)
}

func (h *Hub) awardLocked(playerID domain.PlayerID, points int) error {
	p, ok := h.players[playerID]
	if !ok {
		return ErrUnknownPlayer
	}
	p.Score += points

	players := make(map[domain.PlayerID]domain.Player, len(h.players))
	for id, pl := range h.players {
		players[id] = *pl
	}
	h.broadcastLocked(protocol.Scores(players))
	h.broadcastLocked(protocol.PointAwarded(playerID, p.Name, points, h.trackInfoLocked()))
	log.Info().Str("module", "core.score").Str("room", string(h.name)).
		Str("player", string(playerID)).Int("points", points).Int("score", p.Score).Msg("score changed")
	return nil
}

// RemovePlayer deletes the player, drops it from the buzz queue in the
// same critical section, closes its live connections, and resyncs everyone
// with a full snapshot after the leave delta.
func (h *Hub) RemovePlayer(sid SessionID, playerID domain.PlayerID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.organizerLocked(sid); err != nil {
		return err
	}
	if _, ok := h.players[playerID]; !ok {
		return ErrUnknownPlayer
	}
	h.evictLocked(playerID)
	h.broadcastLocked(protocol.PlayerLeave(playerID))
	h.broadcastLocked(protocol.State(h.snapshotLocked()))
	return nil
}

// BanPlayer is the administrative variant routed through the same
// serialized path; it needs no organizer session.
func (h *Hub) BanPlayer(playerID domain.PlayerID) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.players[playerID]
	if !ok {
		return "", ErrUnknownPlayer
	}
	name := p.Name
	h.evictLocked(playerID)
	h.broadcastLocked(protocol.PlayerBanned(playerID, name))
	h.broadcastLocked(protocol.State(h.snapshotLocked()))
	return name, nil
}

func (h *Hub) evictLocked(playerID domain.PlayerID) {
	delete(h.players, playerID)
	queue := h.buzzQueue[:0]
	for _, id := range h.buzzQueue {
		if id != playerID {
			queue = append(queue, id)
		}
	}
	h.buzzQueue = queue

	for sid, s := range h.subs {
		if s.playerID == playerID {
			delete(h.subs, sid)
			s.conn.Close()
		}
	}
	log.Info().Str("module", "core.score").Str("room", string(h.name)).
		Str("player", string(playerID)).Msg("player removed")
}

// trackInfoLocked splits the "Title - Artist" naming convention for the
// point_awarded toast.
func (h *Hub) trackInfoLocked() protocol.TrackInfo {
	t, ok := h.trackByIDLocked(h.currentTrack)
	if !ok {
		return protocol.TrackInfo{}
	}
	title, artist, found := strings.Cut(t.Title, " - ")
	if !found {
		artist = "Artista desconocido"
	}
	return protocol.TrackInfo{Title: title, Artist: artist}
}
