// Package core owns authoritative room state. A Hub serializes every
// mutation for its room behind one mutex and fans deltas out to
// subscribers; it never touches adapter-owned resources beyond TrySend
// and Close.
package core

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GonzaloGRomero/Una-nota/internal/domain"
	"github.com/GonzaloGRomero/Una-nota/internal/protocol"
)

var (
	ErrNameInUse     = errors.New("name in use by a connected player")
	ErrNotJoined     = errors.New("session has not joined")
	ErrNotOrganizer  = errors.New("organizer role required")
	ErrUnknownPlayer = errors.New("unknown player")
	ErrUnknownTrack  = errors.New("unknown track")
	ErrUnknownAction = errors.New("unknown control action")
	ErrNotOwnBuzz    = errors.New("buzz for another player")
)

const (
	defaultPreviewShort = 2 * time.Second
	defaultPreviewLong  = 5 * time.Second
)

// Hub is the single authoritative owner of one room's mutable state.
// Hubs are independent; different rooms never share locks.
type Hub struct {
	name domain.RoomName

	mu           sync.Mutex
	tracks       []domain.Track
	trackOrder   []domain.TrackID
	currentTrack domain.TrackID // empty means no track selected
	status       domain.Status
	buzzQueue    []domain.PlayerID
	players      map[domain.PlayerID]*domain.Player
	subs         map[SessionID]*subscriber

	// preview timer state, guarded by mu; see playback.go
	previewGen   uint64
	previewTimer *time.Timer

	// overridable so tests do not wait wall-clock preview durations
	PreviewShort time.Duration
	PreviewLong  time.Duration
}

func NewHub(name domain.RoomName) *Hub {
	return &Hub{
		name:         name,
		status:       domain.StatusStopped,
		buzzQueue:    []domain.PlayerID{},
		players:      make(map[domain.PlayerID]*domain.Player),
		subs:         make(map[SessionID]*subscriber),
		PreviewShort: defaultPreviewShort,
		PreviewLong:  defaultPreviewLong,
	}
}

func (h *Hub) Name() domain.RoomName { return h.name }

// Join admits a session as a subscriber of this room. The whole handshake
// is one critical section: identity reuse check, mutation, the join delta
// to everyone, and the ack + snapshot to the joining connection.
func (h *Hub) Join(sid SessionID, conn Conn, name string, role domain.Role) (domain.Player, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	existing := h.findByIdentityLocked(name, role)
	if existing != nil && h.connectedLocked(existing.ID) {
		return domain.Player{}, ErrNameInUse
	}

	var player *domain.Player
	reused := existing != nil
	if reused {
		player = existing
	} else {
		p, err := domain.NewPlayer(name, role)
		if err != nil {
			return domain.Player{}, err
		}
		player = p
		h.players[player.ID] = player
	}

	h.subs[sid] = &subscriber{sid: sid, playerID: player.ID, role: role, conn: conn}

	delta := protocol.PlayerJoin(*player)
	if reused {
		delta = protocol.PlayerRejoin(*player)
	}
	h.broadcastLocked(delta)
	h.sendLocked(conn, protocol.JoinAck(player.ID, reused))
	h.sendLocked(conn, protocol.State(h.snapshotLocked()))

	log.Info().Str("module", "core.hub").Str("room", string(h.name)).
		Str("sid", string(sid)).Str("player", string(player.ID)).
		Bool("reused", reused).Msg("player joined")
	return *player, nil
}

// Leave drops the subscriber only. The player stays dormant with score and
// buzz-queue standing intact so the same name/role can reconnect; removal
// happens through remove_player or a ban, never through transport loss.
func (h *Hub) Leave(sid SessionID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sid]; !ok {
		return
	}
	delete(h.subs, sid)
	log.Info().Str("module", "core.hub").Str("room", string(h.name)).
		Str("sid", string(sid)).Msg("subscriber left")
}

// SetTracks replaces the track set with an imported batch: shuffle the
// browsing order once, select the first track, reset playback and buzzing.
// Subscribers get a fresh snapshot instead of a pile of deltas.
func (h *Hub) SetTracks(tracks []domain.Track) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// The track set is unique by id; a repeated id keeps its first occurrence.
	h.tracks = make([]domain.Track, 0, len(tracks))
	h.trackOrder = make([]domain.TrackID, 0, len(tracks))
	seen := make(map[domain.TrackID]struct{}, len(tracks))
	for _, t := range tracks {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		h.tracks = append(h.tracks, t)
		h.trackOrder = append(h.trackOrder, t.ID)
	}
	rand.Shuffle(len(h.trackOrder), func(i, j int) {
		h.trackOrder[i], h.trackOrder[j] = h.trackOrder[j], h.trackOrder[i]
	})
	h.currentTrack = ""
	if len(h.trackOrder) > 0 {
		h.currentTrack = h.trackOrder[0]
	}
	h.cancelPreviewLocked()
	h.status = domain.StatusStopped
	h.buzzQueue = []domain.PlayerID{}

	h.broadcastLocked(protocol.State(h.snapshotLocked()))
	log.Info().Str("module", "core.hub").Str("room", string(h.name)).
		Int("tracks", len(tracks)).Msg("tracks imported")
}

// Snapshot returns a deep copy; callers never see the authoritative state.
func (h *Hub) Snapshot() protocol.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotLocked()
}

// Stats is the directory-facing summary for room listings.
type Stats struct {
	PlayerCount    int
	SessionCount   int
	TrackCount     int
	Status         domain.Status
	CurrentTrackID *domain.TrackID
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		PlayerCount:    len(h.players),
		SessionCount:   len(h.subs),
		TrackCount:     len(h.tracks),
		Status:         h.status,
		CurrentTrackID: h.currentTrackPtrLocked(),
	}
}

// CloseAll closes every subscriber connection; used when a room is closed.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	conns := make([]Conn, 0, len(h.subs))
	for _, s := range h.subs {
		conns = append(conns, s.conn)
	}
	h.subs = make(map[SessionID]*subscriber)
	h.cancelPreviewLocked()
	h.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}

func (h *Hub) snapshotLocked() protocol.Snapshot {
	tracks := make([]domain.Track, len(h.tracks))
	copy(tracks, h.tracks)
	order := make([]domain.TrackID, len(h.trackOrder))
	copy(order, h.trackOrder)
	queue := make([]domain.PlayerID, len(h.buzzQueue))
	copy(queue, h.buzzQueue)
	players := make(map[domain.PlayerID]domain.Player, len(h.players))
	for id, p := range h.players {
		players[id] = *p
	}
	return protocol.Snapshot{
		Tracks:         tracks,
		TrackOrder:     order,
		CurrentTrackID: h.currentTrackPtrLocked(),
		Status:         h.status,
		BuzzQueue:      queue,
		Players:        players,
	}
}

func (h *Hub) currentTrackPtrLocked() *domain.TrackID {
	if h.currentTrack == "" {
		return nil
	}
	id := h.currentTrack
	return &id
}

func (h *Hub) findByIdentityLocked(name string, role domain.Role) *domain.Player {
	for _, p := range h.players {
		if p.SameIdentity(name, role) {
			return p
		}
	}
	return nil
}

func (h *Hub) connectedLocked(id domain.PlayerID) bool {
	for _, s := range h.subs {
		if s.playerID == id {
			return true
		}
	}
	return false
}

func (h *Hub) trackByIDLocked(id domain.TrackID) (domain.Track, bool) {
	for _, t := range h.tracks {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Track{}, false
}

// broadcastLocked fans one encoded frame out to every subscriber. TrySend
// never blocks; a subscriber whose buffer is full is kicked so one stalled
// client cannot stall the room.
func (h *Hub) broadcastLocked(env protocol.Envelope) {
	data, err := env.Encode()
	if err != nil {
		log.Error().Err(err).Str("module", "core.hub").Str("kind", env.Type).Msg("encode broadcast")
		return
	}
	var dropped []*subscriber
	for _, s := range h.subs {
		if err := s.conn.TrySend(Frame(data)); err != nil {
			dropped = append(dropped, s)
		}
	}
	for _, s := range dropped {
		delete(h.subs, s.sid)
		s.conn.Close()
		log.Warn().Str("module", "core.hub").Str("room", string(h.name)).
			Str("sid", string(s.sid)).Msg("kicked slow subscriber")
	}
}

func (h *Hub) sendLocked(conn Conn, env protocol.Envelope) {
	data, err := env.Encode()
	if err != nil {
		log.Error().Err(err).Str("module", "core.hub").Str("kind", env.Type).Msg("encode send")
		return
	}
	_ = conn.TrySend(Frame(data))
}

func (h *Hub) organizerLocked(sid SessionID) error {
	s, ok := h.subs[sid]
	if !ok {
		return ErrNotJoined
	}
	if s.role != domain.RoleOrganizer {
		return ErrNotOrganizer
	}
	return nil
}
