// Package app holds the process-level managers behind the adapters.
package app

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/GonzaloGRomero/Una-nota/internal/core"
	"github.com/GonzaloGRomero/Una-nota/internal/domain"
)

const minPasswordLen = 4

var (
	ErrRoomExists       = errors.New("room already exists")
	ErrRoomNotFound     = errors.New("room not found")
	ErrBadPassword      = errors.New("wrong password")
	ErrRoomNameEmpty    = errors.New("room name empty")
	ErrRoomNameTooLong  = errors.New("room name too long")
	ErrPasswordTooShort = errors.New("password too short")
)

type roomEntry struct {
	hash      []byte
	hub       *core.Hub
	createdAt time.Time
}

// Directory owns the room registry: explicit create/lookup/close lifecycle,
// one independently addressable Hub per room name.
type Directory struct {
	mu    sync.RWMutex
	rooms map[domain.RoomName]*roomEntry
}

func NewDirectory() *Directory {
	return &Directory{rooms: make(map[domain.RoomName]*roomEntry)}
}

// Normalize is how every external room name reaches the registry: trimmed
// and lowercased, so "Sala" and "sala" are the same room.
func Normalize(name string) domain.RoomName {
	return domain.RoomName(strings.ToLower(strings.TrimSpace(name)))
}

func (d *Directory) Create(name, password string) (*core.Hub, error) {
	n := Normalize(name)
	if n == "" {
		return nil, ErrRoomNameEmpty
	}
	if len(n) > domain.MaxRoomNameLen {
		return nil, ErrRoomNameTooLong
	}
	if len(password) < minPasswordLen {
		return nil, ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.rooms[n]; ok {
		return nil, ErrRoomExists
	}
	hub := core.NewHub(n)
	d.rooms[n] = &roomEntry{hash: hash, hub: hub, createdAt: time.Now()}
	log.Info().Str("module", "app.directory").Str("room", string(n)).Msg("room created")
	return hub, nil
}

func (d *Directory) Resolve(name string) (*core.Hub, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.rooms[Normalize(name)]
	if !ok {
		return nil, false
	}
	return e.hub, true
}

func (d *Directory) Exists(name string) bool {
	_, ok := d.Resolve(name)
	return ok
}

// CheckPassword is the single atomic join precondition: room must resolve
// and the credential must match, or no hub is handed out.
func (d *Directory) CheckPassword(name, password string) (*core.Hub, error) {
	d.mu.RLock()
	e, ok := d.rooms[Normalize(name)]
	d.mu.RUnlock()
	if !ok {
		return nil, ErrRoomNotFound
	}
	if bcrypt.CompareHashAndPassword(e.hash, []byte(password)) != nil {
		return nil, ErrBadPassword
	}
	return e.hub, nil
}

// Close evicts every subscriber and deletes the room. Reconnecting clients
// then hit room-not-found, which is terminal for them.
func (d *Directory) Close(name string) error {
	n := Normalize(name)
	d.mu.Lock()
	e, ok := d.rooms[n]
	if ok {
		delete(d.rooms, n)
	}
	d.mu.Unlock()
	if !ok {
		return ErrRoomNotFound
	}
	e.hub.CloseAll()
	log.Info().Str("module", "app.directory").Str("room", string(n)).Msg("room closed")
	return nil
}

// RoomInfo is the admin listing row.
type RoomInfo struct {
	Name           domain.RoomName `json:"name"`
	CreatedAt      time.Time       `json:"created_at"`
	PlayerCount    int             `json:"player_count"`
	TrackCount     int             `json:"track_count"`
	CurrentTrackID *domain.TrackID `json:"current_track_id"`
	Status         domain.Status   `json:"status"`
}

func (d *Directory) List() []RoomInfo {
	d.mu.RLock()
	entries := make(map[domain.RoomName]*roomEntry, len(d.rooms))
	for n, e := range d.rooms {
		entries[n] = e
	}
	d.mu.RUnlock()

	out := make([]RoomInfo, 0, len(entries))
	for n, e := range entries {
		st := e.hub.Stats()
		out = append(out, RoomInfo{
			Name:           n,
			CreatedAt:      e.createdAt,
			PlayerCount:    st.PlayerCount,
			TrackCount:     st.TrackCount,
			CurrentTrackID: st.CurrentTrackID,
			Status:         st.Status,
		})
	}
	return out
}

// RoomDetail is the admin per-room view: listing row plus the snapshot.
type RoomDetail struct {
	RoomInfo
	Players   map[domain.PlayerID]domain.Player `json:"players"`
	Tracks    []domain.Track                    `json:"tracks"`
	BuzzQueue []domain.PlayerID                 `json:"buzz_queue"`
}

func (d *Directory) Info(name string) (RoomDetail, error) {
	d.mu.RLock()
	e, ok := d.rooms[Normalize(name)]
	d.mu.RUnlock()
	if !ok {
		return RoomDetail{}, ErrRoomNotFound
	}
	snap := e.hub.Snapshot()
	return RoomDetail{
		RoomInfo: RoomInfo{
			Name:           e.hub.Name(),
			CreatedAt:      e.createdAt,
			PlayerCount:    len(snap.Players),
			TrackCount:     len(snap.Tracks),
			CurrentTrackID: snap.CurrentTrackID,
			Status:         snap.Status,
		},
		Players:   snap.Players,
		Tracks:    snap.Tracks,
		BuzzQueue: snap.BuzzQueue,
	}, nil
}
