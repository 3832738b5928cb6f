package protocol

import (
	"encoding/json"

	"github.com/GonzaloGRomero/Una-nota/internal/domain"
)

// Outbound message kinds (hub -> client).
const (
	KindJoinAck      = "join_ack"
	KindJoinError    = "join_error"
	KindError        = "error"
	KindState        = "state"
	KindPlayerJoin   = "player_join"
	KindPlayerRejoin = "player_rejoin"
	KindPlayerLeave  = "player_leave"
	KindPlayerBanned = "player_banned"
	KindBuzzer       = "buzzer"
	KindScores       = "scores"
	KindTrackChanged = "track_changed"
	KindPointAwarded = "point_awarded"
)

// Envelope frames every outbound message.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// RawEnvelope is the receiving side of Envelope: the payload stays raw until
// the kind is known.
type RawEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func DecodeEnvelope(data []byte) (RawEnvelope, error) {
	var env RawEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return RawEnvelope{}, err
	}
	return env, nil
}

// Snapshot is the full serialized room state sent once at join time and
// after bulk changes. Field names are the wire format; do not rename.
type Snapshot struct {
	Tracks         []domain.Track                    `json:"tracks"`
	TrackOrder     []domain.TrackID                  `json:"track_order"`
	CurrentTrackID *domain.TrackID                   `json:"current_track_id"`
	Status         domain.Status                     `json:"status"`
	BuzzQueue      []domain.PlayerID                 `json:"buzz_queue"`
	Players        map[domain.PlayerID]domain.Player `json:"players"`
}

type JoinAckPayload struct {
	PlayerID domain.PlayerID `json:"playerId"`
	IsReused bool            `json:"isReused"`
}

type MessagePayload struct {
	Message string `json:"message"`
}

type PlayerLeavePayload struct {
	PlayerID domain.PlayerID `json:"playerId"`
}

type PlayerBannedPayload struct {
	PlayerID   domain.PlayerID `json:"playerId"`
	PlayerName string          `json:"playerName"`
}

type BuzzerPayload struct {
	Queue []domain.PlayerID `json:"queue"`
}

type ControlPayload struct {
	Status domain.Status `json:"status"`
}

type ScoresPayload struct {
	Players map[domain.PlayerID]domain.Player `json:"players"`
}

type TrackChangedPayload struct {
	CurrentTrackID *domain.TrackID `json:"currentTrackId"`
}

type TrackInfo struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

type PointAwardedPayload struct {
	PlayerID   domain.PlayerID `json:"playerId"`
	PlayerName string          `json:"playerName"`
	Points     int             `json:"points"`
	Track      TrackInfo       `json:"track"`
}

func JoinAck(id domain.PlayerID, reused bool) Envelope {
	return Envelope{KindJoinAck, JoinAckPayload{PlayerID: id, IsReused: reused}}
}

func JoinError(message string) Envelope {
	return Envelope{KindJoinError, MessagePayload{Message: message}}
}

func ErrorMessage(message string) Envelope {
	return Envelope{KindError, MessagePayload{Message: message}}
}

func State(s Snapshot) Envelope {
	return Envelope{KindState, s}
}

func PlayerJoin(p domain.Player) Envelope {
	return Envelope{KindPlayerJoin, p}
}

func PlayerRejoin(p domain.Player) Envelope {
	return Envelope{KindPlayerRejoin, p}
}

func PlayerLeave(id domain.PlayerID) Envelope {
	return Envelope{KindPlayerLeave, PlayerLeavePayload{PlayerID: id}}
}

func PlayerBanned(id domain.PlayerID, name string) Envelope {
	return Envelope{KindPlayerBanned, PlayerBannedPayload{PlayerID: id, PlayerName: name}}
}

func Buzzer(queue []domain.PlayerID) Envelope {
	return Envelope{KindBuzzer, BuzzerPayload{Queue: queue}}
}

func ControlStatus(s domain.Status) Envelope {
	return Envelope{KindControl, ControlPayload{Status: s}}
}

func Scores(players map[domain.PlayerID]domain.Player) Envelope {
	return Envelope{KindScores, ScoresPayload{Players: players}}
}

func TrackChanged(id *domain.TrackID) Envelope {
	return Envelope{KindTrackChanged, TrackChangedPayload{CurrentTrackID: id}}
}

func PointAwarded(id domain.PlayerID, name string, points int, track TrackInfo) Envelope {
	return Envelope{KindPointAwarded, PointAwardedPayload{
		PlayerID:   id,
		PlayerName: name,
		Points:     points,
		Track:      track,
	}}
}
