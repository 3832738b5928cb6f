package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GonzaloGRomero/Una-nota/internal/domain"
	"github.com/GonzaloGRomero/Una-nota/internal/protocol"
)

// ErrJoinRejected wraps the hub's join_error message. It is terminal: the
// client does not retry a refused join.
var ErrJoinRejected = errors.New("join rejected")

const defaultBackoff = 3 * time.Second

// Options fixes the identity the client presents on every (re)connect.
type Options struct {
	URL      string // full ws endpoint, e.g. ws://localhost:8000/api/ws
	Name     string
	Role     string
	RoomName string
	Password string
	Backoff  time.Duration // delay between reconnect attempts; 0 means 3s
}

// Client maintains a live mirror of one room. Run dials, joins and replays
// the message stream into the mirror; on transport loss it redials with the
// same identity so the hub hands back the existing player. State and
// PlayerID are safe from any goroutine.
type Client struct {
	opts Options
	log  zerolog.Logger

	writeMu sync.Mutex
	conn    *websocket.Conn

	mu       sync.RWMutex
	state    *protocol.Snapshot
	playerID domain.PlayerID
	reused   bool

	// OnUpdate, when set before Run, fires after every applied message.
	OnUpdate func()
}

func New(opts Options) *Client {
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}
	return &Client{
		opts: opts,
		log:  log.With().Str("module", "client").Str("room", opts.RoomName).Logger(),
	}
}

// Run blocks until ctx is cancelled or the join is rejected. Transport
// errors are not returned; they trigger a reconnect after the backoff.
func (c *Client) Run(ctx context.Context) error {
	for {
		err := c.session(ctx)
		switch {
		case errors.Is(err, ErrJoinRejected):
			return err
		case ctx.Err() != nil:
			return ctx.Err()
		}
		c.log.Warn().Err(err).Dur("backoff", c.opts.Backoff).Msg("connection lost, reconnecting")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.opts.Backoff):
		}
	}
}

// session runs one dial-join-read cycle and returns why it ended.
func (c *Client) session(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.opts.URL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	c.setConn(conn)
	defer func() {
		c.setConn(nil)
		conn.Close()
	}()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	join := protocol.Join{
		Type:     protocol.KindJoin,
		Name:     c.opts.Name,
		Role:     c.opts.Role,
		RoomName: c.opts.RoomName,
		Password: c.opts.Password,
	}
	if err := c.write(join); err != nil {
		return fmt.Errorf("join: %w", err)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		env, err := protocol.DecodeEnvelope(data)
		if err != nil {
			c.log.Warn().Err(err).Msg("dropping malformed frame")
			continue
		}
		if err := c.handle(env); err != nil {
			return err
		}
	}
}

func (c *Client) handle(env protocol.RawEnvelope) error {
	switch env.Type {
	case protocol.KindJoinAck:
		var ack protocol.JoinAckPayload
		if err := json.Unmarshal(env.Payload, &ack); err != nil {
			return fmt.Errorf("join_ack: %w", err)
		}
		c.mu.Lock()
		c.playerID = ack.PlayerID
		c.reused = ack.IsReused
		c.mu.Unlock()
		c.log.Info().Str("player_id", string(ack.PlayerID)).Bool("reused", ack.IsReused).Msg("joined")

	case protocol.KindJoinError:
		var msg protocol.MessagePayload
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			return fmt.Errorf("join_error: %w", err)
		}
		return fmt.Errorf("%w: %s", ErrJoinRejected, msg.Message)

	case protocol.KindError:
		var msg protocol.MessagePayload
		if err := json.Unmarshal(env.Payload, &msg); err == nil {
			c.log.Warn().Str("message", msg.Message).Msg("rejected by hub")
		}

	default:
		c.mu.Lock()
		next, err := Apply(c.state, env)
		if err == nil {
			c.state = next
		}
		c.mu.Unlock()
		if err != nil {
			c.log.Warn().Err(err).Msg("dropping delta")
			return nil
		}
	}

	if c.OnUpdate != nil {
		c.OnUpdate()
	}
	return nil
}

// State returns a copy of the mirror, or nil before the first snapshot.
func (c *Client) State() *protocol.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state == nil {
		return nil
	}
	return clone(c.state)
}

// PlayerID is empty until join_ack arrives.
func (c *Client) PlayerID() domain.PlayerID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// Reused reports whether the last join resumed an existing player.
func (c *Client) Reused() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reused
}

// Buzz claims a spot in the buzz queue for this client's player.
func (c *Client) Buzz() error {
	return c.write(protocol.Buzz{Type: protocol.KindBuzz, PlayerID: string(c.PlayerID())})
}

// Control issues a playback action (organizer only).
func (c *Client) Control(action string) error {
	return c.write(protocol.Control{Type: protocol.KindControl, Action: action})
}

// SetWinner awards a point to the given player (organizer only).
func (c *Client) SetWinner(id domain.PlayerID) error {
	return c.write(protocol.SetWinner{Type: protocol.KindSetWinner, PlayerID: string(id)})
}

// AdjustScore applies a signed score correction (organizer only).
func (c *Client) AdjustScore(id domain.PlayerID, points int) error {
	return c.write(protocol.AdjustScore{Type: protocol.KindAdjustScore, PlayerID: string(id), Points: points})
}

// NextTrack advances the room to the next track (organizer only).
func (c *Client) NextTrack() error {
	return c.write(protocol.NextTrack{Type: protocol.KindNextTrack})
}

// SelectTrack jumps to a specific track (organizer only).
func (c *Client) SelectTrack(id domain.TrackID) error {
	return c.write(protocol.SelectTrack{Type: protocol.KindSelectTrack, TrackID: string(id)})
}

// RemovePlayer expels a player from the room (organizer only).
func (c *Client) RemovePlayer(id domain.PlayerID) error {
	return c.write(protocol.RemovePlayer{Type: protocol.KindRemovePlayer, PlayerID: string(id)})
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.writeMu.Lock()
	c.conn = conn
	c.writeMu.Unlock()
}

func (c *Client) write(msg protocol.Inbound) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.conn == nil {
		return errors.New("not connected")
	}
	return c.conn.WriteJSON(msg)
}
