package ws

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/GonzaloGRomero/Una-nota/internal/core"
	"github.com/GonzaloGRomero/Una-nota/internal/domain"
	"github.com/GonzaloGRomero/Una-nota/internal/protocol"
)

// User-facing messages are Spanish; the frontend shows them verbatim.
const (
	msgRoomRequired  = "Nombre de sala requerido"
	msgBadRoom       = "Nombre de sala o contraseña incorrectos"
	msgNameInUse     = "Este nombre ya está en uso por un jugador conectado. Por favor elige otro nombre."
	msgBadName       = "Nombre de jugador inválido"
	msgJoinFirst     = "Debes unirte a una sala primero"
	msgNotAuthorized = "Solo el organizador puede realizar esta acción"
	msgNotOwnBuzz    = "Solo puedes pulsar el botón por ti mismo"
)

// handleMessage decodes and dispatches one frame. Malformed and unknown
// messages are dropped fail-silent; they never reach other subscribers.
func (ctl *GameWSController) handleMessage(sess *session, data []byte) {
	msg, err := protocol.Decode(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "ws").Str("sid", string(sess.sid)).Msg("dropping message")
		return
	}

	if m, ok := msg.(protocol.Join); ok {
		ctl.handleJoin(sess, m)
		return
	}
	if !sess.joined() {
		ctl.reply(sess, protocol.ErrorMessage(msgJoinFirst))
		return
	}

	switch m := msg.(type) {
	case protocol.Buzz:
		_, err = sess.hub.Buzz(sess.sid, domain.PlayerID(m.PlayerID))
	case protocol.Control:
		err = sess.hub.SetControl(sess.sid, domain.ControlAction(m.Action))
	case protocol.SetWinner:
		err = sess.hub.SetWinner(sess.sid, domain.PlayerID(m.PlayerID))
	case protocol.AdjustScore:
		err = sess.hub.AdjustScore(sess.sid, domain.PlayerID(m.PlayerID), m.Points)
	case protocol.NextTrack:
		err = sess.hub.NextTrack(sess.sid)
	case protocol.SelectTrack:
		err = sess.hub.SelectTrack(sess.sid, domain.TrackID(m.TrackID))
	case protocol.RemovePlayer:
		err = sess.hub.RemovePlayer(sess.sid, domain.PlayerID(m.PlayerID))
	}
	if err != nil {
		ctl.rejectMutation(sess, err)
	}
}

// handleJoin runs the handshake. The directory check and the hub admission
// are each atomic; a failure leaves no partial state behind and closes the
// connection, which the client treats as terminal.
func (ctl *GameWSController) handleJoin(sess *session, m protocol.Join) {
	if sess.joined() {
		// A live session is bound to exactly one room for its lifetime.
		ctl.reply(sess, protocol.ErrorMessage(msgJoinFirst))
		return
	}
	if m.RoomName == "" {
		ctl.failJoin(sess, msgRoomRequired)
		return
	}
	// Anything that is not a valid role joins as a plain player.
	role := domain.RolePlayer
	if r, err := domain.ParseRole(m.Role); err == nil {
		role = r
	}

	hub, err := ctl.Directory.CheckPassword(m.RoomName, m.Password)
	if err != nil {
		log.Info().Err(err).Str("module", "ws").Str("sid", string(sess.sid)).
			Str("room", m.RoomName).Msg("join rejected")
		ctl.failJoin(sess, msgBadRoom)
		return
	}

	player, err := hub.Join(sess.sid, sess.conn, m.Name, role)
	switch {
	case errors.Is(err, core.ErrNameInUse):
		ctl.failJoin(sess, msgNameInUse)
		return
	case errors.Is(err, domain.ErrNameEmpty), errors.Is(err, domain.ErrNameTooLong):
		ctl.failJoin(sess, msgBadName)
		return
	case err != nil:
		log.Error().Err(err).Str("module", "ws").Str("sid", string(sess.sid)).Msg("join failed")
		ctl.failJoin(sess, msgBadRoom)
		return
	}

	sess.hub = hub
	sess.playerID = player.ID
	log.Info().Str("module", "ws").Str("sid", string(sess.sid)).
		Str("room", string(hub.Name())).Str("player", string(player.ID)).
		Str("role", string(role)).Msg("join completed")
}

// rejectMutation maps hub errors to the explicit rejection the protocol
// promises: no mutation happened, the caller alone hears about it.
func (ctl *GameWSController) rejectMutation(sess *session, err error) {
	switch {
	case errors.Is(err, core.ErrNotOwnBuzz):
		ctl.reply(sess, protocol.ErrorMessage(msgNotOwnBuzz))
	case errors.Is(err, core.ErrNotOrganizer):
		ctl.reply(sess, protocol.ErrorMessage(msgNotAuthorized))
	case errors.Is(err, core.ErrNotJoined):
		ctl.reply(sess, protocol.ErrorMessage(msgJoinFirst))
	default:
		// unknown player/track/action: stale client view, drop quietly
		log.Debug().Err(err).Str("module", "ws").Str("sid", string(sess.sid)).Msg("mutation rejected")
	}
}

func (ctl *GameWSController) failJoin(sess *session, message string) {
	ctl.reply(sess, protocol.JoinError(message))
	sess.conn.Close()
}

func (ctl *GameWSController) reply(sess *session, env protocol.Envelope) {
	data, err := env.Encode()
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("encode reply")
		return
	}
	_ = sess.conn.TrySend(core.Frame(data))
}
