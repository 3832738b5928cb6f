package ws

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeTimeout = 5 * time.Second

func (ctl *GameWSController) writePump(ctx context.Context, c *gameConn) {
	ping := time.NewTicker(ctl.pingPeriod())
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				log.Debug().Err(err).Str("module", "ws").Msg("ping failed")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *GameWSController) readPump(ctx context.Context, sess *session) {
	defer func() {
		// Transport loss is not an error: the player stays dormant in the
		// hub, only the subscription ends.
		if sess.joined() {
			sess.hub.Leave(sess.sid)
		}
		sess.conn.Close()
		log.Info().Str("module", "ws").Str("sid", string(sess.sid)).Msg("readPump closing")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := sess.conn.conn.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Str("module", "ws").Str("sid", string(sess.sid)).Msg("read error")
				return
			}
			ctl.handleMessage(sess, data)
		}
	}
}

func (ctl *GameWSController) pingPeriod() time.Duration {
	if ctl.Cfg.PingPeriod > 0 {
		return ctl.Cfg.PingPeriod
	}
	return 54 * time.Second
}
