package ws

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/GonzaloGRomero/Una-nota/internal/app"
	"github.com/GonzaloGRomero/Una-nota/internal/config"
	"github.com/GonzaloGRomero/Una-nota/internal/core"
	"github.com/GonzaloGRomero/Una-nota/internal/domain"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type GameWSController struct {
	Directory *app.Directory
	Cfg       *config.Config
}

func NewGameWSController(dir *app.Directory, cfg *config.Config) *GameWSController {
	return &GameWSController{Directory: dir, Cfg: cfg}
}

// session is one connection's join state. hub and playerID are set exactly
// once, by a successful join.
type session struct {
	sid      core.SessionID
	conn     *gameConn
	hub      *core.Hub
	playerID domain.PlayerID
}

func (s *session) joined() bool { return s.hub != nil }

// HandleGame upgrades the connection and runs the pumps. One session per
// socket; the cookie token only identifies the browser in logs, a browser
// may hold several tabs.
func (ctl *GameWSController) HandleGame(ctx context.Context, c *gin.Context) {
	token := c.GetString("client_token")
	sid := core.SessionID(uuid.NewString())
	log.Info().Str("module", "ws").Str("sid", string(sid)).Str("client", token).Msg("new game connection")

	wsConn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("upgrade failed")
		return
	}
	if ctl.Cfg.ReadLimit > 0 {
		wsConn.SetReadLimit(ctl.Cfg.ReadLimit)
	}

	conn := newGameConn(wsConn, ctl.Cfg.SendBuffer)
	sess := &session{sid: sid, conn: conn}
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		defer cancel()
		ctl.writePump(ctx, conn)
	}()
	go func() {
		defer cancel()
		ctl.readPump(ctx, sess)
	}()
}
