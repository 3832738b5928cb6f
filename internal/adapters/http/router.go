// Package http wires the REST and websocket endpoints onto gin.
package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GonzaloGRomero/Una-nota/internal/adapters/ws"
	"github.com/GonzaloGRomero/Una-nota/internal/app"
	"github.com/GonzaloGRomero/Una-nota/internal/config"
)

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, dir *app.Directory) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("UnaNotaSessions", store))
	r.Use(ClientTokenMiddleware())

	rooms := &RoomController{Directory: dir}
	admin := &AdminController{Directory: dir, Auth: app.NewAdminAuth(cfg.AdminPasswordHash, cfg.AdminPassword)}
	game := ws.NewGameWSController(dir, cfg)

	r.POST("/rooms/create", rooms.Create)
	r.POST("/rooms/join", rooms.Join)
	r.GET("/rooms/check/:room", rooms.Check)
	r.POST("/rooms/:room/tracks", rooms.ImportTracks)

	r.POST("/admin/auth", admin.Authenticate)
	r.POST("/admin/rooms", admin.ListRooms)
	r.POST("/admin/rooms/close", admin.CloseRoom)
	r.POST("/admin/rooms/:room", admin.RoomInfo)
	r.POST("/admin/players/ban", admin.BanPlayer)

	api := r.Group("/api")
	api.GET("/ws", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("client", c.GetString("client_token")).Msg("ws endpoint hit")
		game.HandleGame(ctx, c)
	})

	return r
}
