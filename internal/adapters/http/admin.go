package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GonzaloGRomero/Una-nota/internal/app"
	"github.com/GonzaloGRomero/Una-nota/internal/core"
	"github.com/GonzaloGRomero/Una-nota/internal/domain"
)

// AdminController is the privileged surface. Everything it mutates goes
// through the same per-room serialized path as the game socket.
type AdminController struct {
	Directory *app.Directory
	Auth      app.AdminAuth
}

type adminRequest struct {
	AdminPassword string `json:"admin_password" binding:"required"`
}

type closeRoomRequest struct {
	RoomName      string `json:"room_name" binding:"required"`
	AdminPassword string `json:"admin_password" binding:"required"`
}

type banPlayerRequest struct {
	RoomName      string `json:"room_name" binding:"required"`
	PlayerID      string `json:"player_id" binding:"required"`
	AdminPassword string `json:"admin_password" binding:"required"`
}

func (ctl *AdminController) unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"detail": "Contraseña de administrador incorrecta"})
}

func (ctl *AdminController) Authenticate(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !ctl.Auth.Verify(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Contraseña incorrecta"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}

func (ctl *AdminController) ListRooms(c *gin.Context) {
	var req adminRequest
	if err := c.ShouldBindJSON(&req); err != nil || !ctl.Auth.Verify(req.AdminPassword) {
		ctl.unauthorized(c)
		return
	}
	rooms := ctl.Directory.List()
	c.JSON(http.StatusOK, gin.H{"rooms": rooms, "total": len(rooms)})
}

func (ctl *AdminController) RoomInfo(c *gin.Context) {
	var req adminRequest
	if err := c.ShouldBindJSON(&req); err != nil || !ctl.Auth.Verify(req.AdminPassword) {
		ctl.unauthorized(c)
		return
	}
	detail, err := ctl.Directory.Info(c.Param("room"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Sala no encontrada"})
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (ctl *AdminController) CloseRoom(c *gin.Context) {
	var req closeRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil || !ctl.Auth.Verify(req.AdminPassword) {
		ctl.unauthorized(c)
		return
	}
	if err := ctl.Directory.Close(req.RoomName); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Sala no encontrada"})
		return
	}
	log.Info().Str("module", "adapters.http").Str("room", req.RoomName).Msg("room closed by admin")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (ctl *AdminController) BanPlayer(c *gin.Context) {
	var req banPlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil || !ctl.Auth.Verify(req.AdminPassword) {
		ctl.unauthorized(c)
		return
	}
	hub, ok := ctl.Directory.Resolve(req.RoomName)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Sala no encontrada"})
		return
	}
	name, err := hub.BanPlayer(domain.PlayerID(req.PlayerID))
	if errors.Is(err, core.ErrUnknownPlayer) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Jugador no encontrado en la sala"})
		return
	}
	log.Info().Str("module", "adapters.http").Str("room", req.RoomName).
		Str("player", req.PlayerID).Msg("player banned by admin")
	c.JSON(http.StatusOK, gin.H{"success": true, "player_name": name})
}
