package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GonzaloGRomero/Una-nota/internal/app"
	"github.com/GonzaloGRomero/Una-nota/internal/domain"
)

type RoomController struct {
	Directory *app.Directory
}

type roomCredentials struct {
	RoomName string `json:"room_name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (ctl *RoomController) Create(c *gin.Context) {
	var req roomCredentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "El nombre de la sala y la contraseña son requeridos"})
		return
	}
	_, err := ctl.Directory.Create(req.RoomName, req.Password)
	switch {
	case errors.Is(err, app.ErrRoomExists):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "La sala ya existe"})
	case errors.Is(err, app.ErrPasswordTooShort):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "La contraseña debe tener al menos 4 caracteres"})
	case errors.Is(err, app.ErrRoomNameEmpty), errors.Is(err, app.ErrRoomNameTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Nombre de sala inválido"})
	case err != nil:
		log.Error().Err(err).Str("module", "adapters.http").Msg("create room")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error interno"})
	default:
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "Sala creada exitosamente",
			"room_name": string(app.Normalize(req.RoomName)),
		})
	}
}

// Join only validates the credential; the game session itself is
// established over the websocket.
func (ctl *RoomController) Join(c *gin.Context) {
	var req roomCredentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "El nombre de la sala y la contraseña son requeridos"})
		return
	}
	if _, err := ctl.Directory.CheckPassword(req.RoomName, req.Password); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Nombre de sala o contraseña incorrectos"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"room_name": string(app.Normalize(req.RoomName)),
	})
}

func (ctl *RoomController) Check(c *gin.Context) {
	name := c.Param("room")
	c.JSON(http.StatusOK, gin.H{
		"exists":    ctl.Directory.Exists(name),
		"room_name": name,
	})
}

type importTracksRequest struct {
	Password string         `json:"password" binding:"required"`
	Tracks   []domain.Track `json:"tracks" binding:"required"`
}

// ImportTracks is the Track Resolver hand-off: already-resolved tracks are
// stored as given, the browsing order reshuffled, and every subscriber
// resynced with a snapshot.
func (ctl *RoomController) ImportTracks(c *gin.Context) {
	var req importTracksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Lista de canciones inválida"})
		return
	}
	hub, err := ctl.Directory.CheckPassword(c.Param("room"), req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Nombre de sala o contraseña incorrectos"})
		return
	}
	seen := make(map[domain.TrackID]struct{}, len(req.Tracks))
	for _, t := range req.Tracks {
		if t.ID == "" || t.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Lista de canciones inválida"})
			return
		}
		if _, ok := seen[t.ID]; ok {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Lista de canciones inválida"})
			return
		}
		seen[t.ID] = struct{}{}
	}
	hub.SetTracks(req.Tracks)
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"tracks_count": len(req.Tracks),
	})
}
