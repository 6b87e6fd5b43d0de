package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/domain"
)

type Handlers struct {
	Coord *app.Coordinator
}

// KeyRequest carries the owner credential. The original client mints keys as
// key_<random>, but any non-empty string is accepted.
type KeyRequest struct {
	APIKey string `json:"apiKey" binding:"required"`
}

func (h *Handlers) CreateRoom(c *gin.Context) {
	var req KeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "apiKey required"})
		return
	}

	key, err := h.Coord.CreateRoomWithCredential(domain.Credential(req.APIKey))
	switch {
	case errors.Is(err, domain.ErrDuplicateCredential):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "credential already owns a room"})
		return
	case err != nil:
		log.Error().Err(err).Str("module", "adapters.http").Msg("create room")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create room"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"roomKey": key,
		"message": "room created",
	})
}

func (h *Handlers) VerifyKey(c *gin.Context) {
	var req KeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "apiKey required"})
		return
	}

	key, ok := h.Coord.ResolveCredential(domain.Credential(req.APIKey))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "room not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"roomKey": key,
		"message": "room found",
	})
}

func (h *Handlers) RoomCount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   h.Coord.RoomCount(),
	})
}

func (h *Handlers) RoomMembers(c *gin.Context) {
	members, ok := h.Coord.RoomMembers(domain.RoomKey(c.Param("roomKey")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "room not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"members": members,
	})
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
