package http

import (
	"net/http"
	"time"

	"streamdash/internal/core/domain"
	"streamdash/internal/core/ports"
	apperrors "streamdash/pkg/errors"

	"github.com/gin-gonic/gin"
)

type ChannelHandler struct {
	channels ports.ChannelService
}

func NewChannelHandler(channels ports.ChannelService) *ChannelHandler {
	return &ChannelHandler{channels: channels}
}

// RegisterRoutes mounts the channel registry. mutationGuard is applied to
// create/update/delete when channel protection is enabled.
func (h *ChannelHandler) RegisterRoutes(rg *gin.RouterGroup, mutationGuard ...gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/test", h.TestStream)
	rg.GET("/:id/stats", h.Stats)

	mutations := rg.Group("", mutationGuard...)
	mutations.POST("", h.Create)
	mutations.PUT("/:id", h.Update)
	mutations.DELETE("/:id", h.Delete)
}

type channelRequest struct {
	Name        string               `json:"name"`
	URL         string               `json:"url"`
	Type        string               `json:"type"`
	Quality     string               `json:"quality"`
	Country     string               `json:"country"`
	Language    string               `json:"language"`
	Status      domain.ChannelStatus `json:"status"`
	Views       int                  `json:"views"`
	Logo        string               `json:"logo"`
	Description string               `json:"description"`
}

func (h *ChannelHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	filter := domain.ChannelFilter{
		Type:   c.Query("type"),
		Status: domain.ChannelStatus(c.Query("status")),
		Search: c.Query("search"),
	}

	channels, total, err := h.channels.List(c.Request.Context(), filter, page, limit)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       channels,
		"pagination": newPagination(total, page, limit),
		"timestamp":  time.Now().UTC(),
	})
}

func (h *ChannelHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.Error(apperrors.NewNotFoundError("Channel"))
		c.Abort()
		return
	}

	channel, err := h.channels.Get(c.Request.Context(), domain.ChannelID(id))
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": channel})
}

func (h *ChannelHandler) Create(c *gin.Context) {
	var req channelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError("Invalid request body"))
		c.Abort()
		return
	}

	if appErr := requireChannelFields(req); appErr != nil {
		c.Error(appErr)
		c.Abort()
		return
	}

	channel := domain.Channel{
		Name:        req.Name,
		URL:         req.URL,
		Type:        req.Type,
		Quality:     req.Quality,
		Country:     req.Country,
		Language:    req.Language,
		Status:      req.Status,
		Views:       req.Views,
		Logo:        req.Logo,
		Description: req.Description,
	}

	created, err := h.channels.Create(c.Request.Context(), channel)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Channel created successfully",
		"data":    created,
	})
}

func (h *ChannelHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.Error(apperrors.NewNotFoundError("Channel"))
		c.Abort()
		return
	}

	var patch domain.ChannelPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.Error(apperrors.NewInvalidInputError("Invalid request body"))
		c.Abort()
		return
	}

	updated, err := h.channels.Update(c.Request.Context(), domain.ChannelID(id), patch)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Channel updated successfully",
		"data":    updated,
	})
}

func (h *ChannelHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.Error(apperrors.NewNotFoundError("Channel"))
		c.Abort()
		return
	}

	removed, err := h.channels.Delete(c.Request.Context(), domain.ChannelID(id))
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Channel deleted successfully",
		"data":    removed,
	})
}

func (h *ChannelHandler) TestStream(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.Error(apperrors.NewNotFoundError("Channel"))
		c.Abort()
		return
	}

	result, err := h.channels.TestStream(c.Request.Context(), domain.ChannelID(id))
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

func (h *ChannelHandler) Stats(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.Error(apperrors.NewNotFoundError("Channel"))
		c.Abort()
		return
	}

	stats, err := h.channels.Stats(c.Request.Context(), domain.ChannelID(id))
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

func requireChannelFields(req channelRequest) *apperrors.AppError {
	var appErr *apperrors.AppError
	require := func(field, value, message string) {
		if value != "" {
			return
		}
		if appErr == nil {
			appErr = apperrors.NewInvalidInputError("Validation failed")
		}
		appErr.WithField(field, message)
	}

	require("name", req.Name, "Channel name is required")
	require("url", req.URL, "Channel URL is required")
	require("type", req.Type, "Channel type is required")
	require("quality", req.Quality, "Channel quality is required")
	return appErr
}
