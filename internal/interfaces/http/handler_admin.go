// Package http exposes the operator API: login, bot status, pending
// scheduled broadcasts and settings. Everything except login sits behind JWT
// auth.
package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"rolebot/internal/repository"
	"rolebot/internal/usecases"
)

type AdminHandler struct {
	auth      *usecases.AuthUsecase
	settings  *usecases.SettingsManager
	chats     *repository.ChatRepository
	schedules *repository.ScheduleRepository
}

func NewAdminHandler(
	auth *usecases.AuthUsecase,
	settings *usecases.SettingsManager,
	chats *repository.ChatRepository,
	schedules *repository.ScheduleRepository,
) *AdminHandler {
	return &AdminHandler{auth: auth, settings: settings, chats: chats, schedules: schedules}
}

func SetupRoutes(r *gin.Engine, h *AdminHandler, m *Middleware) {
	r.POST("/api/login", m.RateLimit(rate.Limit(1), 5), h.Login)

	api := r.Group("/api", m.AuthRequired(), m.RateLimit(rate.Limit(10), 20))
	{
		api.GET("/status", h.Status)
		api.GET("/scheduled", h.ListScheduled)
		api.DELETE("/scheduled/:id", h.CancelScheduled)
		api.GET("/settings", h.ShowSettings)
		api.PUT("/settings/:key", h.UpdateSetting)
	}
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}

	token, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *AdminHandler) Status(c *gin.Context) {
	chatCount, err := h.chats.CountChats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}
	pending, err := h.schedules.Pending()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"chats":              chatCount,
		"pending_broadcasts": len(pending),
	})
}

func (h *AdminHandler) ListScheduled(c *gin.Context) {
	pending, err := h.schedules.Pending()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"scheduled": pending})
}

func (h *AdminHandler) CancelScheduled(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.schedules.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": id})
}

func (h *AdminHandler) ShowSettings(c *gin.Context) {
	all, err := h.settings.All()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}
	c.JSON(http.StatusOK, all)
}

func (h *AdminHandler) UpdateSetting(c *gin.Context) {
	var req struct {
		Value string `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value required"})
		return
	}

	ok, err := h.settings.Set(c.Param("key"), req.Value)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown setting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{c.Param("key"): req.Value})
}
