package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Ladinawan-01/LiveChat/internal/history"
	"github.com/Ladinawan-01/LiveChat/internal/presence"
	"github.com/Ladinawan-01/LiveChat/internal/rooms"
	"github.com/Ladinawan-01/LiveChat/internal/store"
	"github.com/Ladinawan-01/LiveChat/internal/typing"
	"github.com/Ladinawan-01/LiveChat/pkg/log"
)

// HTTPHandler serves the read-only REST surface: room list, online users,
// typing users, and conversation history.
type HTTPHandler struct {
	rooms    *rooms.Directory
	presence *presence.Tracker
	typing   *typing.Tracker
	history  *history.Service
}

func NewHTTPHandler(d *rooms.Directory, p *presence.Tracker, t *typing.Tracker, h *history.Service) *HTTPHandler {
	return &HTTPHandler{
		rooms:    d,
		presence: p,
		typing:   t,
		history:  h,
	}
}

// RegisterRoutes mounts the API on the router.
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.healthCheck)

	api := r.Group("/api")
	{
		api.GET("/rooms", h.listRooms)
		api.GET("/users/online", h.listOnline)
		api.GET("/typing", h.listTyping)
		api.GET("/messages", h.getMessages)
	}
}

func (h *HTTPHandler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HTTPHandler) listRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"rooms":   h.rooms.ListRooms(),
	})
}

func (h *HTTPHandler) listOnline(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   h.presence.ListOnline(),
	})
}

func (h *HTTPHandler) listTyping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"typingUsers": h.typing.ListTyping(),
	})
}

// getMessages serves one history page. Query params: room, or sender and
// receiver for a direct thread; limit (max 100) and page (1-based).
func (h *HTTPHandler) getMessages(c *gin.Context) {
	room := c.Query("room")
	sender := c.Query("sender")
	receiver := c.Query("receiver")

	if room == "" && (sender == "" || receiver == "") {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "room, or sender and receiver, is required",
		})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(store.DefaultHistoryLimit)))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	q := store.HistoryQuery{
		Room:     room,
		Sender:   sender,
		Receiver: receiver,
		Limit:    limit,
	}
	q.Normalize()
	q.Offset = (page - 1) * q.Limit

	pageResult, err := h.history.GetHistory(c.Request.Context(), q)
	if err != nil {
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("failed to load history")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to fetch messages",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"messages": pageResult.Messages,
		"pagination": gin.H{
			"page":    page,
			"limit":   q.Limit,
			"hasMore": pageResult.HasMore,
		},
	})
}
