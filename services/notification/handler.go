package notification

import (
	"net/http"
	"strconv"

	"engagehub/pkg/errutil"
	"engagehub/pkg/middleware"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	session, ok := middleware.ActorFrom(c)
	if !ok {
		c.Error(errutil.Unauthorized("missing session"))
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))

	records, err := h.service.List(c.Request.Context(), session.UserID, limit)
	if err != nil {
		c.Error(err)
		return
	}

	unread, err := h.service.UnreadCount(c.Request.Context(), session.UserID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records, "unread_count": unread})
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	session, ok := middleware.ActorFrom(c)
	if !ok {
		c.Error(errutil.Unauthorized("missing session"))
		return
	}

	if err := h.service.MarkAllRead(c.Request.Context(), session.UserID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
