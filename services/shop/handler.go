package shop

import (
	"net/http"

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

func (h *Handler) Packages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": Packages()})
}

func (h *Handler) Settle(c *gin.Context) {
	session, ok := middleware.ActorFrom(c)
	if !ok {
		c.Error(errutil.Unauthorized("missing session"))
		return
	}

	var req SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
		return
	}

	record, err := h.service.Settle(c.Request.Context(), session.UserID, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": record})
}
