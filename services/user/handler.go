package user

import (
	"net/http"
	"strconv"
	"strings"

	"engagehub/pkg/errutil"
	"engagehub/pkg/middleware"
	"engagehub/services/engagement"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type attachWalletRequest struct {
	Address string `json:"address"`
}

func (h *Handler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
		return
	}

	record, err := h.service.SignUp(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	token, err := h.service.OpenSession(c.Request.Context(), record)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": record, "token": token})
}

func (h *Handler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
		return
	}

	record, err := h.service.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	token, err := h.service.OpenSession(c.Request.Context(), record)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": record, "token": token})
}

func (h *Handler) SignOut(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")

	if err := h.service.CloseSession(c.Request.Context(), token); err != nil {
		c.Error(errutil.Internal("failed to close session", errutil.WithErr(err)))
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "signed out"})
}

func (h *Handler) Me(c *gin.Context) {
	session, ok := middleware.ActorFrom(c)
	if !ok {
		c.Error(errutil.Unauthorized("missing session"))
		return
	}

	record, err := h.service.Get(c.Request.Context(), session.UserID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": record,
		"rank": engagement.Classify(record.Streak),
	})
}

func (h *Handler) AttachWallet(c *gin.Context) {
	session, ok := middleware.ActorFrom(c)
	if !ok {
		c.Error(errutil.Unauthorized("missing session"))
		return
	}

	var req attachWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
		return
	}

	record, err := h.service.AttachWallet(c.Request.Context(), session.UserID, req.Address)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": record})
}

func (h *Handler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	records, err := h.service.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		c.Error(err)
		return
	}

	board := make([]gin.H, 0, len(records))
	for _, record := range records {
		board = append(board, gin.H{
			"id":     record.ID,
			"name":   record.Name,
			"points": record.Points,
			"streak": record.Streak,
			"rank":   engagement.Classify(record.Streak),
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": board})
}
