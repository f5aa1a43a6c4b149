package campaign

import (
	"net/http"

	"engagehub/pkg/db/pagination"
	"engagehub/pkg/errutil"
	"engagehub/pkg/middleware"
	"engagehub/services/user"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	users   *user.Service
}

func NewHandler(service *Service, users *user.Service) *Handler {
	return &Handler{service: service, users: users}
}

func (h *Handler) Create(c *gin.Context) {
	session, ok := middleware.ActorFrom(c)
	if !ok {
		c.Error(errutil.Unauthorized("missing session"))
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
		return
	}

	brand, err := h.users.Get(c.Request.Context(), session.UserID)
	if err != nil {
		c.Error(err)
		return
	}

	record, err := h.service.Create(c.Request.Context(), brand.ID, brand.Name, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"campaign": record})
}

func (h *Handler) Get(c *gin.Context) {
	record, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"campaign": record})
}

func (h *Handler) ListActive(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		c.Error(errutil.BadRequest("invalid query", errutil.WithErr(err)))
		return
	}

	records, info, err := h.service.ListActive(c.Request.Context(), page.Cursor, page.Limit)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records, "page_info": info})
}

func (h *Handler) ListByBrand(c *gin.Context) {
	session, ok := middleware.ActorFrom(c)
	if !ok {
		c.Error(errutil.Unauthorized("missing session"))
		return
	}

	records, err := h.service.ListByBrand(c.Request.Context(), session.UserID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (h *Handler) Close(c *gin.Context) {
	session, ok := middleware.ActorFrom(c)
	if !ok {
		c.Error(errutil.Unauthorized("missing session"))
		return
	}

	record, err := h.service.Close(c.Request.Context(), session.UserID, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"campaign": record})
}
