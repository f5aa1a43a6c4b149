package submission

import (
	"net/http"
	"strings"

	"engagehub/pkg/errutil"
	"engagehub/pkg/middleware"
	"engagehub/pkg/storage"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	bucket  *storage.Bucket
}

func NewHandler(service *Service, bucket *storage.Bucket) *Handler {
	return &Handler{service: service, bucket: bucket}
}

type moderateRequest struct {
	Decision string `json:"decision"`
}

func (h *Handler) Create(c *gin.Context) {
	session, ok := middleware.ActorFrom(c)
	if !ok {
		c.Error(errutil.Unauthorized("missing session"))
		return
	}

	campaignID := c.Param("id")

	var req CreateRequest
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		parsed, err := h.parseMultipart(c, campaignID)
		if err != nil {
			c.Error(err)
			return
		}
		req = *parsed
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
		return
	}

	record, err := h.service.Create(c.Request.Context(), session.UserID, campaignID, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"submission": record})
}

// parseMultipart reads the form fields and, when a file is attached,
// uploads it before the submission row exists. An orphaned object from
// a failed create is acceptable.
func (h *Handler) parseMultipart(c *gin.Context, campaignID string) (*CreateRequest, error) {
	req := &CreateRequest{
		Content: c.PostForm("content"),
		Links: SocialLinks{
			Instagram: c.PostForm("instagram"),
			TikTok:    c.PostForm("tiktok"),
			YouTube:   c.PostForm("youtube"),
			Twitter:   c.PostForm("twitter"),
			Facebook:  c.PostForm("facebook"),
		},
	}

	file, err := c.FormFile("attachment")
	if err != nil {
		return req, nil
	}

	if h.bucket == nil {
		return nil, errutil.FailedPrecondition("attachment storage is not configured")
	}

	src, err := file.Open()
	if err != nil {
		return nil, errutil.BadRequest("failed to read attachment", errutil.WithErr(err))
	}
	defer src.Close()

	url, err := h.bucket.UploadAttachment(
		c.Request.Context(),
		campaignID,
		file.Filename,
		src,
		file.Size,
		file.Header.Get("Content-Type"),
	)
	if err != nil {
		return nil, errutil.Internal("failed to upload attachment", errutil.WithErr(err))
	}

	req.AttachmentURL = url
	return req, nil
}

func (h *Handler) Moderate(c *gin.Context) {
	session, ok := middleware.ActorFrom(c)
	if !ok {
		c.Error(errutil.Unauthorized("missing session"))
		return
	}

	var req moderateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
		return
	}

	record, err := h.service.Moderate(c.Request.Context(), session.UserID, c.Param("id"), req.Decision)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"submission": record})
}

func (h *Handler) ListByUser(c *gin.Context) {
	session, ok := middleware.ActorFrom(c)
	if !ok {
		c.Error(errutil.Unauthorized("missing session"))
		return
	}

	records, err := h.service.ListByUser(c.Request.Context(), session.UserID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (h *Handler) ListForBrand(c *gin.Context) {
	session, ok := middleware.ActorFrom(c)
	if !ok {
		c.Error(errutil.Unauthorized("missing session"))
		return
	}

	records, err := h.service.ListForBrand(c.Request.Context(), session.UserID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records})
}
