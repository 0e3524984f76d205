package attachment

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/medivault/api/internal/handler"
	"github.com/medivault/api/internal/middleware"
	attachmentsvc "github.com/medivault/api/internal/service/attachment"
	recordsvc "github.com/medivault/api/internal/service/record"
)

type Handler struct {
	attachments attachmentsvc.AttachmentService
	records     recordsvc.RecordService
}

func NewHandler(attachments attachmentsvc.AttachmentService, records recordsvc.RecordService) *Handler {
	return &Handler{attachments: attachments, records: records}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/uploads/:name", h.Download)
}

// Download streams a stored blob to a caller entitled to a record that
// references it. Served as an attachment unless ?inline=1.
func (h *Handler) Download(c *gin.Context) {
	identity := middleware.IdentityFromContext(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
		return
	}

	name := c.Param("name")
	if err := h.records.AuthorizeAttachment(c.Request.Context(), identity, name); err != nil {
		c.Error(err)
		return
	}

	rc, ref, err := h.attachments.Open(c.Request.Context(), name)
	if err != nil {
		c.Error(err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(ref.FileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	disposition := "attachment"
	if c.Query("inline") == "1" {
		disposition = "inline"
	}

	c.Header("Content-Type", contentType)
	c.Header("Content-Length", strconv.FormatInt(ref.FileSize, 10))
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, ref.FileName))
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, rc); err != nil {
		// Headers are gone already; nothing useful left to send.
		_ = c.Error(err)
	}
}
