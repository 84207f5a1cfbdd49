package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storegate/internal/apperr"
	"storegate/internal/middleware"
	"storegate/internal/service"
)

func (h HandlerSet) UploadImage(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		h.respondError(c, apperr.New(apperr.Unauthenticated, "unauthenticated"))
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		h.respondError(c, apperr.New(apperr.InvalidArgument, "no image file provided"))
		return
	}
	defer file.Close()

	// Reject on the declared size before buffering anything.
	if header.Size > h.cfg.Upload.MaxBytes {
		h.respondError(c, apperr.Newf(apperr.InvalidArgument,
			"file exceeds maximum size of %d bytes", h.cfg.Upload.MaxBytes))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.cfg.Upload.MaxBytes+1))
	if err != nil {
		h.respondError(c, apperr.Wrap(apperr.Internal, "read upload", err))
		return
	}

	outcome, err := h.images.Ingest(c.Request.Context(), principal, service.IngestInput{
		Data:        data,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Subject:     c.PostForm("productName"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       outcome.Message,
		"originalImage": outcome.Original,
		"enhancedImage": outcome.Enhanced,
		"originalUrl":   outcome.OriginalURL,
		"enhancedUrl":   outcome.EnhancedURL,
		"degraded":      outcome.Degraded,
	})
}

func (h HandlerSet) ListImages(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		h.respondError(c, apperr.New(apperr.Unauthenticated, "unauthenticated"))
		return
	}

	entries, err := h.images.ListUserImages(c.Request.Context(), principal)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"images":  entries,
		"count":   len(entries),
	})
}

func (h HandlerSet) DeleteImage(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		h.respondError(c, apperr.New(apperr.Unauthenticated, "unauthenticated"))
		return
	}

	// Keys contain slashes, so the route uses a wildcard segment.
	key := strings.TrimPrefix(c.Param("imageId"), "/")
	if key == "" {
		h.respondError(c, apperr.New(apperr.InvalidArgument, "image key required"))
		return
	}

	if err := h.images.DeleteUserImage(c.Request.Context(), principal, key); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "image deleted",
	})
}

// AdminListImages lets an administrator inspect any user's namespace.
func (h HandlerSet) AdminListImages(c *gin.Context) {
	userID := c.Param("userId")
	if userID == "" {
		h.respondError(c, apperr.New(apperr.InvalidArgument, "user id required"))
		return
	}

	entries, err := h.images.ListImagesForUser(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"userId":  userID,
		"images":  entries,
		"count":   len(entries),
	})
}
