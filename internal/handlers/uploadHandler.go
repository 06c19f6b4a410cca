package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mangashelf/mangashelf/internal/utils"
)

const (
	uploadFormField = "file"
	maxUploadBytes  = 10 << 20
	uploadPrefix    = "uploads/"
)

type UploadHandler struct {
	uploader ImageUploader
	logger   *zap.Logger
}

func NewUploadHandler(uploader ImageUploader, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		uploader: uploader,
		logger:   logger,
	}
}

// UploadImage stores a cover, chapter page or slider image and returns its public URL.
func (h *UploadHandler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile(uploadFormField)
	if err != nil {
		utils.ProcessBadRequestMessage(c, "multipart field \"file\" is required")
		return
	}

	if fileHeader.Size > maxUploadBytes {
		utils.ProcessBadRequestMessage(c, "image must be at most 10MB")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		utils.ProcessBadRequestMessage(c, "only image uploads are accepted")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		internalError(c, h.logger, "failed to open upload", err)
		return
	}
	defer file.Close()

	objectName := uploadPrefix + uuid.New().String() + strings.ToLower(filepath.Ext(fileHeader.Filename))
	url, err := h.uploader.Upload(c.Request.Context(), objectName, contentType, file)
	if err != nil {
		internalError(c, h.logger, "failed to upload image", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}
