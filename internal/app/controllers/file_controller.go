package controllers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/studenthub/backend/internal/app/models/dto"
	"github.com/studenthub/backend/internal/pkg/filestorage"
)

// maxUploadBytes bounds direct PUT uploads.
const maxUploadBytes = 32 << 20

// FileController serves stored blobs and accepts presigned-style uploads
type FileController struct {
	storage filestorage.Storage
	logger  zerolog.Logger
}

// NewFileController creates a new FileController
func NewFileController(storage filestorage.Storage, logger zerolog.Logger) *FileController {
	return &FileController{
		storage: storage,
		logger:  logger,
	}
}

// Download serves a stored blob
// @Summary Download a stored file
// @Description Serves the blob stored under the given key. PDFs render inline.
// @Tags files
// @Produce octet-stream
// @Param key path string true "Storage key"
// @Success 200 {file} binary
// @Failure 404 {object} dto.ErrorResponse "File not found"
// @Router /files/{key} [get]
func (c *FileController) Download(ctx *gin.Context) {
	key := strings.TrimPrefix(ctx.Param("key"), "/")

	blob, err := c.storage.Open(key)
	if err != nil {
		if errors.Is(err, filestorage.ErrNotFound) {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "File not found")
			ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(errorDetail))
			return
		}
		c.logger.Warn().Err(err).Str("key", key).Msg("Rejected file request")
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid file key").
			WithDetailsf("key %q is outside the storage root", key)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	defer blob.Close()

	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	ctx.Header("Content-Type", contentType)
	if contentType == "application/pdf" {
		ctx.Header("Content-Disposition", "inline")
	}

	ctx.Status(http.StatusOK)
	if _, err := io.Copy(ctx.Writer, blob); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Aborted file download")
	}
}

// Upload accepts raw bytes for an already-issued key
// @Summary Upload file bytes
// @Description Accepts the raw request body under a key previously issued by the presign step
// @Tags files
// @Accept octet-stream
// @Produce json
// @Param key path string true "Storage key"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid key or unreadable body"
// @Failure 403 {object} dto.ErrorResponse "Key not issued or grant already used"
// @Router /files/{key} [put]
func (c *FileController) Upload(ctx *gin.Context) {
	key := strings.TrimPrefix(ctx.Param("key"), "/")

	data, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxUploadBytes))
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Could not read request body")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	if err := c.storage.Put(ctx.Request.Context(), key, data); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Rejected file upload")
		if errors.Is(err, filestorage.ErrUploadNotAuthorized) {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Upload not authorized for this key")
			ctx.JSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
			return
		}
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid file key")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	c.logger.Info().Str("key", key).Int("bytes", len(data)).Msg("File uploaded")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"key": key}))
}
