package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"canvas-ai-api/internal/infrastructure/assets"
	"canvas-ai-api/internal/interfaces/http/dto"
	"canvas-ai-api/pkg/logger"
)

// FileHandler 生成产物文件处理器
type FileHandler struct {
	store *assets.Store
}

// NewFileHandler 创建文件处理器
func NewFileHandler(store *assets.Store) *FileHandler {
	return &FileHandler{store: store}
}

// GetFile 按文件 ID 返回生成产物
// @Summary 获取生成文件
// @Tags File
// @Produce image/png
// @Param id path string true "文件 ID"
// @Success 200 {file} binary
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/file/{id} [get]
func (h *FileHandler) GetFile(c *gin.Context) {
	fileID := c.Param("id")

	f, err := h.store.Open(fileID)
	if err != nil {
		dto.NotFound(c, "file not found")
		return
	}
	defer f.Close()

	c.Header("Content-Type", assets.MimeTypeByExt(fileID))
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, f); err != nil {
		logger.Warn(c.Request.Context(), "failed to stream file", "file_id", fileID, "error", err)
	}
}
