package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"canvas-ai-api/internal/application/canvassvc"
	"canvas-ai-api/internal/domain/repository"
	"canvas-ai-api/internal/interfaces/http/dto"
	"canvas-ai-api/internal/interfaces/http/middleware"
)

// CanvasHandler 画布处理器
type CanvasHandler struct {
	svc *canvassvc.Service
}

// NewCanvasHandler 创建画布处理器
func NewCanvasHandler(svc *canvassvc.Service) *CanvasHandler {
	return &CanvasHandler{svc: svc}
}

// CreateCanvas 创建画布
// @Summary 创建画布
// @Tags Canvas
// @Accept json
// @Produce json
// @Param body body dto.CreateCanvasRequest true "画布信息"
// @Success 201 {object} dto.Response[dto.CanvasDTO]
// @Router /v1/canvases [post]
func (h *CanvasHandler) CreateCanvas(c *gin.Context) {
	userID := middleware.GetUserIDFromGin(c)
	if userID == 0 {
		dto.Unauthorized(c, "authentication required")
		return
	}

	var req dto.CreateCanvasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	canvas, err := h.svc.CreateCanvas(c.Request.Context(), userID, req.ID, req.Name)
	if err != nil {
		dto.Fail(c, err)
		return
	}

	dto.Created(c, dto.ToCanvasDTO(canvas))
}

// GetCanvas 获取画布
func (h *CanvasHandler) GetCanvas(c *gin.Context) {
	userID := middleware.GetUserIDFromGin(c)
	if userID == 0 {
		dto.Unauthorized(c, "authentication required")
		return
	}

	canvas, err := h.svc.GetCanvas(c.Request.Context(), userID, c.Param("cid"))
	if err != nil {
		dto.Fail(c, err)
		return
	}

	dto.Success(c, dto.ToCanvasDTO(canvas))
}

// ListCanvases 列出当前用户的画布
func (h *CanvasHandler) ListCanvases(c *gin.Context) {
	userID := middleware.GetUserIDFromGin(c)
	if userID == 0 {
		dto.Unauthorized(c, "authentication required")
		return
	}

	result, err := h.svc.ListCanvases(c.Request.Context(), userID, paginationFromQuery(c))
	if err != nil {
		dto.Fail(c, err)
		return
	}

	dto.SuccessWithPage(c, dto.ToCanvasDTOs(result.Items),
		dto.NewPageMeta(result.Page, result.PageSize, int(result.Total)))
}

// SaveCanvasData 保存画布文档
func (h *CanvasHandler) SaveCanvasData(c *gin.Context) {
	userID := middleware.GetUserIDFromGin(c)
	if userID == 0 {
		dto.Unauthorized(c, "authentication required")
		return
	}

	var req dto.SaveCanvasDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.svc.SaveCanvasData(c.Request.Context(), userID, c.Param("cid"), req.Data, req.Thumbnail); err != nil {
		dto.Fail(c, err)
		return
	}

	dto.Success(c, gin.H{"message": "canvas saved"})
}

// RenameCanvas 重命名画布
func (h *CanvasHandler) RenameCanvas(c *gin.Context) {
	userID := middleware.GetUserIDFromGin(c)
	if userID == 0 {
		dto.Unauthorized(c, "authentication required")
		return
	}

	var req dto.RenameCanvasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.svc.RenameCanvas(c.Request.Context(), userID, c.Param("cid"), req.Name); err != nil {
		dto.Fail(c, err)
		return
	}

	dto.Success(c, gin.H{"message": "canvas renamed"})
}

// DeleteCanvas 删除画布
func (h *CanvasHandler) DeleteCanvas(c *gin.Context) {
	userID := middleware.GetUserIDFromGin(c)
	if userID == 0 {
		dto.Unauthorized(c, "authentication required")
		return
	}

	if err := h.svc.DeleteCanvas(c.Request.Context(), userID, c.Param("cid")); err != nil {
		dto.Fail(c, err)
		return
	}

	dto.NoContent(c)
}

// ListElements 列出画布元素
func (h *CanvasHandler) ListElements(c *gin.Context) {
	userID := middleware.GetUserIDFromGin(c)
	if userID == 0 {
		dto.Unauthorized(c, "authentication required")
		return
	}

	elements, err := h.svc.ListElements(c.Request.Context(), userID, c.Param("cid"))
	if err != nil {
		dto.Fail(c, err)
		return
	}

	dto.Success(c, dto.ToCanvasElementDTOs(elements))
}

// paginationFromQuery 从查询参数解析分页
func paginationFromQuery(c *gin.Context) repository.Pagination {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return repository.NewPagination(page, pageSize)
}
