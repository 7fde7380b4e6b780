package handler

import (
	"github.com/gin-gonic/gin"

	"canvas-ai-api/internal/application/imagegen"
	"canvas-ai-api/internal/interfaces/http/dto"
	"canvas-ai-api/internal/interfaces/http/middleware"
)

// GenerationHandler 图像生成处理器
type GenerationHandler struct {
	orchestrator    *imagegen.Orchestrator
	defaultProvider string
}

// NewGenerationHandler 创建图像生成处理器
func NewGenerationHandler(orchestrator *imagegen.Orchestrator, defaultProvider string) *GenerationHandler {
	return &GenerationHandler{
		orchestrator:    orchestrator,
		defaultProvider: defaultProvider,
	}
}

// GenerateImage 生成图像
// @Summary 图像生成
// @Description 扣减当日额度并调用提供商生成图像，结果作为画布元素持久化
// @Tags Generation
// @Accept json
// @Produce json
// @Param body body dto.GenerateImageRequest true "生成参数"
// @Success 200 {object} dto.Response[dto.GenerateImageResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/images/generate [post]
func (h *GenerationHandler) GenerateImage(c *gin.Context) {
	var req dto.GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	userID := middleware.GetUserIDFromGin(c)

	result, err := h.orchestrator.GenerateImage(c.Request.Context(),
		req.ToGenerationRequest(userID, h.defaultProvider))
	if err != nil {
		dto.Fail(c, err)
		return
	}

	dto.Success(c, &dto.GenerateImageResponse{Result: result})
}
