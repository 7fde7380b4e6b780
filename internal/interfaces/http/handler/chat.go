package handler

import (
	"github.com/gin-gonic/gin"

	"canvas-ai-api/internal/application/canvassvc"
	"canvas-ai-api/internal/domain/entity"
	"canvas-ai-api/internal/interfaces/http/dto"
	"canvas-ai-api/internal/interfaces/http/middleware"
)

// ChatHandler 会话处理器
type ChatHandler struct {
	svc *canvassvc.Service
}

// NewChatHandler 创建会话处理器
func NewChatHandler(svc *canvassvc.Service) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// CreateSession 创建会话
// @Summary 在画布下创建会话
// @Tags Chat
// @Accept json
// @Produce json
// @Param body body dto.CreateSessionRequest true "会话信息"
// @Success 201 {object} dto.Response[dto.ChatSessionDTO]
// @Router /v1/sessions [post]
func (h *ChatHandler) CreateSession(c *gin.Context) {
	userID := middleware.GetUserIDFromGin(c)
	if userID == 0 {
		dto.Unauthorized(c, "authentication required")
		return
	}

	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	session, err := h.svc.CreateSession(c.Request.Context(), userID, req.CanvasID, req.ID, req.Title, req.Provider, req.Model)
	if err != nil {
		dto.Fail(c, err)
		return
	}

	dto.Created(c, dto.ToChatSessionDTO(session))
}

// ListSessions 列出画布会话
func (h *ChatHandler) ListSessions(c *gin.Context) {
	userID := middleware.GetUserIDFromGin(c)
	if userID == 0 {
		dto.Unauthorized(c, "authentication required")
		return
	}

	result, err := h.svc.ListSessions(c.Request.Context(), userID, c.Param("cid"), paginationFromQuery(c))
	if err != nil {
		dto.Fail(c, err)
		return
	}

	dto.SuccessWithPage(c, dto.ToChatSessionDTOs(result.Items),
		dto.NewPageMeta(result.Page, result.PageSize, int(result.Total)))
}

// AppendMessage 追加会话消息
func (h *ChatHandler) AppendMessage(c *gin.Context) {
	userID := middleware.GetUserIDFromGin(c)
	if userID == 0 {
		dto.Unauthorized(c, "authentication required")
		return
	}

	var req dto.AppendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	message, err := h.svc.AppendMessage(c.Request.Context(), userID, c.Param("sid"),
		entity.Role(req.Role), req.Content, req.Metadata)
	if err != nil {
		dto.Fail(c, err)
		return
	}

	dto.Created(c, dto.ToChatMessageDTO(message))
}

// ListMessages 列出会话消息
func (h *ChatHandler) ListMessages(c *gin.Context) {
	userID := middleware.GetUserIDFromGin(c)
	if userID == 0 {
		dto.Unauthorized(c, "authentication required")
		return
	}

	result, err := h.svc.ListMessages(c.Request.Context(), userID, c.Param("sid"), paginationFromQuery(c))
	if err != nil {
		dto.Fail(c, err)
		return
	}

	dto.SuccessWithPage(c, dto.ToChatMessageDTOs(result.Items),
		dto.NewPageMeta(result.Page, result.PageSize, int(result.Total)))
}
