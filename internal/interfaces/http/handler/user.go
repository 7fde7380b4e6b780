package handler

import (
	"github.com/gin-gonic/gin"

	"canvas-ai-api/internal/domain/repository"
	"canvas-ai-api/internal/interfaces/http/dto"
	"canvas-ai-api/internal/interfaces/http/middleware"
	"canvas-ai-api/pkg/logger"
)

// UserHandler 用户处理器
type UserHandler struct {
	userRepo repository.UserRepository

	// fileBasePath 头像等文件的访问路由前缀
	fileBasePath string
}

// NewUserHandler 创建用户处理器
func NewUserHandler(userRepo repository.UserRepository, fileBasePath string) *UserHandler {
	return &UserHandler{
		userRepo:     userRepo,
		fileBasePath: fileBasePath,
	}
}

// GetMe 获取当前用户信息
// @Summary 获取当前用户
// @Tags User
// @Produce json
// @Success 200 {object} dto.Response[dto.UserDTO]
// @Router /v1/users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	ctx := c.Request.Context()

	userID := middleware.GetUserIDFromGin(c)
	if userID == 0 {
		dto.Unauthorized(c, "authentication required")
		return
	}

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		logger.Error(ctx, "failed to get user", err, "user_id", userID)
		dto.InternalError(c, "failed to get user")
		return
	}
	if user == nil {
		dto.NotFound(c, "user not found")
		return
	}

	dto.Success(c, dto.ToUserDTO(user, h.fileBasePath))
}

// UpdateMe 更新当前用户信息
func (h *UserHandler) UpdateMe(c *gin.Context) {
	ctx := c.Request.Context()

	userID := middleware.GetUserIDFromGin(c)
	if userID == 0 {
		dto.Unauthorized(c, "authentication required")
		return
	}

	var req dto.UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		logger.Error(ctx, "failed to get user", err, "user_id", userID)
		dto.InternalError(c, "failed to update user")
		return
	}
	if user == nil {
		dto.NotFound(c, "user not found")
		return
	}

	if req.Username != "" {
		user.Username = req.Username
	}
	if req.AvatarFileID != "" {
		user.AvatarFileID = req.AvatarFileID
	}

	if err := h.userRepo.Update(ctx, user); err != nil {
		logger.Error(ctx, "failed to update user", err, "user_id", userID)
		dto.InternalError(c, "failed to update user")
		return
	}

	dto.Success(c, dto.ToUserDTO(user, h.fileBasePath))
}

// ChangePassword 修改密码
func (h *UserHandler) ChangePassword(c *gin.Context) {
	ctx := c.Request.Context()

	userID := middleware.GetUserIDFromGin(c)
	if userID == 0 {
		dto.Unauthorized(c, "authentication required")
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		logger.Error(ctx, "failed to get user", err, "user_id", userID)
		dto.InternalError(c, "failed to change password")
		return
	}
	if user == nil {
		dto.NotFound(c, "user not found")
		return
	}

	if !user.CheckPassword(req.OldPassword) {
		dto.Unauthorized(c, "old password is incorrect")
		return
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		logger.Error(ctx, "failed to hash password", err)
		dto.InternalError(c, "failed to change password")
		return
	}

	if err := h.userRepo.Update(ctx, user); err != nil {
		logger.Error(ctx, "failed to update user", err, "user_id", userID)
		dto.InternalError(c, "failed to change password")
		return
	}

	dto.Success(c, gin.H{"message": "password changed"})
}

// GetCredits 查询当日剩余生成额度
func (h *UserHandler) GetCredits(c *gin.Context) {
	ctx := c.Request.Context()

	userID := middleware.GetUserIDFromGin(c)
	if userID == 0 {
		dto.Unauthorized(c, "authentication required")
		return
	}

	credits, err := h.userRepo.GetCredits(ctx, userID)
	if err != nil {
		logger.Error(ctx, "failed to get credits", err, "user_id", userID)
		dto.InternalError(c, "failed to get credits")
		return
	}

	dto.Success(c, &dto.CreditsDTO{Credits: credits})
}
