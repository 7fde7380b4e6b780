package dto

import (
	"time"

	"canvas-ai-api/internal/domain/entity"
)

// UserDTO 用户信息
type UserDTO struct {
	ID             int64      `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	AvatarURL      string     `json:"avatar_url,omitempty"`
	Credits        int        `json:"credits"`
	CreditsResetAt string     `json:"credits_reset_at"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// UpdateMeRequest 更新个人信息请求
// AvatarFileID 为文件存储中已有文件的 ID
type UpdateMeRequest struct {
	Username     string `json:"username" binding:"omitempty,min=2,max=64"`
	AvatarFileID string `json:"avatar_file_id" binding:"omitempty,max=255"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=72"`
}

// CreditsDTO 额度信息
type CreditsDTO struct {
	Credits int `json:"credits"`
}

// ToUserDTO 将领域实体转换为 DTO
// fileBasePath 用于拼出头像的访问地址
func ToUserDTO(u *entity.User, fileBasePath string) *UserDTO {
	if u == nil {
		return nil
	}
	avatarURL := ""
	if u.AvatarFileID != "" {
		avatarURL = fileBasePath + "/" + u.AvatarFileID
	}
	return &UserDTO{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		Role:           string(u.Role),
		AvatarURL:      avatarURL,
		Credits:        u.Credits,
		CreditsResetAt: u.CreditsResetAt.Format("2006-01-02"),
		LastLoginAt:    u.LastLoginAt,
		CreatedAt:      u.CreatedAt,
	}
}
