// Package entity 定义领域实体
package entity

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// UserRole 用户角色
type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleMember UserRole = "member"
)

// DefaultDailyCredits 新用户每日图像生成额度
const DefaultDailyCredits = 10

// User 用户实体
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string    `json:"username" gorm:"type:varchar(64);uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"` // 不在 JSON 中暴露
	Role         UserRole  `json:"role" gorm:"type:varchar(16);not null;default:'member'"`
	// AvatarFileID 头像在文件存储中的 ID，访问地址由文件路由前缀拼出
	AvatarFileID string `json:"avatar_file_id,omitempty" gorm:"type:varchar(255)"`
	// Credits 当日剩余生成额度，由准入门闸原子扣减
	Credits        int        `json:"credits" gorm:"not null;default:10"`
	CreditsResetAt time.Time  `json:"credits_reset_at" gorm:"type:date;not null"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// NewUser 创建新用户，赋予默认每日额度
func NewUser(username, email string) *User {
	now := time.Now()
	return &User{
		Username:       username,
		Email:          email,
		Role:           UserRoleMember,
		Credits:        DefaultDailyCredits,
		CreditsResetAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsAdmin 检查用户是否为管理员
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// SetPassword 设置并散列密码
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword 校验密码
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}
