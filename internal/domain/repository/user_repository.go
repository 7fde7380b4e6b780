// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"canvas-ai-api/internal/domain/entity"
)

// UserRepository 用户仓储接口
type UserRepository interface {
	// Create 创建用户
	Create(ctx context.Context, user *entity.User) error

	// GetByID 根据 ID 获取用户
	GetByID(ctx context.Context, id int64) (*entity.User, error)

	// GetByEmail 根据邮箱获取用户
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	// GetByUsername 根据用户名获取用户
	GetByUsername(ctx context.Context, username string) (*entity.User, error)

	// Update 更新用户
	Update(ctx context.Context, user *entity.User) error

	// UpdateLastLogin 更新最后登录时间
	UpdateLastLogin(ctx context.Context, id int64) error

	// ExistsByEmail 检查邮箱是否存在
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// CheckAndUpdateCredits 原子额度扣减
	// 单条条件 UPDATE：额度充足或跨天重置时扣减一点并放行，
	// 否则不修改任何行并拒绝。返回是否放行。
	CheckAndUpdateCredits(ctx context.Context, userID int64) (bool, error)

	// GetCredits 查询当前剩余额度
	GetCredits(ctx context.Context, userID int64) (int, error)
}
