// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"canvas-ai-api/internal/domain/entity"
)

// UserRepository 用户仓储实现
type UserRepository struct {
	client *Client
}

// NewUserRepository 创建用户仓储
func NewUserRepository(client *Client) *UserRepository {
	return &UserRepository{client: client}
}

// Create 创建用户
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(user).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取用户
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var user entity.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetByEmail 根据邮箱获取用户
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.GetByEmail")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var user entity.User
	if err := db.First(&user, "email = ?", email).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// GetByUsername 根据用户名获取用户
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.GetByUsername")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var user entity.User
	if err := db.First(&user, "username = ?", username).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return &user, nil
}

// Update 更新用户
func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(user).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// UpdateLastLogin 更新最后登录时间
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.UpdateLastLogin")
	defer span.End()

	db := getDB(ctx, r.client.db)
	now := time.Now()
	if err := db.Model(&entity.User{}).Where("id = ?", id).Update("last_login_at", now).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// ExistsByEmail 检查邮箱是否存在
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.ExistsByEmail")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var count int64
	if err := db.Model(&entity.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to check email exists: %w", err)
	}
	return count > 0, nil
}

// checkAndUpdateCreditsSQL 额度准入门闸
// 单条条件 UPDATE 完成检查与扣减，跨天时先重置为每日额度再扣减。
// 数据库行锁保证并发请求串行通过，命中行数为 0 即拒绝。
const checkAndUpdateCreditsSQL = `
UPDATE users
SET credits = CASE
        WHEN credits_reset_at < CURRENT_DATE THEN ? - 1
        ELSE credits - 1
    END,
    credits_reset_at = CURRENT_DATE,
    updated_at = NOW()
WHERE id = ?
  AND (credits > 0 OR credits_reset_at < CURRENT_DATE)`

// CheckAndUpdateCredits 原子额度扣减，返回是否放行
func (r *UserRepository) CheckAndUpdateCredits(ctx context.Context, userID int64) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.CheckAndUpdateCredits")
	defer span.End()

	db := getDB(ctx, r.client.db)
	result := db.Exec(checkAndUpdateCreditsSQL, entity.DefaultDailyCredits, userID)
	if result.Error != nil {
		span.RecordError(result.Error)
		return false, fmt.Errorf("failed to update credits: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// GetCredits 查询当前剩余额度
func (r *UserRepository) GetCredits(ctx context.Context, userID int64) (int, error) {
	ctx, span := tracer.Start(ctx, "postgres.UserRepository.GetCredits")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var credits int
	err := db.Model(&entity.User{}).Select("credits").Where("id = ?", userID).Scan(&credits).Error
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to get credits: %w", err)
	}
	return credits, nil
}
