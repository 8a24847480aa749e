package repository

import (
	"context"
	"errors"
	"fmt"

	"AuthQ/model"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	// ErrUserNotFound 目标用户不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUser 邮箱已被注册
	ErrDuplicateUser = errors.New("user already exists")
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUUID(ctx context.Context, userUUID string) (*model.User, error)
	UpdateLoginState(ctx context.Context, userID int64, lastLogin int64, accessToken string) error
	UpdateAvatar(ctx context.Context, userID int64, avatarURL string) error
	Follow(ctx context.Context, userID, targetID int64) error
	Unfollow(ctx context.Context, userID, targetID int64) error
	Followers(ctx context.Context, userID int64) ([]*model.User, error)
	Following(ctx context.Context, userID int64) ([]*model.User, error)
}

// gormUserRepository implements UserRepository on top of GORM.
type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new gormUserRepository bound to the given
// handle. The handle may be a plain connection or an open transaction.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

// Create adds a new user to the database.
func (r *gormUserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		var mysqlErr *mysql.MySQLError
		// 1062: duplicate entry，唯一索引冲突
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return ErrDuplicateUser
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByEmail retrieves a user by their email address.
func (r *gormUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	return &user, nil
}

// GetByUUID retrieves a user by their public identifier.
func (r *gormUserRepository) GetByUUID(ctx context.Context, userUUID string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("uuid = ?", userUUID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user by uuid: %w", err)
	}
	return &user, nil
}

// UpdateLoginState 登录成功后刷新上次登录时间与 access token
func (r *gormUserRepository) UpdateLoginState(ctx context.Context, userID int64, lastLogin int64, accessToken string) error {
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"last_login":   lastLogin,
			"access_token": accessToken,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update login state: %w", err)
	}
	return nil
}

// UpdateAvatar 更新头像地址
func (r *gormUserRepository) UpdateAvatar(ctx context.Context, userID int64, avatarURL string) error {
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("avatar", avatarURL).Error
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	return nil
}

// Follow 建立关注边。重复关注静默成功（联结表复合主键去重）。
func (r *gormUserRepository) Follow(ctx context.Context, userID, targetID int64) error {
	err := r.db.WithContext(ctx).
		Exec("INSERT IGNORE INTO user_following (user_id, following_id) VALUES (?, ?)", userID, targetID).Error
	if err != nil {
		return fmt.Errorf("failed to create follow edge: %w", err)
	}
	return nil
}

// Unfollow 解除关注边。边不存在时同样静默成功。
func (r *gormUserRepository) Unfollow(ctx context.Context, userID, targetID int64) error {
	err := r.db.WithContext(ctx).
		Exec("DELETE FROM user_following WHERE user_id = ? AND following_id = ?", userID, targetID).Error
	if err != nil {
		return fmt.Errorf("failed to delete follow edge: %w", err)
	}
	return nil
}

// Followers 关注了该用户的人
func (r *gormUserRepository) Followers(ctx context.Context, userID int64) ([]*model.User, error) {
	var users []*model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN user_following uf ON uf.user_id = user.id").
		Where("uf.following_id = ?", userID).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list followers: %w", err)
	}
	return users, nil
}

// Following 该用户关注的人
func (r *gormUserRepository) Following(ctx context.Context, userID int64) ([]*model.User, error) {
	var users []*model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN user_following uf ON uf.following_id = user.id").
		Where("uf.user_id = ?", userID).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list following: %w", err)
	}
	return users, nil
}
