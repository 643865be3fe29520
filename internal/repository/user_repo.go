package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"dropship_admin_v1/internal/model"
)

// UserRepository 后台员工账号
// 员工通过 Role 字段关联角色，模块权限按角色读取
type UserRepository interface {
	Create(ctx context.Context, user *model.SysUser) error
	GetByID(ctx context.Context, id int64) (*model.SysUser, error)
	GetByUsername(ctx context.Context, username string) (*model.SysUser, error)
	Save(ctx context.Context, user *model.SysUser) error
	RecordLogin(ctx context.Context, id int64, at time.Time) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter UserFilter) ([]model.SysUser, int64, error)
	CountByRole(ctx context.Context, roles ...string) (map[string]int64, error)
}

// UserFilter 员工列表筛选，Roles 为空表示不限角色
type UserFilter struct {
	Keyword string
	Roles   []string
	Status  *model.UserStatus
	Offset  int
	Limit   int
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.SysUser) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID 不存在时返回 nil, nil
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.SysUser, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByUsername 不存在时返回 nil, nil
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.SysUser, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *userRepository) first(ctx context.Context, cond string, arg interface{}) (*model.SysUser, error) {
	var user model.SysUser
	err := r.db.WithContext(ctx).Where(cond, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Save(ctx context.Context, user *model.SysUser) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// RecordLogin 只写 last_login_at，不触发 updated_by
func (r *userRepository) RecordLogin(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.SysUser{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// Delete 软删除
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.SysUser{}, id).Error
}

// List 最近登录的员工在前，从未登录的排最后
func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]model.SysUser, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.SysUser{})
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		query = query.Where("username LIKE ? OR email LIKE ?", like, like)
	}
	if len(filter.Roles) > 0 {
		query = query.Where("role IN ?", filter.Roles)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("last_login_at IS NULL, last_login_at DESC, id").Offset(filter.Offset)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	var users []model.SysUser
	err := query.Find(&users).Error
	return users, total, err
}

// CountByRole 各角色的员工数，未出现的角色不在结果中
func (r *userRepository) CountByRole(ctx context.Context, roles ...string) (map[string]int64, error) {
	var rows []struct {
		Role  string
		Total int64
	}
	query := r.db.WithContext(ctx).Model(&model.SysUser{})
	if len(roles) > 0 {
		query = query.Where("role IN ?", roles)
	}
	if err := query.Select("role, COUNT(*) AS total").Group("role").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Total
	}
	return counts, nil
}
