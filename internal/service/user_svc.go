package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"dropship_admin_v1/internal/api/dto"
	"dropship_admin_v1/internal/middleware"
	"dropship_admin_v1/internal/model"
	"dropship_admin_v1/internal/repository"
)

// UserService 员工账号与登录
// 员工的 Role 必须是已存在的角色，超管账号只能由 EnsureSuperAdmin 创建
type UserService struct {
	userRepo repository.UserRepository
	permRepo repository.PermissionRepository
	log      *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, permRepo repository.PermissionRepository, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{userRepo: userRepo, permRepo: permRepo, log: log.Named("user")}
}

// Login 校验密码并签发 Token，角色随 Token 下发供模块鉴权使用
func (s *UserService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil || !passwordMatches(user, req.Password) {
		return nil, ErrInvalidCredentials
	}
	if user.Status != model.UserStatusActive {
		return nil, ErrUserDisabled
	}

	pair, err := issueFor(user)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.userRepo.RecordLogin(ctx, user.ID, now); err != nil {
		s.log.Warn("record login failed", zap.Int64("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLoginAt = &now
	}

	return &dto.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
		User:         ToUserInfo(user),
	}, nil
}

// RefreshToken 角色以数据库为准，角色变更在下次刷新后生效
func (s *UserService) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.RefreshTokenResponse, error) {
	claims, err := middleware.ParseToken(req.RefreshToken, middleware.TokenRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}
	p, err := claims.Principal()
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.activeUser(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	pair, err := issueFor(user)
	if err != nil {
		return nil, err
	}
	return &dto.RefreshTokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
	}, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error {
	user, err := s.mustGet(ctx, userID)
	if err != nil {
		return err
	}
	if !passwordMatches(user, req.OldPassword) {
		return ErrInvalidOldPassword
	}
	if req.NewPassword == req.OldPassword {
		return ErrSamePassword
	}

	if user.Password, err = hashPassword(req.NewPassword); err != nil {
		return err
	}
	return s.userRepo.Save(ctx, user)
}

func (s *UserService) GetProfile(ctx context.Context, userID int64) (*dto.UserInfo, error) {
	user, err := s.mustGet(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToUserInfo(user), nil
}

// CreateUser 新员工默认启用
func (s *UserService) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserInfo, error) {
	existing, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameExists
	}
	if err := s.checkAssignableRole(ctx, req.Role); err != nil {
		return nil, err
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &model.SysUser{
		Username: req.Username,
		Password: hashed,
		Email:    req.Email,
		Role:     req.Role,
		Status:   model.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info("user created", append([]zap.Field{
		zap.String("username", user.Username),
		zap.String("role", user.Role),
	}, middleware.GetAuditInfo(ctx).Fields()...)...)
	return ToUserInfo(user), nil
}

// UpdateUser 超管账号的角色与状态不可修改
func (s *UserService) UpdateUser(ctx context.Context, userID int64, req *dto.UpdateUserRequest) (*dto.UserInfo, error) {
	user, err := s.mustGet(ctx, userID)
	if err != nil {
		return nil, err
	}

	roleChanged := req.Role != "" && req.Role != user.Role
	statusChanged := req.Status != nil && model.UserStatus(*req.Status) != user.Status
	if user.IsSuperAdmin() && (roleChanged || statusChanged) {
		return nil, ErrSuperAdminReserved
	}

	if req.Email != "" {
		user.Email = req.Email
	}
	if roleChanged {
		if err := s.checkAssignableRole(ctx, req.Role); err != nil {
			return nil, err
		}
		user.Role = req.Role
	}
	if statusChanged {
		user.Status = model.UserStatus(*req.Status)
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	return ToUserInfo(user), nil
}

func (s *UserService) DeleteUser(ctx context.Context, userID int64) error {
	user, err := s.mustGet(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsSuperAdmin() {
		return ErrCannotDeleteAdmin
	}
	return s.userRepo.Delete(ctx, userID)
}

// ListUsers page 从 1 开始
func (s *UserService) ListUsers(ctx context.Context, req *dto.UserListRequest) (*dto.UserListResponse, error) {
	page, size := max(req.Page, 1), req.PageSize
	if size < 1 {
		size = 20
	}
	filter := repository.UserFilter{
		Keyword: req.Keyword,
		Offset:  (page - 1) * size,
		Limit:   size,
	}
	if req.Role != "" {
		filter.Roles = []string{req.Role}
	}
	if req.Status != nil {
		status := model.UserStatus(*req.Status)
		filter.Status = &status
	}

	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	list := make([]*dto.UserInfo, len(users))
	for i := range users {
		list[i] = ToUserInfo(&users[i])
	}
	return &dto.UserListResponse{List: list, Total: total}, nil
}

// EnsureSuperAdmin 启动时创建超管账号，已存在或 password 为空时跳过
func (s *UserService) EnsureSuperAdmin(ctx context.Context, username, password string) error {
	if password == "" {
		return nil
	}
	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil || existing != nil {
		return err
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return err
	}
	if err := s.userRepo.Create(ctx, &model.SysUser{
		Username: username,
		Password: hashed,
		Role:     model.RoleSuperAdmin,
		Status:   model.UserStatusActive,
	}); err != nil {
		return err
	}
	s.log.Info("super admin created", zap.String("username", username))
	return nil
}

func (s *UserService) mustGet(ctx context.Context, id int64) (*model.SysUser, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) activeUser(ctx context.Context, id int64) (*model.SysUser, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != model.UserStatusActive {
		return nil, ErrUserDisabled
	}
	return user, nil
}

// checkAssignableRole 角色必须存在且不是超管
func (s *UserService) checkAssignableRole(ctx context.Context, name string) error {
	if name == model.RoleSuperAdmin {
		return ErrSuperAdminReserved
	}
	role, err := s.permRepo.GetRoleByName(ctx, name)
	if err != nil {
		return err
	}
	if role == nil {
		return ErrRoleNotFound
	}
	return nil
}

func issueFor(user *model.SysUser) (middleware.TokenPair, error) {
	return middleware.IssueTokens(middleware.Principal{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
}

func passwordMatches(user *model.SysUser, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hashed), err
}

// ToUserInfo 转换为 DTO
func ToUserInfo(user *model.SysUser) *dto.UserInfo {
	return &dto.UserInfo{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Role:        user.Role,
		Status:      int(user.Status),
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrUserDisabled       = errors.New("用户已禁用")
	ErrInvalidToken       = errors.New("Token 无效")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrInvalidOldPassword = errors.New("旧密码错误")
	ErrSamePassword       = errors.New("新密码不能与旧密码相同")
	ErrUsernameExists     = errors.New("用户名已存在")
	ErrCannotDeleteAdmin  = errors.New("不能删除超级管理员")
	ErrSuperAdminReserved = errors.New("超级管理员账号不可分配或修改角色与状态")
)
