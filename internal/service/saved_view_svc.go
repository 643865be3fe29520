package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"

	"dropship_admin_v1/internal/api/dto"
	"dropship_admin_v1/internal/model"
	"dropship_admin_v1/internal/repository"
	rq "dropship_admin_v1/pkg/recordquery"
)

// StateValidator 校验某资源的查询状态 (*recordquery.Engine 实现)
type StateValidator interface {
	Validate(state rq.State) error
}

// defaultViewPageSize 视图未指定每页条数时使用
const defaultViewPageSize = 20

// SavedViewService 员工保存的列表视图
type SavedViewService struct {
	repo       repository.SavedViewRepository
	validators map[string]StateValidator
}

// NewSavedViewService validators 的 key 为资源名
func NewSavedViewService(repo repository.SavedViewRepository, validators map[string]StateValidator) *SavedViewService {
	return &SavedViewService{repo: repo, validators: validators}
}

// List resource 为空时返回全部
func (s *SavedViewService) List(ctx context.Context, userID int64, resource string) ([]model.SavedView, error) {
	if resource != "" {
		if _, ok := s.validators[resource]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownResource, resource)
		}
	}
	return s.repo.ListByUser(ctx, userID, resource)
}

// Create 保存前用对应资源的引擎校验字段名等
func (s *SavedViewService) Create(ctx context.Context, userID int64, req *dto.CreateSavedViewRequest) (*model.SavedView, error) {
	validator, ok := s.validators[req.Resource]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, req.Resource)
	}
	if req.State.PageSize <= 0 {
		req.State.PageSize = defaultViewPageSize
	}
	if err := validator.Validate(req.State); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(req.State)
	if err != nil {
		return nil, err
	}

	view := &model.SavedView{
		UserID:    userID,
		Resource:  req.Resource,
		Name:      req.Name,
		State:     datatypes.JSON(raw),
		IsDefault: req.IsDefault,
	}

	err = s.repo.Transaction(ctx, func(txRepo repository.SavedViewRepository) error {
		if view.IsDefault {
			if err := txRepo.ClearDefault(ctx, userID, req.Resource); err != nil {
				return err
			}
		}
		return txRepo.Create(ctx, view)
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Delete 只能删除自己的视图
func (s *SavedViewService) Delete(ctx context.Context, userID, id int64) error {
	view, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if view == nil || view.UserID != userID {
		return ErrSavedViewNotFound
	}
	return s.repo.Delete(ctx, id)
}

// ToSavedViewVO 转换为 DTO
func ToSavedViewVO(v *model.SavedView) dto.SavedViewVO {
	return dto.SavedViewVO{
		ID:        v.ID,
		Resource:  v.Resource,
		Name:      v.Name,
		State:     json.RawMessage(v.State),
		IsDefault: v.IsDefault,
		CreatedAt: v.CreatedAt,
	}
}

var (
	ErrSavedViewNotFound = errors.New("视图不存在")
	ErrUnknownResource   = errors.New("未知资源")
)
