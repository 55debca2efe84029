package category

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sitecraft.dev/forumservice/internal/entity"
	"sitecraft.dev/forumservice/internal/modules/category/dto"
	"sitecraft.dev/forumservice/internal/modules/category/repository"
	"sitecraft.dev/forumservice/pkg/apperror"
)

type CategoryService interface {
	ListCategories(ctx context.Context) ([]dto.CategoryResponse, error)
	CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) ListCategories(ctx context.Context) ([]dto.CategoryResponse, error) {
	categories, err := s.repo.FindAllActive(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CategoryResponse, 0, len(categories))
	for _, cat := range categories {
		resp, err := s.buildCategoryResponse(ctx, cat)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}

	return responses, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(req.Name)
	description := strings.TrimSpace(req.Description)
	if name == "" || description == "" {
		return nil, fmt.Errorf("name and description must not be empty: %w", apperror.ErrInvalidInput)
	}

	icon := req.Icon
	if icon == "" {
		icon = entity.DefaultCategoryIcon
	}
	color := req.Color
	if color == "" {
		color = entity.DefaultCategoryColor
	}

	category := &entity.Category{
		Name:        name,
		Description: description,
		Icon:        icon,
		Color:       color,
		IsActive:    true,
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}

	return s.buildCategoryResponse(ctx, category)
}

func (s *categoryService) UpdateCategory(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("name must not be empty: %w", apperror.ErrInvalidInput)
		}
		category.Name = name
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			return nil, fmt.Errorf("description must not be empty: %w", apperror.ErrInvalidInput)
		}
		category.Description = description
	}
	if req.Icon != nil {
		category.Icon = *req.Icon
	}
	if req.Color != nil {
		category.Color = *req.Color
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, err
	}

	return s.buildCategoryResponse(ctx, category)
}

func (s *categoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return wrapNotFound(err)
	}

	// Reject rather than cascade: silently dropping live threads is worse
	// than making the admin move or delete them first.
	count, err := s.repo.CountLiveThreads(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("category still has %d threads: %w", count, apperror.ErrConflict)
	}

	return s.repo.Delete(ctx, id)
}

// wrapNotFound maps a missing row to the not-found sentinel; any other
// repository error is a storage failure and passes through untouched.
func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("category not found: %w", apperror.ErrNotFound)
	}
	return err
}

func (s *categoryService) buildCategoryResponse(ctx context.Context, cat *entity.Category) (*dto.CategoryResponse, error) {
	count, err := s.repo.CountLiveThreads(ctx, cat.ID)
	if err != nil {
		return nil, err
	}
	lastActivity, err := s.repo.LastActivity(ctx, cat.ID)
	if err != nil {
		return nil, err
	}

	return &dto.CategoryResponse{
		ID:           cat.ID,
		Name:         cat.Name,
		Description:  cat.Description,
		Icon:         cat.Icon,
		Color:        cat.Color,
		IsActive:     cat.IsActive,
		ThreadCount:  count,
		LastActivity: lastActivity,
		CreatedAt:    cat.CreatedAt,
		UpdatedAt:    cat.UpdatedAt,
	}, nil
}
