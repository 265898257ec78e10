package repository

import (
	"context"

	"gorm.io/gorm"

	"day-planner/internal/apperr"
	"day-planner/internal/model"
)

// TemplateRepository handles CRUD for recurring templates.
type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) FindAllActive(ctx context.Context) ([]model.Template, error) {
	var templates []model.Template
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("id ASC").Find(&templates).Error; err != nil {
		return nil, apperr.Store("list active templates", err)
	}
	return templates, nil
}

func (r *TemplateRepository) FindAll(ctx context.Context) ([]model.Template, error) {
	var templates []model.Template
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&templates).Error; err != nil {
		return nil, apperr.Store("list templates", err)
	}
	return templates, nil
}

func (r *TemplateRepository) FindByID(ctx context.Context, id uint) (*model.Template, error) {
	var tmpl model.Template
	if err := r.db.WithContext(ctx).First(&tmpl, id).Error; err != nil {
		return nil, storeErr("find template", "template", id, err)
	}
	return &tmpl, nil
}

func (r *TemplateRepository) Create(ctx context.Context, tmpl *model.Template) error {
	if err := r.db.WithContext(ctx).Create(tmpl).Error; err != nil {
		return apperr.Store("create template", err)
	}
	return nil
}

func (r *TemplateRepository) Save(ctx context.Context, tmpl *model.Template) error {
	if err := r.db.WithContext(ctx).Save(tmpl).Error; err != nil {
		return apperr.Store("save template", err)
	}
	return nil
}

func (r *TemplateRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.Template{}, id).Error; err != nil {
		return apperr.Store("delete template", err)
	}
	return nil
}
