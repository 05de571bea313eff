package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"freelance-market/internal/domain"
)

type ApplicationRepo struct{ db *gorm.DB }

func NewApplicationRepo(db *gorm.DB) *ApplicationRepo { return &ApplicationRepo{db: db} }

func (r *ApplicationRepo) Create(ctx context.Context, a *domain.Application) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error; err != nil {
		return createErr("application", err)
	}
	return nil
}

func (r *ApplicationRepo) FindByID(ctx context.Context, id uint) (*domain.Application, error) {
	var a domain.Application
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ApplicationRepo) FindByProjectAndFreelancer(ctx context.Context, projectID, freelancerID uint) (*domain.Application, error) {
	var a domain.Application
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND freelancer_id = ?", projectID, freelancerID).
		First(&a).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ApplicationRepo) ListByProject(ctx context.Context, projectID uint) ([]domain.Application, error) {
	as := make([]domain.Application, 0)
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").Order("id DESC").
		Find(&as).Error
	if err != nil {
		return nil, err
	}
	return as, nil
}

func (r *ApplicationRepo) List(ctx context.Context, offset, limit int) ([]domain.Application, int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Application{})
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	as := make([]domain.Application, 0)
	if err := tx.Order("id DESC").Offset(offset).Limit(limit).Find(&as).Error; err != nil {
		return nil, 0, err
	}
	return as, total, nil
}

func (r *ApplicationRepo) Update(ctx context.Context, a *domain.Application) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(a).Error
}

func (r *ApplicationRepo) Delete(ctx context.Context, id uint) (bool, error) {
	db := r.db.WithContext(ctx)
	if err := db.Where("application_id = ?", id).Delete(&domain.Review{}).Error; err != nil {
		return false, fmt.Errorf("delete review: %w", err)
	}
	res := db.Where("id = ?", id).Delete(&domain.Application{})
	if res.Error != nil {
		return false, fmt.Errorf("delete application: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
