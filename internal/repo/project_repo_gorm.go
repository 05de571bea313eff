package repo

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"freelance-market/internal/domain"
)

type ProjectRepo struct{ db *gorm.DB }

func NewProjectRepo(db *gorm.DB) *ProjectRepo { return &ProjectRepo{db: db} }

func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	if err := r.db.WithContext(ctx).Omit("Employer").Create(p).Error; err != nil {
		return createErr("project", err)
	}
	return nil
}

func (r *ProjectRepo) FindByID(ctx context.Context, id uint) (*domain.Project, error) {
	var p domain.Project
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepo) List(ctx context.Context, f domain.ProjectFilter) ([]domain.Project, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Project{})
	if f.Status != "" {
		tx = tx.Where("status = ?", f.Status)
	}
	if f.EmployerID != 0 {
		tx = tx.Where("employer_id = ?", f.EmployerID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		tx = tx.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	ps := make([]domain.Project, 0)
	err := tx.Order("created_at DESC").Order("id DESC").Offset(f.Offset).Limit(f.Limit).Find(&ps).Error
	if err != nil {
		return nil, err
	}
	return ps, nil
}

func (r *ProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	return r.db.WithContext(ctx).Omit("Employer").Save(p).Error
}

func (r *ProjectRepo) Delete(ctx context.Context, id uint) (bool, error) {
	db := r.db.WithContext(ctx)
	apps := db.Model(&domain.Application{}).Select("id").Where("project_id = ?", id)
	if err := db.Where("application_id IN (?)", apps).Delete(&domain.Review{}).Error; err != nil {
		return false, fmt.Errorf("delete reviews: %w", err)
	}
	if err := db.Where("project_id = ?", id).Delete(&domain.Application{}).Error; err != nil {
		return false, fmt.Errorf("delete applications: %w", err)
	}
	res := db.Where("id = ?", id).Delete(&domain.Project{})
	if res.Error != nil {
		return false, fmt.Errorf("delete project: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *ProjectRepo) Stats(ctx context.Context, id uint) (domain.ProjectStats, error) {
	var st domain.ProjectStats
	err := r.db.WithContext(ctx).Model(&domain.Application{}).
		Select("COUNT(*) AS application_count, COALESCE(AVG(proposed_price), 0) AS avg_proposed_price").
		Where("project_id = ?", id).
		Scan(&st).Error
	return st, err
}
