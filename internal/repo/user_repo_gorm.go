package repo

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"freelance-market/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(u).Error; err != nil {
		return createErr("user", err)
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Preload("Tags").First(&u, "id = ?", id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context, f domain.UserFilter) ([]domain.User, int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.User{})
	if s := strings.TrimSpace(f.Q); s != "" {
		tx = tx.Where("LOWER(email) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if f.Role != "" {
		tx = tx.Where("role = ?", f.Role)
	}
	if f.Status != "" {
		tx = tx.Where("status = ?", f.Status)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []domain.User
	if err := tx.Order("created_at desc").Order("id desc").Offset(f.Offset).Limit(f.Limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(u).Error
}

func (r *UserRepo) ReplaceTags(ctx context.Context, u *domain.User, tags []domain.Tag) error {
	assoc := r.db.WithContext(ctx).Model(u).Association("Tags")
	var err error
	if len(tags) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(tags)
	}
	if err != nil {
		return fmt.Errorf("replace tags: %w", err)
	}
	u.Tags = tags
	return nil
}

func (r *UserRepo) Footprint(ctx context.Context, id uint) (domain.UserFootprint, error) {
	db := r.db.WithContext(ctx)
	var fp domain.UserFootprint
	err := db.Raw(`SELECT id FROM projects WHERE employer_id = ?
		UNION SELECT project_id FROM applications WHERE freelancer_id = ?`, id, id).
		Scan(&fp.ProjectIDs).Error
	if err != nil {
		return fp, fmt.Errorf("footprint projects: %w", err)
	}
	err = db.Model(&domain.UserReview{}).Where("reviewer_id = ?", id).
		Pluck("reviewed_id", &fp.ReviewedUserIDs).Error
	if err != nil {
		return fp, fmt.Errorf("footprint reviews: %w", err)
	}
	return fp, nil
}

// Delete runs the cascade explicitly so the result does not depend on the
// foreign keys the dialect created. Callers wrap it in a transaction.
func (r *UserRepo) Delete(ctx context.Context, id uint) (bool, error) {
	db := r.db.WithContext(ctx)
	ownProjects := db.Model(&domain.Project{}).Select("id").Where("employer_id = ?", id)
	touchedApps := db.Model(&domain.Application{}).Select("id").
		Where("freelancer_id = ? OR project_id IN (?)", id, ownProjects)

	if err := db.Where("application_id IN (?)", touchedApps).Delete(&domain.Review{}).Error; err != nil {
		return false, fmt.Errorf("delete reviews: %w", err)
	}
	if err := db.Where("freelancer_id = ? OR project_id IN (?)", id, ownProjects).Delete(&domain.Application{}).Error; err != nil {
		return false, fmt.Errorf("delete applications: %w", err)
	}
	if err := db.Where("employer_id = ?", id).Delete(&domain.Project{}).Error; err != nil {
		return false, fmt.Errorf("delete projects: %w", err)
	}
	if err := db.Where("reviewer_id = ? OR reviewed_id = ?", id, id).Delete(&domain.UserReview{}).Error; err != nil {
		return false, fmt.Errorf("delete user reviews: %w", err)
	}
	if err := db.Exec("DELETE FROM user_tags WHERE user_id = ?", id).Error; err != nil {
		return false, fmt.Errorf("delete user tags: %w", err)
	}
	res := db.Where("id = ?", id).Delete(&domain.User{})
	if res.Error != nil {
		return false, fmt.Errorf("delete user: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
