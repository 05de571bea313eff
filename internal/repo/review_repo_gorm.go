package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"freelance-market/internal/domain"
)

type ReviewRepo struct{ db *gorm.DB }

func NewReviewRepo(db *gorm.DB) *ReviewRepo { return &ReviewRepo{db: db} }

func (r *ReviewRepo) Create(ctx context.Context, rv *domain.Review) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(rv).Error; err != nil {
		return createErr("review", err)
	}
	return nil
}

func (r *ReviewRepo) FindByApplication(ctx context.Context, applicationID uint) (*domain.Review, error) {
	var rv domain.Review
	err := r.db.WithContext(ctx).First(&rv, "application_id = ?", applicationID).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

type UserReviewRepo struct{ db *gorm.DB }

func NewUserReviewRepo(db *gorm.DB) *UserReviewRepo { return &UserReviewRepo{db: db} }

func (r *UserReviewRepo) Create(ctx context.Context, rv *domain.UserReview) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(rv).Error; err != nil {
		return createErr("user review", err)
	}
	return nil
}

func (r *UserReviewRepo) FindByPair(ctx context.Context, reviewerID, reviewedID uint) (*domain.UserReview, error) {
	var rv domain.UserReview
	err := r.db.WithContext(ctx).
		Where("reviewer_id = ? AND reviewed_id = ?", reviewerID, reviewedID).
		First(&rv).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *UserReviewRepo) ListForUser(ctx context.Context, reviewedID uint) ([]domain.UserReview, error) {
	rs := make([]domain.UserReview, 0)
	err := r.db.WithContext(ctx).
		Where("reviewed_id = ?", reviewedID).
		Order("created_at DESC").Order("id DESC").
		Find(&rs).Error
	if err != nil {
		return nil, err
	}
	return rs, nil
}

func (r *UserReviewRepo) Summary(ctx context.Context, reviewedID uint) (domain.RatingSummary, error) {
	var s domain.RatingSummary
	err := r.db.WithContext(ctx).Model(&domain.UserReview{}).
		Select("COUNT(*) AS review_count, COALESCE(AVG(rating), 0) AS average_rating").
		Where("reviewed_id = ?", reviewedID).
		Scan(&s).Error
	return s, err
}
