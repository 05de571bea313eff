package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"freelance-market/internal/domain"
)

type TagRepo struct{ db *gorm.DB }

func NewTagRepo(db *gorm.DB) *TagRepo { return &TagRepo{db: db} }

// GetOrCreate is idempotent: concurrent callers racing on the same name all
// end up with the one stored row.
func (r *TagRepo) GetOrCreate(ctx context.Context, name string) (*domain.Tag, error) {
	db := r.db.WithContext(ctx)
	t := domain.Tag{Name: name}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&t).Error
	if err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	if t.ID != 0 {
		return &t, nil
	}
	if err := db.First(&t, "name = ?", name).Error; err != nil {
		return nil, fmt.Errorf("find tag: %w", err)
	}
	return &t, nil
}
