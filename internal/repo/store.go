package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"freelance-market/internal/domain"
)

// Store hands out gorm repositories bound to one *gorm.DB (a pool or a tx).
type Store struct{ db *gorm.DB }

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) Users() domain.UserRepository               { return NewUserRepo(s.db) }
func (s *Store) Tags() domain.TagRepository                 { return NewTagRepo(s.db) }
func (s *Store) Projects() domain.ProjectRepository         { return NewProjectRepo(s.db) }
func (s *Store) Applications() domain.ApplicationRepository { return NewApplicationRepo(s.db) }
func (s *Store) Reviews() domain.ReviewRepository           { return NewReviewRepo(s.db) }
func (s *Store) UserReviews() domain.UserReviewRepository   { return NewUserReviewRepo(s.db) }

func (s *Store) Transaction(ctx context.Context, fn func(r domain.Repos) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// Migrate creates or updates every table together with the unique indexes
// the workflow rules depend on.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Tag{},
		&domain.Project{},
		&domain.Application{},
		&domain.Review{},
		&domain.UserReview{},
	)
}

func isDupKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// driver messages differ between mysql and postgres
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "duplicate key")
}

func createErr(what string, err error) error {
	if isDupKey(err) {
		return fmt.Errorf("create %s: %w", what, domain.ErrDuplicate)
	}
	return fmt.Errorf("create %s: %w", what, err)
}

func notFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }
