package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"freelance-market/internal/domain"
)

type UserReviewService struct{ deps Deps }

func NewUserReviewService(d Deps) *UserReviewService { return &UserReviewService{deps: d} }

func (s *UserReviewService) target(ctx context.Context, r domain.Repos, id uint) (*domain.User, error) {
	u, err := r.Users().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

// ListForUser returns the reviews a user received, newest first.
func (s *UserReviewService) ListForUser(ctx context.Context, targetID uint) ([]domain.UserReview, error) {
	if _, err := s.target(ctx, s.deps.UoW, targetID); err != nil {
		return nil, storeErr("find user", err)
	}
	rs, err := s.deps.UoW.UserReviews().ListForUser(ctx, targetID)
	if err != nil {
		return nil, storeErr("list user reviews", err)
	}
	return rs, nil
}

func (s *UserReviewService) Mine(ctx context.Context, caller *domain.User, targetID uint) (*domain.UserReview, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	rv, err := s.deps.UoW.UserReviews().FindByPair(ctx, caller.ID, targetID)
	if err != nil {
		return nil, storeErr("find user review", err)
	}
	if rv == nil {
		return nil, domain.ErrUserReviewMissing
	}
	return rv, nil
}

func (s *UserReviewService) Create(ctx context.Context, caller *domain.User, targetID uint, in ReviewInput) (*domain.UserReview, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !domain.ValidRating(in.Rating) {
		return nil, domain.ErrInvalidRating
	}
	comment, err := in.comment()
	if err != nil {
		return nil, err
	}
	if caller.ID == targetID {
		return nil, domain.ErrSelfReview
	}
	var out *domain.UserReview
	err = s.deps.UoW.Transaction(ctx, func(r domain.Repos) error {
		t, err := s.target(ctx, r, targetID)
		if err != nil {
			return err
		}
		if err := domain.CheckUserReview(caller, t); err != nil {
			return err
		}
		prev, err := r.UserReviews().FindByPair(ctx, caller.ID, targetID)
		if err != nil {
			return err
		}
		if prev != nil {
			return domain.ErrUserReviewExists
		}
		rv := &domain.UserReview{ReviewerID: caller.ID, ReviewedID: targetID, Rating: in.Rating, Comment: comment}
		if err := r.UserReviews().Create(ctx, rv); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return domain.ErrUserReviewExists
			}
			return err
		}
		out = rv
		return nil
	})
	if err != nil {
		return nil, storeErr("create user review", err)
	}
	invalidate(ctx, s.deps.Cache, profileKey(targetID))
	s.deps.logger().Info("user review created",
		zap.Uint("reviewer_id", caller.ID), zap.Uint("reviewed_id", targetID), zap.Int("rating", in.Rating))
	return out, nil
}

// Summary is the count and average of ratings a user received.
func (s *UserReviewService) Summary(ctx context.Context, targetID uint) (domain.RatingSummary, error) {
	if _, err := s.target(ctx, s.deps.UoW, targetID); err != nil {
		return domain.RatingSummary{}, storeErr("find user", err)
	}
	sum, err := s.deps.UoW.UserReviews().Summary(ctx, targetID)
	if err != nil {
		return domain.RatingSummary{}, storeErr("rating summary", err)
	}
	return sum, nil
}
