package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"freelance-market/internal/domain"
)

type ReviewInput struct {
	Rating  int
	Comment *string
}

// comment trims the optional comment and drops it when empty.
func (in ReviewInput) comment() (*string, error) {
	if in.Comment == nil {
		return nil, nil
	}
	c := strings.TrimSpace(*in.Comment)
	if c == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(c) > domain.MaxCommentLength {
		return nil, domain.BadRequest("comment is limited to 1000 characters")
	}
	return &c, nil
}

type ReviewService struct{ deps Deps }

func NewReviewService(d Deps) *ReviewService { return &ReviewService{deps: d} }

// Create records the project owner's review of an accepted application.
func (s *ReviewService) Create(ctx context.Context, caller *domain.User, applicationID uint, in ReviewInput) (*domain.Review, error) {
	var out *domain.Review
	err := s.deps.UoW.Transaction(ctx, func(r domain.Repos) error {
		a, err := r.Applications().FindByID(ctx, applicationID)
		if err != nil {
			return err
		}
		if a == nil {
			return domain.ErrApplicationNotFound
		}
		if a.Status != domain.ApplicationAccepted {
			return domain.ErrApplicationNotReady
		}
		p, err := r.Projects().FindByID(ctx, a.ProjectID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrProjectNotFound
		}
		if !domain.CanManageProject(caller, p) {
			return domain.ErrForbidden
		}
		prev, err := r.Reviews().FindByApplication(ctx, applicationID)
		if err != nil {
			return err
		}
		if prev != nil {
			return domain.ErrReviewExists
		}
		if !domain.ValidRating(in.Rating) {
			return domain.ErrInvalidRating
		}
		comment, err := in.comment()
		if err != nil {
			return err
		}
		rv := &domain.Review{ApplicationID: applicationID, Rating: in.Rating, Comment: comment}
		if err := r.Reviews().Create(ctx, rv); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return domain.ErrReviewExists
			}
			return err
		}
		out = rv
		return nil
	})
	if err != nil {
		return nil, storeErr("create review", err)
	}
	s.deps.logger().Info("review created", zap.Uint("application_id", applicationID), zap.Int("rating", in.Rating))
	return out, nil
}

func (s *ReviewService) Get(ctx context.Context, applicationID uint) (*domain.Review, error) {
	rv, err := s.deps.UoW.Reviews().FindByApplication(ctx, applicationID)
	if err != nil {
		return nil, storeErr("find review", err)
	}
	if rv == nil {
		return nil, domain.ErrReviewNotFound
	}
	return rv, nil
}
