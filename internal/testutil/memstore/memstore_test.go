package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freelance-market/internal/domain"
)

func TestTransactionRollsBack(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(r domain.Repos) error {
		require.NoError(t, r.Users().Create(ctx, &domain.User{Email: "a@example.com", Role: domain.RoleEmployer}))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, s.Counts()["users"])

	err = s.Transaction(ctx, func(r domain.Repos) error {
		return r.Users().Create(ctx, &domain.User{Email: "a@example.com", Role: domain.RoleEmployer})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Counts()["users"])
}

func TestUniqueKeys(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Users().Create(ctx, &domain.User{Email: "a@example.com"}))
	assert.ErrorIs(t, s.Users().Create(ctx, &domain.User{Email: "a@example.com"}), domain.ErrDuplicate)

	require.NoError(t, s.Applications().Create(ctx, &domain.Application{ProjectID: 1, FreelancerID: 2}))
	assert.ErrorIs(t, s.Applications().Create(ctx, &domain.Application{ProjectID: 1, FreelancerID: 2}), domain.ErrDuplicate)

	require.NoError(t, s.UserReviews().Create(ctx, &domain.UserReview{ReviewerID: 1, ReviewedID: 2}))
	require.NoError(t, s.UserReviews().Create(ctx, &domain.UserReview{ReviewerID: 2, ReviewedID: 1}))
	assert.ErrorIs(t, s.UserReviews().Create(ctx, &domain.UserReview{ReviewerID: 1, ReviewedID: 2}), domain.ErrDuplicate)

	t1, err := s.Tags().GetOrCreate(ctx, "go")
	require.NoError(t, err)
	t2, err := s.Tags().GetOrCreate(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, t1.ID, t2.ID)
}

func TestReturnedRowsAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := &domain.Project{Title: "a", Budget: 1, Status: domain.ProjectOpen}
	require.NoError(t, s.Projects().Create(ctx, p))

	got, err := s.Projects().FindByID(ctx, p.ID)
	require.NoError(t, err)
	got.Title = "changed"

	again, err := s.Projects().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", again.Title)
}
