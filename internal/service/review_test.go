package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freelance-market/internal/domain"
)

// Employer posts, freelancer applies twice, employer accepts and reviews twice.
func TestHiringScenario(t *testing.T) {
	e := newEnv(t)
	emp := e.register(t, "emp@example.com", domain.RoleEmployer)
	fl := e.register(t, "fl@example.com", domain.RoleFreelancer)

	p, err := e.projects.Create(e.ctx, emp, CreateProjectInput{Title: "P", Budget: 100, Status: domain.ProjectOpen})
	require.NoError(t, err)

	a, err := e.applications.Apply(e.ctx, fl, p.ID, ApplyInput{ProposalText: "hire me", ProposedPrice: 90})
	require.NoError(t, err)
	_, err = e.applications.Apply(e.ctx, fl, p.ID, ApplyInput{ProposalText: "hire me", ProposedPrice: 90})
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	_, err = e.applications.Update(e.ctx, emp, a.ID, domain.ApplicationPatch{Status: statusPtr(domain.ApplicationAccepted)})
	require.NoError(t, err)

	rv, err := e.reviews.Create(e.ctx, emp, a.ID, ReviewInput{Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, a.ID, rv.ApplicationID)

	_, err = e.reviews.Create(e.ctx, emp, a.ID, ReviewInput{Rating: 5})
	assert.ErrorIs(t, err, domain.ErrReviewExists)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	got, err := e.reviews.Get(e.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Rating)
}

func TestReviewRules(t *testing.T) {
	e := newEnv(t)
	emp := e.register(t, "emp@example.com", domain.RoleEmployer)
	other := e.register(t, "other@example.com", domain.RoleEmployer)
	fl := e.register(t, "fl@example.com", domain.RoleFreelancer)
	admin := e.admin(t)
	p := e.project(t, emp, "Site")
	a := e.apply(t, fl, p, 90)

	_, err := e.reviews.Create(e.ctx, emp, 404, ReviewInput{Rating: 5})
	assert.ErrorIs(t, err, domain.ErrApplicationNotFound)

	_, err = e.reviews.Create(e.ctx, emp, a.ID, ReviewInput{Rating: 5})
	assert.ErrorIs(t, err, domain.ErrApplicationNotReady, "pending application")

	_, err = e.applications.Update(e.ctx, emp, a.ID, domain.ApplicationPatch{Status: statusPtr(domain.ApplicationAccepted)})
	require.NoError(t, err)

	_, err = e.reviews.Create(e.ctx, other, a.ID, ReviewInput{Rating: 5})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = e.reviews.Create(e.ctx, fl, a.ID, ReviewInput{Rating: 5})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	for _, r := range []int{0, 6, -1} {
		_, err = e.reviews.Create(e.ctx, emp, a.ID, ReviewInput{Rating: r})
		assert.ErrorIs(t, err, domain.ErrInvalidRating)
	}

	_, err = e.reviews.Get(e.ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrReviewNotFound)

	blank := "   "
	rv, err := e.reviews.Create(e.ctx, admin, a.ID, ReviewInput{Rating: 3, Comment: &blank})
	require.NoError(t, err)
	assert.Nil(t, rv.Comment)
}

func TestRejectedApplicationCannotBeReviewed(t *testing.T) {
	e := newEnv(t)
	emp := e.register(t, "emp@example.com", domain.RoleEmployer)
	fl := e.register(t, "fl@example.com", domain.RoleFreelancer)
	p := e.project(t, emp, "Site")
	a := e.apply(t, fl, p, 90)
	_, err := e.applications.Update(e.ctx, emp, a.ID, domain.ApplicationPatch{Status: statusPtr(domain.ApplicationRejected)})
	require.NoError(t, err)

	_, err = e.reviews.Create(e.ctx, emp, a.ID, ReviewInput{Rating: 1})
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))
}

func TestReviewCommentLimit(t *testing.T) {
	e := newEnv(t)
	emp := e.register(t, "emp@example.com", domain.RoleEmployer)
	fl := e.register(t, "fl@example.com", domain.RoleFreelancer)
	p := e.project(t, emp, "Site")
	a := e.apply(t, fl, p, 90)
	_, err := e.applications.Update(e.ctx, emp, a.ID, domain.ApplicationPatch{Status: statusPtr(domain.ApplicationAccepted)})
	require.NoError(t, err)

	long := strings.Repeat("a", domain.MaxCommentLength+1)
	_, err = e.reviews.Create(e.ctx, emp, a.ID, ReviewInput{Rating: 4, Comment: &long})
	assert.Equal(t, domain.KindBadRequest, domain.KindOf(err))
	assert.Zero(t, e.store.Counts()["reviews"])
}
