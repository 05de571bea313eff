package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freelance-market/internal/domain"
)

func TestApplyTwiceIsDuplicate(t *testing.T) {
	e := newEnv(t)
	emp := e.register(t, "emp@example.com", domain.RoleEmployer)
	fl := e.register(t, "fl@example.com", domain.RoleFreelancer)
	p := e.project(t, emp, "Site")

	a := e.apply(t, fl, p, 90)
	assert.Equal(t, domain.ApplicationPending, a.Status)

	_, err := e.applications.Apply(e.ctx, fl, p.ID, ApplyInput{ProposalText: "again", ProposedPrice: 50})
	assert.ErrorIs(t, err, domain.ErrDuplicateApplication)
	assert.Equal(t, 1, e.store.Counts()["applications"])
}

func TestApplyRules(t *testing.T) {
	e := newEnv(t)
	emp := e.register(t, "emp@example.com", domain.RoleEmployer)
	fl := e.register(t, "fl@example.com", domain.RoleFreelancer)
	p := e.project(t, emp, "Site")

	_, err := e.applications.Apply(e.ctx, emp, p.ID, ApplyInput{ProposalText: "x", ProposedPrice: 1})
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	_, err = e.applications.Apply(e.ctx, fl, p.ID, ApplyInput{ProposalText: "x", ProposedPrice: 0})
	assert.Equal(t, domain.KindBadRequest, domain.KindOf(err))

	_, err = e.applications.Apply(e.ctx, fl, p.ID, ApplyInput{ProposalText: "  ", ProposedPrice: 10})
	assert.Equal(t, domain.KindBadRequest, domain.KindOf(err))

	_, err = e.applications.Apply(e.ctx, fl, 404, ApplyInput{ProposalText: "x", ProposedPrice: 10})
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)

	st := domain.ProjectInProgress
	_, err = e.projects.Update(e.ctx, emp, p.ID, domain.ProjectPatch{Status: &st})
	require.NoError(t, err)
	_, err = e.applications.Apply(e.ctx, fl, p.ID, ApplyInput{ProposalText: "x", ProposedPrice: 10})
	assert.ErrorIs(t, err, domain.ErrProjectNotOpen)
}

func TestFreelancerCannotSetStatus(t *testing.T) {
	e := newEnv(t)
	emp := e.register(t, "emp@example.com", domain.RoleEmployer)
	fl := e.register(t, "fl@example.com", domain.RoleFreelancer)
	p := e.project(t, emp, "Site")
	a := e.apply(t, fl, p, 90)

	text := "better proposal"
	got, err := e.applications.Update(e.ctx, fl, a.ID, domain.ApplicationPatch{
		ProposalText: &text,
		Status:       statusPtr(domain.ApplicationAccepted),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationPending, got.Status)
	assert.Equal(t, "better proposal", got.ProposalText)

	stored, err := e.applications.Get(e.ctx, fl, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationPending, stored.Status)
}

func TestDecideApplication(t *testing.T) {
	e := newEnv(t)
	emp := e.register(t, "emp@example.com", domain.RoleEmployer)
	other := e.register(t, "other@example.com", domain.RoleEmployer)
	fl := e.register(t, "fl@example.com", domain.RoleFreelancer)
	p := e.project(t, emp, "Site")
	a := e.apply(t, fl, p, 90)

	_, err := e.applications.Update(e.ctx, emp, a.ID, domain.ApplicationPatch{})
	assert.ErrorIs(t, err, domain.ErrNoStatusProvided)

	_, err = e.applications.Update(e.ctx, other, a.ID, domain.ApplicationPatch{Status: statusPtr(domain.ApplicationAccepted)})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, err := e.applications.Update(e.ctx, emp, a.ID, domain.ApplicationPatch{Status: statusPtr(domain.ApplicationAccepted)})
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationAccepted, got.Status)

	_, err = e.applications.Update(e.ctx, emp, a.ID, domain.ApplicationPatch{Status: statusPtr(domain.ApplicationAccepted)})
	assert.NoError(t, err, "re-asserting the current status is a no-op")

	_, err = e.applications.Update(e.ctx, emp, a.ID, domain.ApplicationPatch{Status: statusPtr(domain.ApplicationRejected)})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))
}

func TestApplicationVisibility(t *testing.T) {
	e := newEnv(t)
	emp := e.register(t, "emp@example.com", domain.RoleEmployer)
	other := e.register(t, "other@example.com", domain.RoleEmployer)
	f1 := e.register(t, "f1@example.com", domain.RoleFreelancer)
	f2 := e.register(t, "f2@example.com", domain.RoleFreelancer)
	admin := e.admin(t)
	p := e.project(t, emp, "Site")
	a := e.apply(t, f1, p, 90)
	e.apply(t, f2, p, 70)

	list, err := e.applications.ListForProject(e.ctx, emp, p.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	_, err = e.applications.ListForProject(e.ctx, other, p.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = e.applications.ListForProject(e.ctx, f1, p.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	mine, err := e.applications.Mine(e.ctx, f1, p.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, mine.ID)
	_, err = e.applications.Mine(e.ctx, other, p.ID)
	assert.ErrorIs(t, err, domain.ErrApplicationNotFound)

	_, err = e.applications.Get(e.ctx, f2, a.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = e.applications.Get(e.ctx, emp, a.ID)
	assert.NoError(t, err)

	all, total, err := e.applications.ListAll(e.ctx, admin, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 1)
	_, _, err = e.applications.ListAll(e.ctx, emp, 0, 10)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestDeleteApplication(t *testing.T) {
	e := newEnv(t)
	emp := e.register(t, "emp@example.com", domain.RoleEmployer)
	fl := e.register(t, "fl@example.com", domain.RoleFreelancer)
	p := e.project(t, emp, "Site")
	a := e.apply(t, fl, p, 90)
	_, err := e.applications.Update(e.ctx, emp, a.ID, domain.ApplicationPatch{Status: statusPtr(domain.ApplicationAccepted)})
	require.NoError(t, err)
	_, err = e.reviews.Create(e.ctx, emp, a.ID, ReviewInput{Rating: 5})
	require.NoError(t, err)

	assert.ErrorIs(t, e.applications.Delete(e.ctx, emp, a.ID), domain.ErrForbidden, "owner employer cannot delete")
	require.NoError(t, e.applications.Delete(e.ctx, fl, a.ID))
	assert.ErrorIs(t, e.applications.Delete(e.ctx, fl, a.ID), domain.ErrApplicationNotFound)
	assert.Zero(t, e.store.Counts()["reviews"])
}
