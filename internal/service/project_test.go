package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freelance-market/internal/domain"
)

func TestCreateProjectValidation(t *testing.T) {
	e := newEnv(t)
	emp := e.register(t, "emp@example.com", domain.RoleEmployer)
	fl := e.register(t, "fl@example.com", domain.RoleFreelancer)

	p, err := e.projects.Create(e.ctx, emp, CreateProjectInput{Title: "  Landing page ", Budget: 100})
	require.NoError(t, err)
	assert.Equal(t, "Landing page", p.Title)
	assert.Equal(t, domain.ProjectOpen, p.Status)
	assert.Equal(t, emp.ID, p.EmployerID)

	_, err = e.projects.Create(e.ctx, fl, CreateProjectInput{Title: "x", Budget: 10})
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	for name, in := range map[string]CreateProjectInput{
		"zero budget":    {Title: "x", Budget: 0},
		"negative":       {Title: "x", Budget: -5},
		"blank title":    {Title: "   ", Budget: 10},
		"long title":     {Title: string(make([]rune, 256)), Budget: 10},
		"unknown status": {Title: "x", Budget: 10, Status: "archived"},
	} {
		_, err := e.projects.Create(e.ctx, emp, in)
		assert.Equal(t, domain.KindBadRequest, domain.KindOf(err), name)
	}
}

func TestListProjectsScopesByRole(t *testing.T) {
	e := newEnv(t)
	emp1 := e.register(t, "e1@example.com", domain.RoleEmployer)
	emp2 := e.register(t, "e2@example.com", domain.RoleEmployer)
	fl := e.register(t, "fl@example.com", domain.RoleFreelancer)
	admin := e.admin(t)

	e.project(t, emp1, "Go backend")
	closed := e.project(t, emp1, "Old gig")
	st := domain.ProjectClosed
	_, err := e.projects.Update(e.ctx, emp1, closed.ID, domain.ProjectPatch{Status: &st})
	require.NoError(t, err)
	e.project(t, emp2, "Mobile app")

	titles := func(ps []domain.Project) []string {
		out := make([]string, 0, len(ps))
		for _, p := range ps {
			out = append(out, p.Title)
		}
		return out
	}

	ps, err := e.projects.List(e.ctx, fl, domain.ProjectFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Mobile app", "Go backend"}, titles(ps))

	ps, err = e.projects.List(e.ctx, nil, domain.ProjectFilter{Status: domain.ProjectClosed})
	require.NoError(t, err)
	assert.Equal(t, []string{"Mobile app", "Go backend"}, titles(ps), "anonymous sees open only")

	ps, err = e.projects.List(e.ctx, emp1, domain.ProjectFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Old gig", "Go backend"}, titles(ps))

	ps, err = e.projects.List(e.ctx, admin, domain.ProjectFilter{Search: "APP"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Mobile app"}, titles(ps))

	ps, err = e.projects.List(e.ctx, admin, domain.ProjectFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"Old gig"}, titles(ps))

	_, err = e.projects.List(e.ctx, admin, domain.ProjectFilter{Status: "weird"})
	assert.Equal(t, domain.KindBadRequest, domain.KindOf(err))
}

func TestUpdateProjectPermissions(t *testing.T) {
	e := newEnv(t)
	owner := e.register(t, "owner@example.com", domain.RoleEmployer)
	other := e.register(t, "other@example.com", domain.RoleEmployer)
	admin := e.admin(t)
	p := e.project(t, owner, "Site")

	title := "Other"
	_, err := e.projects.Update(e.ctx, other, p.ID, domain.ProjectPatch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	budget := 250.0
	got, err := e.projects.Update(e.ctx, owner, p.ID, domain.ProjectPatch{Budget: &budget})
	require.NoError(t, err)
	assert.Equal(t, 250.0, got.Budget)
	assert.Equal(t, "Site", got.Title, "untouched fields keep their value")

	got, err = e.projects.Update(e.ctx, admin, p.ID, domain.ProjectPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Other", got.Title)

	bad := 0.0
	_, err = e.projects.Update(e.ctx, owner, p.ID, domain.ProjectPatch{Budget: &bad})
	assert.Equal(t, domain.KindBadRequest, domain.KindOf(err))

	_, err = e.projects.Update(e.ctx, owner, 999, domain.ProjectPatch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestDeleteProjectTwice(t *testing.T) {
	e := newEnv(t)
	owner := e.register(t, "owner@example.com", domain.RoleEmployer)
	fl := e.register(t, "fl@example.com", domain.RoleFreelancer)
	p := e.project(t, owner, "Site")
	a := e.apply(t, fl, p, 80)
	_, err := e.applications.Update(e.ctx, owner, a.ID, domain.ApplicationPatch{Status: statusPtr(domain.ApplicationAccepted)})
	require.NoError(t, err)
	_, err = e.reviews.Create(e.ctx, owner, a.ID, ReviewInput{Rating: 4})
	require.NoError(t, err)

	require.NoError(t, e.projects.Delete(e.ctx, owner, p.ID))
	assert.ErrorIs(t, e.projects.Delete(e.ctx, owner, p.ID), domain.ErrProjectNotFound)

	n := e.store.Counts()
	assert.Zero(t, n["projects"])
	assert.Zero(t, n["applications"])
	assert.Zero(t, n["reviews"])
}

func TestDeleteProjectForbidden(t *testing.T) {
	e := newEnv(t)
	owner := e.register(t, "owner@example.com", domain.RoleEmployer)
	other := e.register(t, "other@example.com", domain.RoleEmployer)
	p := e.project(t, owner, "Site")

	assert.ErrorIs(t, e.projects.Delete(e.ctx, other, p.ID), domain.ErrForbidden)
	assert.Equal(t, 1, e.store.Counts()["projects"])
}

func TestProjectStats(t *testing.T) {
	e := newEnv(t)
	owner := e.register(t, "owner@example.com", domain.RoleEmployer)
	f1 := e.register(t, "f1@example.com", domain.RoleFreelancer)
	f2 := e.register(t, "f2@example.com", domain.RoleFreelancer)
	p := e.project(t, owner, "Site")

	st, err := e.projects.Stats(e.ctx, owner, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStats{ApplicationCount: 0, AvgProposedPrice: 0}, *st)

	// the cached zero must be dropped once applications arrive
	e.apply(t, f1, p, 80)
	e.apply(t, f2, p, 100)
	st, err = e.projects.Stats(e.ctx, owner, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.ApplicationCount)
	assert.InDelta(t, 90.0, st.AvgProposedPrice, 1e-9)

	_, err = e.projects.Stats(e.ctx, f1, p.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = e.projects.Stats(e.ctx, owner, 404)
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestPage(t *testing.T) {
	cases := []struct{ off, lim, wantOff, wantLim int }{
		{0, 0, 0, 20},
		{-5, 10, 0, 10},
		{40, 500, 40, 100},
		{3, 100, 3, 100},
	}
	for _, c := range cases {
		o, l := Page(c.off, c.lim)
		assert.Equal(t, c.wantOff, o)
		assert.Equal(t, c.wantLim, l)
	}
}
