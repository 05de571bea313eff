package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"freelance-market/internal/core/auth"
	"freelance-market/internal/core/cache"
	"freelance-market/internal/domain"
	"freelance-market/internal/testutil/memstore"
	"freelance-market/pkg/utils"
)

type env struct {
	ctx   context.Context
	store *memstore.Store
	redis *miniredis.Miniredis

	identity     *IdentityService
	users        *UserService
	projects     *ProjectService
	applications *ApplicationService
	reviews      *ReviewService
	userReviews  *UserReviewService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := memstore.New()
	d := Deps{
		UoW:   store,
		Cache: cache.NewWithClient(rdb),
		TTL:   CacheTTL{Profile: time.Minute, Stats: time.Minute},
	}
	hasher := utils.Bcrypt{Cost: bcrypt.MinCost}
	tokens := &auth.JWTer{Secret: []byte("test-secret-0123456789"), Issuer: "test", TTL: time.Hour}
	return &env{
		ctx:          context.Background(),
		store:        store,
		redis:        mr,
		identity:     NewIdentityService(d, hasher, tokens),
		users:        NewUserService(d, hasher),
		projects:     NewProjectService(d),
		applications: NewApplicationService(d),
		reviews:      NewReviewService(d),
		userReviews:  NewUserReviewService(d),
	}
}

func (e *env) register(t *testing.T, email string, role domain.Role) *domain.User {
	t.Helper()
	u, err := e.users.Register(e.ctx, RegisterInput{Email: email, Password: "secret123", Role: role})
	require.NoError(t, err)
	return u
}

func (e *env) admin(t *testing.T) *domain.User {
	t.Helper()
	u, _, err := e.users.EnsureAdmin(e.ctx, "root@example.com", "secret123")
	require.NoError(t, err)
	return u
}

func (e *env) project(t *testing.T, owner *domain.User, title string) *domain.Project {
	t.Helper()
	p, err := e.projects.Create(e.ctx, owner, CreateProjectInput{Title: title, Budget: 100})
	require.NoError(t, err)
	return p
}

func (e *env) apply(t *testing.T, f *domain.User, p *domain.Project, price float64) *domain.Application {
	t.Helper()
	a, err := e.applications.Apply(e.ctx, f, p.ID, ApplyInput{ProposalText: "I can do it", ProposedPrice: price})
	require.NoError(t, err)
	return a
}

func statusPtr(s domain.ApplicationStatus) *domain.ApplicationStatus { return &s }
