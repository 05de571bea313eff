package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"freelance-market/internal/domain"
)

type IdentityService struct {
	deps   Deps
	hasher PasswordHasher
	tokens TokenIssuer
}

func NewIdentityService(d Deps, h PasswordHasher, t TokenIssuer) *IdentityService {
	return &IdentityService{deps: d, hasher: h, tokens: t}
}

// Authenticate checks email/password and issues a bearer token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *IdentityService) Authenticate(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = normalizeEmail(email)
	u, err := s.deps.UoW.Users().FindByEmail(ctx, email)
	if err != nil {
		return "", nil, storeErr("find user", err)
	}
	if u == nil || !s.hasher.Verify(password, u.PasswordHash) {
		return "", nil, domain.ErrInvalidCredentials
	}
	tok, err := s.tokens.Issue(u.ID, string(u.Role))
	if err != nil {
		return "", nil, domain.Internal("issue token failed", err)
	}
	return tok, u, nil
}

// ResolveCaller maps a bearer token to the stored user it was issued for.
func (s *IdentityService) ResolveCaller(ctx context.Context, token string) (*domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}
	uid, err := s.tokens.Subject(token)
	if err != nil {
		s.deps.logger().Debug("token rejected", zap.Error(err))
		return nil, domain.ErrUnauthenticated
	}
	u, err := s.deps.UoW.Users().FindByID(ctx, uid)
	if err != nil {
		return nil, storeErr("find user", err)
	}
	if u == nil {
		return nil, domain.ErrUnauthenticated
	}
	return u, nil
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }
