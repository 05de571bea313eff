package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"freelance-market/internal/core/cache"
	"freelance-market/internal/domain"
)

const (
	minPasswordLen = 6
	maxTagLen      = 50
	maxTagsPerUser = 20
)

type UserService struct {
	deps   Deps
	hasher PasswordHasher
}

func NewUserService(d Deps, h PasswordHasher) *UserService {
	return &UserService{deps: d, hasher: h}
}

type RegisterInput struct {
	Email    string
	Password string
	Role     domain.Role
}

type ProfilePatch struct {
	About *string
	Tags  *[]string
}

// Register creates an active freelancer or employer account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, domain.BadRequest("invalid email address")
	}
	if len(in.Password) < minPasswordLen {
		return nil, domain.BadRequest("password must be at least 6 characters")
	}
	if in.Role != domain.RoleFreelancer && in.Role != domain.RoleEmployer {
		return nil, domain.BadRequest("role must be freelancer or employer")
	}
	return s.create(ctx, email, in.Password, in.Role)
}

func (s *UserService) create(ctx context.Context, email, password string, role domain.Role) (*domain.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, domain.Internal("hash password failed", err)
	}
	u := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.UserActive,
		Tags:         []domain.Tag{},
	}
	err = s.deps.UoW.Transaction(ctx, func(r domain.Repos) error {
		existing, err := r.Users().FindByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrEmailRegistered
		}
		if err := r.Users().Create(ctx, u); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return domain.ErrEmailRegistered
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("register user", err)
	}
	s.deps.logger().Info("user registered", zap.Uint("user_id", u.ID), zap.String("role", string(role)))
	return u, nil
}

// EnsureAdmin makes sure an active admin with this email exists. It reports
// whether a new account was created and fails when the email belongs to a
// non-admin account.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) (*domain.User, bool, error) {
	email = normalizeEmail(email)
	if email == "" || len(password) < minPasswordLen {
		return nil, false, domain.BadRequest("bootstrap admin needs an email and a password of at least 6 characters")
	}
	u, err := s.deps.UoW.Users().FindByEmail(ctx, email)
	if err != nil {
		return nil, false, storeErr("find user", err)
	}
	if u == nil {
		u, err = s.create(ctx, email, password, domain.RoleAdmin)
		return u, err == nil, err
	}
	// a self-registered account is never promoted: whoever registered the
	// email first would otherwise become admin with their own password
	if u.Role != domain.RoleAdmin {
		return nil, false, domain.ErrBootstrapEmailTaken
	}
	if u.Status != domain.UserActive {
		u.Status = domain.UserActive
		if err := s.deps.UoW.Users().Update(ctx, u); err != nil {
			return nil, false, storeErr("reactivate admin", err)
		}
		invalidate(ctx, s.deps.Cache, profileKey(u.ID))
	}
	return u, false, nil
}

// Profile is the public view of a user, tags and rating summary included.
func (s *UserService) Profile(ctx context.Context, id uint) (*domain.UserProfile, error) {
	p, err := cache.GetOrLoadJSON(s.deps.Cache, ctx, profileKey(id), s.deps.TTL.Profile,
		func(ctx context.Context) (*domain.UserProfile, error) {
			u, err := s.deps.UoW.Users().FindByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if u == nil {
				return nil, domain.ErrUserNotFound // not cached
			}
			sum, err := s.deps.UoW.UserReviews().Summary(ctx, id)
			if err != nil {
				return nil, err
			}
			return toProfile(u, sum), nil
		})
	if err != nil {
		return nil, storeErr("load profile", err)
	}
	if p == nil {
		return nil, domain.ErrUserNotFound
	}
	return p, nil
}

func toProfile(u *domain.User, sum domain.RatingSummary) *domain.UserProfile {
	tags := u.Tags
	if tags == nil {
		tags = []domain.Tag{}
	}
	return &domain.UserProfile{
		ID: u.ID, Email: u.Email, Role: u.Role, Status: u.Status,
		About: u.About, Tags: tags, Rating: sum,
	}
}

// UpdateProfile changes about and/or replaces the tag set of the caller.
func (s *UserService) UpdateProfile(ctx context.Context, caller *domain.User, p ProfilePatch) (*domain.User, error) {
	var names []string
	if p.Tags != nil {
		var err error
		if names, err = normalizeTags(*p.Tags); err != nil {
			return nil, err
		}
	}
	var out *domain.User
	err := s.deps.UoW.Transaction(ctx, func(r domain.Repos) error {
		u, err := r.Users().FindByID(ctx, caller.ID)
		if err != nil {
			return err
		}
		if u == nil {
			return domain.ErrUserNotFound
		}
		if p.About != nil {
			u.About = strings.TrimSpace(*p.About)
			if err := r.Users().Update(ctx, u); err != nil {
				return err
			}
		}
		if p.Tags != nil {
			tags := make([]domain.Tag, 0, len(names))
			for _, n := range names {
				t, err := r.Tags().GetOrCreate(ctx, n)
				if err != nil {
					return err
				}
				tags = append(tags, *t)
			}
			if err := r.Users().ReplaceTags(ctx, u, tags); err != nil {
				return err
			}
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, storeErr("update profile", err)
	}
	invalidate(ctx, s.deps.Cache, profileKey(caller.ID))
	return out, nil
}

func normalizeTags(in []string) ([]string, error) {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		n := strings.ToLower(strings.TrimSpace(raw))
		if n == "" {
			continue
		}
		if utf8.RuneCountInString(n) > maxTagLen {
			return nil, domain.BadRequest("tag names are limited to 50 characters")
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	if len(out) > maxTagsPerUser {
		return nil, domain.BadRequest("at most 20 tags per user")
	}
	return out, nil
}

func (s *UserService) List(ctx context.Context, caller *domain.User, f domain.UserFilter) ([]domain.User, int64, error) {
	if _, err := domain.RequireRole(caller, domain.RoleAdmin); err != nil {
		return nil, 0, err
	}
	if f.Role != "" && !f.Role.Valid() {
		return nil, 0, domain.BadRequest("unknown role")
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, domain.BadRequest("unknown status")
	}
	f.Offset, f.Limit = Page(f.Offset, f.Limit)
	us, total, err := s.deps.UoW.Users().List(ctx, f)
	if err != nil {
		return nil, 0, storeErr("list users", err)
	}
	return us, total, nil
}

// SetStatus activates or deactivates an account. Inactive users keep their
// data but fail every authenticated request.
func (s *UserService) SetStatus(ctx context.Context, caller *domain.User, id uint, st domain.UserStatus) (*domain.User, error) {
	if _, err := domain.RequireRole(caller, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if !st.Valid() {
		return nil, domain.BadRequest("status must be active or inactive")
	}
	if id == caller.ID && st != domain.UserActive {
		return nil, domain.BadRequest("cannot deactivate your own account")
	}
	var out *domain.User
	err := s.deps.UoW.Transaction(ctx, func(r domain.Repos) error {
		u, err := r.Users().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if u == nil {
			return domain.ErrUserNotFound
		}
		u.Status = st
		if err := r.Users().Update(ctx, u); err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, storeErr("set user status", err)
	}
	invalidate(ctx, s.deps.Cache, profileKey(id))
	s.deps.logger().Info("user status changed", zap.Uint("user_id", id), zap.String("status", string(st)), zap.Uint("by", caller.ID))
	return out, nil
}

// Delete removes a user together with everything the user owns.
func (s *UserService) Delete(ctx context.Context, caller *domain.User, id uint) error {
	if _, err := domain.RequireRole(caller, domain.RoleAdmin); err != nil {
		return err
	}
	if id == caller.ID {
		return domain.BadRequest("cannot delete your own account")
	}
	var fp domain.UserFootprint
	err := s.deps.UoW.Transaction(ctx, func(r domain.Repos) error {
		u, err := r.Users().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if u == nil {
			return domain.ErrUserNotFound
		}
		if fp, err = r.Users().Footprint(ctx, id); err != nil {
			return err
		}
		ok, err := r.Users().Delete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		return storeErr("delete user", err)
	}
	keys := []string{profileKey(id)}
	for _, pid := range fp.ProjectIDs {
		keys = append(keys, projectStatsKey(pid))
	}
	for _, uid := range fp.ReviewedUserIDs {
		keys = append(keys, profileKey(uid))
	}
	invalidate(ctx, s.deps.Cache, keys...)
	s.deps.logger().Info("user deleted", zap.Uint("user_id", id), zap.Uint("by", caller.ID))
	return nil
}
