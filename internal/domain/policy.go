package domain

// Guard and permission predicates. All of them are pure: they look only at
// the caller and the resource handed in.

func RequireActive(u *User) (*User, error) {
	if u == nil {
		return nil, ErrUnauthenticated
	}
	if u.Status != UserActive {
		return nil, ErrInactiveAccount
	}
	return u, nil
}

func RequireRole(u *User, roles ...Role) (*User, error) {
	if u == nil {
		return nil, ErrUnauthenticated
	}
	for _, r := range roles {
		if u.Role == r {
			return u, nil
		}
	}
	return nil, ErrForbidden
}

func IsAdmin(u *User) bool { return u != nil && u.Role == RoleAdmin }

func OwnsProject(u *User, p *Project) bool {
	return u != nil && p != nil && p.EmployerID == u.ID
}

// CanManageProject covers update, delete, stats, listing applications,
// deciding application status and reviewing applications.
func CanManageProject(u *User, p *Project) bool {
	return OwnsProject(u, p) || IsAdmin(u)
}

// IsApplicant reports whether u is the freelancer who filed a.
func IsApplicant(u *User, a *Application) bool {
	return u != nil && a != nil && u.Role == RoleFreelancer && a.FreelancerID == u.ID
}

func CanDeleteApplication(u *User, a *Application) bool {
	return (u != nil && a != nil && a.FreelancerID == u.ID) || IsAdmin(u)
}

func CanViewApplication(u *User, a *Application, p *Project) bool {
	return CanDeleteApplication(u, a) || CanManageProject(u, p)
}

// CheckUserReview validates the (reviewer, target) pair. Existence of target
// is the caller's concern.
func CheckUserReview(reviewer, target *User) error {
	if reviewer.ID == target.ID {
		return ErrSelfReview
	}
	if reviewer.Role == target.Role {
		return ErrSameRoleReview
	}
	return nil
}

// ProjectScope narrows a listing filter to what the caller may see.
// Anonymous callers are treated like freelancers.
func ProjectScope(u *User, f ProjectFilter) ProjectFilter {
	switch {
	case IsAdmin(u):
	case u != nil && u.Role == RoleEmployer:
		f.EmployerID = u.ID
	default:
		f.Status = ProjectOpen
		f.EmployerID = 0
	}
	return f
}
