package domain

import "context"

// Finders return (nil, nil) when the row does not exist. Create methods return
// ErrDuplicate (possibly wrapped) when a unique index rejects the row.

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, f UserFilter) ([]User, int64, error)
	Update(ctx context.Context, u *User) error
	ReplaceTags(ctx context.Context, u *User, tags []Tag) error
	Footprint(ctx context.Context, id uint) (UserFootprint, error)
	// Delete removes the user and everything the user owns.
	Delete(ctx context.Context, id uint) (bool, error)
}

type TagRepository interface {
	GetOrCreate(ctx context.Context, name string) (*Tag, error)
}

type ProjectRepository interface {
	Create(ctx context.Context, p *Project) error
	FindByID(ctx context.Context, id uint) (*Project, error)
	List(ctx context.Context, f ProjectFilter) ([]Project, error)
	Update(ctx context.Context, p *Project) error
	// Delete removes the project with its applications and their reviews.
	Delete(ctx context.Context, id uint) (bool, error)
	Stats(ctx context.Context, id uint) (ProjectStats, error)
}

type ApplicationRepository interface {
	Create(ctx context.Context, a *Application) error
	FindByID(ctx context.Context, id uint) (*Application, error)
	FindByProjectAndFreelancer(ctx context.Context, projectID, freelancerID uint) (*Application, error)
	ListByProject(ctx context.Context, projectID uint) ([]Application, error)
	List(ctx context.Context, offset, limit int) ([]Application, int64, error)
	Update(ctx context.Context, a *Application) error
	// Delete removes the application and its review.
	Delete(ctx context.Context, id uint) (bool, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, r *Review) error
	FindByApplication(ctx context.Context, applicationID uint) (*Review, error)
}

type UserReviewRepository interface {
	Create(ctx context.Context, r *UserReview) error
	FindByPair(ctx context.Context, reviewerID, reviewedID uint) (*UserReview, error)
	ListForUser(ctx context.Context, reviewedID uint) ([]UserReview, error)
	Summary(ctx context.Context, reviewedID uint) (RatingSummary, error)
}

type Repos interface {
	Users() UserRepository
	Tags() TagRepository
	Projects() ProjectRepository
	Applications() ApplicationRepository
	Reviews() ReviewRepository
	UserReviews() UserReviewRepository
}

// UnitOfWork scopes a group of repository calls to one transaction.
type UnitOfWork interface {
	Repos
	Transaction(ctx context.Context, fn func(r Repos) error) error
}
