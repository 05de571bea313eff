package domain

import "time"

type Role string

const (
	RoleFreelancer Role = "freelancer"
	RoleEmployer   Role = "employer"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleFreelancer, RoleEmployer, RoleAdmin:
		return true
	}
	return false
}

type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

func (s UserStatus) Valid() bool { return s == UserActive || s == UserInactive }

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash string     `gorm:"size:100;not null" json:"-"`
	Role         Role       `gorm:"size:16;not null;index" json:"role"`
	Status       UserStatus `gorm:"size:16;not null;default:active" json:"status"`
	About        string     `gorm:"type:text" json:"about"`
	Tags         []Tag      `gorm:"many2many:user_tags;constraint:OnDelete:CASCADE" json:"tags"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// UserFootprint lists the rows outside the user's own record whose derived
// data changes when the user is deleted.
type UserFootprint struct {
	ProjectIDs      []uint // owned projects and projects applied to
	ReviewedUserIDs []uint // users this user has reviewed
}

// Tag is shared across users; names are stored trimmed and lower-cased.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:50;not null" json:"name"`
}

type UserFilter struct {
	Q      string
	Role   Role
	Status UserStatus
	Offset int
	Limit  int
}

// UserProfile is the public view of a user.
type UserProfile struct {
	ID     uint          `json:"id"`
	Email  string        `json:"email"`
	Role   Role          `json:"role"`
	Status UserStatus    `json:"status"`
	About  string        `json:"about"`
	Tags   []Tag         `json:"tags"`
	Rating RatingSummary `json:"rating"`
}

type RatingSummary struct {
	Count   int64   `json:"count" gorm:"column:review_count"`
	Average float64 `json:"average" gorm:"column:average_rating"`
}
