package domain

import "time"

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 1000
)

func ValidRating(r int) bool { return r >= MinRating && r <= MaxRating }

// Review is the employer's feedback on one accepted application.
type Review struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	ApplicationID uint         `gorm:"not null;uniqueIndex" json:"application_id"`
	Rating        int          `gorm:"not null" json:"rating"`
	Comment       *string      `gorm:"type:text" json:"comment"`
	Application   *Application `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt     time.Time    `json:"created_at"`
}

// UserReview is cross-role feedback from one user about another.
type UserReview struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ReviewerID uint      `gorm:"not null;uniqueIndex:uniq_user_review_pair,priority:1" json:"reviewer_id"`
	ReviewedID uint      `gorm:"not null;uniqueIndex:uniq_user_review_pair,priority:2;index" json:"reviewed_id"`
	Rating     int       `gorm:"not null" json:"rating"`
	Comment    *string   `gorm:"type:text" json:"comment"`
	Reviewer   *User     `gorm:"foreignKey:ReviewerID;constraint:OnDelete:CASCADE" json:"-"`
	Reviewed   *User     `gorm:"foreignKey:ReviewedID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
