package domain

import "time"

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationAccepted, ApplicationRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationAccepted || s == ApplicationRejected
}

// CanTransition: pending -> accepted|rejected. Re-asserting the current status is allowed.
func (s ApplicationStatus) CanTransition(to ApplicationStatus) bool {
	if !to.Valid() {
		return false
	}
	if s == to {
		return true
	}
	return s == ApplicationPending && to.Terminal()
}

type Application struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	ProjectID     uint              `gorm:"not null;uniqueIndex:uniq_application_project_freelancer,priority:1" json:"project_id"`
	FreelancerID  uint              `gorm:"not null;uniqueIndex:uniq_application_project_freelancer,priority:2;index" json:"freelancer_id"`
	ProposalText  string            `gorm:"type:text;not null" json:"proposal_text"`
	ProposedPrice float64           `gorm:"type:decimal(12,2);not null" json:"proposed_price"`
	Status        ApplicationStatus `gorm:"size:20;not null;default:pending" json:"status"`
	Project       *Project          `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	Freelancer    *User             `gorm:"foreignKey:FreelancerID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

type ApplicationPatch struct {
	ProposalText  *string
	ProposedPrice *float64
	Status        *ApplicationStatus
}
