package domain

import "time"

type ProjectStatus string

const (
	ProjectOpen       ProjectStatus = "open"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectClosed     ProjectStatus = "closed"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectOpen, ProjectInProgress, ProjectClosed:
		return true
	}
	return false
}

type Project struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Title       string        `gorm:"size:255;not null;index" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Budget      float64       `gorm:"type:decimal(12,2);not null" json:"budget"`
	Status      ProjectStatus `gorm:"size:20;not null;default:open;index" json:"status"`
	EmployerID  uint          `gorm:"not null;index" json:"employer_id"`
	Employer    *User         `gorm:"foreignKey:EmployerID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type ProjectFilter struct {
	Search     string
	Status     ProjectStatus
	EmployerID uint
	Offset     int
	Limit      int
}

type ProjectPatch struct {
	Title       *string
	Description *string
	Budget      *float64
	Status      *ProjectStatus
}

type ProjectStats struct {
	ApplicationCount int64   `json:"application_count" gorm:"column:application_count"`
	AvgProposedPrice float64 `json:"avg_proposed_price" gorm:"column:avg_proposed_price"`
}
