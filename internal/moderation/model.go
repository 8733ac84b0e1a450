package moderation

import "time"

// Submission statuses. A submission starts pending and transitions exactly
// once; both non-pending states are terminal.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Reviewer actions accepted by Resolve.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Field length limits applied during sanitization.
const (
	maxFieldLength       = 200
	maxDescriptionLength = 2000
)

// Submission is a contributor-proposed catalog entry awaiting moderation.
// Once resolved, the row is never mutated again.
type Submission struct {
	ID           string    `gorm:"column:id;primaryKey;size:190;not null"`
	SubmittedBy  string    `gorm:"column:submitted_by;size:190;not null;index"`
	ActivityName string    `gorm:"column:activity_name;size:200;not null"`
	VenueName    string    `gorm:"column:venue_name;size:200;not null"`
	Category     string    `gorm:"column:category;size:100;not null"`
	City         string    `gorm:"column:city;size:200;not null"`
	Description  string    `gorm:"column:description;type:text;not null;default:''"`
	Status       string    `gorm:"column:status;size:16;not null;default:'pending';index"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
}

// TableName provides the explicit table binding for GORM.
func (Submission) TableName() string {
	return "submitted_activities"
}

// SubmitInput carries the raw contributor-supplied fields.
type SubmitInput struct {
	ActivityName string
	VenueName    string
	Category     string
	City         string
	Description  string
}
