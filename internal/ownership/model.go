package ownership

import "time"

// Claim statuses mirror the moderation pipeline: pending until an
// administrator resolves the claim, then terminal.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Administrative actions accepted by Resolve.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Claim is a request by a manager-class principal to be recognized as the
// controller of an existing venue.
type Claim struct {
	ID         string     `gorm:"column:id;primaryKey;size:190;not null"`
	UserID     string     `gorm:"column:user_id;size:190;not null;index:idx_claims_user_venue,priority:1"`
	VenueID    string     `gorm:"column:venue_id;size:190;not null;index:idx_claims_user_venue,priority:2"`
	Status     string     `gorm:"column:status;size:16;not null;default:'pending'"`
	CreatedAt  time.Time  `gorm:"column:created_at;not null"`
	ReviewedBy string     `gorm:"column:reviewed_by;size:190;not null;default:''"`
	ReviewedAt *time.Time `gorm:"column:reviewed_at"`
}

// TableName provides the explicit table binding for GORM.
func (Claim) TableName() string {
	return "venue_ownership_claims"
}
