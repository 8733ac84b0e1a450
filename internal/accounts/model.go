package accounts

import "time"

// Roles recognized by the platform. Contributors submit activities, agency
// managers claim venues, admins moderate.
const (
	RoleParent = "parent"
	RoleAgency = "agency"
	RoleAdmin  = "admin"
)

// Account is a registered principal.
type Account struct {
	ID           string    `gorm:"column:id;primaryKey;size:190;not null"`
	Email        string    `gorm:"column:email;size:254;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;size:128;not null"`
	Role         string    `gorm:"column:role;size:32;not null"`
	TaxID        string    `gorm:"column:tax_id;size:13;not null;default:''"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName provides the explicit table binding for GORM.
func (Account) TableName() string {
	return "accounts"
}
