// Package catalog holds the canonical venue and offering records that the
// moderation pipeline promotes approved submissions into.
package catalog

import "time"

const (
	// DefaultAgeMin and DefaultAgeMax are the documented broad age range
	// applied when an offering is created without explicit bounds.
	DefaultAgeMin = 3
	DefaultAgeMax = 18

	// SourceContributor marks records that entered the catalog through the
	// submission pipeline rather than direct administrative creation.
	SourceContributor = "parent"
)

// Venue is a place (school, agency, center) hosting offerings.
type Venue struct {
	ID          string    `gorm:"column:id;primaryKey;size:190;not null"`
	Name        string    `gorm:"column:name;size:200;not null"`
	Description string    `gorm:"column:description;type:text;not null;default:''"`
	City        string    `gorm:"column:city;size:200;not null"`
	Address     string    `gorm:"column:address;size:300;not null;default:''"`
	Phone       string    `gorm:"column:phone;size:32;not null;default:''"`
	Email       string    `gorm:"column:email;size:320;not null;default:''"`
	Verified    bool      `gorm:"column:verified;not null;default:false"`
	CreatedBy   string    `gorm:"column:created_by;size:190;not null;index"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName provides the explicit table binding for GORM.
func (Venue) TableName() string {
	return "venues"
}

// Offering is a bookable activity hosted by a venue.
type Offering struct {
	ID          string    `gorm:"column:id;primaryKey;size:190;not null"`
	VenueID     string    `gorm:"column:venue_id;size:190;not null;index"`
	Title       string    `gorm:"column:title;size:200;not null"`
	Description string    `gorm:"column:description;type:text;not null;default:''"`
	Category    string    `gorm:"column:category;size:100;not null"`
	City        string    `gorm:"column:city;size:200;not null"`
	AgeMin      int       `gorm:"column:age_min;not null;default:0"`
	AgeMax      int       `gorm:"column:age_max;not null;default:0"`
	Active      bool      `gorm:"column:active;not null;default:true"`
	Verified    bool      `gorm:"column:verified;not null;default:false"`
	CreatedBy   string    `gorm:"column:created_by;size:190;not null"`
	Source      string    `gorm:"column:source;size:32;not null;default:''"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName provides the explicit table binding for GORM.
func (Offering) TableName() string {
	return "offerings"
}
