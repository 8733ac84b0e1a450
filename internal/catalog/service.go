package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/skillio/platform/internal/fault"
)

var errMissingDatabase = errors.New("database handle is required")

// ServiceConfig describes the catalog service dependencies.
type ServiceConfig struct {
	Database *gorm.DB
}

// Service serves public catalog reads.
type Service struct {
	db *gorm.DB
}

// NewService constructs the catalog read service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("catalog.service.new: %w", errMissingDatabase)
	}
	return &Service{db: cfg.Database}, nil
}

// GetVenue loads one venue by id.
func (s *Service) GetVenue(ctx context.Context, venueID string) (Venue, error) {
	var venue Venue
	err := s.db.WithContext(ctx).Where("id = ?", venueID).Take(&venue).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Venue{}, fmt.Errorf("catalog.get_venue: %w", fault.ErrNotFound)
	}
	if err != nil {
		return Venue{}, fmt.Errorf("catalog.get_venue: %w", err)
	}
	return venue, nil
}

// ListVenues returns all venues ordered by name.
func (s *Service) ListVenues(ctx context.Context) ([]Venue, error) {
	var venues []Venue
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&venues).Error; err != nil {
		return nil, fmt.Errorf("catalog.list_venues: %w", err)
	}
	return venues, nil
}

// ListOfferings returns active offerings, optionally filtered by city and
// category.
func (s *Service) ListOfferings(ctx context.Context, city, category string) ([]Offering, error) {
	query := s.db.WithContext(ctx).Where("active = ?", true)
	if city != "" {
		query = query.Where("city = ?", city)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var offerings []Offering
	if err := query.Order("created_at DESC").Find(&offerings).Error; err != nil {
		return nil, fmt.Errorf("catalog.list_offerings: %w", err)
	}
	return offerings, nil
}
