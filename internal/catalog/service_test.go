package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/skillio/platform/internal/fault"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&Venue{}, &Offering{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	service, err := NewService(ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return service, db
}

func TestGetVenue(t *testing.T) {
	service, db := newTestService(t)
	venue := Venue{ID: "venue-1", Name: "Harmony Center", City: "Sofia", Verified: true, CreatedBy: "admin-1"}
	if err := db.Create(&venue).Error; err != nil {
		t.Fatalf("failed to seed venue: %v", err)
	}

	loaded, err := service.GetVenue(context.Background(), "venue-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Name != "Harmony Center" {
		t.Fatalf("unexpected venue: %+v", loaded)
	}

	if _, err := service.GetVenue(context.Background(), "missing"); !errors.Is(err, fault.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListOfferingsFilters(t *testing.T) {
	service, db := newTestService(t)
	offerings := []Offering{
		{ID: "o-1", VenueID: "v-1", Title: "Kids Yoga", Category: "Sports", City: "Sofia", AgeMin: 3, AgeMax: 18, Active: true, Verified: true, CreatedBy: "admin-1"},
		{ID: "o-2", VenueID: "v-1", Title: "Piano", Category: "Music", City: "Sofia", AgeMin: 5, AgeMax: 12, Active: true, Verified: true, CreatedBy: "admin-1"},
		{ID: "o-3", VenueID: "v-2", Title: "Chess", Category: "Games", City: "Plovdiv", AgeMin: 6, AgeMax: 18, Active: false, Verified: true, CreatedBy: "admin-1"},
	}
	for index := range offerings {
		if err := db.Create(&offerings[index]).Error; err != nil {
			t.Fatalf("failed to seed offering: %v", err)
		}
	}

	all, err := service.ListOfferings(context.Background(), "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected inactive offerings excluded, got %d rows", len(all))
	}

	sofiaSports, err := service.ListOfferings(context.Background(), "Sofia", "Sports")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sofiaSports) != 1 || sofiaSports[0].ID != "o-1" {
		t.Fatalf("unexpected filtered result: %+v", sofiaSports)
	}
}
