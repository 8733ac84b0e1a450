package ownership

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/skillio/platform/internal/catalog"
	"github.com/skillio/platform/internal/fault"
)

type sequentialIDs struct {
	mu   sync.Mutex
	next int
}

func (p *sequentialIDs) NewID() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.next++
	return fmt.Sprintf("claim-%03d", p.next), nil
}

func newTestWorkflow(t *testing.T) (*Workflow, *gorm.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ownership.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Claim{}, &catalog.Venue{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	workflow, err := NewWorkflow(WorkflowConfig{
		Database:   db,
		IDProvider: &sequentialIDs{},
		Clock:      func() time.Time { return time.Unix(1_700_000_000, 0) },
	})
	if err != nil {
		t.Fatalf("failed to create workflow: %v", err)
	}
	return workflow, db
}

func seedVenue(t *testing.T, db *gorm.DB, id, name, createdBy string) {
	t.Helper()
	venue := catalog.Venue{
		ID:        id,
		Name:      name,
		City:      "Sofia",
		Verified:  true,
		CreatedBy: createdBy,
	}
	if err := db.Create(&venue).Error; err != nil {
		t.Fatalf("failed to seed venue: %v", err)
	}
}

func TestClaimCreatesPendingClaim(t *testing.T) {
	workflow, db := newTestWorkflow(t)
	seedVenue(t, db, "venue-1", "Harmony Center", "admin-1")

	claim, err := workflow.Claim(context.Background(), "agency-1", "venue-1")
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if claim.Status != StatusPending {
		t.Fatalf("expected pending claim, got %q", claim.Status)
	}
	if claim.UserID != "agency-1" || claim.VenueID != "venue-1" {
		t.Fatalf("unexpected claim fields %+v", claim)
	}
}

func TestClaimRejectsDuplicatePending(t *testing.T) {
	workflow, db := newTestWorkflow(t)
	seedVenue(t, db, "venue-1", "Harmony Center", "admin-1")

	if _, err := workflow.Claim(context.Background(), "agency-1", "venue-1"); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}
	if _, err := workflow.Claim(context.Background(), "agency-1", "venue-1"); !errors.Is(err, fault.ErrConflict) {
		t.Fatalf("expected conflict for duplicate pending claim, got %v", err)
	}

	// A different principal can still claim the same venue.
	if _, err := workflow.Claim(context.Background(), "agency-2", "venue-1"); err != nil {
		t.Fatalf("expected independent claim to succeed: %v", err)
	}
}

func TestClaimRejectsUnknownVenue(t *testing.T) {
	workflow, _ := newTestWorkflow(t)
	if _, err := workflow.Claim(context.Background(), "agency-1", "missing"); !errors.Is(err, fault.ErrNotFound) {
		t.Fatalf("expected not found for unknown venue, got %v", err)
	}
}

func TestClaimAllowedAgainAfterRejection(t *testing.T) {
	workflow, db := newTestWorkflow(t)
	seedVenue(t, db, "venue-1", "Harmony Center", "admin-1")

	claim, err := workflow.Claim(context.Background(), "agency-1", "venue-1")
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if _, err := workflow.Resolve(context.Background(), claim.ID, ActionReject, "admin-1"); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if _, err := workflow.Claim(context.Background(), "agency-1", "venue-1"); err != nil {
		t.Fatalf("expected a new claim after rejection: %v", err)
	}
}

func TestListClaimableExcludesOwnAndPendingClaimed(t *testing.T) {
	workflow, db := newTestWorkflow(t)
	seedVenue(t, db, "venue-own", "Own Venue", "agency-1")
	seedVenue(t, db, "venue-claimed", "Claimed Venue", "admin-1")
	seedVenue(t, db, "venue-open", "Open Venue", "admin-1")

	if _, err := workflow.Claim(context.Background(), "agency-1", "venue-claimed"); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	claimable, err := workflow.ListClaimable(context.Background(), "agency-1")
	if err != nil {
		t.Fatalf("list claimable failed: %v", err)
	}
	if len(claimable) != 1 || claimable[0].ID != "venue-open" {
		t.Fatalf("expected only the open venue, got %+v", claimable)
	}
}

func TestResolveApproveTransfersOwnership(t *testing.T) {
	workflow, db := newTestWorkflow(t)
	seedVenue(t, db, "venue-1", "Harmony Center", "admin-1")

	claim, err := workflow.Claim(context.Background(), "agency-1", "venue-1")
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	resolved, err := workflow.Resolve(context.Background(), claim.ID, ActionApprove, "admin-9")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.Status != StatusApproved {
		t.Fatalf("expected approved claim, got %q", resolved.Status)
	}
	if resolved.ReviewedBy != "admin-9" || resolved.ReviewedAt == nil {
		t.Fatalf("expected review metadata, got %+v", resolved)
	}

	var venue catalog.Venue
	if err := db.Where("id = ?", "venue-1").Take(&venue).Error; err != nil {
		t.Fatalf("failed to reload venue: %v", err)
	}
	if venue.CreatedBy != "agency-1" {
		t.Fatalf("expected ownership transferred to claimant, got %q", venue.CreatedBy)
	}
}

func TestResolveRejectLeavesOwnership(t *testing.T) {
	workflow, db := newTestWorkflow(t)
	seedVenue(t, db, "venue-1", "Harmony Center", "admin-1")

	claim, err := workflow.Claim(context.Background(), "agency-1", "venue-1")
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if _, err := workflow.Resolve(context.Background(), claim.ID, ActionReject, "admin-9"); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	var venue catalog.Venue
	if err := db.Where("id = ?", "venue-1").Take(&venue).Error; err != nil {
		t.Fatalf("failed to reload venue: %v", err)
	}
	if venue.CreatedBy != "admin-1" {
		t.Fatalf("expected ownership unchanged, got %q", venue.CreatedBy)
	}
}

func TestResolveIsFirstWriterWins(t *testing.T) {
	workflow, db := newTestWorkflow(t)
	seedVenue(t, db, "venue-1", "Harmony Center", "admin-1")

	claim, err := workflow.Claim(context.Background(), "agency-1", "venue-1")
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	if _, err := workflow.Resolve(context.Background(), claim.ID, ActionApprove, "admin-9"); err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}
	if _, err := workflow.Resolve(context.Background(), claim.ID, ActionReject, "admin-9"); !errors.Is(err, fault.ErrNotFound) {
		t.Fatalf("expected not found on second resolve, got %v", err)
	}
}

func TestResolveValidatesInput(t *testing.T) {
	workflow, _ := newTestWorkflow(t)

	if _, err := workflow.Resolve(context.Background(), "claim-1", "transfer", "admin-1"); !errors.Is(err, fault.ErrValidation) {
		t.Fatalf("expected validation error for unknown action, got %v", err)
	}
	if _, err := workflow.Resolve(context.Background(), "missing", ActionApprove, "admin-1"); !errors.Is(err, fault.ErrNotFound) {
		t.Fatalf("expected not found for unknown claim, got %v", err)
	}
}

func TestListPendingReturnsUnresolvedClaims(t *testing.T) {
	workflow, db := newTestWorkflow(t)
	seedVenue(t, db, "venue-1", "Harmony Center", "admin-1")
	seedVenue(t, db, "venue-2", "Open Venue", "admin-1")

	first, err := workflow.Claim(context.Background(), "agency-1", "venue-1")
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	second, err := workflow.Claim(context.Background(), "agency-1", "venue-2")
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	if _, err := workflow.Resolve(context.Background(), first.ID, ActionReject, "admin-1"); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	pending, err := workflow.ListPending(context.Background())
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != second.ID {
		t.Fatalf("expected only the unresolved claim, got %+v", pending)
	}
}
