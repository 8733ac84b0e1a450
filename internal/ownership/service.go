// Package ownership implements the workflow through which an agency-class
// principal asks to be recognized as the manager of an existing venue.
// Creating a claim grants nothing by itself; the rights transfer happens when
// an administrator resolves the claim.
package ownership

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/skillio/platform/internal/catalog"
	"github.com/skillio/platform/internal/fault"
)

var (
	errMissingDatabase   = errors.New("database handle is required")
	errMissingIDProvider = errors.New("id provider is required")
)

const (
	opClaim         = "ownership.claim"
	opResolve       = "ownership.resolve"
	opListClaimable = "ownership.list_claimable"
	opListPending   = "ownership.list_pending"
)

// IDProvider issues identifiers for new claims.
type IDProvider interface {
	NewID() (string, error)
}

// WorkflowConfig describes the workflow dependencies.
type WorkflowConfig struct {
	Database   *gorm.DB
	IDProvider IDProvider
	Clock      func() time.Time
	Logger     *zap.Logger
}

// Workflow manages venue ownership claims.
type Workflow struct {
	db         *gorm.DB
	idProvider IDProvider
	clock      func() time.Time
	logger     *zap.Logger
}

// NewWorkflow constructs the claim workflow.
func NewWorkflow(cfg WorkflowConfig) (*Workflow, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("ownership.workflow.new: %w", errMissingDatabase)
	}
	if cfg.IDProvider == nil {
		return nil, fmt.Errorf("ownership.workflow.new: %w", errMissingIDProvider)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{
		db:         cfg.Database,
		idProvider: cfg.IDProvider,
		clock:      clock,
		logger:     logger,
	}, nil
}

// Claim records a pending ownership claim by the principal against the
// venue. The duplicate-pending check and the insert run in one transaction
// so two concurrent claims for the same pair cannot both succeed.
func (w *Workflow) Claim(ctx context.Context, principalID, venueID string) (Claim, error) {
	if strings.TrimSpace(principalID) == "" || strings.TrimSpace(venueID) == "" {
		return Claim{}, fault.Validation("claimant and venue id are required")
	}

	claimID, err := w.idProvider.NewID()
	if err != nil {
		w.logError(opClaim, "id_generation_failed", err)
		return Claim{}, fmt.Errorf("%s.id_generation_failed: %w", opClaim, err)
	}

	claim := Claim{
		ID:        claimID,
		UserID:    principalID,
		VenueID:   venueID,
		Status:    StatusPending,
		CreatedAt: w.clock().UTC(),
	}

	txErr := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var venue catalog.Venue
		err := tx.Where("id = ?", venueID).Take(&venue).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: venue %s", fault.ErrNotFound, venueID)
		}
		if err != nil {
			w.logError(opClaim, "venue_select_failed", err, zap.String("venue_id", venueID))
			return fmt.Errorf("%s.venue_select_failed: %w", opClaim, err)
		}

		var pendingCount int64
		err = tx.Model(&Claim{}).
			Where("user_id = ? AND venue_id = ? AND status = ?", principalID, venueID, StatusPending).
			Count(&pendingCount).Error
		if err != nil {
			w.logError(opClaim, "pending_check_failed", err, zap.String("venue_id", venueID))
			return fmt.Errorf("%s.pending_check_failed: %w", opClaim, err)
		}
		if pendingCount > 0 {
			return fmt.Errorf("%w: pending claim already exists for venue %s", fault.ErrConflict, venueID)
		}

		if err := tx.Create(&claim).Error; err != nil {
			w.logError(opClaim, "insert_failed", err, zap.String("venue_id", venueID))
			return fmt.Errorf("%s.insert_failed: %w", opClaim, err)
		}
		return nil
	})
	if txErr != nil {
		return Claim{}, txErr
	}

	return claim, nil
}

// ListClaimable returns venues the principal could claim: not created by the
// principal and with no pending claim from the principal.
func (w *Workflow) ListClaimable(ctx context.Context, principalID string) ([]catalog.Venue, error) {
	if strings.TrimSpace(principalID) == "" {
		return nil, fault.Validation("principal id is required")
	}

	pendingClaims := w.db.Model(&Claim{}).
		Select("venue_id").
		Where("user_id = ? AND status = ?", principalID, StatusPending)

	var venues []catalog.Venue
	err := w.db.WithContext(ctx).
		Where("created_by <> ?", principalID).
		Where("id NOT IN (?)", pendingClaims).
		Order("name ASC").
		Find(&venues).Error
	if err != nil {
		w.logError(opListClaimable, "query_failed", err, zap.String("user_id", principalID))
		return nil, fmt.Errorf("%s.query_failed: %w", opListClaimable, err)
	}
	return venues, nil
}

// Resolve is the administrative pending→terminal transition. Approval
// transfers the venue's ownership to the claimant inside the same
// transaction; the guarded status flip makes the first resolver win and the
// loser observe fault.ErrNotFound.
func (w *Workflow) Resolve(ctx context.Context, claimID, action, reviewerID string) (Claim, error) {
	if strings.TrimSpace(claimID) == "" || strings.TrimSpace(reviewerID) == "" {
		return Claim{}, fault.Validation("claim id and reviewer are required")
	}
	action = strings.ToLower(strings.TrimSpace(action))
	if action != ActionApprove && action != ActionReject {
		return Claim{}, fault.Validation("action must be approve or reject")
	}

	var resolved Claim
	txErr := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var claim Claim
		err := tx.Where("id = ? AND status = ?", claimID, StatusPending).Take(&claim).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: no pending claim %s", fault.ErrNotFound, claimID)
		}
		if err != nil {
			w.logError(opResolve, "select_failed", err, zap.String("claim_id", claimID))
			return fmt.Errorf("%s.select_failed: %w", opResolve, err)
		}

		newStatus := StatusRejected
		if action == ActionApprove {
			newStatus = StatusApproved
			transfer := tx.Model(&catalog.Venue{}).
				Where("id = ?", claim.VenueID).
				Update("created_by", claim.UserID)
			if transfer.Error != nil {
				w.logError(opResolve, "transfer_failed", transfer.Error, zap.String("claim_id", claimID))
				return fmt.Errorf("%s.transfer_failed: %w", opResolve, transfer.Error)
			}
			if transfer.RowsAffected != 1 {
				return fmt.Errorf("%w: venue %s", fault.ErrNotFound, claim.VenueID)
			}
		}

		reviewedAt := w.clock().UTC()
		flip := tx.Model(&Claim{}).
			Where("id = ? AND status = ?", claimID, StatusPending).
			Updates(map[string]interface{}{
				"status":      newStatus,
				"reviewed_by": reviewerID,
				"reviewed_at": reviewedAt,
			})
		if flip.Error != nil {
			w.logError(opResolve, "status_update_failed", flip.Error, zap.String("claim_id", claimID))
			return fmt.Errorf("%s.status_update_failed: %w", opResolve, flip.Error)
		}
		if flip.RowsAffected != 1 {
			return fmt.Errorf("%w: claim %s already resolved", fault.ErrNotFound, claimID)
		}

		claim.Status = newStatus
		claim.ReviewedBy = reviewerID
		claim.ReviewedAt = &reviewedAt
		resolved = claim
		return nil
	})
	if txErr != nil {
		return Claim{}, txErr
	}

	return resolved, nil
}

// ListPending returns pending claims oldest first for the admin surface.
func (w *Workflow) ListPending(ctx context.Context) ([]Claim, error) {
	var pending []Claim
	if err := w.db.WithContext(ctx).
		Where("status = ?", StatusPending).
		Order("created_at ASC").
		Find(&pending).Error; err != nil {
		w.logError(opListPending, "query_failed", err)
		return nil, fmt.Errorf("%s.query_failed: %w", opListPending, err)
	}
	return pending, nil
}

func (w *Workflow) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	w.logger.Error("ownership workflow error", attrs...)
}
