// Package moderation implements the pipeline that gates contributor-submitted
// activity proposals into the public catalog. Approval promotes a submission
// into one venue and one offering record in a single unit of work.
//
// Policy note: the reviewer, not the original submitter, becomes the owner of
// record for the venue and offering created on approval. This mirrors the
// reference behavior and is kept deliberately rather than silently changed.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/skillio/platform/internal/catalog"
	"github.com/skillio/platform/internal/content"
	"github.com/skillio/platform/internal/fault"
	"github.com/skillio/platform/internal/ratelimit"
)

var (
	errMissingDatabase   = errors.New("database handle is required")
	errMissingIDProvider = errors.New("id provider is required")
	errMissingLimiter    = errors.New("rate limiter is required")
	noOpLogger           = zap.NewNop()
)

const (
	opServiceNew = "moderation.service.new"
	opSubmit     = "moderation.submit"
	opResolve    = "moderation.resolve"
)

// ServiceError carries an operation-scoped error code for logging and
// matching, wrapping the underlying cause.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

// Code returns the machine-readable error code.
func (e *ServiceError) Code() string {
	return e.code
}

func newServiceError(operation, reason string, cause error) error {
	return &ServiceError{code: fmt.Sprintf("%s.%s", operation, reason), err: cause}
}

// RateLimiter is the admission check consulted before accepting a
// submission.
type RateLimiter interface {
	Admit(key string, maxRequests int, window time.Duration) (bool, int)
}

// IDProvider issues identifiers for new rows.
type IDProvider interface {
	NewID() (string, error)
}

// ServiceConfig describes the pipeline dependencies.
type ServiceConfig struct {
	Database   *gorm.DB
	Limiter    RateLimiter
	IDProvider IDProvider
	Clock      func() time.Time
	Logger     *zap.Logger
}

// Service is the submission moderation pipeline.
type Service struct {
	db         *gorm.DB
	limiter    RateLimiter
	idProvider IDProvider
	clock      func() time.Time
	logger     *zap.Logger
}

// NewService constructs the pipeline.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}
	if cfg.Limiter == nil {
		return nil, newServiceError(opServiceNew, "missing_limiter", errMissingLimiter)
	}
	if cfg.IDProvider == nil {
		return nil, newServiceError(opServiceNew, "missing_id_provider", errMissingIDProvider)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Service{
		db:         cfg.Database,
		limiter:    cfg.Limiter,
		idProvider: cfg.IDProvider,
		clock:      clock,
		logger:     logger,
	}, nil
}

// Submit validates, sanitizes, and persists a new pending submission for the
// principal. Submissions are rate limited per principal (3 per hour).
func (s *Service) Submit(ctx context.Context, principalID string, input SubmitInput) (Submission, error) {
	if strings.TrimSpace(principalID) == "" {
		return Submission{}, fault.Validation("submitter is required")
	}

	policy := ratelimit.PolicySubmitActivity
	allowed, _ := s.limiter.Admit(ratelimit.SubmissionKey(principalID), policy.MaxRequests, policy.Window)
	if !allowed {
		return Submission{}, fault.RateLimited(policy.Window)
	}

	required := []struct {
		name  string
		value string
	}{
		{"activity_name", input.ActivityName},
		{"venue_name", input.VenueName},
		{"category", input.Category},
		{"city", input.City},
	}
	sanitized := make(map[string]string, len(required))
	for _, field := range required {
		value := content.Sanitize(strings.TrimSpace(field.value), maxFieldLength)
		if value == "" {
			return Submission{}, fault.Validation("field %s is required", field.name)
		}
		if content.LooksLikeSpam(value) {
			return Submission{}, fmt.Errorf("%w: field %s", fault.ErrSpamRejected, field.name)
		}
		sanitized[field.name] = value
	}

	description := content.Sanitize(input.Description, maxDescriptionLength)
	if description != "" && content.LooksLikeSpam(description) {
		return Submission{}, fmt.Errorf("%w: description", fault.ErrSpamRejected)
	}

	submissionID, err := s.idProvider.NewID()
	if err != nil {
		s.logError(opSubmit, "id_generation_failed", err)
		return Submission{}, newServiceError(opSubmit, "id_generation_failed", err)
	}

	submission := Submission{
		ID:           submissionID,
		SubmittedBy:  principalID,
		ActivityName: sanitized["activity_name"],
		VenueName:    sanitized["venue_name"],
		Category:     sanitized["category"],
		City:         sanitized["city"],
		Description:  description,
		Status:       StatusPending,
		CreatedAt:    s.clock().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&submission).Error; err != nil {
		s.logError(opSubmit, "insert_failed", err, zap.String("submitted_by", principalID))
		return Submission{}, newServiceError(opSubmit, "insert_failed", err)
	}

	return submission, nil
}

// Resolution reports the outcome of a resolved submission. Venue and
// Offering are set only on approval.
type Resolution struct {
	Submission Submission
	Venue      *catalog.Venue
	Offering   *catalog.Offering
}

// Resolve transitions a pending submission to its terminal state. Approval
// atomically creates one pre-verified venue and one offering owned by the
// reviewer; rejection has no side effects. Only one concurrent resolver can
// win for a given id: the pending check and the status flip are guarded so
// the loser observes fault.ErrNotFound and no partial catalog records exist.
func (s *Service) Resolve(ctx context.Context, submissionID, action, reviewerID string) (Resolution, error) {
	if strings.TrimSpace(submissionID) == "" || strings.TrimSpace(reviewerID) == "" {
		return Resolution{}, fault.Validation("submission id and reviewer are required")
	}
	action = strings.ToLower(strings.TrimSpace(action))
	if action != ActionApprove && action != ActionReject {
		return Resolution{}, fault.Validation("action must be approve or reject")
	}

	var resolution Resolution
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var submission Submission
		err := tx.Where("id = ? AND status = ?", submissionID, StatusPending).Take(&submission).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: no pending submission %s", fault.ErrNotFound, submissionID)
		}
		if err != nil {
			s.logError(opResolve, "select_failed", err, zap.String("submission_id", submissionID))
			return newServiceError(opResolve, "select_failed", err)
		}

		newStatus := StatusRejected
		if action == ActionApprove {
			newStatus = StatusApproved

			venueID, err := s.idProvider.NewID()
			if err != nil {
				return newServiceError(opResolve, "id_generation_failed", err)
			}
			venue := catalog.Venue{
				ID:          venueID,
				Name:        submission.VenueName,
				Description: submission.Description,
				City:        submission.City,
				Verified:    true,
				CreatedBy:   reviewerID,
				CreatedAt:   s.clock().UTC(),
			}
			if err := tx.Create(&venue).Error; err != nil {
				s.logError(opResolve, "venue_insert_failed", err, zap.String("submission_id", submissionID))
				return newServiceError(opResolve, "venue_insert_failed", err)
			}

			offeringID, err := s.idProvider.NewID()
			if err != nil {
				return newServiceError(opResolve, "id_generation_failed", err)
			}
			offering := catalog.Offering{
				ID:          offeringID,
				VenueID:     venueID,
				Title:       submission.ActivityName,
				Description: submission.Description,
				Category:    submission.Category,
				City:        submission.City,
				AgeMin:      catalog.DefaultAgeMin,
				AgeMax:      catalog.DefaultAgeMax,
				Active:      true,
				Verified:    true,
				CreatedBy:   reviewerID,
				Source:      catalog.SourceContributor,
				CreatedAt:   s.clock().UTC(),
			}
			if err := tx.Create(&offering).Error; err != nil {
				s.logError(opResolve, "offering_insert_failed", err, zap.String("submission_id", submissionID))
				return newServiceError(opResolve, "offering_insert_failed", err)
			}

			resolution.Venue = &venue
			resolution.Offering = &offering
		}

		// Compare-and-swap on the pending status: a concurrent resolver that
		// lost the race flips zero rows and the whole transaction unwinds.
		flip := tx.Model(&Submission{}).
			Where("id = ? AND status = ?", submissionID, StatusPending).
			Update("status", newStatus)
		if flip.Error != nil {
			s.logError(opResolve, "status_update_failed", flip.Error, zap.String("submission_id", submissionID))
			return newServiceError(opResolve, "status_update_failed", flip.Error)
		}
		if flip.RowsAffected != 1 {
			return fmt.Errorf("%w: submission %s already resolved", fault.ErrNotFound, submissionID)
		}

		submission.Status = newStatus
		resolution.Submission = submission
		return nil
	})
	if txErr != nil {
		return Resolution{}, txErr
	}

	return resolution, nil
}

// ListPending returns pending submissions oldest first for the review queue.
func (s *Service) ListPending(ctx context.Context) ([]Submission, error) {
	var pending []Submission
	if err := s.db.WithContext(ctx).
		Where("status = ?", StatusPending).
		Order("created_at ASC").
		Find(&pending).Error; err != nil {
		s.logError(opResolve, "list_pending_failed", err)
		return nil, newServiceError(opResolve, "list_pending_failed", err)
	}
	return pending, nil
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("moderation service error", attrs...)
}
