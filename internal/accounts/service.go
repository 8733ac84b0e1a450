// Package accounts registers and authenticates platform principals. It sits
// outside the moderation core but is the caller that exercises the
// registration and login abuse policies, so a thin version lives here.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/skillio/platform/internal/content"
	"github.com/skillio/platform/internal/fault"
)

var (
	errMissingDatabase   = errors.New("database handle is required")
	errMissingIDProvider = errors.New("id provider is required")

	// ErrInvalidCredentials covers both unknown email and wrong password so
	// the two cases are indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("accounts: invalid credentials")
)

// timingPadHash is a throwaway bcrypt hash compared against when the email
// is unknown, keeping authentication latency flat.
var timingPadHash, _ = bcrypt.GenerateFromPassword([]byte("timing-pad"), bcrypt.DefaultCost)

// IDProvider issues identifiers for new accounts.
type IDProvider interface {
	NewID() (string, error)
}

// ServiceConfig describes the account service dependencies.
type ServiceConfig struct {
	Database   *gorm.DB
	IDProvider IDProvider
	Clock      func() time.Time
	Logger     *zap.Logger
}

// Service manages account registration and password authentication.
type Service struct {
	db         *gorm.DB
	idProvider IDProvider
	clock      func() time.Time
	logger     *zap.Logger
}

// NewService constructs the account service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("accounts.service.new: %w", errMissingDatabase)
	}
	if cfg.IDProvider == nil {
		return nil, fmt.Errorf("accounts.service.new: %w", errMissingIDProvider)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:         cfg.Database,
		idProvider: cfg.IDProvider,
		clock:      clock,
		logger:     logger,
	}, nil
}

// RegisterInput carries the sanitizable registration fields.
type RegisterInput struct {
	Email    string
	Password string
	Role     string
	TaxID    string
}

// Register validates and persists a new account. Spam-looking emails return
// fault.ErrSpamRejected so the handler can apply the silent-fail policy.
func (s *Service) Register(ctx context.Context, input RegisterInput) (Account, error) {
	email := content.Sanitize(strings.ToLower(strings.TrimSpace(input.Email)), 254)
	if email == "" || input.Password == "" || input.Role == "" {
		return Account{}, fault.Validation("all fields are required")
	}
	if !content.ValidateEmail(email) {
		return Account{}, fault.Validation("invalid email address")
	}
	if ok, reason := content.ValidatePassword(input.Password); !ok {
		return Account{}, fault.Validation("%s", reason)
	}

	role := strings.TrimSpace(input.Role)
	if role != RoleParent && role != RoleAgency {
		return Account{}, fault.Validation("invalid role")
	}

	taxID := content.Sanitize(strings.TrimSpace(input.TaxID), 13)
	if !content.ValidateTaxID(taxID) {
		return Account{}, fault.Validation("tax id must be 9 to 13 digits")
	}

	if content.LooksLikeSpam(email) {
		return Account{}, fmt.Errorf("accounts.register: %w", fault.ErrSpamRejected)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, fmt.Errorf("accounts.register.hash: %w", err)
	}

	accountID, err := s.idProvider.NewID()
	if err != nil {
		return Account{}, fmt.Errorf("accounts.register.id: %w", err)
	}

	account := Account{
		ID:           accountID,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		TaxID:        taxID,
		CreatedAt:    s.clock().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return Account{}, fmt.Errorf("accounts.register: %w", fault.ErrConflict)
		}
		s.logger.Error("account insert failed",
			zap.String("operation", "accounts.register"),
			zap.Error(err))
		return Account{}, fmt.Errorf("accounts.register.insert: %w", err)
	}

	return account, nil
}

// Authenticate verifies the email/password pair and returns the account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Account{}, ErrInvalidCredentials
	}

	var account Account
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Burn a comparison so unknown emails cost the same as bad passwords.
		_ = bcrypt.CompareHashAndPassword(timingPadHash, []byte(password))
		return Account{}, ErrInvalidCredentials
	}
	if err != nil {
		s.logger.Error("account lookup failed",
			zap.String("operation", "accounts.authenticate"),
			zap.Error(err))
		return Account{}, fmt.Errorf("accounts.authenticate.lookup: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return Account{}, ErrInvalidCredentials
	}
	return account, nil
}
