package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/skillio/platform/internal/accounts"
	"github.com/skillio/platform/internal/antiautomation"
	"github.com/skillio/platform/internal/auth"
	"github.com/skillio/platform/internal/catalog"
	"github.com/skillio/platform/internal/csrf"
	"github.com/skillio/platform/internal/moderation"
	"github.com/skillio/platform/internal/ownership"
	"github.com/skillio/platform/internal/ratelimit"
)

const (
	principalIDContextKey   = "skillio_principal_id"
	principalRoleContextKey = "skillio_principal_role"

	csrfHeaderName = "X-CSRF-Token"
)

var (
	errMissingTokenManager  = errors.New("token manager dependency required")
	errMissingAccounts      = errors.New("accounts service dependency required")
	errMissingModeration    = errors.New("moderation service dependency required")
	errMissingOwnership     = errors.New("ownership workflow dependency required")
	errMissingCatalog       = errors.New("catalog service dependency required")
	errMissingLimiter       = errors.New("rate limiter dependency required")
	errMissingCSRF          = errors.New("csrf store dependency required")
	errInvalidAuthorization = errors.New("authorization header missing or invalid")
)

// SessionTokenManager issues and validates session tokens for handlers.
type SessionTokenManager interface {
	IssueSessionToken(principal auth.Principal) (string, int64, error)
	ValidateToken(token string) (auth.Principal, error)
}

// Dependencies wires the trust-and-safety core into the HTTP layer.
type Dependencies struct {
	TokenManager   SessionTokenManager
	Accounts       *accounts.Service
	Moderation     *moderation.Service
	Ownership      *ownership.Workflow
	Catalog        *catalog.Service
	Limiter        *ratelimit.Limiter
	CSRFTokens     *csrf.TokenStore
	AntiAutomation antiautomation.Policy
	Clock          func() time.Time
	Logger         *zap.Logger
}

// NewHTTPHandler builds the gin router for the API surface.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.TokenManager == nil {
		return nil, errMissingTokenManager
	}
	if deps.Accounts == nil {
		return nil, errMissingAccounts
	}
	if deps.Moderation == nil {
		return nil, errMissingModeration
	}
	if deps.Ownership == nil {
		return nil, errMissingOwnership
	}
	if deps.Catalog == nil {
		return nil, errMissingCatalog
	}
	if deps.Limiter == nil {
		return nil, errMissingLimiter
	}
	if deps.CSRFTokens == nil {
		return nil, errMissingCSRF
	}

	policy := deps.AntiAutomation
	if policy == nil {
		policy = antiautomation.NewHoneypotPolicy()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(securityHeaders())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type", csrfHeaderName},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		tokens:         deps.TokenManager,
		accounts:       deps.Accounts,
		moderation:     deps.Moderation,
		ownership:      deps.Ownership,
		catalog:        deps.Catalog,
		limiter:        deps.Limiter,
		csrfTokens:     deps.CSRFTokens,
		antiAutomation: policy,
		clock:          clock,
		logger:         logger,
	}

	router.POST("/api/register",
		ratelimit.Middleware(deps.Limiter, "register", ratelimit.PolicyRegister, logger),
		handler.handleRegister)
	router.POST("/api/login",
		ratelimit.Middleware(deps.Limiter, "login", ratelimit.PolicyLogin, logger),
		handler.handleLogin)
	router.GET("/api/venues", handler.handleListVenues)
	router.GET("/api/offerings", handler.handleListOfferings)

	authorized := router.Group("/")
	authorized.Use(handler.authorizeRequest)
	authorized.GET("/api/csrf", handler.handleIssueCSRF)

	mutating := authorized.Group("/")
	mutating.Use(handler.requireCSRF)
	mutating.POST("/api/submit-activity",
		handler.requireRole(accounts.RoleParent), handler.handleSubmitActivity)
	mutating.POST("/api/moderate-submission",
		handler.requireRole(accounts.RoleAdmin), handler.handleModerateSubmission)
	mutating.POST("/api/claim-agency",
		handler.requireRole(accounts.RoleAgency), handler.handleClaimAgency)
	mutating.POST("/api/resolve-claim",
		handler.requireRole(accounts.RoleAdmin), handler.handleResolveClaim)

	authorized.GET("/api/claimable-agencies",
		handler.requireRole(accounts.RoleAgency), handler.handleListClaimable)
	authorized.GET("/api/pending-submissions",
		handler.requireRole(accounts.RoleAdmin), handler.handleListPendingSubmissions)

	return router, nil
}

type httpHandler struct {
	tokens         SessionTokenManager
	accounts       *accounts.Service
	moderation     *moderation.Service
	ownership      *ownership.Workflow
	catalog        *catalog.Service
	limiter        *ratelimit.Limiter
	csrfTokens     *csrf.TokenStore
	antiAutomation antiautomation.Policy
	clock          func() time.Time
	logger         *zap.Logger
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Writer.Header()
		header.Set("X-Content-Type-Options", "nosniff")
		header.Set("X-Frame-Options", "DENY")
		header.Set("X-XSS-Protection", "1; mode=block")
		header.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

func (h *httpHandler) authorizeRequest(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidAuthorization.Error()})
		return
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidAuthorization.Error()})
		return
	}
	principal, err := h.tokens.ValidateToken(token)
	if err != nil {
		h.logger.Warn("token validation failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set(principalIDContextKey, principal.ID)
	c.Set(principalRoleContextKey, principal.Role)
	c.Next()
}

func (h *httpHandler) requireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(principalRoleContextKey)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}

// requireCSRF consumes a single-use token bound to the authenticated
// principal before any state-changing handler runs.
func (h *httpHandler) requireCSRF(c *gin.Context) {
	principalID := c.GetString(principalIDContextKey)
	token := strings.TrimSpace(c.GetHeader(csrfHeaderName))
	if !h.csrfTokens.Validate(principalID, token) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid csrf token"})
		return
	}
	c.Next()
}
