package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/skillio/platform/internal/accounts"
	"github.com/skillio/platform/internal/antiautomation"
	"github.com/skillio/platform/internal/auth"
	"github.com/skillio/platform/internal/fault"
	"github.com/skillio/platform/internal/moderation"
)

type registerRequestPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	TaxID    string `json:"tax_id"`

	// Honeypot fields: hidden in the rendered form, filled only by bots.
	Website string `json:"website"`
	URL     string `json:"url"`
	Phone   string `json:"phone"`

	// Client-reported form render time in unix milliseconds.
	FormTimestampMillis int64 `json:"timestamp"`
}

func (h *httpHandler) handleRegister(c *gin.Context) {
	var request registerRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	meta := antiautomation.FormMetadata{
		HoneypotValues: []string{request.Website, request.URL, request.Phone},
		SubmittedAt:    h.clock(),
	}
	if request.FormTimestampMillis > 0 {
		meta.FormRenderedAt = time.UnixMilli(request.FormTimestampMillis)
	}
	if h.antiAutomation.LooksAutomated(meta) {
		// Answer bots with a success-shaped body after stalling, so they
		// learn nothing and waste time.
		time.Sleep(h.antiAutomation.ResponseDelay())
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "registration received"})
		return
	}

	account, err := h.accounts.Register(c.Request.Context(), accounts.RegisterInput{
		Email:    request.Email,
		Password: request.Password,
		Role:     request.Role,
		TaxID:    request.TaxID,
	})
	if err != nil {
		if errors.Is(err, fault.ErrSpamRejected) {
			// Same silent-fail shape as the honeypot path: spam senders see
			// success and learn nothing.
			time.Sleep(h.antiAutomation.ResponseDelay())
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "registration received"})
			return
		}
		if errors.Is(err, fault.ErrConflict) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
			return
		}
		h.writeServiceError(c, "register", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": account.ID, "role": account.Role})
}

type loginRequestPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponsePayload struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

func (h *httpHandler) handleLogin(c *gin.Context) {
	var request loginRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	account, err := h.accounts.Authenticate(c.Request.Context(), request.Email, request.Password)
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.writeServiceError(c, "login", err)
		return
	}

	token, expiresIn, err := h.tokens.IssueSessionToken(auth.Principal{ID: account.ID, Role: account.Role})
	if err != nil {
		h.logger.Error("failed to issue session token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token_issue_failed"})
		return
	}

	c.JSON(http.StatusOK, sessionResponsePayload{
		AccessToken: token,
		ExpiresIn:   expiresIn,
		TokenType:   "Bearer",
	})
}

func (h *httpHandler) handleIssueCSRF(c *gin.Context) {
	principalID := c.GetString(principalIDContextKey)
	token, err := h.csrfTokens.Issue(principalID)
	if err != nil {
		h.logger.Error("failed to issue csrf token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "csrf_issue_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"csrf_token": token})
}

type submitActivityPayload struct {
	ActivityName string `json:"activity_name"`
	VenueName    string `json:"venue_name"`
	Category     string `json:"category"`
	City         string `json:"city"`
	Description  string `json:"description"`
}

func (h *httpHandler) handleSubmitActivity(c *gin.Context) {
	var request submitActivityPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	submission, err := h.moderation.Submit(c.Request.Context(), c.GetString(principalIDContextKey), moderation.SubmitInput{
		ActivityName: request.ActivityName,
		VenueName:    request.VenueName,
		Category:     request.Category,
		City:         request.City,
		Description:  request.Description,
	})
	if err != nil {
		h.writeServiceError(c, "submit_activity", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      submission.ID,
		"status":  submission.Status,
		"message": "submission received and awaiting review",
	})
}

type moderateSubmissionPayload struct {
	SubmissionID string `json:"submission_id"`
	Action       string `json:"action"`
}

func (h *httpHandler) handleModerateSubmission(c *gin.Context) {
	var request moderateSubmissionPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	resolution, err := h.moderation.Resolve(
		c.Request.Context(),
		request.SubmissionID,
		request.Action,
		c.GetString(principalIDContextKey),
	)
	if err != nil {
		h.writeServiceError(c, "moderate_submission", err)
		return
	}

	response := gin.H{
		"submission_id": resolution.Submission.ID,
		"status":        resolution.Submission.Status,
	}
	if resolution.Venue != nil {
		response["venue_id"] = resolution.Venue.ID
	}
	if resolution.Offering != nil {
		response["offering_id"] = resolution.Offering.ID
	}
	c.JSON(http.StatusOK, response)
}

func (h *httpHandler) handleListPendingSubmissions(c *gin.Context) {
	pending, err := h.moderation.ListPending(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, "pending_submissions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": pending})
}

type claimAgencyPayload struct {
	VenueID string `json:"venue_id"`
}

func (h *httpHandler) handleClaimAgency(c *gin.Context) {
	var request claimAgencyPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	claim, err := h.ownership.Claim(c.Request.Context(), c.GetString(principalIDContextKey), request.VenueID)
	if err != nil {
		h.writeServiceError(c, "claim_agency", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": claim.ID, "status": claim.Status})
}

type resolveClaimPayload struct {
	ClaimID string `json:"claim_id"`
	Action  string `json:"action"`
}

func (h *httpHandler) handleResolveClaim(c *gin.Context) {
	var request resolveClaimPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	claim, err := h.ownership.Resolve(
		c.Request.Context(),
		request.ClaimID,
		request.Action,
		c.GetString(principalIDContextKey),
	)
	if err != nil {
		h.writeServiceError(c, "resolve_claim", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": claim.ID, "status": claim.Status})
}

func (h *httpHandler) handleListClaimable(c *gin.Context) {
	venues, err := h.ownership.ListClaimable(c.Request.Context(), c.GetString(principalIDContextKey))
	if err != nil {
		h.writeServiceError(c, "claimable_agencies", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"venues": venues})
}

func (h *httpHandler) handleListVenues(c *gin.Context) {
	venues, err := h.catalog.ListVenues(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, "list_venues", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"venues": venues})
}

func (h *httpHandler) handleListOfferings(c *gin.Context) {
	offerings, err := h.catalog.ListOfferings(c.Request.Context(), c.Query("city"), c.Query("category"))
	if err != nil {
		h.writeServiceError(c, "list_offerings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offerings": offerings})
}

// writeServiceError maps the business error taxonomy onto HTTP statuses.
func (h *httpHandler) writeServiceError(c *gin.Context, operation string, err error) {
	if retryAfter, ok := fault.RetryAfter(err); ok {
		seconds := int(retryAfter.Seconds())
		c.Header("Retry-After", strconv.Itoa(seconds))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "too many requests",
			"retry_after": seconds,
		})
		return
	}

	switch {
	case errors.Is(err, fault.ErrValidation), errors.Is(err, fault.ErrSpamRejected), errors.Is(err, fault.ErrConflict):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, fault.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed",
			zap.String("operation", operation),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
