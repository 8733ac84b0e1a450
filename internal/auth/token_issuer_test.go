package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenIssuerIssuesSessionTokens(t *testing.T) {
	issuer, err := NewTokenIssuer(TokenIssuerConfig{
		SigningSecret: []byte("super-secret"),
		Issuer:        "skillio-auth",
		Audience:      "skillio-api",
		TokenTTL:      30 * time.Minute,
	})
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}

	tokenString, expiresIn, err := issuer.IssueSessionToken(Principal{ID: "user-123", Role: "parent"})
	if err != nil {
		t.Fatalf("expected successful issuance: %v", err)
	}
	if expiresIn != 1800 {
		t.Fatalf("expected 1800s expiry, got %d", expiresIn)
	}

	parser := jwt.Parser{}
	claims := &SessionClaims{}
	if _, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("super-secret"), nil
	}); err != nil {
		t.Fatalf("failed to parse generated token: %v", err)
	}

	if claims.Subject != "user-123" {
		t.Fatalf("unexpected subject %s", claims.Subject)
	}
	if claims.Role != "parent" {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.Issuer != "skillio-auth" {
		t.Fatalf("unexpected issuer %s", claims.Issuer)
	}
	if len(claims.Audience) == 0 || claims.Audience[0] != "skillio-api" {
		t.Fatalf("unexpected audience %#v", claims.Audience)
	}
}

func TestTokenIssuerValidatesIssuedTokens(t *testing.T) {
	issuer, err := NewTokenIssuer(TokenIssuerConfig{
		SigningSecret: []byte("another-secret"),
		Issuer:        "skillio-auth",
		Audience:      "skillio-api",
		TokenTTL:      15 * time.Minute,
	})
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}

	tokenString, _, err := issuer.IssueSessionToken(Principal{ID: "user-321", Role: "admin"})
	if err != nil {
		t.Fatalf("unexpected error issuing token: %v", err)
	}

	principal, err := issuer.ValidateToken(tokenString)
	if err != nil {
		t.Fatalf("expected validation success: %v", err)
	}
	if principal.ID != "user-321" || principal.Role != "admin" {
		t.Fatalf("unexpected principal %+v", principal)
	}

	if _, err := issuer.ValidateToken("invalid.token"); err == nil {
		t.Fatalf("expected validation to fail for malformed token")
	}
}

func TestTokenIssuerRejectsExpiredTokens(t *testing.T) {
	current := time.Unix(1_700_000_000, 0)
	issuer, err := NewTokenIssuer(TokenIssuerConfig{
		SigningSecret: []byte("secret"),
		Issuer:        "skillio-auth",
		Audience:      "skillio-api",
		TokenTTL:      time.Minute,
		Clock:         func() time.Time { return current },
	})
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}

	tokenString, _, err := issuer.IssueSessionToken(Principal{ID: "user-1", Role: "parent"})
	if err != nil {
		t.Fatalf("unexpected error issuing token: %v", err)
	}

	current = current.Add(2 * time.Minute)
	if _, err := issuer.ValidateToken(tokenString); err == nil {
		t.Fatalf("expected expired token to fail validation")
	}
}

func TestNewTokenIssuerValidatesConfig(t *testing.T) {
	if _, err := NewTokenIssuer(TokenIssuerConfig{Issuer: "a", Audience: "b"}); err == nil {
		t.Fatalf("expected error for missing secret")
	}
	if _, err := NewTokenIssuer(TokenIssuerConfig{SigningSecret: []byte("s"), Audience: "b"}); err == nil {
		t.Fatalf("expected error for missing issuer")
	}
	if _, err := NewTokenIssuer(TokenIssuerConfig{SigningSecret: []byte("s"), Issuer: "a", Audience: " "}); err == nil {
		t.Fatalf("expected error for missing audience")
	}
}

func TestIssueSessionTokenRequiresSubject(t *testing.T) {
	issuer, err := NewTokenIssuer(TokenIssuerConfig{
		SigningSecret: []byte("secret"),
		Issuer:        "skillio-auth",
		Audience:      "skillio-api",
	})
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}
	if _, _, err := issuer.IssueSessionToken(Principal{Role: "parent"}); err == nil {
		t.Fatalf("expected error for missing principal id")
	}
}
