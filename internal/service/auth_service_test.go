package service

import (
	"errors"
	"testing"

	"github.com/lonqui-express/internal/config"
	"github.com/lonqui-express/internal/constants"
	"github.com/lonqui-express/internal/models"
)

func buildAuthTestConfig(secret string) *config.Config {
	cfg := &config.Config{}
	cfg.JWT.SecretKey = secret
	cfg.JWT.ExpireHours = 24
	return cfg
}

func TestGenerateAndParseJWT(t *testing.T) {
	svc := NewAuthService(buildAuthTestConfig("unit-test-secret-key-0123456789abcdef"))
	user := &models.User{ID: 42, Role: constants.RoleDriver}

	token, expiresAt, err := svc.GenerateJWT(user)
	if err != nil {
		t.Fatalf("generate jwt failed: %v", err)
	}
	if token == "" {
		t.Fatalf("token should not be empty")
	}
	if expiresAt.IsZero() {
		t.Fatalf("expiresAt should be set")
	}

	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse jwt failed: %v", err)
	}
	if claims.ActorID != 42 {
		t.Fatalf("actor id want 42 got %d", claims.ActorID)
	}
	if claims.Role != constants.RoleDriver {
		t.Fatalf("role want driver got %s", claims.Role)
	}

	actor := ActorFromClaims(claims)
	if actor.ID != 42 || !actor.IsDriver() {
		t.Fatalf("actor mismatch: %+v", actor)
	}
}

func TestParseJWTRejectsWrongSecret(t *testing.T) {
	issuer := NewAuthService(buildAuthTestConfig("unit-test-secret-key-0123456789abcdef"))
	verifier := NewAuthService(buildAuthTestConfig("another-secret-key-fedcba9876543210ff"))

	token, _, err := issuer.GenerateJWT(&models.User{ID: 7, Role: constants.RoleOperator})
	if err != nil {
		t.Fatalf("generate jwt failed: %v", err)
	}

	if _, err := verifier.ParseJWT(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("wrong secret want ErrTokenInvalid got %v", err)
	}
}

func TestParseJWTRejectsGarbage(t *testing.T) {
	svc := NewAuthService(buildAuthTestConfig("unit-test-secret-key-0123456789abcdef"))
	if _, err := svc.ParseJWT("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("garbage token want ErrTokenInvalid got %v", err)
	}
}

func TestActorFromNilClaims(t *testing.T) {
	actor := ActorFromClaims(nil)
	if actor.ID != 0 || actor.Role != "" {
		t.Fatalf("nil claims should give zero actor, got %+v", actor)
	}
}
