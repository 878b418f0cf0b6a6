package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestGenerateAndParseToken(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	user := &domain.User{ID: "u1", Username: "alice", Role: domain.RoleEmployee}

	tokenStr, expiresAt, err := tm.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if tokenStr == "" {
		t.Fatal("empty token string")
	}
	if remaining := time.Until(expiresAt); remaining < 59*time.Minute || remaining > 61*time.Minute {
		t.Errorf("expiry %v away, want about an hour", remaining)
	}

	claims, err := tm.ParseToken(tokenStr)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != "u1" {
		t.Errorf("uid = %s, want u1", claims.UserID)
	}
	if claims.Role != domain.RoleEmployee {
		t.Errorf("role = %s, want EMPLOYEE", claims.Role)
	}
	if claims.ID == "" {
		t.Error("jti must be set for revocation tracking")
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("right-secret", 60)
	user := &domain.User{ID: "u1", Role: domain.RoleUser}
	tokenStr, _, err := tm.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	other := NewTokenManager("wrong-secret", 60)
	if _, err := other.ParseToken(tokenStr); err == nil {
		t.Fatal("token signed with a different secret must not parse")
	}
}

func TestParseTokenRejectsWrongMethod(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID: "u1",
		Role:   domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	tokenStr, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing none token: %v", err)
	}

	if _, err := tm.ParseToken(tokenStr); err == nil {
		t.Fatal("alg=none token must not parse")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: "u1",
		Role:   domain.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	tokenStr, err := expired.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing expired token: %v", err)
	}

	if _, err := tm.ParseToken(tokenStr); err == nil {
		t.Fatal("expired token must not parse")
	}
}

func TestTokenManagerTTLDefault(t *testing.T) {
	tm := NewTokenManager("s", 0)
	if tm.ttl != time.Hour {
		t.Errorf("ttl = %v, want 1h default", tm.ttl)
	}
}

func TestRevocationListNilClient(t *testing.T) {
	var list *RevocationList
	if err := list.Revoke(nil, "jti", time.Minute); err != nil {
		t.Errorf("nil list Revoke returned %v", err)
	}
	revoked, err := list.IsRevoked(nil, "jti")
	if err != nil || revoked {
		t.Errorf("nil list IsRevoked = (%v, %v), want (false, nil)", revoked, err)
	}

	empty := NewRevocationList(nil)
	if err := empty.Revoke(nil, "jti", time.Minute); err != nil {
		t.Errorf("clientless Revoke returned %v", err)
	}
}
