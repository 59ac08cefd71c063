package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		expected  string
		expectErr bool
	}{
		{"bearer token", "Bearer abc123", "abc123", false},
		{"missing header", "", "", true},
		{"not a bearer", "Basic dXNlcjpwYXNz", "", true},
		{"empty bearer", "Bearer ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			token, err := FromRequest(req)
			if tt.expectErr {
				if err == nil {
					t.Error("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("FromRequest returned error: %v", err)
			}
			if token != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, token)
			}
		})
	}
}

func signed(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return token
}

func TestVerify(t *testing.T) {
	secret := "s3cret"
	claims := jwt.MapClaims{
		"sub":   "admin",
		"webid": float64(7),
		"exp":   time.Now().Add(time.Hour).Unix(),
	}

	principal, err := Verify(signed(t, jwt.SigningMethodHS256, []byte(secret), claims), secret)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if principal.Name != "admin" {
		t.Errorf("Expected admin, got %s", principal.Name)
	}
	if principal.UID != 7 {
		t.Errorf("Expected uid 7, got %d", principal.UID)
	}
}

func TestVerifyRejects(t *testing.T) {
	secret := "s3cret"
	future := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "wrong secret",
			token: signed(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "admin", "exp": future}),
		},
		{
			name:  "expired",
			token: signed(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": "admin", "exp": time.Now().Add(-time.Hour).Unix()}),
		},
		{
			name:  "garbage",
			token: "not.a.jwt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Verify(tt.token, secret); err == nil {
				t.Error("Expected verification to fail")
			}
		})
	}
}
