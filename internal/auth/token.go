package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Principal identifies the repository account acting through a token.
type Principal struct {
	UID  int64
	Name string
}

// FromRequest extracts the bearer token from the Authorization header.
func FromRequest(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("missing Authorization header")
	}

	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", fmt.Errorf("Authorization header is not a bearer token")
	}
	return token, nil
}

// Verify checks an HMAC-signed repository JWT and returns its principal.
// Islandora's JWT module puts the account name in "sub" and the numeric
// user id in "webid".
func Verify(tokenString, secret string) (*Principal, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type %T", token.Claims)
	}

	principal := &Principal{}
	principal.Name, _ = claims.GetSubject()
	if webid, ok := claims["webid"].(float64); ok {
		principal.UID = int64(webid)
	}
	return principal, nil
}
