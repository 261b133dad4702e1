package testutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SignToken returns an HS256 token for subject expiring at exp.
// A zero exp omits the claim.
func SignToken(t *testing.T, subject string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": subject}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}
