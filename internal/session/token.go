// Package session holds the client-side login state and checks token expiry.
//
// Tokens are decoded without verifying their signature. The result only
// decides whether the CLI considers itself logged in; the server makes the
// real authorization decision on every request.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned when a token's payload cannot be decoded.
var ErrMalformedToken = errors.New("malformed token")

// ErrExpired is returned for a token whose exp claim is in the past.
var ErrExpired = errors.New("token expired")

// Claims is the subset of the token payload the client inspects.
type Claims struct {
	Subject string
	Expiry  *time.Time // nil when the token carries no exp claim
}

var parser = jwt.NewParser()

// Decode extracts the claims from token without verifying it.
// Only the payload segment has to be readable; a header that is not valid
// JSON or names an unknown alg is ignored.
func Decode(token string) (Claims, error) {
	mc, err := unverifiedClaims(token)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	exp, err := mc.GetExpirationTime()
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	sub, err := mc.GetSubject()
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	c := Claims{Subject: sub}
	if exp != nil {
		t := exp.Time
		c.Expiry = &t
	}
	return c, nil
}

func unverifiedClaims(token string) (jwt.MapClaims, error) {
	tok, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err == nil {
		if mc, ok := tok.Claims.(jwt.MapClaims); ok {
			return mc, nil
		}
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, errors.New("token must have three segments")
	}
	data, derr := parser.DecodeSegment(parts[1])
	if derr != nil {
		return nil, derr
	}
	var mc jwt.MapClaims
	if jerr := json.Unmarshal(data, &mc); jerr != nil {
		return nil, jerr
	}
	return mc, nil
}

// Check returns nil if token is present, decodable and unexpired at now.
// A token without an exp claim never expires locally.
func Check(token string, now time.Time) error {
	if token == "" {
		return errors.New("no token")
	}
	c, err := Decode(token)
	if err != nil {
		return err
	}
	if c.Expiry != nil && c.Expiry.Before(now) {
		return ErrExpired
	}
	return nil
}

// Valid reports whether token is locally usable at now.
func Valid(token string, now time.Time) bool {
	return Check(token, now) == nil
}
