// Package auth decodes the bearer credential into a session identity.
//
// The backend verifies the signature on every request; the client only reads
// the claims it needs to decide what to show.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/frontdesk/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

// Identity errors.
var (
	ErrMissingToken   = errors.New("no credential configured")
	ErrMalformedToken = errors.New("credential is not a valid token")
	ErrTokenExpired   = errors.New("credential has expired")
	ErrUnknownRole    = errors.New("credential carries an unknown role")
	ErrNoLocation     = errors.New("staff credential has no assigned location")
)

// Claim names read from the token. Role is also accepted under the
// WS-Federation role URI some identity providers emit.
const (
	claimRole       = "role"
	claimRoleURI    = "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"
	claimUserID     = "userId"
	claimSubject    = "sub"
	claimName       = "name"
	claimEmail      = "email"
	claimBusinessID = "businessId"
	claimLocationID = "locationId"
)

// LoadToken returns token, or the contents of tokenFile when token is empty.
// A leading "Bearer " is stripped.
func LoadToken(token, tokenFile string) (string, error) {
	if token == "" && tokenFile != "" {
		data, err := os.ReadFile(tokenFile)
		if err != nil {
			return "", fmt.Errorf("failed to read token file: %w", err)
		}
		token = string(data)
	}
	token = strings.TrimSpace(token)
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// Decode reads the identity from a bearer token without verifying its
// signature. An empty token yields Unauthenticated and ErrMissingToken.
func Decode(token string, now time.Time) (model.Identity, error) {
	if strings.TrimSpace(token) == "" {
		return model.Unauthenticated{}, ErrMissingToken
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithJSONNumber())
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return model.Unauthenticated{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}

	profile := model.Profile{
		UserID:      firstString(claims, claimUserID, claimSubject),
		DisplayName: firstString(claims, claimName, claimSubject),
		Email:       firstString(claims, claimEmail),
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		profile.ExpiresAt = exp.Time.UTC()
		if !now.Before(exp.Time) {
			return model.Unauthenticated{}, fmt.Errorf("%w at %s", ErrTokenExpired, exp.Time.Format(time.RFC3339))
		}
	}

	businessID, err := intClaim(claims, claimBusinessID)
	if err != nil {
		return model.Unauthenticated{}, err
	}
	profile.BusinessID = businessID

	locationID, err := intClaim(claims, claimLocationID)
	if err != nil {
		return model.Unauthenticated{}, err
	}

	role := model.Role(strings.ToLower(firstString(claims, claimRole, claimRoleURI)))
	switch role {
	case model.RoleOwner:
		return model.Owner{Profile: profile, HomeLocation: locationID}, nil
	case model.RoleStaff:
		if locationID <= 0 {
			return model.Unauthenticated{}, ErrNoLocation
		}
		return model.Staff{Profile: profile, AssignedLocation: locationID}, nil
	default:
		return model.Unauthenticated{}, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
}

func firstString(claims jwt.MapClaims, names ...string) string {
	for _, name := range names {
		if s, ok := claims[name].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// intClaim reads an id claim that may be encoded as a number or a string.
// A missing claim reads as 0.
func intClaim(claims jwt.MapClaims, name string) (int64, error) {
	switch v := claims[name].(type) {
	case nil:
		return 0, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: claim %s: %w", ErrMalformedToken, name, err)
		}
		return n, nil
	case string:
		if v == "" {
			return 0, nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: claim %s: %w", ErrMalformedToken, name, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: claim %s has type %T", ErrMalformedToken, name, v)
	}
}
