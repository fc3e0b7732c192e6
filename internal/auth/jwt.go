package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles understood by the service. Admin manages tenants and accounts,
// operator runs a school's scan stations, homeroom is scoped to one class.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleHomeroom = "homeroom"
)

// Claims represents JWT payload.
type Claims struct {
	Subject    string `json:"sub"`
	Role       string `json:"role"`
	SchoolID   string `json:"school_id,omitempty"`
	ClassLabel string `json:"class_label,omitempty"`
	jwt.RegisteredClaims
}

// Issue issues a signed access token for a user session.
func Issue(subject, role, schoolID, classLabel, issuer, key string, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(ttl)
	claims := Claims{
		Subject:    subject,
		Role:       role,
		SchoolID:   schoolID,
		ClassLabel: classLabel,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// Parse validates a token and returns claims.
func Parse(tokenStr, key, issuer string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(key), nil
	})
	if err != nil {
		return Claims{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, errors.New("invalid token")
	}
	if issuer != "" && claims.Issuer != issuer {
		return Claims{}, errors.New("issuer mismatch")
	}
	return *claims, nil
}
