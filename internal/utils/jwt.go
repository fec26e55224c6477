package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MKhiriev/go-ics-sync/models"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidTokenParams = errors.New("invalid token parameters")
	ErrMalformedBearer    = errors.New("malformed bearer credentials")
	ErrBadTokenClaims     = errors.New("token claims do not name a principal")
)

const bearerScheme = "Bearer"

// GenerateJWTToken signs an HS256 token for the principal (userID, login).
// The subject claim holds the decimal user id and the token expires ttl
// after issue.
func GenerateJWTToken(issuer string, userID int64, login string, ttl time.Duration, signKey string) (models.Token, error) {
	if issuer == "" || login == "" || ttl == 0 || signKey == "" {
		return models.Token{}, ErrInvalidTokenParams
	}

	now := time.Now()
	claims := &models.Token{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Login: login,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(signKey))
	if err != nil {
		return models.Token{}, fmt.Errorf("sign token: %w", err)
	}

	return models.Token{Token: token, SignedString: signed, UserID: userID, Login: login}, nil
}

// ValidateAndParseJWTToken verifies the signature, issuer and expiry of
// tokenString and returns the principal it names. Only HS256 is accepted
// and tokens without an expiry are rejected.
func ValidateAndParseJWTToken(tokenString, signKey, issuer string) (models.Token, error) {
	claims := &models.Token{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return []byte(signKey), nil },
		jwt.WithIssuer(issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return models.Token{}, fmt.Errorf("parse token: %w", err)
	}

	userID, err := principal(claims)
	if err != nil {
		return models.Token{}, err
	}
	if claims.Anonymous() {
		return models.Token{}, ErrBadTokenClaims
	}

	return models.Token{Token: token, SignedString: tokenString, UserID: userID, Login: claims.Login}, nil
}

// ParseBearerToken extracts the credentials of an "Authorization: Bearer
// <token>" header value. The scheme is matched case-insensitively.
func ParseBearerToken(header string) (string, error) {
	fields := strings.Fields(header)
	if len(fields) != 2 || !strings.EqualFold(fields[0], bearerScheme) {
		return "", ErrMalformedBearer
	}
	return fields[1], nil
}

// ParseUserIDFromJWT reads the subject of a token without verifying it.
// Clients use it on tokens the server has just handed them.
func ParseUserIDFromJWT(tokenString string) (int64, error) {
	claims := &models.Token{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return 0, fmt.Errorf("parse token: %w", err)
	}
	return principal(claims)
}

func principal(claims *models.Token) (int64, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, ErrBadTokenClaims
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: subject %q", ErrBadTokenClaims, sub)
	}
	return id, nil
}
