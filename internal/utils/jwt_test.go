package utils

import (
	"testing"
	"time"

	"github.com/MKhiriev/go-ics-sync/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer  = "ics-sync"
	testSignKey = "sign-key"
)

func TestGenerateJWTToken(t *testing.T) {
	tok, err := GenerateJWTToken(testIssuer, 123, "john", time.Hour, testSignKey)
	require.NoError(t, err)

	assert.NotEmpty(t, tok.SignedString)
	assert.Equal(t, tok.SignedString, tok.String())
	assert.Equal(t, int64(123), tok.UserID)
	assert.Equal(t, "john", tok.Login)

	claims, ok := tok.Token.Claims.(*models.Token)
	require.True(t, ok)
	assert.Equal(t, testIssuer, claims.Issuer)
	assert.Equal(t, "123", claims.Subject)
	assert.Equal(t, "john", claims.Login)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestGenerateJWTToken_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		issuer string
		login  string
		ttl    time.Duration
		key    string
	}{
		{name: "empty issuer", login: "john", ttl: time.Hour, key: testSignKey},
		{name: "empty login", issuer: testIssuer, ttl: time.Hour, key: testSignKey},
		{name: "zero ttl", issuer: testIssuer, login: "john", key: testSignKey},
		{name: "empty key", issuer: testIssuer, login: "john", ttl: time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateJWTToken(tt.issuer, 1, tt.login, tt.ttl, tt.key)
			assert.ErrorIs(t, err, ErrInvalidTokenParams)
		})
	}
}

func TestValidateAndParseJWTToken(t *testing.T) {
	valid, err := GenerateJWTToken(testIssuer, 456, "alice", 5*time.Minute, testSignKey)
	require.NoError(t, err)

	got, err := ValidateAndParseJWTToken(valid.SignedString, testSignKey, testIssuer)
	require.NoError(t, err)
	assert.Equal(t, int64(456), got.UserID)
	assert.Equal(t, "alice", got.Login)
	assert.Equal(t, valid.SignedString, got.SignedString)
}

func signClaims(t *testing.T, method jwt.SigningMethod, key any, claims *models.Token) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestValidateAndParseJWTToken_Rejects(t *testing.T) {
	expired, err := GenerateJWTToken(testIssuer, 1, "john", -time.Second, testSignKey)
	require.NoError(t, err)
	foreign, err := GenerateJWTToken("someone-else", 1, "john", time.Hour, testSignKey)
	require.NoError(t, err)

	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name    string
		token   string
		key     string
		wantErr error
	}{
		{name: "malformed", token: "not.a.token", key: testSignKey},
		{name: "wrong key", token: foreign.SignedString, key: "other"},
		{name: "expired", token: expired.SignedString, key: testSignKey, wantErr: jwt.ErrTokenExpired},
		{name: "wrong issuer", token: foreign.SignedString, key: testSignKey, wantErr: jwt.ErrTokenInvalidIssuer},
		{
			name: "no expiry",
			token: signClaims(t, jwt.SigningMethodHS256, []byte(testSignKey), &models.Token{
				RegisteredClaims: jwt.RegisteredClaims{Issuer: testIssuer, Subject: "1"},
				Login:            "john",
			}),
			key:     testSignKey,
			wantErr: jwt.ErrTokenRequiredClaimMissing,
		},
		{
			name: "other algorithm",
			token: signClaims(t, jwt.SigningMethodHS512, []byte(testSignKey), &models.Token{
				RegisteredClaims: jwt.RegisteredClaims{Issuer: testIssuer, Subject: "1", ExpiresAt: exp},
				Login:            "john",
			}),
			key:     testSignKey,
			wantErr: jwt.ErrTokenSignatureInvalid,
		},
		{
			name: "non numeric subject",
			token: signClaims(t, jwt.SigningMethodHS256, []byte(testSignKey), &models.Token{
				RegisteredClaims: jwt.RegisteredClaims{Issuer: testIssuer, Subject: "bob", ExpiresAt: exp},
				Login:            "bob",
			}),
			key:     testSignKey,
			wantErr: ErrBadTokenClaims,
		},
		{
			name: "no login",
			token: signClaims(t, jwt.SigningMethodHS256, []byte(testSignKey), &models.Token{
				RegisteredClaims: jwt.RegisteredClaims{Issuer: testIssuer, Subject: "1", ExpiresAt: exp},
			}),
			key:     testSignKey,
			wantErr: ErrBadTokenClaims,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateAndParseJWTToken(tt.token, tt.key, testIssuer)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestParseBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "bearer", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "lower case scheme", header: "bearer abc", want: "abc"},
		{name: "surrounding space", header: "  Bearer   abc ", want: "abc"},
		{name: "empty", header: "", wantErr: true},
		{name: "scheme only", header: "Bearer", wantErr: true},
		{name: "no separator", header: "BearerTokenWithoutSpace", wantErr: true},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", wantErr: true},
		{name: "extra fields", header: "Bearer a b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBearerToken(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedBearer)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseUserIDFromJWT(t *testing.T) {
	tok, err := GenerateJWTToken(testIssuer, 77, "john", time.Hour, testSignKey)
	require.NoError(t, err)

	id, err := ParseUserIDFromJWT(tok.SignedString)
	require.NoError(t, err)
	assert.Equal(t, int64(77), id)

	_, err = ParseUserIDFromJWT("garbage")
	assert.Error(t, err)
}
