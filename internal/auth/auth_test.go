package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siteforge/realtime/internal/models"
)

const testSecret = "test-secret"

type fakeUserStore struct {
	users map[string]*models.User
}

func (s *fakeUserStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return u, nil
}

func newTestAuthenticator() *Authenticator {
	u := &models.User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	u.ID = 7
	return NewAuthenticator(testSecret, &fakeUserStore{users: map[string]*models.User{"7": u}})
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuthenticateValidToken(t *testing.T) {
	a := newTestAuthenticator()
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "7",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	principal, err := a.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "7", principal.UserID)
	assert.Equal(t, "Ada Lovelace", principal.Name)
	assert.Equal(t, "ada@example.com", principal.Email)
}

func TestAuthenticateNumericSubClaim(t *testing.T) {
	a := newTestAuthenticator()
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": 7, // encodes as a JSON number, decodes as float64
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	principal, err := a.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "7", principal.UserID)
}

func TestAuthenticateMissingToken(t *testing.T) {
	a := newTestAuthenticator()
	_, err := a.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestAuthenticateExpiredToken(t *testing.T) {
	a := newTestAuthenticator()
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "7",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	_, err := a.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticateWrongSignature(t *testing.T) {
	a := newTestAuthenticator()
	token := signToken(t, "other-secret", jwt.MapClaims{
		"sub": "7",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := a.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticateMissingSubClaim(t *testing.T) {
	a := newTestAuthenticator()
	token := signToken(t, testSecret, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := a.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestAuthenticateDeletedUser(t *testing.T) {
	a := newTestAuthenticator()
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "999",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := a.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestFromRequest(t *testing.T) {
	a := newTestAuthenticator()
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "7",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	r := httptest.NewRequest("GET", "/api/v1/projects/abc/presence", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	principal, err := a.FromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "7", principal.UserID)

	r = httptest.NewRequest("GET", "/api/v1/projects/abc/presence", nil)
	_, err = a.FromRequest(r)
	assert.ErrorIs(t, err, ErrMissingAuthHeader)

	r.Header.Set("Authorization", token) // no Bearer prefix
	_, err = a.FromRequest(r)
	assert.ErrorIs(t, err, ErrMissingAuthHeader)
}
