package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"siteforge/realtime/internal/models"
)

var parseJWT = func(tokenStr string, keyFunc jwt.Keyfunc) (*jwt.Token, error) {
	return jwt.Parse(tokenStr, keyFunc)
}

var (
	ErrMissingToken      = errors.New("missing token")
	ErrMissingAuthHeader = errors.New("missing or malformed Authorization header")
	ErrInvalidToken      = errors.New("invalid token")
	ErrInvalidClaims     = errors.New("invalid token claims")
	ErrUnknownUser       = errors.New("unknown user")
)

// UserLookup is the slice of the user repository the authenticator needs.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Authenticator verifies handshake credentials and resolves them to a
// Principal. It runs once per connection, before any event handler.
type Authenticator struct {
	secret string
	users  UserLookup
}

func NewAuthenticator(secret string, users UserLookup) *Authenticator {
	return &Authenticator{secret: secret, users: users}
}

// Authenticate validates the JWT, extracts the user id and loads the profile.
// Every failure mode is an authentication error; the caller rejects the
// handshake and never registers handlers for the connection.
func (a *Authenticator) Authenticate(ctx context.Context, tokenStr string) (models.Principal, error) {
	if tokenStr == "" {
		return models.Principal{}, ErrMissingToken
	}

	claims, err := verifyToken(tokenStr, a.secret)
	if err != nil {
		return models.Principal{}, err
	}

	userID, err := userIDFromClaims(claims)
	if err != nil {
		return models.Principal{}, ErrInvalidClaims
	}

	user, err := a.users.GetUserByID(ctx, userID)
	if err != nil {
		return models.Principal{}, ErrUnknownUser
	}

	return models.Principal{
		UserID: fmt.Sprintf("%d", user.ID),
		Name:   strings.TrimSpace(user.FirstName + " " + user.LastName),
		Email:  user.Email,
	}, nil
}

// FromRequest authenticates a plain HTTP request via its Authorization header.
// Used by the presence snapshot endpoint; sockets carry the token in the
// handshake frame instead, so it never appears in access logs.
func (a *Authenticator) FromRequest(r *http.Request) (models.Principal, error) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return models.Principal{}, ErrMissingAuthHeader
	}
	return a.Authenticate(r.Context(), strings.TrimPrefix(authz, "Bearer "))
}

// verifyToken validates the JWT signature and expiry and returns the claims.
func verifyToken(tokenStr, secret string) (jwt.MapClaims, error) {
	token, err := parseJWT(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

// userIDFromClaims extracts the "sub" (user ID) from claims safely as a string.
func userIDFromClaims(claims jwt.MapClaims) (string, error) {
	sub, ok := claims["sub"]
	if !ok {
		return "", errors.New("missing sub claim")
	}

	switch v := sub.(type) {
	case string:
		return v, nil
	case float64:
		// JWT numbers get decoded as float64
		return fmt.Sprintf("%d", int64(v)), nil
	default:
		return "", errors.New("invalid sub claim type")
	}
}
