package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/isdelr/stockroom-be/internal/config"
	"github.com/isdelr/stockroom-be/internal/models"
	"github.com/isdelr/stockroom-be/internal/services"
)

// ErrInvalidToken covers every way a bearer token can fail: missing,
// malformed, forged, expired, or resolving to no user. Callers must not be
// able to tell these apart.
var ErrInvalidToken = errors.New("could not validate credentials")

// ErrInactiveAccount is returned for a valid token whose user is deactivated.
var ErrInactiveAccount = errors.New("inactive user")

// userKey is the context key under which the authenticated user is stored.
type contextKey string

const userKey = contextKey("authUser")

// Authenticator verifies bearer tokens and resolves them to user records.
type Authenticator struct {
	secret []byte
	method string
	expiry time.Duration
	users  services.UserServiceProvider
}

// New creates an Authenticator from the signing settings in cfg.
func New(cfg *config.Config, users services.UserServiceProvider) *Authenticator {
	return &Authenticator{
		secret: []byte(cfg.TokenSecret),
		method: cfg.TokenAlgorithm,
		expiry: time.Duration(cfg.TokenExpireMinutes) * time.Minute,
		users:  users,
	}
}

// GenerateToken mints a signed access token whose subject is the user's email.
func (a *Authenticator) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Subject:   user.Email,
		ExpiresAt: jwt.NewNumericDate(now.Add(a.expiry)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.GetSigningMethod(a.method), claims)
	return token.SignedString(a.secret)
}

// ResolveIdentity decodes a token and looks up the user named by its subject
// claim. Every failure mode collapses into ErrInvalidToken so a caller cannot
// probe which accounts exist.
func (a *Authenticator) ResolveIdentity(tokenStr string) (*models.User, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{a.method}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	user, err := a.users.GetUserByEmail(claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// RequireActiveUser resolves a token and gates on the account's active flag.
func (a *Authenticator) RequireActiveUser(tokenStr string) (*models.User, error) {
	user, err := a.ResolveIdentity(tokenStr)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInactiveAccount
	}
	return user, nil
}

// Middleware protects a route group: it requires a Bearer token resolving to
// an active user and stores that user in the request context. Nothing past
// this middleware runs on an auth failure.
func (a *Authenticator) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenStr string
			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
					tokenStr = parts[1]
				}
			}
			if tokenStr == "" {
				unauthorized(w)
				return
			}

			user, err := a.RequireActiveUser(tokenStr)
			if err != nil {
				if errors.Is(err, ErrInactiveAccount) {
					http.Error(w, "Inactive user", http.StatusBadRequest)
					return
				}
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	http.Error(w, "Could not validate credentials", http.StatusUnauthorized)
}

// UserFromContext returns the authenticated user placed by Middleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok
}
