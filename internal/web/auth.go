package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mulearn/dashboard/internal/core"
)

// Claims are the bearer token claims the dashboard reads. The subject is
// the user id.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenVerifier checks HS256 bearer tokens.
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier returns a verifier for tokens signed with secret. A
// non-empty issuer must match the iss claim.
func NewTokenVerifier(secret, issuer string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), issuer: issuer}
}

// Verify parses raw and returns the identity it carries.
func (v *TokenVerifier) Verify(raw string) (core.Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return core.Identity{}, fmt.Errorf("%w: %v", core.ErrUnauthenticated, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return core.Identity{}, fmt.Errorf("%w: token has no subject", core.ErrUnauthenticated)
	}
	return core.Identity{UserID: claims.Subject, Roles: claims.Roles}, nil
}

// Sign issues a token for id valid for ttl.
func (v *TokenVerifier) Sign(id core.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Roles: id.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// authenticate requires a valid bearer token and binds its identity to
// the request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			slog.Warn("auth: missing bearer token", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
			respondError(w, r, fmt.Errorf("%w: missing bearer token", core.ErrUnauthenticated))
			return
		}

		id, err := s.tokens.Verify(raw)
		if err != nil {
			slog.Warn("auth: invalid bearer token", "path", r.URL.Path, "remote_addr", r.RemoteAddr, "error", err)
			respondError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
	})
}

// requireRoles rejects callers holding none of roles.
func requireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := core.IdentityFromContext(r.Context())
			if !ok {
				respondError(w, r, core.ErrUnauthenticated)
				return
			}
			if !id.HasAnyRole(roles...) {
				respondError(w, r, fmt.Errorf("%w: requires one of %v", core.ErrForbidden, roles))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
