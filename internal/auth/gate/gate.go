// Package gate authenticates requests by bearer token and attaches the
// resolved identity to the request context.
package gate

import (
	"context"
	"errors"
	"net/http"
	"strings"

	commonerrors "github.com/AlibekovAA/task-manager/backend/internal/common/errors"
	commonhttp "github.com/AlibekovAA/task-manager/backend/internal/common/http"
	"github.com/AlibekovAA/task-manager/backend/internal/common/logger"
	"github.com/AlibekovAA/task-manager/backend/internal/observability/metrics"
	userdomain "github.com/AlibekovAA/task-manager/backend/internal/user/domain"
	userrepo "github.com/AlibekovAA/task-manager/backend/internal/user/repository"
)

var (
	ErrUnauthenticated = commonerrors.NewDomainError(
		"INVALID_TOKEN",
		commonerrors.CategoryUnauthenticated,
		http.StatusUnauthorized,
		"Invalid or expired token",
	)

	// ErrUnknownSubject is returned for a correctly signed token whose user no
	// longer exists.
	ErrUnknownSubject = commonerrors.NewDomainError(
		"TOKEN_SUBJECT_NOT_FOUND",
		commonerrors.CategoryUnauthenticated,
		http.StatusUnauthorized,
		"Invalid token",
	)

	// ErrGateFailure covers unexpected failures while resolving the subject,
	// such as the user store being unavailable. It is reported as 403.
	ErrGateFailure = commonerrors.NewDomainError(
		"AUTH_GATE_FAILURE",
		commonerrors.CategoryForbidden,
		http.StatusForbidden,
		"Invalid or expired token",
	)
)

type TokenVerifier interface {
	Verify(token string) (string, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error)
}

type Identity struct {
	UserID   userdomain.ID
	Username string
}

type contextKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok && id.UserID != ""
}

type Gate struct {
	tokens TokenVerifier
	users  UserFinder
	log    *logger.Logger
}

func New(tokens TokenVerifier, users UserFinder, log *logger.Logger) *Gate {
	return &Gate{tokens: tokens, users: users, log: log}
}

// Authenticate resolves the identity carried by r. The returned error is one
// of ErrUnauthenticated, ErrUnknownSubject or ErrGateFailure.
func (g *Gate) Authenticate(r *http.Request) (Identity, error) {
	raw, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return Identity{}, g.reject(r, "missing_token", ErrUnauthenticated, nil)
	}

	subject, err := g.tokens.Verify(raw)
	if err != nil {
		return Identity{}, g.reject(r, "invalid_token", ErrUnauthenticated, err)
	}

	user, err := g.users.FindByID(r.Context(), userdomain.ID(subject))
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return Identity{}, g.reject(r, "unknown_subject", ErrUnknownSubject, err)
		}
		return Identity{}, g.reject(r, "lookup_failed", ErrGateFailure, err)
	}

	return Identity{UserID: user.ID, Username: user.Username}, nil
}

func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := g.Authenticate(r)
		if err != nil {
			commonhttp.HandleError(w, r, err, g.log)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func (g *Gate) reject(r *http.Request, reason string, public commonerrors.DomainError, cause error) error {
	metrics.AuthGateRejections.WithLabelValues(reason).Inc()

	entry := g.log.WithFields(r.Context(), logger.Fields{
		"action": "auth_gate_reject",
		"reason": reason,
		"path":   r.URL.Path,
	})
	if public.Category() == commonerrors.CategoryForbidden {
		entry.Errorf("auth gate failure: %v", cause)
	} else {
		entry.Warn("request rejected")
	}

	if cause != nil {
		return public.WithCause(cause)
	}
	return public
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
