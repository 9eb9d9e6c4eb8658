// Package token issues and verifies the signed bearer tokens that bind a
// request to a user.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AlibekovAA/task-manager/backend/internal/common/clock"
	"github.com/AlibekovAA/task-manager/backend/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/task-manager/backend/internal/common/crypto"
	"github.com/AlibekovAA/task-manager/backend/internal/observability/metrics"
)

var (
	// ErrInvalidToken covers malformed, tampered, wrongly signed and expired
	// tokens. Callers cannot tell them apart.
	ErrInvalidToken = errors.New("invalid or expired token")

	ErrWeakSecret = fmt.Errorf("signing secret must be at least %d bytes", constants.JWTSecretMinLength)
)

var signingMethod = jwt.SigningMethodHS256

type Service struct {
	secret      []byte
	ttl         time.Duration
	clock       clock.Clock
	idGenerator commoncrypto.IDGenerator
	parser      *jwt.Parser
}

func NewService(secret string, ttl time.Duration, clk clock.Clock) (*Service, error) {
	if len(secret) < constants.JWTSecretMinLength {
		return nil, fmt.Errorf("%w: got %d", ErrWeakSecret, len(secret))
	}
	if ttl <= 0 {
		ttl = constants.DefaultTokenTTL
	}
	if clk == nil {
		clk = clock.NewRealClock()
	}

	return &Service{
		secret:      []byte(secret),
		ttl:         ttl,
		clock:       clk,
		idGenerator: commoncrypto.NewUUIDGenerator(),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{signingMethod.Alg()}),
			jwt.WithTimeFunc(clk.Now),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
		),
	}, nil
}

func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for userID valid for the configured TTL. The returned
// time is the token's exp claim.
func (s *Service) Issue(userID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("token subject is empty")
	}

	jti, err := s.idGenerator.NewID()
	if err != nil {
		return "", time.Time{}, err
	}

	now := s.clock.Now().Truncate(time.Second)
	expiresAt := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	metrics.TokensIssued.Inc()
	return signed, expiresAt, nil
}

// Verify returns the subject of a valid token. A token is rejected from the
// instant its expiry is reached.
func (s *Service) Verify(tokenString string) (string, error) {
	metrics.TokenValidationsTotal.Inc()

	var claims jwt.RegisteredClaims
	parsed, err := s.parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		metrics.TokenValidationsFailed.Inc()
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		metrics.TokenValidationsFailed.Inc()
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
