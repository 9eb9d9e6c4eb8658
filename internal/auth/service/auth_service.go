package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/AlibekovAA/task-manager/backend/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/task-manager/backend/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/task-manager/backend/internal/common/errors"
	"github.com/AlibekovAA/task-manager/backend/internal/common/logger"
	"github.com/AlibekovAA/task-manager/backend/internal/observability/metrics"
	userdomain "github.com/AlibekovAA/task-manager/backend/internal/user/domain"
	userrepo "github.com/AlibekovAA/task-manager/backend/internal/user/repository"
)

// dummyPassword is hashed once and compared against on logins for unknown
// usernames, so those fail in the same time as a wrong password.
const dummyPassword = "task-manager-timing-equalizer"

type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
}

type AuthService struct {
	repo        userrepo.Repository
	hasher      commoncrypto.PasswordHasher
	idGenerator commoncrypto.IDGenerator
	tokens      TokenIssuer
	clock       clock.Clock
	log         *logger.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	repo userrepo.Repository,
	hasher commoncrypto.PasswordHasher,
	idGenerator commoncrypto.IDGenerator,
	tokens TokenIssuer,
	clk clock.Clock,
	log *logger.Logger,
) *AuthService {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &AuthService{
		repo:        repo,
		hasher:      hasher,
		idGenerator: idGenerator,
		tokens:      tokens,
		clock:       clk,
		log:         log,
	}
}

type RegisterInput struct {
	Username string
	Password string
	Email    *string
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      userdomain.Summary
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	username := NormalizeUsername(input.Username)
	email := NormalizeEmail(input.Email)

	s.log.WithFields(ctx, logger.Fields{
		"username": username,
		"action":   "register_attempt",
	}).Info("register attempt")

	if err := firstError(validateUsername(username), validatePassword(input.Password), validateEmail(email)); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "register_validation_failed",
		}).Warnf("register validation failed: %v", err)
		return AuthResult{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		return AuthResult{}, commonerrors.ErrInternal.WithCause(err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "register_id_generation_failed",
		}).Errorf("register failed: id generation error: %v", err)
		return AuthResult{}, commonerrors.ErrInternal.WithCause(err)
	}

	now := s.clock.Now().UTC()
	user := userdomain.User{
		ID:           userdomain.ID(id),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The store's uniqueness check is the only duplicate detection: there is
	// no lookup beforehand that a concurrent registration could race past.
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userrepo.ErrUsernameAlreadyExists) {
			metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
			s.log.WithFields(ctx, logger.Fields{
				"username": username,
				"action":   "register_username_exists",
			}).Warn("register failed: already exists")
			return AuthResult{}, ErrUsernameTaken
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "register_create_failed",
		}).Errorf("register failed: %v", err)
		return AuthResult{}, commonerrors.ErrInternal.WithCause(err)
	}

	result, err := s.issue(user)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"user_id":  string(user.ID),
			"action":   "register_token_issue_failed",
		}).Errorf("register failed: token issue error: %v", err)
		return AuthResult{}, commonerrors.ErrInternal.WithCause(err)
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	s.log.WithFields(ctx, logger.Fields{
		"username": username,
		"user_id":  string(user.ID),
		"action":   "register_success",
	}).Info("register success")

	return result, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	username := NormalizeUsername(input.Username)

	s.log.WithFields(ctx, logger.Fields{
		"username": username,
		"action":   "login_attempt",
	}).Info("login attempt")

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			s.burnDummyCompare(input.Password)
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			s.log.WithFields(ctx, logger.Fields{
				"username": username,
				"action":   "login_unknown_user",
			}).Warn("login failed: invalid credentials")
			return AuthResult{}, ErrInvalidCredentials
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "login_lookup_failed",
		}).Errorf("login failed: %v", err)
		return AuthResult{}, commonerrors.ErrInternal.WithCause(err)
	}

	ok, err := s.hasher.Verify(user.PasswordHash, input.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"user_id":  string(user.ID),
			"action":   "login_corrupt_hash",
		}).Errorf("login failed: stored credential unreadable: %v", err)
		return AuthResult{}, ErrInvalidCredentials
	}
	if !ok {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"user_id":  string(user.ID),
			"action":   "login_wrong_password",
		}).Warn("login failed: invalid credentials")
		return AuthResult{}, ErrInvalidCredentials
	}

	result, err := s.issue(user)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"user_id":  string(user.ID),
			"action":   "login_token_issue_failed",
		}).Errorf("login failed: token issue error: %v", err)
		return AuthResult{}, commonerrors.ErrInternal.WithCause(err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.WithFields(ctx, logger.Fields{
		"username": username,
		"user_id":  string(user.ID),
		"action":   "login_success",
	}).Info("login success")

	return result, nil
}

// Me returns the public view of the user behind an authenticated request.
func (s *AuthService) Me(ctx context.Context, userID userdomain.ID) (userdomain.Summary, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return userdomain.Summary{}, ErrUserNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(userID),
			"action":  "me_lookup_failed",
		}).Errorf("me failed: %v", err)
		return userdomain.Summary{}, commonerrors.ErrInternal.WithCause(err)
	}
	return user.Summary(), nil
}

func (s *AuthService) issue(user userdomain.User) (AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(string(user.ID))
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, ExpiresAt: expiresAt, User: user.Summary()}, nil
}

func (s *AuthService) burnDummyCompare(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.log.Errorf("failed to prepare dummy hash: %v", err)
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(s.dummyHash, password)
	}
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
