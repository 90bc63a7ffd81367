package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskify/taskify-api/internal/core/domain"
	"github.com/taskify/taskify-api/internal/core/ports"
	"github.com/taskify/taskify-api/internal/core/security"
	"github.com/taskify/taskify-api/internal/pkg/metrics"
)

const (
	defaultTokenTTL = 30 * time.Minute
	tokenTypeBearer = "bearer"
)

// AuthService implements registration, login, identity resolution and
// password changes on top of the credential store.
type AuthService struct {
	users    ports.UserRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenCodec
	tokenTTL time.Duration
	log      zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenCodec,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		log:      log,
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.Password == "" || !security.PasswordFits(in.Password) {
		return nil, domain.ErrInvalidInput
	}

	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: hash,
		IsActive:     true,
		Role:         role,
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	metrics.UsersRegisteredTotal.WithLabelValues(role.String()).Inc()
	s.log.Info().Int64("user_id", created.ID).Str("username", created.Username).Str("role", role.String()).Msg("user registered")
	return created, nil
}

// Authenticate returns the user when username and password match. An unknown
// username and a wrong password both yield domain.ErrInvalidCredential, and
// both paths run one hash comparison. Other errors are store faults.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredential
	}

	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.hasher.Verify(ctx, password, security.DecoyHash)
		return nil, domain.ErrInvalidCredential
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !s.hasher.Verify(ctx, password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredential
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredential) {
			metrics.LoginAttemptsTotal.WithLabelValues("invalid_credential").Inc()
			s.log.Debug().Str("username", username).Msg("login rejected")
		} else {
			metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	token, exp, err := s.tokens.Encode(domain.Claims{Subject: user.Username, Role: user.Role}, s.tokenTTL)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("issue token: %w", err)
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return &ports.LoginResult{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresAt:   exp,
		User:        user,
	}, nil
}

// Resolve validates token and re-reads the named user, so the returned role
// is the one currently stored rather than the snapshot inside the token.
func (s *AuthService) Resolve(ctx context.Context, token string) (*domain.ResolvedIdentity, error) {
	if token == "" {
		return nil, s.reject("missing", nil)
	}

	claims, err := s.tokens.Decode(token)
	if err != nil {
		return nil, s.reject(security.FailureReason(err), err)
	}

	user, err := s.users.FindByUsername(ctx, claims.Subject)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, s.reject("unknown_subject", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	return user.Identity(), nil
}

func (s *AuthService) ChangePassword(ctx context.Context, identity *domain.ResolvedIdentity, current, next string) error {
	if identity == nil {
		return domain.ErrUnauthenticated
	}
	if next == "" || !security.PasswordFits(next) {
		return domain.ErrInvalidInput
	}

	user, err := s.users.FindByUsername(ctx, identity.Username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrUnauthenticated
	}
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	if !s.hasher.Verify(ctx, current, user.PasswordHash) {
		return domain.ErrInvalidCredential
	}

	hash, err := s.hasher.Hash(ctx, next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	s.log.Info().Int64("user_id", user.ID).Msg("password changed")
	return nil
}

// reject records why a token was refused. The token itself is never logged.
func (s *AuthService) reject(reason string, cause error) error {
	metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
	s.log.Debug().Str("reason", reason).Msg("token rejected")
	if cause != nil {
		return fmt.Errorf("%w: %w", domain.ErrUnauthenticated, cause)
	}
	return domain.ErrUnauthenticated
}
