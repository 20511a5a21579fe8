package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Iapetus-11/link-shortener/internal/core/domain"
	"github.com/Iapetus-11/link-shortener/internal/core/port"
	"github.com/Iapetus-11/link-shortener/internal/infra/security"
	"github.com/Iapetus-11/link-shortener/internal/repository"
)

// sessionSecretLength is the symbol count of generated session secrets.
const sessionSecretLength = 96

// SessionGrant is the result of a successful dashboard login: the token
// record id plus the plaintext secret. The secret exists only here and in the
// operator's cookie; storage keeps a hash.
type SessionGrant struct {
	TokenID uuid.UUID
	Secret  string
}

// DashboardSessionService authenticates the operator password and manages
// the login tokens that back dashboard sessions.
type DashboardSessionService struct {
	tokens            port.LoginTokenRepository
	hasher            *security.Hasher
	adminPasswordHash string
	ttl               time.Duration
	now               func() time.Time
}

// NewDashboardSessionService constructs a DashboardSessionService instance.
// adminPasswordHash is the decoded Argon2id hash of the operator password.
func NewDashboardSessionService(
	tokens port.LoginTokenRepository,
	hasher *security.Hasher,
	adminPasswordHash string,
	ttl time.Duration,
) (*DashboardSessionService, error) {
	if adminPasswordHash == "" {
		return nil, errors.New("admin password hash is required")
	}
	if ttl <= 0 {
		return nil, errors.New("login ttl must be positive")
	}
	return &DashboardSessionService{
		tokens:            tokens,
		hasher:            hasher,
		adminPasswordHash: adminPasswordHash,
		ttl:               ttl,
		now:               time.Now,
	}, nil
}

// AttemptLogin verifies the operator password and, on success, mints a fresh
// session token. Each login gets its own token row; logins never share state.
func (s *DashboardSessionService) AttemptLogin(ctx context.Context, password string) (SessionGrant, error) {
	if password == "" {
		return SessionGrant{}, ErrMissingCredential
	}

	if !s.hasher.Verify(ctx, s.hasher.Strong(), password, s.adminPasswordHash) {
		return SessionGrant{}, ErrInvalidSecret
	}

	secret, err := security.GenerateAlphanumeric(sessionSecretLength)
	if err != nil {
		return SessionGrant{}, fmt.Errorf("generate session secret: %w", err)
	}

	hash, err := s.hasher.Hash(ctx, s.hasher.Weak(), secret)
	if err != nil {
		return SessionGrant{}, fmt.Errorf("hash session secret: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return SessionGrant{}, fmt.Errorf("generate token id: %w", err)
	}

	token := domain.DashboardLoginToken{
		ID:        id,
		TokenHash: hash,
		CreatedAt: s.now().UTC(),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return SessionGrant{}, fmt.Errorf("store login token: %w", err)
	}

	return SessionGrant{TokenID: id, Secret: secret}, nil
}

// CheckSession validates a presented session credential: the token row must
// exist, still be inside its TTL, and the secret must match the stored hash.
// The expiry check runs before the hash verification so expired rows never
// pay for an Argon2 computation.
func (s *DashboardSessionService) CheckSession(ctx context.Context, tokenID uuid.UUID, secret string) (domain.OperatorPrincipal, error) {
	if secret == "" {
		return domain.OperatorPrincipal{}, ErrMissingCredential
	}

	token, err := s.tokens.GetByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.OperatorPrincipal{}, ErrUnknownPrincipal
		}
		return domain.OperatorPrincipal{}, fmt.Errorf("lookup login token: %w", err)
	}

	if !token.Active(s.now().UTC(), s.ttl) {
		return domain.OperatorPrincipal{}, ErrExpired
	}

	if !s.hasher.Verify(ctx, s.hasher.Weak(), secret, token.TokenHash) {
		return domain.OperatorPrincipal{}, ErrInvalidSecret
	}

	return domain.OperatorPrincipal{TokenID: token.ID}, nil
}
