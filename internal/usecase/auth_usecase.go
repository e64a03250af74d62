package usecase

import (
	"context"
	"errors"
	"strings"

	"evalue-storefront/internal/domain"
	"evalue-storefront/pkg/logger"
	"evalue-storefront/pkg/utils"
)

type AuthUsecase struct {
	provider domain.AuthProvider
	store    domain.DocumentStore
}

func NewAuthUsecase(provider domain.AuthProvider, store domain.DocumentStore) *AuthUsecase {
	return &AuthUsecase{provider: provider, store: store}
}

// Register validates the credentials, creates the account and seeds empty
// cart and favorites documents for it.
func (u *AuthUsecase) Register(ctx context.Context, email, password string) (*domain.Session, error) {
	email = utils.NormalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	sess, err := u.provider.SignUp(ctx, email, password)
	if err != nil {
		if !errors.Is(err, domain.ErrEmailTaken) {
			logger.WithContext(ctx).Error().Err(err).Msg("Sign up failed")
		}
		return nil, err
	}

	uid := sess.UserID()
	for _, kind := range []domain.MembershipKind{domain.KindCart, domain.KindFavorites} {
		if err := u.store.UpsertMerge(ctx, kind.Collection(), uid, kind.EmptyPatch()); err != nil {
			// The account exists; a missing set document reads as empty.
			logger.WithContext(ctx).Warn().Err(err).Str("user_id", uid).Str("kind", string(kind)).Msg("Failed to seed membership set")
		}
	}
	return sess, nil
}

func (u *AuthUsecase) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	sess, err := u.provider.SignIn(ctx, email, password)
	if err != nil {
		if errors.Is(err, domain.ErrRemoteUnavailable) {
			logger.WithContext(ctx).Error().Err(err).Msg("Sign in failed")
			return nil, err
		}
		return nil, domain.ErrInvalidCredentials
	}
	return sess, nil
}

// Logout never fails the caller; provider errors are logged.
func (u *AuthUsecase) Logout(ctx context.Context, sess *domain.Session) {
	if sess == nil {
		return
	}
	if err := u.provider.SignOut(ctx, sess); err != nil {
		logger.WithContext(ctx).Error().Err(err).Str("user_id", sess.UserID()).Msg("Sign out failed")
	}
}

func (u *AuthUsecase) Me(sess *domain.Session) (*domain.User, error) {
	if sess == nil {
		return nil, domain.ErrNotAuthenticated
	}
	user := sess.User
	return &user, nil
}

func validateCredentials(email, password string) error {
	if len(email) < domain.MinEmailLength || !strings.Contains(email, "@") {
		return domain.NewValidationError("email", "a valid email is required")
	}
	if len(password) < domain.MinPasswordLength {
		return domain.NewValidationError("password", "password must be at least 6 characters")
	}
	if len(password) > domain.MaxPasswordLength {
		return domain.NewValidationError("password", "password must be at most 72 bytes")
	}
	return nil
}
