// Package authprovider signs users up and in against the document store.
// Passwords are bcrypt hashes in users/{uid}; user_emails/{email} maps an
// email to its uid. Sessions are HS256 access tokens.
package authprovider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"evalue-storefront/internal/domain"
	"evalue-storefront/pkg/logger"
	"evalue-storefront/pkg/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Broadcaster fans auth changes out to subscribers.
type Broadcaster interface {
	Publish(change domain.AuthChange)
	Subscribe(fn func(domain.AuthChange)) domain.Unsubscribe
}

type Provider struct {
	store       domain.DocumentStore
	revoker     Revoker
	hub         Broadcaster
	tokenExpiry time.Duration
	bcryptCost  int
}

func New(store domain.DocumentStore, revoker Revoker, hub Broadcaster, tokenExpiry time.Duration) *Provider {
	return &Provider{
		store:       store,
		revoker:     revoker,
		hub:         hub,
		tokenExpiry: tokenExpiry,
		bcryptCost:  bcrypt.DefaultCost,
	}
}

// WithBcryptCost overrides the hashing cost. Tests use bcrypt.MinCost.
func (p *Provider) WithBcryptCost(cost int) *Provider {
	p.bcryptCost = cost
	return p
}

func (p *Provider) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	email = utils.NormalizeEmail(email)
	if len(password) > domain.MaxPasswordLength {
		return nil, domain.NewValidationError("password", "password must be at most 72 bytes")
	}

	_, err := p.store.GetOne(ctx, domain.CollectionUserEmails, email)
	switch {
	case err == nil:
		return nil, domain.ErrEmailTaken
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{ID: uuid.NewString(), Email: email, CreatedAt: time.Now().UTC()}
	if err := p.store.UpsertMerge(ctx, domain.CollectionUsers, user.ID, map[string]any{
		"uid":           user.ID,
		"email":         user.Email,
		"password_hash": string(hash),
		"created_at":    user.CreatedAt.Format(time.RFC3339),
	}); err != nil {
		return nil, err
	}
	if err := p.store.UpsertMerge(ctx, domain.CollectionUserEmails, email, map[string]any{"uid": user.ID}); err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info().Str("user_id", user.ID).Msg("User registered")
	return p.open(user)
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	email = utils.NormalizeEmail(email)

	idx, err := p.store.GetOne(ctx, domain.CollectionUserEmails, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	uid, _ := idx.Data["uid"].(string)
	if uid == "" {
		return nil, domain.ErrInvalidCredentials
	}

	doc, err := p.store.GetOne(ctx, domain.CollectionUsers, uid)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	hash, _ := doc.Data["password_hash"].(string)
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user := domain.User{ID: uid, Email: email}
	if created, ok := doc.Data["created_at"].(string); ok {
		user.CreatedAt, _ = time.Parse(time.RFC3339, created)
	}
	return p.open(user)
}

// SignOut revokes the session token for the rest of its lifetime.
func (p *Provider) SignOut(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return domain.ErrNotAuthenticated
	}
	if session.TokenID != "" {
		if err := p.revoker.Revoke(ctx, session.TokenID, time.Until(session.ExpiresAt)); err != nil {
			return domain.Unavailable("sign out", err)
		}
	}
	p.hub.Publish(domain.AuthChange{UserID: session.UserID()})
	return nil
}

func (p *Provider) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := utils.ValidateJWT(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}
	if claims.TokenID != "" {
		revoked, err := p.revoker.IsRevoked(ctx, claims.TokenID)
		if err != nil {
			return nil, domain.Unavailable("authenticate", err)
		}
		if revoked {
			return nil, domain.ErrInvalidToken
		}
	}
	return &domain.Session{
		User:      domain.User{ID: claims.UserID, Email: claims.Email},
		Token:     token,
		TokenID:   claims.TokenID,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

func (p *Provider) Subscribe(fn func(domain.AuthChange)) domain.Unsubscribe {
	return p.hub.Subscribe(fn)
}

func (p *Provider) open(user domain.User) (*domain.Session, error) {
	token, claims, err := utils.GenerateJWT(user.ID, user.Email, p.tokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	session := &domain.Session{
		User:      user,
		Token:     token,
		TokenID:   claims.TokenID,
		ExpiresAt: claims.ExpiresAt,
	}
	p.hub.Publish(domain.AuthChange{UserID: user.ID, Session: session})
	return session, nil
}
