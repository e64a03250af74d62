package domain

import (
	"context"
	"time"
)

type ContextKey string

const (
	UserContextKey    ContextKey = "user"
	SessionContextKey ContextKey = "session"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// Session is the active identity passed explicitly to every mutation.
type Session struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Session) UserID() string {
	if s == nil {
		return ""
	}
	return s.User.ID
}

// AuthChange is broadcast whenever a user signs in or out. Session is nil on sign-out.
type AuthChange struct {
	UserID  string
	Session *Session
}

func (c AuthChange) SignedIn() bool {
	return c.Session != nil
}

// Unsubscribe detaches a listener registered with Subscribe.
type Unsubscribe func()

// AuthProvider signs users in and out and reports changes to subscribers.
type AuthProvider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, session *Session) error
	Authenticate(ctx context.Context, token string) (*Session, error)
	Subscribe(fn func(AuthChange)) Unsubscribe
}

// SessionFromContext returns the session stored by the auth middleware.
func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(SessionContextKey).(*Session)
	return s
}

// ContextWithSession stores the session and its user.
func ContextWithSession(ctx context.Context, s *Session) context.Context {
	ctx = context.WithValue(ctx, SessionContextKey, s)
	if s != nil {
		u := s.User
		ctx = context.WithValue(ctx, UserContextKey, &u)
	}
	return ctx
}
