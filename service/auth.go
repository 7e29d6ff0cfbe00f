package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"approcciala/model"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

// AuthEvent is the kind of identity change delivered to session listeners.
type AuthEvent string

const (
	EventInitialSession AuthEvent = "INITIAL_SESSION"
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// Session is an authenticated user plus the access token that proves it.
type Session struct {
	AccessToken string      `json:"access_token"`
	SessionID   string      `json:"-"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        *model.User `json:"user"`
}

// AuthChange is one identity notification. Session is nil after sign-out.
type AuthChange struct {
	Event     AuthEvent
	SessionID string
	Session   *Session
}

type SessionListener func(change AuthChange)

// Subscription releases a listener registered with OnSessionChange.
type Subscription interface {
	Unsubscribe()
}

type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	UserExists(ctx context.Context, email string) (bool, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	BlacklistToken(ctx context.Context, token string, expiresAt time.Time) error
	IsTokenBlacklisted(ctx context.Context, token string) (bool, error)
}

// AuthService is the identity backend: accounts, access tokens and change notifications.
type AuthService struct {
	store  UserStore
	tokens *TokenService

	mu        sync.Mutex
	nextID    uint64
	listeners map[uint64]SessionListener
	signedUp  func(user *model.User)
}

func NewAuthService(store UserStore, tokens *TokenService) *AuthService {
	return &AuthService{
		store:     store,
		tokens:    tokens,
		listeners: make(map[uint64]SessionListener),
	}
}

func (a *AuthService) SignUp(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !isValidEmail(email) {
		return nil, validationError("invalid email address")
	}
	if len(password) < minPasswordLen {
		return nil, validationError("password must be at least %d characters", minPasswordLen)
	}

	exists, err := a.store.UserExists(ctx, email)
	if err != nil {
		return nil, remoteFailure("sign up", err)
	}
	if exists {
		return nil, validationError("user already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:    email,
		Password: string(hashedPassword),
	}
	if err := a.store.CreateUser(ctx, user); err != nil {
		return nil, remoteFailure("sign up", err)
	}

	if a.signedUp != nil {
		a.signedUp(user)
	}

	session, err := a.issue(user, "")
	if err != nil {
		return nil, err
	}
	a.emit(AuthChange{Event: EventSignedIn, SessionID: session.SessionID, Session: session})
	return session, nil
}

// OnSignUp sets fn to be called once for every new account. Set it before serving.
func (a *AuthService) OnSignUp(fn func(user *model.User)) {
	a.signedUp = fn
}

func (a *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, validationError("email and password are required")
	}

	user, err := a.store.GetUserByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if err != nil {
		return nil, remoteFailure("sign in", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	session, err := a.issue(user, "")
	if err != nil {
		return nil, err
	}
	a.emit(AuthChange{Event: EventSignedIn, SessionID: session.SessionID, Session: session})
	return session, nil
}

// SignOut revokes accessToken until it would have expired anyway.
func (a *AuthService) SignOut(ctx context.Context, accessToken string) error {
	meta, err := a.tokens.ExtractTokenMetadata(accessToken)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if err := a.store.BlacklistToken(ctx, accessToken, meta.ExpiresAt); err != nil {
		return remoteFailure("sign out", err)
	}
	a.emit(AuthChange{Event: EventSignedOut, SessionID: meta.AccessUUID})
	return nil
}

// GetSession resolves accessToken. An absent, invalid, expired or revoked token
// yields a nil session and no error.
func (a *AuthService) GetSession(ctx context.Context, accessToken string) (*Session, error) {
	if accessToken == "" {
		return nil, nil
	}
	meta, err := a.tokens.ExtractTokenMetadata(accessToken)
	if err != nil {
		return nil, nil
	}
	revoked, err := a.store.IsTokenBlacklisted(ctx, accessToken)
	if err != nil {
		return nil, remoteFailure("get session", err)
	}
	if revoked {
		return nil, nil
	}
	user, err := a.store.GetUserByID(ctx, meta.UserID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, remoteFailure("get session", err)
	}
	return &Session{
		AccessToken: accessToken,
		SessionID:   meta.AccessUUID,
		ExpiresAt:   meta.ExpiresAt,
		User:        user,
	}, nil
}

// Refresh exchanges a live token for a new one in the same session and revokes the old one.
func (a *AuthService) Refresh(ctx context.Context, accessToken string) (*Session, error) {
	current, err := a.GetSession(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("%w: invalid authorization, please login again", ErrUnauthorized)
	}

	session, err := a.issue(current.User, current.SessionID)
	if err != nil {
		return nil, err
	}
	if err := a.store.BlacklistToken(ctx, accessToken, current.ExpiresAt); err != nil {
		return nil, remoteFailure("refresh", err)
	}
	a.emit(AuthChange{Event: EventTokenRefreshed, SessionID: session.SessionID, Session: session})
	return session, nil
}

// OnSessionChange registers listener for every identity change until unsubscribed.
// Listeners are called synchronously from the goroutine that caused the change.
func (a *AuthService) OnSessionChange(listener SessionListener) Subscription {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextID++
	id := a.nextID
	a.listeners[id] = listener
	return &subscription{auth: a, id: id}
}

func (a *AuthService) issue(user *model.User, sessionID string) (*Session, error) {
	td, err := a.tokens.CreateToken(user.ID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &Session{
		AccessToken: td.AccessToken,
		SessionID:   td.AccessUUID,
		ExpiresAt:   time.Unix(td.AtExpires, 0),
		User:        user,
	}, nil
}

func (a *AuthService) emit(change AuthChange) {
	a.mu.Lock()
	listeners := make([]SessionListener, 0, len(a.listeners))
	for _, l := range a.listeners {
		listeners = append(listeners, l)
	}
	a.mu.Unlock()

	for _, l := range listeners {
		l(change)
	}
}

type subscription struct {
	auth *AuthService
	id   uint64
	once sync.Once
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.auth.mu.Lock()
		delete(s.auth.listeners, s.id)
		s.auth.mu.Unlock()
	})
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func isValidEmail(email string) bool {
	if strings.TrimSpace(email) == "" {
		return false
	}
	return emailRegex.MatchString(email)
}
