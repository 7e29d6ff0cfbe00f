package service

import (
	"context"
	"sync"

	"approcciala/model"
)

// Route is a client-facing view path.
type Route string

const (
	RouteLanding    Route = "/"
	RouteAuth       Route = "/auth"
	RouteDashboard  Route = "/dashboard"
	RouteCreateChat Route = "/create-chat"
)

func ChatRoute(chatID string) Route {
	return Route("/chat/" + chatID)
}

// RedirectFor is the navigation policy for identity changes. It returns "" when
// the change should not move the user anywhere.
func RedirectFor(event AuthEvent, session *Session) Route {
	if event == EventSignedOut || session == nil || session.User == nil {
		return ""
	}
	return RouteDashboard
}

// GuardRoute sends anonymous visitors of protected views to the auth page once loading is done.
func GuardRoute(state SessionState) Route {
	if state.Loading || state.User != nil {
		return ""
	}
	return RouteAuth
}

// Identity is the part of the identity backend a SessionProvider needs.
type Identity interface {
	GetSession(ctx context.Context, accessToken string) (*Session, error)
	OnSessionChange(listener SessionListener) Subscription
}

// SessionState is what consumers observe.
type SessionState struct {
	User    *model.User
	Session *Session
	Loading bool
}

// SessionProvider tracks the current user of one client session. Both the initial
// lookup and change notifications write the same state; the most recent one wins.
type SessionProvider struct {
	identity  Identity
	sessionID string
	token     string
	navigate  func(Route)

	mu       sync.Mutex
	state    SessionState
	version  uint64
	sub      Subscription
	closed   bool
	nextID   int
	watchers map[int]func(SessionState)
}

// NewSessionProvider watches the session sessionID, initially proved by token.
// navigate may be nil.
func NewSessionProvider(identity Identity, sessionID, token string, navigate func(Route)) *SessionProvider {
	return &SessionProvider{
		identity:  identity,
		sessionID: sessionID,
		token:     token,
		navigate:  navigate,
		state:     SessionState{Loading: true},
		watchers:  make(map[int]func(SessionState)),
	}
}

// Start subscribes to identity changes and then performs one immediate lookup.
func (p *SessionProvider) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.sub = p.identity.OnSessionChange(p.onChange)
	startVersion := p.version
	token := p.token
	p.mu.Unlock()

	session, err := p.identity.GetSession(ctx, token)
	if err != nil {
		p.apply(startVersion, nil, true)
		return remoteFailure("get session", err)
	}
	if p.apply(startVersion, session, true) {
		p.redirect(EventInitialSession, session)
	}
	return nil
}

func (p *SessionProvider) onChange(change AuthChange) {
	if change.SessionID != p.sessionID {
		return
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.version++
	version := p.version
	if change.Session != nil {
		p.token = change.Session.AccessToken
	}
	p.mu.Unlock()

	if p.apply(version, change.Session, false) {
		p.redirect(change.Event, change.Session)
	}
}

// apply stores session unless a newer change already landed. A lookup only
// applies if no notification arrived since it started.
func (p *SessionProvider) apply(version uint64, session *Session, lookup bool) bool {
	p.mu.Lock()
	if p.closed || (lookup && version != p.version) || (!lookup && version < p.version) {
		p.mu.Unlock()
		return false
	}
	p.state = SessionState{Session: session, Loading: false}
	if session != nil {
		p.state.User = session.User
	}
	state := p.state
	watchers := make([]func(SessionState), 0, len(p.watchers))
	for _, w := range p.watchers {
		watchers = append(watchers, w)
	}
	p.mu.Unlock()

	for _, w := range watchers {
		w(state)
	}
	return true
}

func (p *SessionProvider) redirect(event AuthEvent, session *Session) {
	if p.navigate == nil {
		return
	}
	if route := RedirectFor(event, session); route != "" {
		p.navigate(route)
	}
}

// Current returns the latest state.
func (p *SessionProvider) Current() SessionState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Watch calls fn on every state change until the returned func is called.
func (p *SessionProvider) Watch(fn func(SessionState)) (cancel func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	id := p.nextID
	p.watchers[id] = fn
	return func() {
		p.mu.Lock()
		delete(p.watchers, id)
		p.mu.Unlock()
	}
}

// Close releases the identity subscription. Later notifications are ignored.
func (p *SessionProvider) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	sub := p.sub
	p.watchers = map[int]func(SessionState){}
	p.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}
