package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"approcciala/model"

	gocache "github.com/patrickmn/go-cache"
)

// Workspace is the state one signed-in client keeps between requests: its
// session and the images it has uploaded but not yet sent, per chat.
type Workspace struct {
	ID      string
	Session *SessionProvider

	blobs     Blobs
	maxImages int

	mu          sync.Mutex
	attachments map[string]*AttachmentManager
}

func (w *Workspace) User() *model.User {
	return w.Session.Current().User
}

// Attachments returns the pending image set of chatID's view.
func (w *Workspace) Attachments(chatID string) *AttachmentManager {
	w.mu.Lock()
	defer w.mu.Unlock()
	m, ok := w.attachments[chatID]
	if !ok {
		m = NewAttachmentManager(w.blobs, w.User, w.maxImages)
		w.attachments[chatID] = m
	}
	return m
}

func (w *Workspace) Close() {
	w.Session.Close()
}

// Workspaces keeps one Workspace per session id and drops it on sign-out or
// after ttl without use.
type Workspaces struct {
	identity  Identity
	blobs     Blobs
	maxImages int
	cache     *gocache.Cache

	mu sync.Mutex
}

func NewWorkspaces(identity Identity, blobs Blobs, maxImages int, ttl time.Duration) *Workspaces {
	cache := gocache.New(ttl, 10*time.Minute)
	cache.OnEvicted(func(_ string, v interface{}) {
		if w, ok := v.(*Workspace); ok {
			w.Close()
		}
	})
	return &Workspaces{
		identity:  identity,
		blobs:     blobs,
		maxImages: maxImages,
		cache:     cache,
	}
}

// Acquire returns the live workspace of sessionID, creating it with a session
// lookup of token when needed. A revoked token is rejected and leaves the cached workspace in place.
func (ws *Workspaces) Acquire(ctx context.Context, sessionID, token string) (*Workspace, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if v, ok := ws.cache.Get(sessionID); ok {
		w := v.(*Workspace)
		state := w.Session.Current()
		if state.Session != nil && state.Session.AccessToken == token {
			ws.cache.SetDefault(sessionID, w)
			return w, nil
		}

		// a stale token must not evict the live workspace
		session, err := ws.identity.GetSession(ctx, token)
		if err != nil {
			return nil, remoteFailure("get session", err)
		}
		if session == nil {
			return nil, fmt.Errorf("%w: invalid authorization, please login again", ErrUnauthorized)
		}
		if state.User != nil && state.User.ID == session.User.ID {
			ws.cache.SetDefault(sessionID, w)
			return w, nil
		}
		ws.cache.Delete(sessionID)
	}

	provider := NewSessionProvider(ws.identity, sessionID, token, nil)
	if err := provider.Start(ctx); err != nil {
		provider.Close()
		return nil, err
	}
	if provider.Current().User == nil {
		provider.Close()
		return nil, fmt.Errorf("%w: invalid authorization, please login again", ErrUnauthorized)
	}

	w := &Workspace{
		ID:          sessionID,
		Session:     provider,
		blobs:       ws.blobs,
		maxImages:   ws.maxImages,
		attachments: make(map[string]*AttachmentManager),
	}
	provider.Watch(func(state SessionState) {
		if state.User == nil {
			ws.cache.Delete(sessionID)
		}
	})
	ws.cache.SetDefault(sessionID, w)
	return w, nil
}

func (ws *Workspaces) Len() int {
	return ws.cache.ItemCount()
}

// Close tears down every workspace.
func (ws *Workspaces) Close() {
	for id := range ws.cache.Items() {
		ws.cache.Delete(id)
	}
}
