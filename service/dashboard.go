package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"approcciala/model"
)

type DashboardStore interface {
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	ListChats(ctx context.Context, userID string) ([]model.Chat, error)
	CreateChat(ctx context.Context, chat *model.Chat) error
}

// TrialStatus is the trial window as shown on the dashboard. Profile is nil when
// the user has no trial data.
type TrialStatus struct {
	Profile  *model.Profile `json:"profile"`
	DaysLeft int            `json:"days_left"`
	Active   bool           `json:"trial_active"`
}

// DaysLeft counts started days until end, never below zero.
func DaysLeft(end, now time.Time) int {
	days := math.Ceil(float64(end.Sub(now)) / float64(24*time.Hour))
	if days < 0 {
		return 0
	}
	return int(days)
}

// Dashboard serves the trial status, the chat list and chat creation.
type Dashboard struct {
	store DashboardStore
	now   func() time.Time
}

func NewDashboard(store DashboardStore) *Dashboard {
	return &Dashboard{store: store, now: time.Now}
}

func (d *Dashboard) FetchProfile(ctx context.Context, userID string) (*TrialStatus, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user not authenticated", ErrUnauthorized)
	}
	profile, err := d.store.GetProfile(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return &TrialStatus{}, nil
	}
	if err != nil {
		return nil, remoteFailure("fetch profile", err)
	}
	days := DaysLeft(profile.TrialEndDate, d.now())
	return &TrialStatus{Profile: profile, DaysLeft: days, Active: days > 0}, nil
}

func (d *Dashboard) FetchChats(ctx context.Context, userID string) ([]model.Chat, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user not authenticated", ErrUnauthorized)
	}
	chats, err := d.store.ListChats(ctx, userID)
	if err != nil {
		return nil, remoteFailure("fetch chats", err)
	}
	return chats, nil
}

// CreateChat stores a new chat and returns the route of its conversation view.
// An empty conversation type means first_message.
func (d *Dashboard) CreateChat(ctx context.Context, userID, title string, conversationType model.ConversationType) (*model.Chat, Route, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, "", validationError("enter a title for the chat")
	}
	if conversationType == "" {
		conversationType = model.ConversationFirstMessage
	}
	if !conversationType.Valid() {
		return nil, "", validationError("unknown conversation type %q", conversationType)
	}
	if userID == "" {
		return nil, "", fmt.Errorf("%w: user not authenticated", ErrUnauthorized)
	}

	chat := &model.Chat{
		UserID:           userID,
		Title:            title,
		ConversationType: conversationType,
	}
	if err := d.store.CreateChat(ctx, chat); err != nil {
		return nil, "", remoteFailure("create chat", err)
	}
	return chat, ChatRoute(chat.ID), nil
}
