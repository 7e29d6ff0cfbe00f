package model_test

import (
	"context"
	"testing"
	"time"

	"approcciala/model"
	"approcciala/model/modeltest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser_CreatesTrialProfile(t *testing.T) {
	store := modeltest.NewStore(t)
	ctx := context.Background()

	user := modeltest.NewUser(t, store, "a@example.com")
	require.NotEmpty(t, user.ID)

	profile, err := store.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.UserID)
	assert.WithinDuration(t, profile.TrialStartDate.Add(model.TrialPeriod), profile.TrialEndDate, time.Second)
}

func TestGetProfile_NotFound(t *testing.T) {
	store := modeltest.NewStore(t)

	_, err := store.GetProfile(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUserExists(t *testing.T) {
	store := modeltest.NewStore(t)
	ctx := context.Background()
	modeltest.NewUser(t, store, "a@example.com")

	exists, err := store.UserExists(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.UserExists(ctx, "b@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGetChat_OwnerOnly(t *testing.T) {
	store := modeltest.NewStore(t)
	ctx := context.Background()
	owner := modeltest.NewUser(t, store, "owner@example.com")
	other := modeltest.NewUser(t, store, "other@example.com")

	chat := &model.Chat{UserID: owner.ID, Title: "Test", ConversationType: model.ConversationFirstMessage}
	require.NoError(t, store.CreateChat(ctx, chat))
	require.NotEmpty(t, chat.ID)

	got, err := store.GetChat(ctx, chat.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test", got.Title)

	_, err = store.GetChat(ctx, chat.ID, other.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestListChats_MostRecentFirst(t *testing.T) {
	store := modeltest.NewStore(t)
	ctx := context.Background()
	user := modeltest.NewUser(t, store, "a@example.com")
	other := modeltest.NewUser(t, store, "b@example.com")

	base := time.Now().Add(-time.Hour)
	for i, title := range []string{"old", "middle", "new"} {
		require.NoError(t, store.CreateChat(ctx, &model.Chat{
			UserID:           user.ID,
			Title:            title,
			ConversationType: model.ConversationOngoing,
			CreatedAt:        base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, store.CreateChat(ctx, &model.Chat{UserID: other.ID, Title: "foreign", ConversationType: model.ConversationOngoing}))

	chats, err := store.ListChats(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, chats, 3)
	assert.Equal(t, "new", chats[0].Title)
	assert.Equal(t, "middle", chats[1].Title)
	assert.Equal(t, "old", chats[2].Title)
}

func TestListMessages_OrderedWithImages(t *testing.T) {
	store := modeltest.NewStore(t)
	ctx := context.Background()
	user := modeltest.NewUser(t, store, "a@example.com")
	chat := &model.Chat{UserID: user.ID, Title: "Test", ConversationType: model.ConversationFirstMessage}
	require.NoError(t, store.CreateChat(ctx, chat))

	base := time.Now()
	later := &model.Message{ChatID: chat.ID, Content: "second", Role: model.RoleAssistant, CreatedAt: base.Add(time.Second)}
	earlier := &model.Message{ChatID: chat.ID, Content: "first", Role: model.RoleUser, CreatedAt: base}
	require.NoError(t, store.CreateMessage(ctx, later))
	require.NoError(t, store.CreateMessage(ctx, earlier))

	for _, u := range []string{"https://cdn/b.png", "https://cdn/a.png"} {
		require.NoError(t, store.CreateMessageImage(ctx, &model.MessageImage{MessageID: earlier.ID, ImageURL: u}))
	}

	messages, err := store.ListMessages(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, []string{"https://cdn/b.png", "https://cdn/a.png"}, messages[0].ImageURLs())
	assert.Equal(t, "second", messages[1].Content)
	assert.Equal(t, []string{}, messages[1].ImageURLs())
}

func TestBlacklistedTokens(t *testing.T) {
	store := modeltest.NewStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.BlacklistToken(ctx, "expired", now.Add(-time.Hour)))
	require.NoError(t, store.BlacklistToken(ctx, "live", now.Add(time.Hour)))
	require.NoError(t, store.BlacklistToken(ctx, "live", now.Add(time.Hour)))

	ok, err := store.IsTokenBlacklisted(ctx, "live")
	require.NoError(t, err)
	assert.True(t, ok)

	purged, err := store.PurgeExpiredTokens(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)

	ok, err = store.IsTokenBlacklisted(ctx, "expired")
	require.NoError(t, err)
	assert.False(t, ok)
}
