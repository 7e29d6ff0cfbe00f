package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"approcciala/model"
	"approcciala/model/modeltest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testReplyDelay = 10 * time.Millisecond

type conversationFixture struct {
	store   *model.Store
	replies *Deferrer
	user    *model.User
	chat    *model.Chat
}

func newConversationFixture(t *testing.T, kind model.ConversationType) *conversationFixture {
	t.Helper()
	store := modeltest.NewStore(t)
	user := modeltest.NewUser(t, store, "a@example.com")
	chat := &model.Chat{UserID: user.ID, Title: "Test", ConversationType: kind}
	require.NoError(t, store.CreateChat(context.Background(), chat))
	return &conversationFixture{
		store:   store,
		replies: NewDeferrer(context.Background(), quietLogger()),
		user:    user,
		chat:    chat,
	}
}

func (f *conversationFixture) open(t *testing.T) *Conversation {
	t.Helper()
	conv := NewConversation(f.store, f.replies, testReplyDelay, quietLogger(), f.user.ID, f.chat.ID)
	require.NoError(t, conv.Load(context.Background()))
	require.Equal(t, StateReady, conv.State())
	return conv
}

func waitReplies(t *testing.T, d *Deferrer) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Wait(ctx))
}

func TestSend_FirstMessageScenario(t *testing.T) {
	f := newConversationFixture(t, model.ConversationFirstMessage)
	conv := f.open(t)
	defer conv.Close()

	msg, err := conv.Send(context.Background(), "Hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello", msg.Content)
	assert.Equal(t, model.RoleUser, msg.Role)
	assert.NotZero(t, msg.ID)
	assert.Equal(t, StateReady, conv.State())

	waitReplies(t, f.replies)

	stored, err := f.store.ListMessages(context.Background(), f.chat.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, model.RoleUser, stored[0].Role)
	assert.Equal(t, "Hello", stored[0].Content)
	assert.Equal(t, model.RoleAssistant, stored[1].Role)
	assert.Equal(t, AssistantReply(model.ConversationFirstMessage), stored[1].Content)

	view := conv.Messages()
	require.Len(t, view, 2)
	assert.Equal(t, AssistantReply(model.ConversationFirstMessage), view[1].Content)
}

func TestSend_OngoingReply(t *testing.T) {
	f := newConversationFixture(t, model.ConversationOngoing)
	conv := f.open(t)
	defer conv.Close()

	_, err := conv.Send(context.Background(), "How was your weekend?", nil)
	require.NoError(t, err)
	waitReplies(t, f.replies)

	view := conv.Messages()
	require.Len(t, view, 2)
	assert.Equal(t, AssistantReply(model.ConversationOngoing), view[1].Content)
	assert.NotEqual(t, AssistantReply(model.ConversationFirstMessage), view[1].Content)
}

func TestSend_EmptyIsNoop(t *testing.T) {
	f := newConversationFixture(t, model.ConversationFirstMessage)
	conv := f.open(t)
	defer conv.Close()

	msg, err := conv.Send(context.Background(), " \n\t", nil)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, msg)
	waitReplies(t, f.replies)

	stored, err := f.store.ListMessages(context.Background(), f.chat.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Empty(t, conv.Messages())
}

func TestSend_WithImages(t *testing.T) {
	f := newConversationFixture(t, model.ConversationFirstMessage)
	conv := f.open(t)
	defer conv.Close()

	images := []string{"https://cdn.test/u/2.png", "https://cdn.test/u/1.png"}
	msg, err := conv.Send(context.Background(), "", images)
	require.NoError(t, err)
	assert.Equal(t, "\n\nAttached images: 2", msg.Content)
	assert.Equal(t, images, msg.Images)
	waitReplies(t, f.replies)

	stored, err := f.store.ListMessages(context.Background(), f.chat.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, images, stored[0].ImageURLs())
	assert.Equal(t, "image_1.jpg", stored[0].Images[0].ImageName)
	assert.Equal(t, "image_2.jpg", stored[0].Images[1].ImageName)
	assert.Empty(t, stored[1].ImageURLs())
}

func TestSend_TextAndImages(t *testing.T) {
	f := newConversationFixture(t, model.ConversationOngoing)
	conv := f.open(t)
	defer conv.Close()

	msg, err := conv.Send(context.Background(), "  look  ", []string{"https://cdn.test/x.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "look\n\nAttached images: 1", msg.Content)
	waitReplies(t, f.replies)
}

func TestLoad_ReturnsHistory(t *testing.T) {
	f := newConversationFixture(t, model.ConversationOngoing)
	ctx := context.Background()
	base := time.Now().Add(-time.Minute)
	require.NoError(t, f.store.CreateMessage(ctx, &model.Message{ChatID: f.chat.ID, Content: "b", Role: model.RoleAssistant, CreatedAt: base.Add(time.Second)}))
	first := &model.Message{ChatID: f.chat.ID, Content: "a", Role: model.RoleUser, CreatedAt: base}
	require.NoError(t, f.store.CreateMessage(ctx, first))
	require.NoError(t, f.store.CreateMessageImage(ctx, &model.MessageImage{MessageID: first.ID, ImageURL: "https://cdn.test/a.jpg"}))

	conv := f.open(t)
	defer conv.Close()

	view := conv.Messages()
	require.Len(t, view, 2)
	assert.Equal(t, "a", view[0].Content)
	assert.Equal(t, []string{"https://cdn.test/a.jpg"}, view[0].Images)
	assert.Equal(t, "b", view[1].Content)
	assert.Equal(t, []string{}, view[1].Images)
	assert.False(t, view[1].CreatedAt.Before(view[0].CreatedAt))
	assert.Equal(t, f.chat.ID, conv.Chat().ID)
}

func TestLoad_OtherUsersChatIsNotFound(t *testing.T) {
	f := newConversationFixture(t, model.ConversationOngoing)
	intruder := modeltest.NewUser(t, f.store, "b@example.com")

	conv := NewConversation(f.store, f.replies, testReplyDelay, quietLogger(), intruder.ID, f.chat.ID)
	err := conv.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, StateNotFound, conv.State())

	_, err = conv.Send(context.Background(), "hi", nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLoad_RemoteFailure(t *testing.T) {
	store := new(MockStore)
	store.On("GetChat", mock.Anything, "c1", "u1").Return(nil, errors.New("connection reset"))

	conv := NewConversation(store, NewDeferrer(context.Background(), quietLogger()), testReplyDelay, quietLogger(), "u1", "c1")
	err := conv.Load(context.Background())
	assert.ErrorIs(t, err, ErrRemote)
	assert.Equal(t, StateNotFound, conv.State())
}

func loadedMockConversation(t *testing.T, store *MockStore, replies *Deferrer) *Conversation {
	t.Helper()
	chat := &model.Chat{ID: "c1", UserID: "u1", Title: "Test", ConversationType: model.ConversationFirstMessage}
	store.On("GetChat", mock.Anything, "c1", "u1").Return(chat, nil)
	store.On("ListMessages", mock.Anything, "c1").Return([]model.Message{}, nil)

	conv := NewConversation(store, replies, testReplyDelay, quietLogger(), "u1", "c1")
	require.NoError(t, conv.Load(context.Background()))
	return conv
}

func isRole(role model.Role) interface{} {
	return mock.MatchedBy(func(m *model.Message) bool { return m.Role == role })
}

func TestSend_MessageFailureAppendsNothing(t *testing.T) {
	store := new(MockStore)
	replies := NewDeferrer(context.Background(), quietLogger())
	conv := loadedMockConversation(t, store, replies)
	store.On("CreateMessage", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	msg, err := conv.Send(context.Background(), "Hello", []string{"https://cdn.test/a.jpg"})
	assert.ErrorIs(t, err, ErrRemote)
	assert.Nil(t, msg)
	assert.Equal(t, StateReady, conv.State())
	assert.Empty(t, conv.Messages())

	waitReplies(t, replies)
	store.AssertNumberOfCalls(t, "CreateMessage", 1)
	store.AssertNotCalled(t, "CreateMessageImage", mock.Anything, mock.Anything)
}

func TestSend_ImageRowFailureKeepsMessage(t *testing.T) {
	store := new(MockStore)
	replies := NewDeferrer(context.Background(), quietLogger())
	conv := loadedMockConversation(t, store, replies)
	store.On("CreateMessage", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { args.Get(1).(*model.Message).ID = 7 }).
		Return(nil)
	store.On("CreateMessageImage", mock.Anything, mock.MatchedBy(func(img *model.MessageImage) bool {
		return img.ImageURL == "https://cdn.test/bad.jpg"
	})).Return(errors.New("insert failed"))
	store.On("CreateMessageImage", mock.Anything, mock.Anything).Return(nil)

	msg, err := conv.Send(context.Background(), "Hello", []string{"https://cdn.test/ok.jpg", "https://cdn.test/bad.jpg"})
	assert.ErrorIs(t, err, ErrRemote)
	require.NotNil(t, msg)
	assert.Equal(t, uint(7), msg.ID)
	assert.Equal(t, []string{"https://cdn.test/ok.jpg"}, msg.Images)

	waitReplies(t, replies)
	view := conv.Messages()
	require.Len(t, view, 2)
	assert.Equal(t, model.RoleAssistant, view[1].Role)
}

func TestSend_ReplyFailureIsSwallowed(t *testing.T) {
	store := new(MockStore)
	replies := NewDeferrer(context.Background(), quietLogger())
	conv := loadedMockConversation(t, store, replies)
	store.On("CreateMessage", mock.Anything, isRole(model.RoleUser)).Return(nil)
	store.On("CreateMessage", mock.Anything, isRole(model.RoleAssistant)).Return(errors.New("insert failed"))

	_, err := conv.Send(context.Background(), "Hello", nil)
	require.NoError(t, err)

	waitReplies(t, replies)
	assert.Len(t, conv.Messages(), 1)
	store.AssertNumberOfCalls(t, "CreateMessage", 2)
}

func TestSend_ClosedViewIsNotUpdated(t *testing.T) {
	f := newConversationFixture(t, model.ConversationFirstMessage)
	conv := NewConversation(f.store, f.replies, 200*time.Millisecond, quietLogger(), f.user.ID, f.chat.ID)
	require.NoError(t, conv.Load(context.Background()))

	_, err := conv.Send(context.Background(), "Hello", nil)
	require.NoError(t, err)
	conv.Close()
	waitReplies(t, f.replies)

	assert.Len(t, conv.Messages(), 1)
	stored, err := f.store.ListMessages(context.Background(), f.chat.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}
