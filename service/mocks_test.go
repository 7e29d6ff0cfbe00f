package service

import (
	"context"
	"io"
	"time"

	"approcciala/model"
	"approcciala/platform"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock for the row store interfaces used by the controllers.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockStore) ListChats(ctx context.Context, userID string) ([]model.Chat, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Chat), args.Error(1)
}

func (m *MockStore) CreateChat(ctx context.Context, chat *model.Chat) error {
	args := m.Called(ctx, chat)
	return args.Error(0)
}

func (m *MockStore) GetChat(ctx context.Context, chatID, userID string) (*model.Chat, error) {
	args := m.Called(ctx, chatID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Chat), args.Error(1)
}

func (m *MockStore) ListMessages(ctx context.Context, chatID string) ([]model.Message, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Message), args.Error(1)
}

func (m *MockStore) CreateMessage(ctx context.Context, message *model.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockStore) CreateMessageImage(ctx context.Context, image *model.MessageImage) error {
	args := m.Called(ctx, image)
	return args.Error(0)
}

func (m *MockStore) PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockBlobs is a mock for blob storage.
type MockBlobs struct {
	mock.Mock
}

func (m *MockBlobs) Upload(ctx context.Context, objectPath string, r io.Reader) (*platform.Object, error) {
	args := m.Called(ctx, objectPath, r)
	if fn, ok := args.Get(0).(func(context.Context, string, io.Reader) *platform.Object); ok {
		return fn(ctx, objectPath, r), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platform.Object), args.Error(1)
}

func (m *MockBlobs) PublicURL(objectPath string) string {
	args := m.Called(objectPath)
	if fn, ok := args.Get(0).(func(string) string); ok {
		return fn(objectPath)
	}
	return args.String(0)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
