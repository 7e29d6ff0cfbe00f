package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// Store is the row store for profiles, chats, messages and message images.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateUser(ctx context.Context, user *User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) UserExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate("user", err)
	}
	return &user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate("user", err)
	}
	return &user, nil
}

func (s *Store) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var profile Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, translate("profile", err)
	}
	return &profile, nil
}

func (s *Store) CreateChat(ctx context.Context, chat *Chat) error {
	if err := s.db.WithContext(ctx).Create(chat).Error; err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	return nil
}

// GetChat returns the chat only when userID owns it.
func (s *Store) GetChat(ctx context.Context, chatID, userID string) (*Chat, error) {
	var chat Chat
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", chatID, userID).
		First(&chat).Error
	if err != nil {
		return nil, translate("chat", err)
	}
	return &chat, nil
}

// ListChats returns the user's chats, most recent first.
func (s *Store) ListChats(ctx context.Context, userID string) ([]Chat, error) {
	chats := []Chat{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&chats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chats: %w", err)
	}
	return chats, nil
}

func (s *Store) CreateMessage(ctx context.Context, message *Message) error {
	if err := s.db.WithContext(ctx).Omit("Images").Create(message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (s *Store) CreateMessageImage(ctx context.Context, image *MessageImage) error {
	if err := s.db.WithContext(ctx).Create(image).Error; err != nil {
		return fmt.Errorf("failed to create message image: %w", err)
	}
	return nil
}

// ListMessages returns the chat history oldest first with attached images preloaded.
func (s *Store) ListMessages(ctx context.Context, chatID string) ([]Message, error) {
	messages := []Message{}
	err := s.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	return messages, nil
}

func (s *Store) BlacklistToken(ctx context.Context, token string, expiresAt time.Time) error {
	err := s.db.WithContext(ctx).
		Where(BlacklistedToken{Token: token}).
		Attrs(BlacklistedToken{ExpiresAt: expiresAt}).
		FirstOrCreate(&BlacklistedToken{}).Error
	if err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

func (s *Store) IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&BlacklistedToken{}).Where("token = ?", token).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return count > 0, nil
}

// PurgeExpiredTokens drops revoked tokens that would no longer validate anyway.
func (s *Store) PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&BlacklistedToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge expired tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func translate(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("database query failed: %w", err)
}
