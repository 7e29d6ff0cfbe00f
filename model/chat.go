package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConversationType string

const (
	ConversationFirstMessage ConversationType = "first_message"
	ConversationOngoing      ConversationType = "ongoing_conversation"
)

func (t ConversationType) Valid() bool {
	return t == ConversationFirstMessage || t == ConversationOngoing
}

type Chat struct {
	ID               string           `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID           string           `gorm:"type:varchar(36);not null;index:idx_chats_user_id_created_at" json:"user_id"`
	Title            string           `gorm:"type:varchar(255);not null" json:"title"`
	ConversationType ConversationType `gorm:"type:varchar(64);not null" json:"conversation_type"`
	CreatedAt        time.Time        `gorm:"index:idx_chats_user_id_created_at" json:"created_at"`
}

func (c *Chat) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
