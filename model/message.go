package model

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	ChatID    string         `gorm:"type:varchar(36);not null;index:idx_messages_chat_id_created_at" json:"chat_id"`
	Content   string         `gorm:"type:text" json:"content"`
	Role      Role           `gorm:"type:varchar(64);not null" json:"role"`
	CreatedAt time.Time      `gorm:"index:idx_messages_chat_id_created_at" json:"created_at"`
	Images    []MessageImage `gorm:"foreignKey:MessageID" json:"-"`
}

// ImageURLs returns the attached image links in insertion order, never nil.
func (m *Message) ImageURLs() []string {
	urls := make([]string, 0, len(m.Images))
	for _, img := range m.Images {
		urls = append(urls, img.ImageURL)
	}
	return urls
}

type MessageImage struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	MessageID uint      `gorm:"not null;index" json:"message_id"`
	ImageURL  string    `gorm:"type:text;not null" json:"image_url"`
	ImageName string    `gorm:"type:varchar(255)" json:"image_name"`
	CreatedAt time.Time `json:"created_at"`
}
