package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"approcciala/model"

	"github.com/sirupsen/logrus"
)

// DefaultReplyDelay is how long the assistant waits before answering.
const DefaultReplyDelay = time.Second

const (
	firstMessageReply = "Thanks for your message! This is a first contact, I'll proceed carefully."
	ongoingReply      = "Thanks for your message! Let's continue our conversation."
)

// AssistantReply is the canned answer for a chat of the given type.
func AssistantReply(t model.ConversationType) string {
	if t == model.ConversationFirstMessage {
		return firstMessageReply
	}
	return ongoingReply
}

// ConversationStore is the part of the row store a chat view reads and writes.
type ConversationStore interface {
	GetChat(ctx context.Context, chatID, userID string) (*model.Chat, error)
	ListMessages(ctx context.Context, chatID string) ([]model.Message, error)
	CreateMessage(ctx context.Context, message *model.Message) error
	CreateMessageImage(ctx context.Context, image *model.MessageImage) error
}

type ConversationState int

const (
	StateLoading ConversationState = iota
	StateReady
	StateSending
	StateNotFound
)

func (s ConversationState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateSending:
		return "sending"
	case StateNotFound:
		return "not_found"
	}
	return fmt.Sprintf("ConversationState(%d)", int(s))
}

// ChatMessage is a message as shown in a chat view.
type ChatMessage struct {
	ID        uint       `json:"id"`
	ChatID    string     `json:"chat_id"`
	Content   string     `json:"content"`
	Role      model.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	Images    []string   `json:"images"`
}

func newChatMessage(m *model.Message, images []string) ChatMessage {
	if images == nil {
		images = []string{}
	}
	return ChatMessage{
		ID:        m.ID,
		ChatID:    m.ChatID,
		Content:   m.Content,
		Role:      m.Role,
		CreatedAt: m.CreatedAt,
		Images:    images,
	}
}

// Conversation drives one chat view: it loads the thread, sends user messages
// and appends the automatic assistant reply.
type Conversation struct {
	store      ConversationStore
	replies    *Deferrer
	replyDelay time.Duration
	logger     *logrus.Logger
	userID     string
	chatID     string

	mu       sync.Mutex
	state    ConversationState
	sending  int
	chat     *model.Chat
	messages []ChatMessage
	closed   bool
}

func NewConversation(store ConversationStore, replies *Deferrer, replyDelay time.Duration, logger *logrus.Logger, userID, chatID string) *Conversation {
	return &Conversation{
		store:      store,
		replies:    replies,
		replyDelay: replyDelay,
		logger:     logger,
		userID:     userID,
		chatID:     chatID,
		state:      StateLoading,
	}
}

// Load fetches the chat and its history. Any failure leaves the view in StateNotFound.
func (c *Conversation) Load(ctx context.Context) error {
	if c.userID == "" {
		c.setState(StateNotFound)
		return fmt.Errorf("%w: user not authenticated", ErrUnauthorized)
	}

	chat, err := c.store.GetChat(ctx, c.chatID, c.userID)
	if err != nil {
		c.setState(StateNotFound)
		if errors.Is(err, model.ErrNotFound) {
			return fmt.Errorf("chat %s: %w", c.chatID, ErrNotFound)
		}
		return remoteFailure("fetch chat", err)
	}

	rows, err := c.store.ListMessages(ctx, c.chatID)
	if err != nil {
		c.setState(StateNotFound)
		return remoteFailure("fetch messages", err)
	}
	messages := make([]ChatMessage, 0, len(rows))
	for i := range rows {
		messages = append(messages, newChatMessage(&rows[i], rows[i].ImageURLs()))
	}

	c.mu.Lock()
	c.chat = chat
	c.messages = messages
	c.state = StateReady
	c.mu.Unlock()
	return nil
}

// Send stores a user message and its image references, then schedules the
// assistant reply. The message row is written before its image rows; image
// rows that fail are reported in the returned error but the message stays.
// A non-nil message is returned whenever the message row was stored.
func (c *Conversation) Send(ctx context.Context, text string, images []string) (*ChatMessage, error) {
	content := strings.TrimSpace(text)
	if content == "" && len(images) == 0 {
		return nil, validationError("message is empty")
	}

	c.mu.Lock()
	if c.state != StateReady && c.state != StateSending {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: conversation is %s", ErrValidation, c.state)
	}
	chat := c.chat
	c.sending++
	c.state = StateSending
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.sending--
		if c.sending == 0 && c.state == StateSending {
			c.state = StateReady
		}
		c.mu.Unlock()
	}()

	if len(images) > 0 {
		content += fmt.Sprintf("\n\nAttached images: %d", len(images))
	}

	row := &model.Message{ChatID: chat.ID, Content: content, Role: model.RoleUser}
	if err := c.store.CreateMessage(ctx, row); err != nil {
		return nil, remoteFailure("send message", err)
	}

	stored := make([]string, 0, len(images))
	var imageErrs []error
	for i, url := range images {
		image := &model.MessageImage{
			MessageID: row.ID,
			ImageURL:  url,
			ImageName: fmt.Sprintf("image_%d.jpg", i+1),
		}
		if err := c.store.CreateMessageImage(ctx, image); err != nil {
			imageErrs = append(imageErrs, err)
			continue
		}
		stored = append(stored, url)
	}

	msg := newChatMessage(row, stored)
	c.appendMessage(msg)
	c.scheduleReply(chat)

	if len(imageErrs) > 0 {
		c.logger.Warnf("[%s] message %d stored without %d image(s): %s", chat.ID, row.ID, len(imageErrs), errors.Join(imageErrs...))
		return &msg, remoteFailure(
			fmt.Sprintf("attach images to message %d (%d of %d failed)", row.ID, len(imageErrs), len(images)),
			errors.Join(imageErrs...),
		)
	}
	return &msg, nil
}

func (c *Conversation) scheduleReply(chat *model.Chat) {
	c.replies.Schedule(DeferredTask{
		Name:  "assistant-reply " + chat.ID,
		Delay: c.replyDelay,
		Run: func(ctx context.Context) error {
			row := &model.Message{
				ChatID:  chat.ID,
				Content: AssistantReply(chat.ConversationType),
				Role:    model.RoleAssistant,
			}
			if err := c.store.CreateMessage(ctx, row); err != nil {
				return err
			}
			c.appendMessage(newChatMessage(row, nil))
			return nil
		},
	})
}

// appendMessage is a no-op once the view is closed.
func (c *Conversation) appendMessage(msg ChatMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.messages = append(c.messages, msg)
}

func (c *Conversation) setState(state ConversationState) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

func (c *Conversation) State() ConversationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Conversation) Chat() *model.Chat {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chat
}

// Messages returns a copy of the view's messages, oldest first.
func (c *Conversation) Messages() []ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ChatMessage{}, c.messages...)
}

// Close detaches the view. Pending replies are still stored but no longer appended here.
func (c *Conversation) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}
