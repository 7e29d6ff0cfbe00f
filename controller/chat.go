package controller

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"approcciala/model"
	"approcciala/service"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

type ChatController struct {
	dashboard  *service.Dashboard
	store      service.ConversationStore
	replies    *service.Deferrer
	replyDelay time.Duration
}

func NewChatController(dashboard *service.Dashboard, store service.ConversationStore, replies *service.Deferrer, replyDelay time.Duration) *ChatController {
	return &ChatController{
		dashboard:  dashboard,
		store:      store,
		replies:    replies,
		replyDelay: replyDelay,
	}
}

func (ch *ChatController) Create(c *gin.Context) {
	var input struct {
		Title            string                 `json:"title"`
		ConversationType model.ConversationType `json:"conversation_type"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		logger.Warnf("[%s] Invalid input, %s", c.GetString("requestId"), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	chat, route, err := ch.dashboard.CreateChat(c.Request.Context(), c.GetString("UserId"), input.Title, input.ConversationType)
	if err != nil {
		respondError(c, err, "Failed to create chat")
		return
	}

	logger.Infof("[%s] Chat %s created", c.GetString("requestId"), chat.ID)
	c.JSON(http.StatusCreated, gin.H{"chat": chat, "redirect": route})
}

// open loads the chat view for the :id param. The caller must Close it.
func (ch *ChatController) open(c *gin.Context) (*service.Conversation, bool) {
	conv := service.NewConversation(ch.store, ch.replies, ch.replyDelay, logger, c.GetString("UserId"), c.Param("id"))
	if err := conv.Load(c.Request.Context()); err != nil {
		conv.Close()
		respondError(c, err, "Chat not found")
		return nil, false
	}
	return conv, true
}

func (ch *ChatController) Show(c *gin.Context) {
	conv, ok := ch.open(c)
	if !ok {
		return
	}
	defer conv.Close()

	c.JSON(http.StatusOK, gin.H{
		"chat":     conv.Chat(),
		"state":    conv.State().String(),
		"messages": conv.Messages(),
		"images":   workspaceOf(c).Attachments(c.Param("id")).Images(),
	})
}

// SendMessage posts the text together with the images pending for this chat.
func (ch *ChatController) SendMessage(c *gin.Context) {
	var input struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	conv, ok := ch.open(c)
	if !ok {
		return
	}
	defer conv.Close()

	attachments := workspaceOf(c).Attachments(c.Param("id"))
	images := attachments.Take()

	msg, err := conv.Send(c.Request.Context(), input.Content, images)
	if msg == nil {
		attachments.Restore(images)
		respondError(c, err, "Unable to send the message")
		return
	}

	body := gin.H{"message": msg, "messages": conv.Messages()}
	if err != nil {
		logger.Warnf("[%s] Message %d partially stored: %s", c.GetString("requestId"), msg.ID, err)
		body["warning"] = "Message sent, but some images could not be attached"
	}
	c.JSON(http.StatusCreated, body)
}

// ownedAttachments returns the pending image set after checking the chat belongs to the caller.
func (ch *ChatController) ownedAttachments(c *gin.Context) (*service.AttachmentManager, bool) {
	if _, err := ch.store.GetChat(c.Request.Context(), c.Param("id"), c.GetString("UserId")); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			err = fmt.Errorf("%w: %w", service.ErrNotFound, err)
		} else {
			err = fmt.Errorf("%w: %w", service.ErrRemote, err)
		}
		respondError(c, err, "Chat not found")
		return nil, false
	}
	return workspaceOf(c).Attachments(c.Param("id")), true
}

func (ch *ChatController) Images(c *gin.Context) {
	attachments, ok := ch.ownedAttachments(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"images": attachments.Images(), "max_images": attachments.MaxImages()})
}

func (ch *ChatController) UploadImages(c *gin.Context) {
	attachments, ok := ch.ownedAttachments(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}
	headers := form.File["files"]

	files := make([]service.UploadFile, 0, len(headers))
	failed := make([]gin.H, 0)
	rejected := 0
	var closers []io.Closer
	defer func() {
		for _, f := range closers {
			f.Close()
		}
	}()
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			files = append(files, service.UploadFile{Name: h.Filename, Reader: failingReader{err}})
			continue
		}
		closers = append(closers, f)
		if !isImage(f) {
			rejected++
			failed = append(failed, gin.H{"name": h.Filename, "error": fmt.Sprintf("%s is not an image", h.Filename)})
			continue
		}
		files = append(files, service.UploadFile{Name: h.Filename, Reader: f})
	}

	batch, err := attachments.SelectFiles(c.Request.Context(), files)
	if err != nil {
		respondError(c, err, "Error while uploading the images")
		return
	}

	for _, o := range batch.Failed() {
		logger.Warnf("[%s] Upload of %s failed: %s", c.GetString("requestId"), o.Name, o.Err)
		failed = append(failed, gin.H{"name": o.Name, "error": fmt.Sprintf("Error uploading %s", o.Name)})
	}

	status := http.StatusOK
	if batch.Uploaded() == 0 && len(failed) > 0 {
		status = http.StatusBadGateway
		if len(batch.Failed()) == 0 {
			status = http.StatusBadRequest
		}
	}
	if rejected > 0 {
		logger.Infof("[%s] %d non-image file(s) skipped", c.GetString("requestId"), rejected)
	}
	c.JSON(status, gin.H{
		"uploaded":   batch.Uploaded(),
		"failed":     failed,
		"images":     batch.Images,
		"max_images": attachments.MaxImages(),
	})
}

func (ch *ChatController) RemoveImage(c *gin.Context) {
	attachments, ok := ch.ownedAttachments(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image index"})
		return
	}
	images, err := attachments.RemoveImage(index)
	if err != nil {
		respondError(c, err, "Failed to remove image")
		return
	}
	c.JSON(http.StatusOK, gin.H{"images": images, "max_images": attachments.MaxImages()})
}

// isImage sniffs the content and rewinds f.
func isImage(f io.ReadSeeker) bool {
	mime, err := mimetype.DetectReader(f)
	if _, seekErr := f.Seek(0, io.SeekStart); err != nil || seekErr != nil {
		return false
	}
	return strings.HasPrefix(mime.String(), "image/")
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }
