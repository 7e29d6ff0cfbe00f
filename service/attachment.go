package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"approcciala/model"
	"approcciala/platform"

	"github.com/google/uuid"
)

// DefaultMaxImages caps the accumulated image set when no limit is configured.
const DefaultMaxImages = 10

// Blobs is the blob storage the attachment manager uploads to.
type Blobs interface {
	Upload(ctx context.Context, objectPath string, r io.Reader) (*platform.Object, error)
	PublicURL(objectPath string) string
}

// UploadFile is one locally selected file.
type UploadFile struct {
	Name   string
	Reader io.Reader
}

// UploadOutcome is the result for one file of a batch: a URL or an error.
type UploadOutcome struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
	Err  error  `json:"-"`
}

func (o UploadOutcome) OK() bool { return o.Err == nil }

// UploadBatch reports every per-file outcome together with the full accumulated set.
type UploadBatch struct {
	Outcomes []UploadOutcome
	Images   []string
}

func (b *UploadBatch) Uploaded() int {
	n := 0
	for _, o := range b.Outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}

func (b *UploadBatch) Failed() []UploadOutcome {
	var failed []UploadOutcome
	for _, o := range b.Outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}

// AttachmentManager accumulates public URLs of images uploaded before a message is sent.
type AttachmentManager struct {
	blobs       Blobs
	currentUser func() *model.User
	maxImages   int
	now         func() time.Time

	mu      sync.Mutex
	images  []string
	pending int
}

func NewAttachmentManager(blobs Blobs, currentUser func() *model.User, maxImages int) *AttachmentManager {
	if maxImages <= 0 {
		maxImages = DefaultMaxImages
	}
	return &AttachmentManager{
		blobs:       blobs,
		currentUser: currentUser,
		maxImages:   maxImages,
		now:         time.Now,
	}
}

func (m *AttachmentManager) MaxImages() int { return m.maxImages }

// SelectFiles uploads files under the current user's folder. A file that fails is
// reported in its outcome and the rest of the batch continues. The accumulated
// set is extended once, in input order, after every upload has finished.
func (m *AttachmentManager) SelectFiles(ctx context.Context, files []UploadFile) (*UploadBatch, error) {
	if len(files) == 0 {
		return &UploadBatch{Images: m.Images()}, nil
	}

	m.mu.Lock()
	if len(m.images)+m.pending+len(files) > m.maxImages {
		m.mu.Unlock()
		return nil, validationError("you can upload at most %d images", m.maxImages)
	}
	m.pending += len(files)
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.pending -= len(files)
		m.mu.Unlock()
	}()

	user := m.currentUser()
	if user == nil {
		return nil, fmt.Errorf("%w: user not authenticated", ErrUnauthorized)
	}

	outcomes := make([]UploadOutcome, len(files))
	var wg sync.WaitGroup
	for i, file := range files {
		wg.Add(1)
		go func(i int, file UploadFile) {
			defer wg.Done()
			outcomes[i] = m.upload(ctx, user.ID, file)
		}(i, file)
	}
	wg.Wait()

	m.mu.Lock()
	for _, o := range outcomes {
		if o.OK() {
			m.images = append(m.images, o.URL)
		}
	}
	images := append([]string{}, m.images...)
	m.mu.Unlock()

	return &UploadBatch{Outcomes: outcomes, Images: images}, nil
}

func (m *AttachmentManager) upload(ctx context.Context, userID string, file UploadFile) UploadOutcome {
	objectPath := m.objectPath(userID, file.Name)
	obj, err := m.blobs.Upload(ctx, objectPath, file.Reader)
	if err != nil {
		return UploadOutcome{Name: file.Name, Err: remoteFailure("upload "+file.Name, err)}
	}
	return UploadOutcome{Name: file.Name, URL: m.blobs.PublicURL(obj.Path)}
}

// objectPath is <user id>/<unix millis>-<random><ext>.
func (m *AttachmentManager) objectPath(userID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("%s/%d-%s%s", userID, m.now().UnixMilli(), uuid.New().String(), ext)
}

// RemoveImage drops the URL at index from the set. The blob itself is kept.
func (m *AttachmentManager) RemoveImage(index int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.images) {
		return nil, validationError("no image at position %d", index)
	}
	images := make([]string, 0, len(m.images)-1)
	images = append(images, m.images[:index]...)
	images = append(images, m.images[index+1:]...)
	m.images = images
	return append([]string{}, images...), nil
}

// Images returns a copy of the accumulated set.
func (m *AttachmentManager) Images() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.images...)
}

// Take returns the accumulated set and empties it, for handing over to a send.
func (m *AttachmentManager) Take() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	images := m.images
	m.images = nil
	return append([]string{}, images...)
}

// Restore puts images back in front of the set after a failed send.
func (m *AttachmentManager) Restore(images []string) {
	if len(images) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images = append(append([]string{}, images...), m.images...)
}
