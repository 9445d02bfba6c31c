// Package editor drives a single open document: its buffer, the in-flight
// action and the status line shown to the user.
package editor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	docmodel "inkwell/internal/document/model"
	docservice "inkwell/internal/document/service"
	"inkwell/internal/template"
	vmodel "inkwell/internal/version/model"
	"inkwell/pkg/apperror"
	"inkwell/pkg/logger"
)

type State string

const (
	Idle      State = "idle"
	Loading   State = "loading"
	Saving    State = "saving"
	Improving State = "improving"
)

// Status texts.
const (
	StatusLoading        = "Loading document..."
	StatusLoaded         = "Document loaded successfully!"
	StatusSaving         = "Saving..."
	StatusSaved          = "Document saved successfully!"
	StatusVersionSaved   = "Version saved successfully!"
	StatusRestored       = "Version restored! Remember to save the document."
	StatusNoDocumentID   = "No document ID provided"
	StatusNotFound       = "Document not found"
	MessageProcessing    = "Processing your request..."
	MessageImproved      = "Document improved! Here's the enhanced version."
	MessageNoContent     = "Please add some content to your document first."
	MessageEmptyQuestion = "Please enter a question or request."
)

// StatusClearDelay is how long a success status stays visible.
const StatusClearDelay = 3 * time.Second

type Documents interface {
	LoadDocument(ctx context.Context, docID string) (docmodel.Document, error)
	SaveDocument(ctx context.Context, req docmodel.SaveDocRequest) (docmodel.SaveDocResponse, error)
}

type Versions interface {
	ListVersions(ctx context.Context, docID string) ([]vmodel.Version, error)
	SaveVersion(ctx context.Context, req vmodel.SaveVersionRequest) (vmodel.Version, error)
}

type Suggester interface {
	Improve(ctx context.Context, text string) (string, error)
	Ask(ctx context.Context, question, content string) (string, error)
}

// View is a point-in-time copy of the controller.
type View struct {
	DocID     string
	Title     string
	Content   string
	State     State
	Status    string
	AIMessage string
	Template  template.Name
	Versions  []vmodel.Version
}

// Controller serializes actions: one runs at a time and the next waits in a
// single slot until it finishes or its context is done.
type Controller struct {
	docs      Documents
	versions  Versions
	suggester Suggester

	slot chan struct{}

	mu        sync.Mutex
	docID     string
	title     string
	content   string
	state     State
	status    string
	aiMessage string
	tpl       template.Name
	history   []vmodel.Version
}

func New(docs Documents, versions Versions, suggester Suggester) *Controller {
	return &Controller{
		docs:      docs,
		versions:  versions,
		suggester: suggester,
		slot:      make(chan struct{}, 1),
		title:     docmodel.DefaultTitle,
		state:     Idle,
		tpl:       template.Empty,
	}
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	history := make([]vmodel.Version, len(c.history))
	copy(history, c.history)
	return View{
		DocID:     c.docID,
		Title:     c.title,
		Content:   c.content,
		State:     c.state,
		Status:    c.status,
		AIMessage: c.aiMessage,
		Template:  c.tpl,
		Versions:  history,
	}
}

func (c *Controller) acquire(ctx context.Context, state State) error {
	select {
	case c.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
	return nil
}

func (c *Controller) release() {
	c.mu.Lock()
	c.state = Idle
	c.mu.Unlock()
	<-c.slot
}

func (c *Controller) setStatus(s string) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

func (c *Controller) setAIMessage(s string) {
	c.mu.Lock()
	c.aiMessage = s
	c.mu.Unlock()
}

// Load replaces the buffer with the stored document and refreshes its
// version history.
func (c *Controller) Load(ctx context.Context, docID string) error {
	if docID == "" {
		c.setStatus(StatusNoDocumentID)
		return apperror.Invalid(StatusNoDocumentID)
	}
	if err := c.acquire(ctx, Loading); err != nil {
		return err
	}
	defer c.release()

	c.setStatus(StatusLoading)
	doc, err := c.docs.LoadDocument(ctx, docID)
	if apperror.Is(err, apperror.NotFound) {
		// A missing document leaves a blank editor so the next Save creates
		// a new one instead of overwriting the previous buffer's document.
		c.mu.Lock()
		c.docID = ""
		c.title = docmodel.DefaultTitle
		c.content = ""
		c.history = nil
		c.tpl = template.Empty
		c.status = StatusNotFound
		c.mu.Unlock()
		return err
	}
	if err != nil {
		c.setStatus(failureStatus(err, "Failed to load document"))
		return err
	}

	c.mu.Lock()
	c.docID = doc.ID
	c.title = doc.Title
	c.content = doc.Content.Text
	c.status = StatusLoaded
	c.mu.Unlock()

	c.refreshVersions(ctx)
	return nil
}

// Save persists the buffer, creating the document on first save.
func (c *Controller) Save(ctx context.Context) error {
	if err := c.acquire(ctx, Saving); err != nil {
		return err
	}
	defer c.release()

	c.mu.Lock()
	req := docmodel.SaveDocRequest{DocID: c.docID, Title: c.title, Content: docmodel.Content{Text: c.content}}
	c.status = StatusSaving
	c.mu.Unlock()

	res, err := c.docs.SaveDocument(ctx, req)
	if err != nil {
		c.setStatus(failureStatus(err, "Failed to save document"))
		return err
	}

	c.mu.Lock()
	if res.Created {
		c.docID = res.DocID
		if strings.TrimSpace(c.title) == "" {
			c.title = docmodel.DefaultTitle
		}
	}
	c.status = StatusSaved
	c.mu.Unlock()
	return nil
}

// SaveVersion snapshots the current buffer of a saved document.
func (c *Controller) SaveVersion(ctx context.Context) error {
	if err := c.acquire(ctx, Saving); err != nil {
		return err
	}
	defer c.release()

	c.mu.Lock()
	req := vmodel.SaveVersionRequest{DocumentID: c.docID, Title: c.title, Content: docmodel.Content{Text: c.content}}
	c.mu.Unlock()

	if req.DocumentID == "" {
		err := apperror.Invalid("Save the document before saving a version")
		c.setStatus("Error: " + err.Message)
		return err
	}

	if _, err := c.versions.SaveVersion(ctx, req); err != nil {
		c.setStatus(failureStatus(err, "Failed to save version"))
		return err
	}
	c.refreshVersions(ctx)
	c.setStatus(StatusVersionSaved)
	return nil
}

// ListVersions reloads the history of the open document, newest first.
func (c *Controller) ListVersions(ctx context.Context) ([]vmodel.Version, error) {
	if err := c.acquire(ctx, Loading); err != nil {
		return nil, err
	}
	defer c.release()

	if err := c.refreshVersions(ctx); err != nil {
		return nil, err
	}
	return c.View().Versions, nil
}

// refreshVersions failures are logged and leave the previous list in place.
func (c *Controller) refreshVersions(ctx context.Context) error {
	c.mu.Lock()
	docID := c.docID
	c.mu.Unlock()
	if docID == "" {
		return nil
	}

	history, err := c.versions.ListVersions(ctx, docID)
	if err != nil {
		logger.Sugar.Errorf("Error loading versions: %v", err)
		return err
	}
	c.mu.Lock()
	c.history = history
	c.mu.Unlock()
	return nil
}

// RestoreVersion copies a snapshot into the buffer. Nothing is persisted
// until the next Save.
func (c *Controller) RestoreVersion(ctx context.Context, v vmodel.Version) error {
	if err := c.acquire(ctx, Loading); err != nil {
		return err
	}
	defer c.release()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.docID == "" || v.DocumentID != c.docID {
		c.status = "Error: Failed to restore version"
		return apperror.Invalid("Version does not belong to the open document")
	}
	c.title = v.Title
	c.content = v.Content.Text
	c.status = StatusRestored
	return nil
}

// Improve replaces the buffer content with the model's rewrite.
func (c *Controller) Improve(ctx context.Context) error {
	c.mu.Lock()
	text := c.content
	c.mu.Unlock()
	if strings.TrimSpace(text) == "" {
		c.setAIMessage(MessageNoContent)
		return apperror.Invalid(MessageNoContent)
	}

	if err := c.acquire(ctx, Improving); err != nil {
		return err
	}
	defer c.release()

	c.setAIMessage(MessageProcessing)
	// Read again: an edit may have landed while this action was queued.
	c.mu.Lock()
	text = c.content
	c.mu.Unlock()

	suggestion, err := c.suggester.Improve(ctx, text)
	if err != nil {
		c.setAIMessage("Error: " + errorMessage(err))
		return err
	}

	c.mu.Lock()
	c.content = suggestion
	c.aiMessage = MessageImproved
	c.mu.Unlock()
	return nil
}

// Ask puts a question about the document to the model. The answer goes to the
// assistant message; the buffer is untouched.
func (c *Controller) Ask(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		c.setAIMessage(MessageEmptyQuestion)
		return "", apperror.Invalid(MessageEmptyQuestion)
	}
	if err := c.acquire(ctx, Improving); err != nil {
		return "", err
	}
	defer c.release()

	c.mu.Lock()
	content := c.content
	c.aiMessage = MessageProcessing
	c.mu.Unlock()

	answer, err := c.suggester.Ask(ctx, question, content)
	if err != nil {
		c.setAIMessage("Error: " + errorMessage(err))
		return "", err
	}
	c.setAIMessage(answer)
	return answer, nil
}

// ApplyTemplate loads a starter text. Choosing the empty template keeps the
// current content.
func (c *Controller) ApplyTemplate(name template.Name) error {
	tpl, err := template.Lookup(name)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tpl = tpl.Name
	if tpl.Name != template.Empty {
		c.content = tpl.Text
	}
	return nil
}

func (c *Controller) SetTitle(title string) {
	c.mu.Lock()
	c.title = title
	c.mu.Unlock()
}

func (c *Controller) SetContent(content string) {
	c.mu.Lock()
	c.content = content
	c.mu.Unlock()
}

// Export renders the buffer as a plain-text download.
func (c *Controller) Export() docmodel.Export {
	c.mu.Lock()
	defer c.mu.Unlock()
	return docmodel.Export{Filename: docservice.ExportFilename(c.title), Body: []byte(c.content)}
}

// ClearStatus empties the status line only if it still shows expected, so a
// newer status is never wiped by an older timer.
func (c *Controller) ClearStatus(expected string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != expected {
		return false
	}
	c.status = ""
	return true
}

// ClearStatusAfter schedules ClearStatus(expected).
func (c *Controller) ClearStatusAfter(expected string, delay time.Duration) *time.Timer {
	return time.AfterFunc(delay, func() { c.ClearStatus(expected) })
}

// failureStatus renders an error the way the status line shows it.
func failureStatus(err error, fallback string) string {
	switch apperror.KindOf(err) {
	case apperror.AuthRequired:
		return errorMessage(err)
	case apperror.NotFound:
		return StatusNotFound
	}
	msg := errorMessage(err)
	if msg == "" {
		msg = fallback
	}
	return "Error: " + msg
}

func errorMessage(err error) string {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
