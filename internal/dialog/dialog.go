// Package dialog drives the guided product-creation conversation: a
// per-operator finite state machine that collects one field per step,
// validates it, and commits the assembled product to the catalog.
package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/m3rciful/lojabot/internal/access"
	"github.com/m3rciful/lojabot/internal/catalog"
	"github.com/m3rciful/lojabot/internal/logger"
)

// Step identifies a state of the creation conversation.
type Step string

const (
	// StepName awaits the product name.
	StepName Step = "name"
	// StepDescription awaits the product description.
	StepDescription Step = "description"
	// StepPrice awaits a strictly positive decimal price.
	StepPrice Step = "price"
	// StepPhoto awaits a photo attachment.
	StepPhoto Step = "photo"
	// StepLink awaits the deliverable link released after payment.
	StepLink Step = "link"
	// StepPreview awaits an optional preview link or a skip token.
	StepPreview Step = "preview"
)

// Session holds the typed draft collected so far plus the current step.
type Session struct {
	Step  Step
	Draft catalog.Product
}

// Dialog owns all creation sessions, keyed by operator id. Only the
// authority may enter the dialogue.
type Dialog struct {
	mu       sync.RWMutex
	sessions map[int64]*Session

	gate  access.Gate
	store catalog.Store
}

// New builds a Dialog over the given gate and catalog store.
func New(gate access.Gate, store catalog.Store) *Dialog {
	return &Dialog{
		sessions: make(map[int64]*Session),
		gate:     gate,
		store:    store,
	}
}

// Start opens a creation session for the operator and returns the first
// prompt. Non-authority callers get access.ErrPermissionDenied and no session.
func (d *Dialog) Start(ctx context.Context, userID int64) (string, error) {
	if err := d.gate.Require(userID); err != nil {
		logger.Dialog.LogAttrs(ctx, slog.LevelWarn, "dialog entry denied",
			slog.String("event", "fsm.denied"),
			slog.Int64("user_id", userID),
		)
		return "", err
	}

	d.mu.Lock()
	d.sessions[userID] = &Session{Step: StepName}
	d.mu.Unlock()

	logger.Dialog.LogAttrs(ctx, slog.LevelInfo, "dialog started",
		slog.String("event", "fsm.start"),
		slog.Int64("user_id", userID),
	)
	return msgAskName, nil
}

// InProgress reports whether the operator has an active creation session.
func (d *Dialog) InProgress(userID int64) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.sessions[userID]
	return ok
}

// Cancel destroys the operator's session. It reports whether one existed.
func (d *Dialog) Cancel(ctx context.Context, userID int64) bool {
	d.mu.Lock()
	_, ok := d.sessions[userID]
	delete(d.sessions, userID)
	d.mu.Unlock()

	if ok {
		logger.Dialog.LogAttrs(ctx, slog.LevelInfo, "dialog cancelled",
			slog.String("event", "fsm.cancel"),
			slog.Int64("user_id", userID),
		)
	}
	return ok
}

// textSteps dispatches text input per step, in the style of a per-state
// handler table. Photo input is handled separately by HandlePhoto.
var textSteps = map[Step]func(*Dialog, context.Context, int64, *Session, string) (string, error){
	StepName:        (*Dialog).stepName,
	StepDescription: (*Dialog).stepDescription,
	StepPrice:       (*Dialog).stepPrice,
	StepLink:        (*Dialog).stepLink,
	StepPreview:     (*Dialog).stepPreview,
}

// HandleText feeds a text message into the operator's session and returns
// the next prompt. Without an active session it returns an empty reply.
func (d *Dialog) HandleText(ctx context.Context, userID int64, text string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	session, ok := d.sessions[userID]
	if !ok {
		return "", nil
	}

	if session.Step == StepPhoto {
		// Photo step accepts only an image attachment.
		return msgNeedPhoto, nil
	}

	handler, ok := textSteps[session.Step]
	if !ok {
		return "", fmt.Errorf("dialog: no handler for step %q", session.Step)
	}
	reply, err := handler(d, ctx, userID, session, text)
	if err != nil {
		return "", err
	}
	return reply, nil
}

// HandlePhoto feeds a photo attachment into the operator's session.
func (d *Dialog) HandlePhoto(ctx context.Context, userID int64, photoRef string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	session, ok := d.sessions[userID]
	if !ok {
		return "", nil
	}
	if session.Step != StepPhoto {
		// Every other step wants text; stay put and re-prompt.
		return msgNeedText, nil
	}

	session.Draft.PhotoRef = photoRef
	d.transition(ctx, userID, session, StepLink)
	return msgAskLink, nil
}

func (d *Dialog) stepName(ctx context.Context, userID int64, session *Session, text string) (string, error) {
	session.Draft.Name = text
	d.transition(ctx, userID, session, StepDescription)
	return msgAskDescription, nil
}

func (d *Dialog) stepDescription(ctx context.Context, userID int64, session *Session, text string) (string, error) {
	session.Draft.Description = text
	d.transition(ctx, userID, session, StepPrice)
	return msgAskPrice, nil
}

func (d *Dialog) stepPrice(ctx context.Context, userID int64, session *Session, text string) (string, error) {
	price, err := catalog.ParsePrice(text)
	if err != nil {
		return msgBadPrice, nil
	}
	session.Draft.Price = price
	d.transition(ctx, userID, session, StepPhoto)
	return msgAskPhoto, nil
}

func (d *Dialog) stepLink(ctx context.Context, userID int64, session *Session, text string) (string, error) {
	link := strings.TrimSpace(text)
	if !catalog.ValidLink(link) {
		return msgBadLink, nil
	}
	session.Draft.Link = link
	d.transition(ctx, userID, session, StepPreview)
	return msgAskPreview, nil
}

func (d *Dialog) stepPreview(ctx context.Context, userID int64, session *Session, text string) (string, error) {
	var warned bool
	answer := strings.ToLower(strings.TrimSpace(text))
	switch {
	case answer == "não" || answer == "nao" || answer == "no":
		session.Draft.Preview = ""
	case catalog.ValidLink(answer):
		session.Draft.Preview = strings.TrimSpace(text)
	default:
		// Deliberate leniency: an unrecognised answer skips the preview
		// with a warning instead of re-prompting.
		session.Draft.Preview = ""
		warned = true
	}

	reply, err := d.commit(ctx, userID, session)
	if err != nil {
		return "", err
	}
	if warned {
		reply = msgBadPreview + "\n\n" + reply
	}
	return reply, nil
}

// commit assigns the next id, persists the draft and destroys the session.
func (d *Dialog) commit(ctx context.Context, userID int64, session *Session) (string, error) {
	var id string
	err := d.store.Update(ctx, func(products map[string]catalog.Product) error {
		id = catalog.NextID(products)
		products[id] = session.Draft
		return nil
	})
	if err != nil {
		logger.Dialog.LogAttrs(ctx, slog.LevelError, "product save failed",
			slog.String("event", "fsm.commit"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return "", fmt.Errorf("dialog: save product: %w", err)
	}

	delete(d.sessions, userID)
	logger.Dialog.LogAttrs(ctx, slog.LevelInfo, "product created",
		slog.String("event", "fsm.done"),
		slog.Int64("user_id", userID),
		slog.String("product_id", id),
	)
	return createdMessage(id, session.Draft), nil
}

func (d *Dialog) transition(ctx context.Context, userID int64, session *Session, next Step) {
	logger.Dialog.LogAttrs(ctx, slog.LevelDebug, "dialog transition",
		slog.String("event", "fsm.step"),
		slog.Int64("user_id", userID),
		slog.String("from", string(session.Step)),
		slog.String("to", string(next)),
	)
	session.Step = next
}
