// Package purchase tracks one buyer's attempt to acquire one product, from
// picking it off the listing through payment-proof review by the authority.
package purchase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/lojabot/internal/access"
	"github.com/m3rciful/lojabot/internal/catalog"
	"github.com/m3rciful/lojabot/internal/logger"
)

var (
	// ErrNoSession indicates the buyer has no active purchase awaiting proof.
	ErrNoSession = errors.New("purchase: no active session")
	// ErrAlreadyDecided indicates a decision was already made for this purchase.
	ErrAlreadyDecided = errors.New("purchase: already decided")
	// ErrMissingLink indicates the product has no deliverable link configured.
	ErrMissingLink = errors.New("purchase: deliverable link missing")
	// ErrDeliveryFailed indicates the buyer could not be reached.
	ErrDeliveryFailed = errors.New("purchase: delivery failed")
)

// Button is one inline action attached to an outgoing message.
type Button struct {
	Text string
	Data string
}

// Messenger sends messages on behalf of the flow. Failures must be returned,
// never panic; the flow reports them to the reviewer and does not retry.
type Messenger interface {
	SendText(ctx context.Context, userID int64, text string, rows ...[]Button) error
	SendPhoto(ctx context.Context, userID int64, fileRef, caption string) error
	SendDocument(ctx context.Context, userID int64, fileRef, caption string) error
}

// ProofKind distinguishes the two accepted payment-proof attachments.
type ProofKind string

const (
	// ProofPhoto is an image attachment.
	ProofPhoto ProofKind = "photo"
	// ProofDocument is a document attachment.
	ProofDocument ProofKind = "document"
)

// Proof is a payment receipt submitted by the buyer.
type Proof struct {
	Kind    ProofKind
	FileRef string
}

// Session is one buyer's in-flight purchase.
type Session struct {
	ID            string
	BuyerID       int64
	BuyerHandle   string
	ProductID     string
	AwaitingProof bool
	CreatedAt     time.Time
}

// Flow owns all purchase sessions, keyed by buyer id, and applies the
// authority's decisions. The catalog is read fresh on every step and never
// mutated here.
type Flow struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	// decided remembers the product each buyer's purchase was settled on,
	// so a replayed decision is rejected instead of re-sending the link.
	decided map[int64]string

	store  catalog.Store
	gate   access.Gate
	msg    Messenger
	pixKey string
}

// NewFlow builds a purchase flow over the given collaborators.
func NewFlow(store catalog.Store, gate access.Gate, msg Messenger, pixKey string) *Flow {
	return &Flow{
		sessions: make(map[int64]*Session),
		decided:  make(map[int64]string),
		store:    store,
		gate:     gate,
		msg:      msg,
		pixKey:   pixKey,
	}
}

// Begin starts a purchase for the given product. It reads the catalog fresh;
// a missing product aborts with catalog.ErrNotFound and creates no state.
// On success the returned text carries the payment instructions.
func (f *Flow) Begin(ctx context.Context, buyerID int64, buyerHandle, productID string) (string, error) {
	products, err := f.store.LoadNormalized(ctx)
	if err != nil {
		return "", fmt.Errorf("purchase: load catalog: %w", err)
	}
	product, ok := products[productID]
	if !ok {
		return "", catalog.ErrNotFound
	}

	session := &Session{
		ID:            uuid.NewString(),
		BuyerID:       buyerID,
		BuyerHandle:   buyerHandle,
		ProductID:     productID,
		AwaitingProof: true,
		CreatedAt:     time.Now(),
	}

	f.mu.Lock()
	f.sessions[buyerID] = session
	delete(f.decided, buyerID) // a new purchase supersedes any settled one
	f.mu.Unlock()

	logger.Purchase.LogAttrs(ctx, slog.LevelInfo, "purchase started",
		slog.String("event", "flow.begin"),
		slog.String("session_id", session.ID),
		slog.Int64("buyer_id", buyerID),
		slog.String("product_id", productID),
	)
	return paymentInstructions(product, f.pixKey), nil
}

// AwaitingProof reports whether the buyer has a purchase waiting for a receipt.
func (f *Flow) AwaitingProof(buyerID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[buyerID]
	return ok && session.AwaitingProof
}

// SubmitProof forwards the buyer's receipt to the authority together with the
// approve/reject decision prompt, confirms receipt to the buyer, and clears
// the awaiting flag so duplicates are not processed as new purchases.
func (f *Flow) SubmitProof(ctx context.Context, buyerID int64, proof Proof) (string, error) {
	f.mu.Lock()
	session, ok := f.sessions[buyerID]
	if !ok || !session.AwaitingProof {
		f.mu.Unlock()
		return "", ErrNoSession
	}
	f.mu.Unlock()

	products, err := f.store.LoadNormalized(ctx)
	if err != nil {
		return "", fmt.Errorf("purchase: load catalog: %w", err)
	}
	product := products[session.ProductID]

	authority := f.gate.AuthorityID()
	caption := proofCaption(session, product)

	switch proof.Kind {
	case ProofDocument:
		err = f.msg.SendDocument(ctx, authority, proof.FileRef, caption)
	default:
		err = f.msg.SendPhoto(ctx, authority, proof.FileRef, caption)
	}
	if err != nil {
		// Keep the session awaiting so the buyer can resend.
		return "", fmt.Errorf("purchase: forward proof: %w", err)
	}

	if err := f.msg.SendText(ctx, authority, msgChooseAction, decisionButtons(session)); err != nil {
		return "", fmt.Errorf("purchase: send decision prompt: %w", err)
	}

	f.mu.Lock()
	session.AwaitingProof = false
	f.mu.Unlock()

	logger.Purchase.LogAttrs(ctx, slog.LevelInfo, "proof forwarded",
		slog.String("event", "flow.proof"),
		slog.String("session_id", session.ID),
		slog.Int64("buyer_id", buyerID),
		slog.String("product_id", session.ProductID),
		slog.String("kind", string(proof.Kind)),
	)
	return msgProofReceived, nil
}

// Approve releases the product to the buyer. The catalog is re-read for the
// current deliverable link; an empty link is a configuration error reported
// to the reviewer, and the buyer is not contacted. The returned text is the
// reviewer-facing confirmation.
func (f *Flow) Approve(ctx context.Context, buyerID int64, productID string) (string, error) {
	if f.alreadyDecided(buyerID) {
		return "", ErrAlreadyDecided
	}

	products, err := f.store.LoadNormalized(ctx)
	if err != nil {
		return "", fmt.Errorf("purchase: load catalog: %w", err)
	}
	product := products[productID]
	if product.Link == "" {
		// Not settled: the reviewer may fix the catalog and approve again.
		return "", ErrMissingLink
	}

	f.settle(buyerID, productID)

	if err := f.msg.SendText(ctx, buyerID, approvedMessage(product)); err != nil {
		logger.Purchase.LogAttrs(ctx, slog.LevelWarn, "link delivery failed",
			slog.String("event", "flow.approve"),
			slog.Int64("buyer_id", buyerID),
			slog.String("product_id", productID),
			slog.String("err", err.Error()),
		)
		return "", fmt.Errorf("%w: %s", ErrDeliveryFailed, err)
	}

	logger.Purchase.LogAttrs(ctx, slog.LevelInfo, "purchase approved",
		slog.String("event", "flow.approve"),
		slog.Int64("buyer_id", buyerID),
		slog.String("product_id", productID),
	)
	return approvedReport(buyerID, product), nil
}

// Reject notifies the buyer that the receipt was refused. The returned text
// is the reviewer-facing confirmation.
func (f *Flow) Reject(ctx context.Context, buyerID int64) (string, error) {
	if f.alreadyDecided(buyerID) {
		return "", ErrAlreadyDecided
	}

	f.mu.Lock()
	productID := ""
	if session, ok := f.sessions[buyerID]; ok {
		productID = session.ProductID
	}
	f.mu.Unlock()

	f.settle(buyerID, productID)

	if err := f.msg.SendText(ctx, buyerID, msgRejected); err != nil {
		logger.Purchase.LogAttrs(ctx, slog.LevelWarn, "rejection delivery failed",
			slog.String("event", "flow.reject"),
			slog.Int64("buyer_id", buyerID),
			slog.String("err", err.Error()),
		)
		return "", fmt.Errorf("%w: %s", ErrDeliveryFailed, err)
	}

	logger.Purchase.LogAttrs(ctx, slog.LevelInfo, "purchase rejected",
		slog.String("event", "flow.reject"),
		slog.Int64("buyer_id", buyerID),
		slog.String("product_id", productID),
	)
	return msgRejectedReport, nil
}

func (f *Flow) alreadyDecided(buyerID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, done := f.decided[buyerID]
	return done
}

// settle marks the buyer's purchase terminal and destroys the session. The
// decision stays terminal even if the follow-up notification cannot be
// delivered; delivery failures are reported, never retried.
func (f *Flow) settle(buyerID int64, productID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decided[buyerID] = productID
	delete(f.sessions, buyerID)
}
