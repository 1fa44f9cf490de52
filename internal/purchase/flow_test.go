package purchase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/lojabot/internal/access"
	"github.com/m3rciful/lojabot/internal/catalog"
)

const (
	reviewerID int64 = 1000
	buyerID    int64 = 7
)

type sentMessage struct {
	userID  int64
	kind    string
	text    string
	fileRef string
	buttons []Button
}

type fakeMessenger struct {
	sent    []sentMessage
	failFor map[int64]error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{failFor: make(map[int64]error)}
}

func (m *fakeMessenger) SendText(_ context.Context, userID int64, text string, rows ...[]Button) error {
	if err := m.failFor[userID]; err != nil {
		return err
	}
	msg := sentMessage{userID: userID, kind: "text", text: text}
	for _, row := range rows {
		msg.buttons = append(msg.buttons, row...)
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMessenger) SendPhoto(_ context.Context, userID int64, fileRef, caption string) error {
	if err := m.failFor[userID]; err != nil {
		return err
	}
	m.sent = append(m.sent, sentMessage{userID: userID, kind: "photo", text: caption, fileRef: fileRef})
	return nil
}

func (m *fakeMessenger) SendDocument(_ context.Context, userID int64, fileRef, caption string) error {
	if err := m.failFor[userID]; err != nil {
		return err
	}
	m.sent = append(m.sent, sentMessage{userID: userID, kind: "document", text: caption, fileRef: fileRef})
	return nil
}

func (m *fakeMessenger) sentTo(userID int64) []sentMessage {
	var out []sentMessage
	for _, s := range m.sent {
		if s.userID == userID {
			out = append(out, s)
		}
	}
	return out
}

func newTestFlow(t *testing.T, products map[string]catalog.Product) (*Flow, *fakeMessenger, catalog.Store) {
	t.Helper()
	dir := t.TempDir()
	store := catalog.NewFileStore(filepath.Join(dir, "produtos.json"), filepath.Join(dir, "backups"))
	if products != nil {
		if err := store.Save(context.Background(), products); err != nil {
			t.Fatalf("seed catalog: %v", err)
		}
	}
	msg := newFakeMessenger()
	return NewFlow(store, access.NewGate(reviewerID), msg, "pix-key"), msg, store
}

func seedProduct() map[string]catalog.Product {
	return map[string]catalog.Product{
		"7": {
			Name:  "Pacote VIP",
			Price: decimal.RequireFromString("49.99"),
			Link:  "https://example.com/entrega",
		},
	}
}

func TestBeginUnknownProduct(t *testing.T) {
	flow, _, _ := newTestFlow(t, nil)
	_, err := flow.Begin(context.Background(), buyerID, "ana", "99")
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("begin unknown product = %v, expected ErrNotFound", err)
	}
	if flow.AwaitingProof(buyerID) {
		t.Fatal("aborted begin must not create a session")
	}
}

func TestBeginPresentsPaymentInstructions(t *testing.T) {
	flow, _, _ := newTestFlow(t, seedProduct())
	text, err := flow.Begin(context.Background(), buyerID, "ana", "7")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if !strings.Contains(text, "pix-key") || !strings.Contains(text, "Pacote VIP") {
		t.Fatalf("payment instructions incomplete: %q", text)
	}
	if !flow.AwaitingProof(buyerID) {
		t.Fatal("buyer should be awaiting proof after begin")
	}
}

func TestSubmitProofWithoutSession(t *testing.T) {
	flow, _, _ := newTestFlow(t, seedProduct())
	_, err := flow.SubmitProof(context.Background(), buyerID, Proof{Kind: ProofPhoto, FileRef: "f"})
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("submit without session = %v, expected ErrNoSession", err)
	}
}

func TestSubmitProofHandsOffToReviewer(t *testing.T) {
	flow, msg, _ := newTestFlow(t, seedProduct())
	ctx := context.Background()

	if _, err := flow.Begin(ctx, buyerID, "ana", "7"); err != nil {
		t.Fatal(err)
	}

	confirmation, err := flow.SubmitProof(ctx, buyerID, Proof{Kind: ProofPhoto, FileRef: "proof-1"})
	if err != nil {
		t.Fatalf("submit proof: %v", err)
	}
	if confirmation != msgProofReceived {
		t.Fatalf("buyer confirmation = %q", confirmation)
	}
	if flow.AwaitingProof(buyerID) {
		t.Fatal("awaiting flag must be cleared after proof submission")
	}

	toReviewer := msg.sentTo(reviewerID)
	if len(toReviewer) != 2 {
		t.Fatalf("reviewer received %d messages, expected proof + prompt", len(toReviewer))
	}
	if toReviewer[0].kind != "photo" || toReviewer[0].fileRef != "proof-1" {
		t.Fatalf("forwarded proof = %+v", toReviewer[0])
	}
	if !strings.Contains(toReviewer[0].text, "@ana") || !strings.Contains(toReviewer[0].text, "Pacote VIP") {
		t.Fatalf("proof caption = %q", toReviewer[0].text)
	}

	prompt := toReviewer[1]
	if len(prompt.buttons) != 2 {
		t.Fatalf("decision prompt has %d buttons", len(prompt.buttons))
	}
	if prompt.buttons[0].Data != fmt.Sprintf("liberar_%d_7", buyerID) {
		t.Fatalf("approve payload = %q", prompt.buttons[0].Data)
	}
	if prompt.buttons[1].Data != fmt.Sprintf("rejeitar_%d", buyerID) {
		t.Fatalf("reject payload = %q", prompt.buttons[1].Data)
	}

	// A second submission is not processed as a new purchase.
	if _, err := flow.SubmitProof(ctx, buyerID, Proof{Kind: ProofPhoto, FileRef: "proof-2"}); !errors.Is(err, ErrNoSession) {
		t.Fatalf("duplicate proof = %v, expected ErrNoSession", err)
	}
}

func TestSubmitProofDocument(t *testing.T) {
	flow, msg, _ := newTestFlow(t, seedProduct())
	ctx := context.Background()

	if _, err := flow.Begin(ctx, buyerID, "ana", "7"); err != nil {
		t.Fatal(err)
	}
	if _, err := flow.SubmitProof(ctx, buyerID, Proof{Kind: ProofDocument, FileRef: "doc-1"}); err != nil {
		t.Fatal(err)
	}
	if msg.sentTo(reviewerID)[0].kind != "document" {
		t.Fatal("document proof should be forwarded as a document")
	}
}

func TestApproveDeliversFreshLink(t *testing.T) {
	flow, msg, store := newTestFlow(t, seedProduct())
	ctx := context.Background()

	if _, err := flow.Begin(ctx, buyerID, "ana", "7"); err != nil {
		t.Fatal(err)
	}
	if _, err := flow.SubmitProof(ctx, buyerID, Proof{Kind: ProofPhoto, FileRef: "p"}); err != nil {
		t.Fatal(err)
	}

	// The link is read fresh at decision time, not cached from Begin.
	err := store.Update(ctx, func(products map[string]catalog.Product) error {
		p := products["7"]
		p.Link = "https://example.com/novo"
		products["7"] = p
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	report, err := flow.Approve(ctx, buyerID, "7")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !strings.Contains(report, "liberado com sucesso") {
		t.Fatalf("reviewer report = %q", report)
	}

	toBuyer := msg.sentTo(buyerID)
	if len(toBuyer) != 1 || !strings.Contains(toBuyer[0].text, "https://example.com/novo") {
		t.Fatalf("buyer delivery = %+v", toBuyer)
	}
}

func TestApproveMissingLink(t *testing.T) {
	products := seedProduct()
	p := products["7"]
	p.Link = ""
	products["7"] = p

	flow, msg, _ := newTestFlow(t, products)
	ctx := context.Background()

	if _, err := flow.Begin(ctx, buyerID, "ana", "7"); err != nil {
		t.Fatal(err)
	}
	if _, err := flow.SubmitProof(ctx, buyerID, Proof{Kind: ProofPhoto, FileRef: "p"}); err != nil {
		t.Fatal(err)
	}

	if _, err := flow.Approve(ctx, buyerID, "7"); !errors.Is(err, ErrMissingLink) {
		t.Fatalf("approve with empty link = %v, expected ErrMissingLink", err)
	}
	if len(msg.sentTo(buyerID)) != 0 {
		t.Fatal("buyer must not be notified on configuration error")
	}
}

func TestApproveDeliveryFailure(t *testing.T) {
	flow, msg, _ := newTestFlow(t, seedProduct())
	ctx := context.Background()

	if _, err := flow.Begin(ctx, buyerID, "ana", "7"); err != nil {
		t.Fatal(err)
	}
	if _, err := flow.SubmitProof(ctx, buyerID, Proof{Kind: ProofPhoto, FileRef: "p"}); err != nil {
		t.Fatal(err)
	}

	msg.failFor[buyerID] = errors.New("blocked by user")
	if _, err := flow.Approve(ctx, buyerID, "7"); !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("approve with unreachable buyer = %v, expected ErrDeliveryFailed", err)
	}
}

func TestDuplicateDecisionRejected(t *testing.T) {
	flow, _, _ := newTestFlow(t, seedProduct())
	ctx := context.Background()

	if _, err := flow.Begin(ctx, buyerID, "ana", "7"); err != nil {
		t.Fatal(err)
	}
	if _, err := flow.SubmitProof(ctx, buyerID, Proof{Kind: ProofPhoto, FileRef: "p"}); err != nil {
		t.Fatal(err)
	}
	if _, err := flow.Approve(ctx, buyerID, "7"); err != nil {
		t.Fatal(err)
	}

	if _, err := flow.Approve(ctx, buyerID, "7"); !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("replayed approval = %v, expected ErrAlreadyDecided", err)
	}
	if _, err := flow.Reject(ctx, buyerID); !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("reject after approval = %v, expected ErrAlreadyDecided", err)
	}

	// A fresh purchase supersedes the settled one.
	if _, err := flow.Begin(ctx, buyerID, "ana", "7"); err != nil {
		t.Fatal(err)
	}
	if !flow.AwaitingProof(buyerID) {
		t.Fatal("new purchase should await proof again")
	}
}

func TestRejectNotifiesBuyer(t *testing.T) {
	flow, msg, _ := newTestFlow(t, seedProduct())
	ctx := context.Background()

	if _, err := flow.Begin(ctx, buyerID, "ana", "7"); err != nil {
		t.Fatal(err)
	}
	if _, err := flow.SubmitProof(ctx, buyerID, Proof{Kind: ProofPhoto, FileRef: "p"}); err != nil {
		t.Fatal(err)
	}

	report, err := flow.Reject(ctx, buyerID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if report != msgRejectedReport {
		t.Fatalf("reviewer report = %q", report)
	}

	toBuyer := msg.sentTo(buyerID)
	if len(toBuyer) != 1 || !strings.Contains(toBuyer[0].text, "rejeitado") {
		t.Fatalf("buyer notification = %+v", toBuyer)
	}
}

func TestRejectDeliveryFailure(t *testing.T) {
	flow, msg, _ := newTestFlow(t, seedProduct())
	ctx := context.Background()

	if _, err := flow.Begin(ctx, buyerID, "ana", "7"); err != nil {
		t.Fatal(err)
	}
	if _, err := flow.SubmitProof(ctx, buyerID, Proof{Kind: ProofPhoto, FileRef: "p"}); err != nil {
		t.Fatal(err)
	}

	msg.failFor[buyerID] = errors.New("blocked by user")
	if _, err := flow.Reject(ctx, buyerID); !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("reject with unreachable buyer = %v, expected ErrDeliveryFailed", err)
	}
}
