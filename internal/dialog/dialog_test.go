package dialog

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m3rciful/lojabot/internal/access"
	"github.com/m3rciful/lojabot/internal/catalog"
)

const operatorID int64 = 42

func newTestDialog(t *testing.T) (*Dialog, catalog.Store) {
	t.Helper()
	dir := t.TempDir()
	store := catalog.NewFileStore(filepath.Join(dir, "produtos.json"), filepath.Join(dir, "backups"))
	return New(access.NewGate(operatorID), store), store
}

func mustText(t *testing.T, d *Dialog, text string) string {
	t.Helper()
	reply, err := d.HandleText(context.Background(), operatorID, text)
	if err != nil {
		t.Fatalf("HandleText(%q): %v", text, err)
	}
	return reply
}

func TestStartDeniedForNonAuthority(t *testing.T) {
	d, _ := newTestDialog(t)
	if _, err := d.Start(context.Background(), 7); !errors.Is(err, access.ErrPermissionDenied) {
		t.Fatalf("start as stranger = %v, expected ErrPermissionDenied", err)
	}
	if d.InProgress(7) {
		t.Fatal("denied entry must not create a session")
	}
}

func TestFullWalkthrough(t *testing.T) {
	d, store := newTestDialog(t)
	ctx := context.Background()

	if _, err := d.Start(ctx, operatorID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !d.InProgress(operatorID) {
		t.Fatal("session should be active after start")
	}

	mustText(t, d, "Pacote VIP")
	mustText(t, d, "conteúdo premium")
	mustText(t, d, "49,99")

	if reply, err := d.HandlePhoto(ctx, operatorID, "file-123"); err != nil || reply != msgAskLink {
		t.Fatalf("photo step reply = %q, err = %v", reply, err)
	}

	mustText(t, d, "https://example.com/entrega")
	reply := mustText(t, d, "https://example.com/previa")

	if !strings.Contains(reply, "*ID:* 1") {
		t.Fatalf("confirmation missing id: %q", reply)
	}
	if d.InProgress(operatorID) {
		t.Fatal("session must be cleared after completion")
	}

	products, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	p, ok := products["1"]
	if !ok {
		t.Fatal("product 1 not persisted")
	}
	if p.Name != "Pacote VIP" || p.PhotoRef != "file-123" || p.Preview != "https://example.com/previa" {
		t.Fatalf("persisted product = %+v", p)
	}
	if p.Price.StringFixed(2) != "49.99" {
		t.Fatalf("price = %s, comma separator should parse as 49.99", p.Price)
	}
}

func TestInvalidPriceRepromptsSameState(t *testing.T) {
	d, _ := newTestDialog(t)
	ctx := context.Background()

	if _, err := d.Start(ctx, operatorID); err != nil {
		t.Fatal(err)
	}
	mustText(t, d, "nome")
	mustText(t, d, "descrição")

	for _, bad := range []string{"0", "-5", "abc"} {
		if reply := mustText(t, d, bad); reply != msgBadPrice {
			t.Fatalf("price %q reply = %q", bad, reply)
		}
	}
	// Still in the price step: a valid price advances to the photo step.
	if reply := mustText(t, d, "10"); reply != msgAskPhoto {
		t.Fatalf("valid price reply = %q", reply)
	}
}

func TestPhotoStepRejectsText(t *testing.T) {
	d, _ := newTestDialog(t)
	ctx := context.Background()

	if _, err := d.Start(ctx, operatorID); err != nil {
		t.Fatal(err)
	}
	mustText(t, d, "nome")
	mustText(t, d, "descrição")
	mustText(t, d, "10")

	if reply := mustText(t, d, "isto não é uma foto"); reply != msgNeedPhoto {
		t.Fatalf("text at photo step reply = %q", reply)
	}
	if reply, err := d.HandlePhoto(ctx, operatorID, "file-9"); err != nil || reply != msgAskLink {
		t.Fatalf("photo after re-prompt reply = %q, err = %v", reply, err)
	}
}

func TestPhotoAtTextStepReprompts(t *testing.T) {
	d, _ := newTestDialog(t)
	ctx := context.Background()

	if _, err := d.Start(ctx, operatorID); err != nil {
		t.Fatal(err)
	}
	if reply, err := d.HandlePhoto(ctx, operatorID, "file-1"); err != nil || reply != msgNeedText {
		t.Fatalf("photo at name step reply = %q, err = %v", reply, err)
	}
}

func TestBadLinkReprompts(t *testing.T) {
	d, _ := newTestDialog(t)
	ctx := context.Background()

	if _, err := d.Start(ctx, operatorID); err != nil {
		t.Fatal(err)
	}
	mustText(t, d, "nome")
	mustText(t, d, "descrição")
	mustText(t, d, "10")
	if _, err := d.HandlePhoto(ctx, operatorID, "file-1"); err != nil {
		t.Fatal(err)
	}

	for _, bad := range []string{"ftp://x", "no-scheme"} {
		if reply := mustText(t, d, bad); reply != msgBadLink {
			t.Fatalf("link %q reply = %q", bad, reply)
		}
	}
	if reply := mustText(t, d, "http://a"); reply != msgAskPreview {
		t.Fatalf("valid link reply = %q", reply)
	}
}

func TestPreviewSkipVariants(t *testing.T) {
	for _, skip := range []string{"não", "nao", "NO", "qualquer coisa"} {
		t.Run(skip, func(t *testing.T) {
			d, store := newTestDialog(t)
			ctx := context.Background()

			if _, err := d.Start(ctx, operatorID); err != nil {
				t.Fatal(err)
			}
			mustText(t, d, "nome")
			mustText(t, d, "descrição")
			mustText(t, d, "10")
			if _, err := d.HandlePhoto(ctx, operatorID, "file-1"); err != nil {
				t.Fatal(err)
			}
			mustText(t, d, "https://example.com/x")

			reply := mustText(t, d, skip)
			if !strings.Contains(reply, "adicionado com sucesso") {
				t.Fatalf("skip %q did not complete: %q", skip, reply)
			}

			products, err := store.Load(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if products["1"].Preview != "" {
				t.Fatalf("preview = %q, expected empty", products["1"].Preview)
			}
		})
	}
}

func TestCancelClearsSession(t *testing.T) {
	d, store := newTestDialog(t)
	ctx := context.Background()

	if d.Cancel(ctx, operatorID) {
		t.Fatal("cancel without session should report false")
	}

	if _, err := d.Start(ctx, operatorID); err != nil {
		t.Fatal(err)
	}
	mustText(t, d, "nome")

	if !d.Cancel(ctx, operatorID) {
		t.Fatal("cancel with session should report true")
	}
	if d.InProgress(operatorID) {
		t.Fatal("session must be gone after cancel")
	}

	products, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 0 {
		t.Fatal("cancelled dialogue must not persist anything")
	}
}
