package middleware

import (
	"testing"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/lojabot/internal/access"
)

// fakeContext implements the few tele.Context methods the admin check touches.
type fakeContext struct {
	tele.Context
	sender *tele.User
	sent   []string
}

func (f *fakeContext) Sender() *tele.User { return f.sender }

func (f *fakeContext) Send(what any, _ ...any) error {
	if s, ok := what.(string); ok {
		f.sent = append(f.sent, s)
	}
	return nil
}

func TestWithAdminCheck(t *testing.T) {
	opts := AdminOptions{
		Gate: access.NewGate(1000),
		OnReject: func(c tele.Context) error {
			return c.Send("sem permissão")
		},
	}

	var invoked bool
	handler := WithAdminCheck(opts, true, func(tele.Context) error {
		invoked = true
		return nil
	})

	stranger := &fakeContext{sender: &tele.User{ID: 7}}
	if err := handler(stranger); err != nil {
		t.Fatalf("stranger call: %v", err)
	}
	if invoked {
		t.Fatal("handler must not run for a non-authority")
	}
	if len(stranger.sent) != 1 || stranger.sent[0] != "sem permissão" {
		t.Fatalf("denial reply = %v", stranger.sent)
	}

	authority := &fakeContext{sender: &tele.User{ID: 1000}}
	if err := handler(authority); err != nil {
		t.Fatalf("authority call: %v", err)
	}
	if !invoked {
		t.Fatal("handler must run for the authority")
	}
}

func TestWithAdminCheckPassthrough(t *testing.T) {
	var invoked bool
	handler := WithAdminCheck(AdminOptions{Gate: access.NewGate(1000)}, false, func(tele.Context) error {
		invoked = true
		return nil
	})
	if err := handler(&fakeContext{sender: &tele.User{ID: 7}}); err != nil {
		t.Fatal(err)
	}
	if !invoked {
		t.Fatal("non-admin command must not be gated")
	}
}
