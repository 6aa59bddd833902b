package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/prooftower/pkg/errors"
	"github.com/matzehuels/prooftower/pkg/observability"
)

// listener is a websocket endpoint that records every message it receives.
func listener(t *testing.T) (string, <-chan Message) {
	t.Helper()
	got := make(chan Message, 16)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		for {
			var m Message
			if err := ws.ReadJSON(&m); err != nil {
				return
			}
			got <- m
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http"), got
}

type recordingHooks struct {
	observability.NoopNotifyHooks
	mu   sync.Mutex
	errs []error
	seen chan struct{}
}

func (h *recordingHooks) OnNotify(_ context.Context, _ string, err error) {
	h.mu.Lock()
	h.errs = append(h.errs, err)
	h.mu.Unlock()
	h.seen <- struct{}{}
}

func receive(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case m := <-ch:
		return m
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for notification")
	}
	return Message{}
}

func TestClientSendsMessages(t *testing.T) {
	url, got := listener(t)
	c, err := New(url, Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	c.Highlight("s1", "A ⊑ B")
	c.Repair("s1", "B ⊑ C")

	first, second := receive(t, got), receive(t, got)
	if first != (Message{Type: TypeHighlight, Session: "s1", Axiom: "A ⊑ B"}) {
		t.Errorf("first = %+v", first)
	}
	if second.Type != TypeRepair || second.Axiom != "B ⊑ C" {
		t.Errorf("second = %+v", second)
	}
}

func TestClientFailureIsSilent(t *testing.T) {
	hooks := &recordingHooks{seen: make(chan struct{}, 4)}
	observability.SetNotifyHooks(hooks)
	defer observability.Reset()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	c, err := New(url, Options{DialTimeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	c.Highlight("s1", "A ⊑ B")

	select {
	case <-hooks.seen:
	case <-time.After(5 * time.Second):
		t.Fatal("hook not called")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.errs) != 1 || !errors.Is(hooks.errs[0], errors.ErrCodeNetwork) {
		t.Errorf("hook errors = %v, want one NETWORK_ERROR", hooks.errs)
	}
}

func TestClientCloseDrainsQueue(t *testing.T) {
	url, got := listener(t)
	c, err := New(url, Options{})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		c.Highlight("s", "x")
	}
	c.Close()
	for i := 0; i < 3; i++ {
		receive(t, got)
	}

	c.Highlight("s", "after close") // dropped, must not block or panic
}

func TestNilClient(t *testing.T) {
	var c *Client
	c.Highlight("s", "x")
	c.Repair("s", "x")
	if err := c.Close(); err != nil {
		t.Errorf("Close on nil client = %v", err)
	}
}

func TestNewValidatesURL(t *testing.T) {
	for _, url := range []string{"", "http://localhost", "localhost:9000"} {
		if _, err := New(url, Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("New(%q) err = %v, want INVALID_INPUT", url, err)
		}
	}
}
