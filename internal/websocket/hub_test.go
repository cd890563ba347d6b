package websocket

import (
	"testing"
	"time"

	"crowdfund-be/internal/model"
	"crowdfund-be/internal/pkg/logger"

	"github.com/google/uuid"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }
func (nopLogger) GetLogs(string, int, int) ([]logger.LogEntry, error) {
	return nil, nil
}
func (nopLogger) GetLogById(string) (*logger.LogEntry, error) { return nil, nil }

func newTestClient(hub *Hub) *Client {
	return &Client{
		Hub:    hub,
		UserID: uuid.New(),
		Send:   make(chan []byte, 1),
	}
}

func registerClient(t *testing.T, hub *Hub, c *Client) {
	t.Helper()
	select {
	case hub.register <- c:
	case <-time.After(time.Second):
		t.Fatal("hub never accepted the registration")
	}
	// The channel send only hands the client to Run; wait until Run has
	// added it to the map so a following Broadcast/Send can see it.
	deadline := time.Now().Add(time.Second)
	for {
		hub.mu.RLock()
		registered := false
		for _, rc := range hub.clients[c.UserID] {
			if rc == c {
				registered = true
				break
			}
		}
		hub.mu.RUnlock()
		if registered {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("hub never completed the registration")
		}
		time.Sleep(time.Millisecond)
	}
}

// waitForClose drains the client's Send channel until the hub closes it.
func waitForClose(t *testing.T, c *Client) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-c.Send:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("hub never closed the slow client's channel")
		}
	}
}

func TestSendDropsSlowClientWithoutPanic(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	c := newTestClient(hub)
	registerClient(t, hub, c)
	c.Send <- []byte("backlog")

	done := make(chan struct{})
	go func() {
		defer close(done)
		hub.Send(c.UserID, model.Notification{Title: "payment settled"})
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Send blocked while dropping a slow client")
	}

	waitForClose(t, c)
}

func TestBroadcastDropsMultipleSlowClients(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	first := newTestClient(hub)
	second := newTestClient(hub)
	for _, c := range []*Client{first, second} {
		registerClient(t, hub, c)
		c.Send <- []byte("backlog")
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		hub.Broadcast(model.Notification{Title: "project funded"})
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked while dropping slow clients")
	}

	waitForClose(t, first)
	waitForClose(t, second)
}

func TestSendReachesEveryDevice(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	userID := uuid.New()
	first := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, 1)}
	second := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, 1)}
	registerClient(t, hub, first)
	registerClient(t, hub, second)

	hub.Send(userID, model.Notification{Title: "receipt"})

	for _, c := range []*Client{first, second} {
		select {
		case msg := <-c.Send:
			if len(msg) == 0 {
				t.Error("delivered an empty envelope")
			}
		case <-time.After(time.Second):
			t.Fatal("a connected device never received the notification")
		}
	}
}
