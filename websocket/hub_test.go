package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestConcurrentWritesToOneClient(t *testing.T) {
	hub := NewHub()
	userID := primitive.NewObjectID()
	registered := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		hub.mu.Lock()
		hub.clients[userID] = &Client{UserID: userID, Conn: conn}
		hub.mu.Unlock()
		close(registered)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()
	<-registered

	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				hub.Broadcast(Event{Type: EventBookingUpdated, Message: "booking changed"})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				hub.SendToUser(userID, Event{Type: EventTaskStarted, Message: "task started"})
			}
		}()
	}

	// Every frame must arrive intact; interleaved writers corrupt frames
	// and fail the decode below.
	total := writers * perWriter * 2
	for received := 0; received < total; received++ {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("read %d of %d failed: %v", received+1, total, err)
		}
		if ev.Type != EventBookingUpdated && ev.Type != EventTaskStarted {
			t.Fatalf("unexpected event type %q", ev.Type)
		}
	}
	wg.Wait()
}
