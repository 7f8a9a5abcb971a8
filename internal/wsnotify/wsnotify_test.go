package wsnotify

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialManager(t *testing.T, m *WebSocketManager) *websocket.Conn {
	t.Helper()

	joined := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := Upgrader().Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade() failed: %v", err)
			return
		}
		m.AddClient(conn)
		close(joined)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				m.RemoveClient(conn)
				conn.Close()
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	<-joined
	return conn
}

func TestBroadcast_ConcurrentPublishers(t *testing.T) {
	m := NewManager()
	conn := dialManager(t, m)

	const publishers, perPublisher = 2, 200
	want := publishers * perPublisher

	received := make(chan int, 1)
	go func() {
		n := 0
		for n < want {
			var ev Event
			if err := conn.ReadJSON(&ev); err != nil {
				break
			}
			n++
		}
		received <- n
	}()

	var wg sync.WaitGroup
	for p := 0; p < publishers; p++ {
		wg.Add(1)
		go func(campaignID int) {
			defer wg.Done()
			for i := 0; i < perPublisher; i++ {
				m.ContactStatus(campaignID, i, "SENT", nil, time.Now())
			}
		}(p + 1)
	}
	wg.Wait()

	select {
	case got := <-received:
		if got != want {
			t.Fatalf("wanted: %d events\ngot: %d", want, got)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("timed out waiting for %d events", want)
	}
}

func TestContactStatus_Envelope(t *testing.T) {
	m := NewManager()
	conn := dialManager(t, m)

	failure := "timeout"
	m.ContactStatus(3, 7, "ERROR", &failure, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))

	var got struct {
		Type    string               `json:"type"`
		Payload ContactStatusPayload `json:"payload"`
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON() failed: %v", err)
	}
	if got.Type != "contact_status" || got.Payload.CampaignID != 3 || got.Payload.ContactID != 7 {
		t.Fatalf("unexpected event %+v", got)
	}
	if got.Payload.Error == nil || *got.Payload.Error != "timeout" || got.Payload.SentAt != "2024-01-02T03:04:05Z" {
		t.Fatalf("unexpected payload %+v", got.Payload)
	}
}

func TestBroadcast_DropsClosedClients(t *testing.T) {
	m := NewManager()
	conn := dialManager(t, m)
	if m.Len() != 1 {
		t.Fatalf("wanted: 1 client\ngot: %d", m.Len())
	}
	conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for m.Len() != 0 && time.Now().Before(deadline) {
		m.CampaignStatus(1, "RUNNING", 0, 0, 1)
		time.Sleep(10 * time.Millisecond)
	}
	if m.Len() != 0 {
		t.Fatalf("wanted: 0 clients\ngot: %d", m.Len())
	}
}
