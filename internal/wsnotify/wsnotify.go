package wsnotify

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type WebSocketManager struct {
	clients map[*websocket.Conn]bool
	lock    sync.RWMutex
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func Upgrader() *websocket.Upgrader {
	return &upgrader
}

var Manager = NewManager()

func NewManager() *WebSocketManager {
	return &WebSocketManager{clients: make(map[*websocket.Conn]bool)}
}

func (m *WebSocketManager) AddClient(conn *websocket.Conn) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.clients[conn] = true
}

func (m *WebSocketManager) RemoveClient(conn *websocket.Conn) {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.clients, conn)
}

func (m *WebSocketManager) Len() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.clients)
}

// Broadcast holds the write lock for the whole fan-out: a websocket.Conn
// allows only one concurrent writer and several campaigns may publish at once.
func (m *WebSocketManager) Broadcast(event interface{}) {
	m.lock.Lock()
	defer m.lock.Unlock()
	for client := range m.clients {
		client.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := client.WriteJSON(event); err != nil {
			client.Close()
			delete(m.clients, client)
		}
	}
}

// Event is the envelope every websocket message uses.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type ContactStatusPayload struct {
	CampaignID int     `json:"campaignId"`
	ContactID  int     `json:"contactId"`
	Status     string  `json:"status"`
	Error      *string `json:"error,omitempty"`
	SentAt     string  `json:"sentAt"`
}

type CampaignStatusPayload struct {
	CampaignID int    `json:"campaignId"`
	Status     string `json:"status"`
	Sent       int    `json:"sent"`
	Failed     int    `json:"failed"`
	Total      int    `json:"total"`
}

// Notifier is what background jobs publish progress through.
type Notifier interface {
	ContactStatus(campaignID, contactID int, status string, errMsg *string, sentAt time.Time)
	CampaignStatus(campaignID int, status string, sent, failed, total int)
}

func (m *WebSocketManager) ContactStatus(campaignID, contactID int, status string, errMsg *string, sentAt time.Time) {
	m.Broadcast(Event{
		Type: "contact_status",
		Payload: ContactStatusPayload{
			CampaignID: campaignID,
			ContactID:  contactID,
			Status:     status,
			Error:      errMsg,
			SentAt:     sentAt.UTC().Format(time.RFC3339Nano),
		},
	})
}

func (m *WebSocketManager) CampaignStatus(campaignID int, status string, sent, failed, total int) {
	m.Broadcast(Event{
		Type: "campaign_status",
		Payload: CampaignStatusPayload{
			CampaignID: campaignID,
			Status:     status,
			Sent:       sent,
			Failed:     failed,
			Total:      total,
		},
	})
}
