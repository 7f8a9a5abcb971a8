package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"prospector/config"
	"prospector/internal/models"
	"prospector/internal/utils"

	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/binary/proto"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
	_ "modernc.org/sqlite"
)

// WhatsmeowMessenger sends messages through a multi-device session owned by
// this process. The device keys live in a sqlite file.
type WhatsmeowMessenger struct {
	cfg    config.WhatsmeowConfig
	client *whatsmeow.Client

	mu        sync.RWMutex
	connected bool
	qrCode    string
}

func NewWhatsmeowMessenger(cfg config.WhatsmeowConfig) *WhatsmeowMessenger {
	return &WhatsmeowMessenger{cfg: cfg}
}

func (s *WhatsmeowMessenger) Connect() error {
	store.DeviceProps.Os = proto.String("Prospector")
	store.DeviceProps.PlatformType = waProto.DeviceProps_DESKTOP.Enum()

	if s.client != nil {
		utils.LogDebug("Client already exists, reconnecting")
		return s.Reconnect()
	}

	dbPath := s.cfg.SessionFile
	utils.LogDebug("Using whatsmeow session at: %s", dbPath)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("error creating session directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(10000)", dbPath)
	container, err := sqlstore.New("sqlite", dsn, nil)
	if err != nil {
		return fmt.Errorf("error creating device store: %w", err)
	}

	device, err := container.GetFirstDevice()
	if err != nil {
		return fmt.Errorf("error loading device: %w", err)
	}

	client := whatsmeow.NewClient(device, waLog.Stdout("Client", "INFO", true))
	client.AddEventHandler(s.eventHandler)
	s.client = client

	if client.Store.ID == nil {
		utils.LogInfo("No linked device, waiting for pairing")
		qrChan, _ := client.GetQRChannel(context.Background())
		go func() {
			for evt := range qrChan {
				if evt.Event == "code" {
					utils.LogInfo("Pairing code received")
					s.setQRCode(evt.Code)
				}
			}
		}()
	}

	if err := client.Connect(); err != nil {
		return fmt.Errorf("error connecting: %w", err)
	}
	return nil
}

func (s *WhatsmeowMessenger) eventHandler(evt interface{}) {
	switch evt.(type) {
	case *events.Connected:
		utils.LogInfo("WhatsApp connected")
		s.setConnected(true)
		s.setQRCode("")
	case *events.Disconnected:
		utils.LogWarning("WhatsApp disconnected")
		s.setConnected(false)
	case *events.LoggedOut:
		utils.LogWarning("WhatsApp logged out")
		s.setConnected(false)
	}
}

func (s *WhatsmeowMessenger) setConnected(connected bool) {
	s.mu.Lock()
	s.connected = connected
	s.mu.Unlock()
}

func (s *WhatsmeowMessenger) setQRCode(code string) {
	s.mu.Lock()
	s.qrCode = code
	s.mu.Unlock()
}

func (s *WhatsmeowMessenger) IsConnected() bool {
	if s.client == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client.IsConnected() && s.client.IsLoggedIn() && s.connected
}

func (s *WhatsmeowMessenger) SendText(ctx context.Context, phone, text string) error {
	if !s.IsConnected() {
		return fmt.Errorf("whatsapp is not connected")
	}

	jid := types.NewJID(phone, types.DefaultUserServer)

	if err := s.client.SendChatPresence(jid, types.ChatPresenceComposing, types.ChatPresenceMediaText); err != nil {
		utils.LogDebug("Could not send typing state to %s: %v", phone, err)
	}

	_, err := s.client.SendMessage(ctx, jid, &waProto.Message{
		Conversation: proto.String(text),
	})
	if err != nil {
		utils.LogError("Failed to send message to %s: %v", phone, err)
		return fmt.Errorf("error sending message: %w", err)
	}
	return nil
}

func (s *WhatsmeowMessenger) Status(ctx context.Context) (models.ConnectionStatus, error) {
	state := "close"
	switch {
	case s.IsConnected():
		state = "open"
	case s.client != nil && s.client.IsConnected():
		state = "connecting"
	}
	return models.ConnectionStatus{State: state, Connected: state == "open"}, nil
}

func (s *WhatsmeowMessenger) PairingCode(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.qrCode == "" {
		return "", ErrNoPairingCode
	}
	return s.qrCode, nil
}

func (s *WhatsmeowMessenger) Reconnect() error {
	if s.client == nil {
		return fmt.Errorf("client not initialized")
	}
	if s.client.IsConnected() {
		s.setConnected(true)
		return nil
	}

	connectedChan := make(chan struct{}, 1)
	var once sync.Once
	handlerID := s.client.AddEventHandler(func(evt interface{}) {
		if _, ok := evt.(*events.Connected); ok {
			once.Do(func() { connectedChan <- struct{}{} })
		}
	})
	defer s.client.RemoveEventHandler(handlerID)

	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("error reconnecting: %w", err)
	}

	select {
	case <-connectedChan:
		utils.LogInfo("Reconnected")
		s.setConnected(true)
		return nil
	case <-time.After(15 * time.Second):
		if s.client.IsConnected() {
			s.setConnected(true)
			return nil
		}
		s.client.Disconnect()
		return fmt.Errorf("timeout waiting for reconnection")
	}
}

func (s *WhatsmeowMessenger) Disconnect() {
	if s.client != nil {
		s.client.Disconnect()
	}
	s.setConnected(false)
}
