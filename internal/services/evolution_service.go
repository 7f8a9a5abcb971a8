package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"prospector/config"
	"prospector/internal/models"
	"prospector/internal/utils"
)

// EvolutionMessenger talks to an Evolution API instance.
type EvolutionMessenger struct {
	cfg    config.EvolutionConfig
	typing time.Duration
	client *http.Client
}

func NewEvolutionMessenger(cfg config.EvolutionConfig, typing time.Duration) *EvolutionMessenger {
	return &EvolutionMessenger{
		cfg:    cfg,
		typing: typing,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type evolutionSendOptions struct {
	Delay       int64  `json:"delay"`
	Presence    string `json:"presence"`
	LinkPreview bool   `json:"linkPreview"`
}

type evolutionTextMessage struct {
	Text string `json:"text"`
}

type evolutionSendRequest struct {
	Number      string               `json:"number"`
	Options     evolutionSendOptions `json:"options"`
	TextMessage evolutionTextMessage `json:"textMessage"`
}

type evolutionState struct {
	Instance struct {
		InstanceName string `json:"instanceName"`
		State        string `json:"state"`
	} `json:"instance"`
}

type evolutionConnect struct {
	PairingCode string `json:"pairingCode"`
	Code        string `json:"code"`
}

func (m *EvolutionMessenger) SendText(ctx context.Context, phone, text string) error {
	body := evolutionSendRequest{
		Number: phone,
		Options: evolutionSendOptions{
			Delay:    m.typing.Milliseconds(),
			Presence: "composing",
		},
		TextMessage: evolutionTextMessage{Text: text},
	}

	if err := m.do(ctx, http.MethodPost, "/message/sendText/"+m.cfg.Instance, body, nil); err != nil {
		utils.LogError("Failed to send message to %s: %v", phone, err)
		return err
	}
	return nil
}

func (m *EvolutionMessenger) Status(ctx context.Context) (models.ConnectionStatus, error) {
	var state evolutionState
	if err := m.do(ctx, http.MethodGet, "/instance/connectionState/"+m.cfg.Instance, nil, &state); err != nil {
		return models.ConnectionStatus{}, err
	}
	return models.ConnectionStatus{
		State:     state.Instance.State,
		Connected: state.Instance.State == "open",
	}, nil
}

func (m *EvolutionMessenger) PairingCode(ctx context.Context) (string, error) {
	var connect evolutionConnect
	if err := m.do(ctx, http.MethodGet, "/instance/connect/"+m.cfg.Instance, nil, &connect); err != nil {
		return "", err
	}
	if connect.Code == "" {
		return "", ErrNoPairingCode
	}
	return connect.Code, nil
}

func (m *EvolutionMessenger) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("error encoding evolution request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	url := strings.TrimRight(m.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("error building evolution request: %w", err)
	}
	req.Header.Set("apikey", m.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("error calling evolution api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("evolution api %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding evolution response: %w", err)
	}
	return nil
}
