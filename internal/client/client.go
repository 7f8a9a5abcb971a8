// Package client is the operator-side REST client for the prospector API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"prospector/internal/models"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client for baseURL, e.g. http://localhost:8081/api/v1.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 150 * time.Second},
	}
}

func (c *Client) ListContacts(ctx context.Context, skip, limit int) ([]models.Contact, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(limit))
	var out []models.Contact
	err := c.do(ctx, http.MethodGet, "/contacts?"+q.Encode(), nil, &out)
	return out, err
}

// CreateContacts stores drafts; phones the server already knows are skipped.
func (c *Client) CreateContacts(ctx context.Context, drafts []models.ContactDraft) ([]models.Contact, error) {
	var out []models.Contact
	err := c.do(ctx, http.MethodPost, "/contacts", drafts, &out)
	return out, err
}

func (c *Client) DeleteContact(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/contacts/"+strconv.Itoa(id), nil, nil)
}

func (c *Client) ListTemplates(ctx context.Context) ([]models.Template, error) {
	var out []models.Template
	err := c.do(ctx, http.MethodGet, "/templates", nil, &out)
	return out, err
}

func (c *Client) CreateTemplate(ctx context.Context, draft models.TemplateDraft) (*models.Template, error) {
	var out models.Template
	if err := c.do(ctx, http.MethodPost, "/templates", draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTemplate(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/templates/"+strconv.Itoa(id), nil, nil)
}

func (c *Client) CreateCampaign(ctx context.Context, payload models.CampaignPayload) (*models.Campaign, error) {
	var out models.Campaign
	if err := c.do(ctx, http.MethodPost, "/campaigns", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	var out []models.Campaign
	err := c.do(ctx, http.MethodGet, "/campaigns", nil, &out)
	return out, err
}

func (c *Client) ListCampaignLogs(ctx context.Context) ([]models.CampaignLogView, error) {
	var out []models.CampaignLogView
	err := c.do(ctx, http.MethodGet, "/campaigns/logs", nil, &out)
	return out, err
}

func (c *Client) Search(ctx context.Context, req models.SearchRequest) ([]models.ContactDraft, error) {
	var out []models.ContactDraft
	err := c.do(ctx, http.MethodPost, "/search", req, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("error encoding request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("error building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error calling %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var envelope models.APIResponse
	msg := strings.TrimSpace(string(raw))
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Message != "" {
		msg = envelope.Message
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
