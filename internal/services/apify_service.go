package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"prospector/config"
	"prospector/internal/models"
	"prospector/internal/utils"
)

// ApifyService runs the Google Maps crawler actor synchronously and maps its
// dataset items to contact drafts.
type ApifyService struct {
	cfg    config.ApifyConfig
	client *http.Client
}

func NewApifyService(cfg config.ApifyConfig) *ApifyService {
	return &ApifyService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type apifyInput struct {
	SearchStringsArray []string `json:"searchStringsArray"`
	MaxCrawledPlaces   int      `json:"maxCrawledPlaces"`
	Language           string   `json:"language"`
	CountryCode        string   `json:"countryCode"`
	Zoom               int      `json:"zoom"`
}

// SearchQueries returns every "<term> in <location>" combination.
func SearchQueries(terms, locations []string) []string {
	queries := make([]string, 0, len(terms)*len(locations))
	for _, term := range terms {
		for _, location := range locations {
			queries = append(queries, fmt.Sprintf("%s in %s", term, location))
		}
	}
	return queries
}

func (s *ApifyService) Search(ctx context.Context, req models.SearchRequest) ([]models.ContactDraft, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = models.DefaultSearchLimit
	}

	queries := SearchQueries(req.Terms, req.Locations)
	if len(queries) == 0 {
		return []models.ContactDraft{}, nil
	}

	payload, err := json.Marshal(apifyInput{
		SearchStringsArray: queries,
		MaxCrawledPlaces:   limit,
		Language:           "pt-BR",
		CountryCode:        "br",
		Zoom:               14,
	})
	if err != nil {
		return nil, fmt.Errorf("error encoding apify input: %w", err)
	}

	params := url.Values{}
	params.Set("token", s.cfg.Token)
	params.Set("memory", "4096")
	actor := strings.ReplaceAll(s.cfg.ActorID, "/", "~")
	endpoint := fmt.Sprintf("%s/acts/%s/run-sync-get-dataset-items?%s", strings.TrimRight(s.cfg.BaseURL, "/"), actor, params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("error building apify request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	utils.LogInfo("Starting Apify task for %d queries: %v", len(queries), queries)
	defer utils.TimeTrack(time.Now(), "apify search")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error calling apify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		utils.LogError("Apify error body: %s", body)
		return nil, fmt.Errorf("apify returned status %d", resp.StatusCode)
	}

	var items []models.RawRecord
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("error decoding apify dataset: %w", err)
	}
	utils.LogInfo("Apify returned %d items", len(items))

	return SearchDrafts(items), nil
}

// SearchDrafts maps crawler items to drafts with country-prefixed phones.
// Items without any phone are skipped.
func SearchDrafts(items []models.RawRecord) []models.ContactDraft {
	drafts := make([]models.ContactDraft, 0, len(items))
	for _, item := range items {
		phone := item.PhoneUnformatted
		if phone == "" {
			phone = item.Phone
		}
		if phone == "" {
			continue
		}

		name := item.Title
		if name == "" {
			name = "Unknown"
		}
		drafts = append(drafts, models.ContactDraft{
			Name:           name,
			Phone:          utils.NormalizeBR(phone, utils.DefaultCountryCode),
			Address:        item.Address,
			Category:       item.CategoryName,
			GoogleMapsLink: item.URL,
		})
	}
	return drafts
}
