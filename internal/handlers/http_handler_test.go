package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/mux"

	"prospector/config"
	"prospector/internal/models"
	"prospector/internal/repositories"
	"prospector/internal/services"
)

type startedCampaign struct {
	ID         int
	ContactIDs []int
}

type fakeRunner struct {
	mu      sync.Mutex
	started []startedCampaign
}

func (f *fakeRunner) Start(ctx context.Context, campaignID int, contactIDs []int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, startedCampaign{campaignID, contactIDs})
}

type fakeSearcher struct {
	got     models.SearchRequest
	results []models.ContactDraft
	err     error
}

func (f *fakeSearcher) Search(ctx context.Context, req models.SearchRequest) ([]models.ContactDraft, error) {
	f.got = req
	return f.results, f.err
}

type fakeLinker struct {
	status models.ConnectionStatus
	code   string
	err    error
}

func (f *fakeLinker) Status(ctx context.Context) (models.ConnectionStatus, error) {
	return f.status, nil
}

func (f *fakeLinker) PairingCode(ctx context.Context) (string, error) {
	return f.code, f.err
}

type fakeStore struct {
	keys []string
	data map[string][]byte
}

func (f *fakeStore) UploadBytes(data []byte, fileName string, contentType string) (string, error) {
	if f.data == nil {
		f.data = map[string][]byte{}
	}
	f.keys = append(f.keys, fileName)
	f.data[fileName] = data
	return "https://bucket.test/" + fileName, nil
}

type testServer struct {
	router    *mux.Router
	runner    *fakeRunner
	searcher  *fakeSearcher
	linker    *fakeLinker
	store     *fakeStore
	contacts  models.ContactRepository
	templates models.TemplateRepository
	campaigns models.CampaignRepository
}

func setupServer(t *testing.T, withStore bool) *testServer {
	t.Helper()
	db, err := config.ConnectDatabase(config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "api.db")})
	if err != nil {
		t.Fatalf("config.ConnectDatabase() failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ts := &testServer{
		runner:    &fakeRunner{},
		searcher:  &fakeSearcher{},
		linker:    &fakeLinker{},
		contacts:  repositories.NewSQLContactRepository(db),
		templates: repositories.NewSQLTemplateRepository(db),
		campaigns: repositories.NewSQLCampaignRepository(db),
	}
	deps := Dependencies{
		Contacts:  ts.contacts,
		Templates: ts.templates,
		Campaigns: ts.campaigns,
		Runner:    ts.runner,
		Searcher:  ts.searcher,
		Linker:    ts.linker,
	}
	if withStore {
		ts.store = &fakeStore{}
		deps.Store = ts.store
	}

	ts.router = mux.NewRouter()
	NewHTTPHandler(deps).Register(ts.router)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json.Marshal() failed: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	ts := setupServer(t, false)
	rec := ts.do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"status":"ok"}` {
		t.Fatalf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}

func TestContactsRoutes(t *testing.T) {
	ts := setupServer(t, false)

	rec := ts.do(t, http.MethodPost, "/api/v1/contacts", []models.ContactDraft{
		{Name: "Padaria", Phone: "11988887777"},
		{Name: "Pizzaria", Phone: "6133334444"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("wanted: 200\ngot: %d %s", rec.Code, rec.Body.String())
	}
	created := decode[[]models.Contact](t, rec)
	if len(created) != 2 || created[0].Status != models.ContactPending {
		t.Fatalf("unexpected created contacts %+v", created)
	}

	rec = ts.do(t, http.MethodPost, "/api/v1/contacts", []models.ContactDraft{{Name: "again", Phone: "11988887777"}})
	if again := decode[[]models.Contact](t, rec); len(again) != 0 {
		t.Fatalf("wanted duplicate phone skipped, got %+v", again)
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/contacts?skip=1&limit=5", nil)
	page := decode[[]models.Contact](t, rec)
	if len(page) != 1 || page[0].Name != "Pizzaria" {
		t.Fatalf("unexpected page %+v", page)
	}

	if rec = ts.do(t, http.MethodGet, "/api/v1/contacts?limit=abc", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("wanted: 400\ngot: %d", rec.Code)
	}

	path := "/api/v1/contacts/" + strconv.Itoa(created[0].ID)
	if rec = ts.do(t, http.MethodDelete, path, nil); rec.Code != http.StatusOK {
		t.Fatalf("wanted: 200\ngot: %d", rec.Code)
	}
	if rec = ts.do(t, http.MethodDelete, path, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("wanted: 404\ngot: %d", rec.Code)
	}
}

func TestTemplatesRoutes(t *testing.T) {
	ts := setupServer(t, false)

	if rec := ts.do(t, http.MethodPost, "/api/v1/templates", models.TemplateDraft{Name: " ", Content: "x"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("wanted: 400\ngot: %d", rec.Code)
	}

	rec := ts.do(t, http.MethodPost, "/api/v1/templates", models.TemplateDraft{Name: "Hello", Content: "Oi {nome}"})
	tpl := decode[models.Template](t, rec)
	if tpl.ID == 0 || tpl.Name != "Hello" {
		t.Fatalf("unexpected template %+v", tpl)
	}

	list := decode[[]models.Template](t, ts.do(t, http.MethodGet, "/api/v1/templates", nil))
	if len(list) != 1 {
		t.Fatalf("wanted 1 template, got %d", len(list))
	}

	if rec := ts.do(t, http.MethodDelete, "/api/v1/templates/"+strconv.Itoa(tpl.ID), nil); rec.Code != http.StatusOK {
		t.Fatalf("wanted: 200\ngot: %d", rec.Code)
	}
	if rec := ts.do(t, http.MethodDelete, "/api/v1/templates/"+strconv.Itoa(tpl.ID), nil); rec.Code != http.StatusNotFound {
		t.Fatalf("wanted: 404\ngot: %d", rec.Code)
	}
}

type failingTemplates struct {
	models.TemplateRepository
	err error
}

func (f failingTemplates) Delete(int) error { return f.err }

func TestDeleteTemplateErrors(t *testing.T) {
	t.Run("referenced by a campaign", func(t *testing.T) {
		ts := setupServer(t, false)
		tpl, _ := ts.templates.Create(models.TemplateDraft{Name: "t", Content: "c"})
		ts.campaigns.Create("Promo", tpl.ID, models.CampaignQueued)

		if rec := ts.do(t, http.MethodDelete, "/api/v1/templates/"+strconv.Itoa(tpl.ID), nil); rec.Code != http.StatusConflict {
			t.Fatalf("wanted: 409\ngot: %d", rec.Code)
		}
	})

	t.Run("storage failure", func(t *testing.T) {
		router := mux.NewRouter()
		NewHTTPHandler(Dependencies{Templates: failingTemplates{err: errors.New("connection refused")}}).Register(router)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/templates/1", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("wanted: 500\ngot: %d", rec.Code)
		}
	})
}

func TestCreateCampaign(t *testing.T) {
	t.Run("unknown template", func(t *testing.T) {
		ts := setupServer(t, false)
		rec := ts.do(t, http.MethodPost, "/api/v1/campaigns", models.CampaignPayload{Name: "Promo", TemplateID: 99, ContactIDs: []int{1}})
		if rec.Code != http.StatusNotFound {
			t.Fatalf("wanted: 404\ngot: %d", rec.Code)
		}
		if len(ts.runner.started) != 0 {
			t.Fatalf("wanted no campaign started")
		}
	})

	t.Run("queued and started", func(t *testing.T) {
		ts := setupServer(t, false)
		tpl, _ := ts.templates.Create(models.TemplateDraft{Name: "t", Content: "c"})

		rec := ts.do(t, http.MethodPost, "/api/v1/campaigns", models.CampaignPayload{Name: "Promo", TemplateID: tpl.ID, ContactIDs: []int{1, 2}})
		if rec.Code != http.StatusOK {
			t.Fatalf("wanted: 200\ngot: %d %s", rec.Code, rec.Body.String())
		}
		campaign := decode[models.Campaign](t, rec)
		if campaign.Status != models.CampaignQueued || campaign.Name != "Promo" {
			t.Fatalf("unexpected campaign %+v", campaign)
		}
		want := []startedCampaign{{campaign.ID, []int{1, 2}}}
		if diff := cmp.Diff(want, ts.runner.started); diff != "" {
			t.Fatalf("started mismatch (-want +got):\n%s", diff)
		}

		list := decode[[]models.Campaign](t, ts.do(t, http.MethodGet, "/api/v1/campaigns", nil))
		if len(list) != 1 {
			t.Fatalf("wanted 1 campaign, got %d", len(list))
		}
	})

	t.Run("missing contacts", func(t *testing.T) {
		ts := setupServer(t, false)
		rec := ts.do(t, http.MethodPost, "/api/v1/campaigns", models.CampaignPayload{Name: "Promo", TemplateID: 1})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("wanted: 400\ngot: %d", rec.Code)
		}
	})
}

func TestCampaignLogsAndExport(t *testing.T) {
	ts := setupServer(t, true)
	contacts, _ := ts.contacts.CreateMany([]models.ContactDraft{{Name: "Ana", Phone: "1"}})
	tpl, _ := ts.templates.Create(models.TemplateDraft{Name: "t", Content: "c"})
	campaign, _ := ts.campaigns.Create("Promo", tpl.ID, models.CampaignCompleted)
	ts.campaigns.AddLog(models.CampaignLog{CampaignID: campaign.ID, ContactID: contacts[0].ID, Status: models.ContactSent})

	logs := decode[[]models.CampaignLogView](t, ts.do(t, http.MethodGet, "/api/v1/campaigns/logs", nil))
	if len(logs) != 1 || logs[0].CampaignName != "Promo" || logs[0].ContactName != "Ana" {
		t.Fatalf("unexpected logs %+v", logs)
	}

	rec := ts.do(t, http.MethodPost, "/api/v1/campaigns/"+strconv.Itoa(campaign.ID)+"/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("wanted: 200\ngot: %d %s", rec.Code, rec.Body.String())
	}
	if len(ts.store.keys) != 1 || !strings.HasSuffix(ts.store.keys[0], ".csv") {
		t.Fatalf("wanted one csv upload, got %v", ts.store.keys)
	}
	if !strings.Contains(string(ts.store.data[ts.store.keys[0]]), "Promo,Ana,SENT") {
		t.Fatalf("report missing row: %s", ts.store.data[ts.store.keys[0]])
	}

	if rec := ts.do(t, http.MethodPost, "/api/v1/campaigns/999/export", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("wanted: 404\ngot: %d", rec.Code)
	}
}

func TestExportWithoutStore(t *testing.T) {
	ts := setupServer(t, false)
	if rec := ts.do(t, http.MethodPost, "/api/v1/campaigns/1/export", nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("wanted: 503\ngot: %d", rec.Code)
	}
}

func TestSearch(t *testing.T) {
	ts := setupServer(t, false)
	ts.searcher.results = []models.ContactDraft{{Name: "Padaria", Phone: "5511988887777"}}

	rec := ts.do(t, http.MethodPost, "/api/v1/search", models.SearchRequest{Terms: []string{"padaria"}, Locations: []string{"SP"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("wanted: 200\ngot: %d", rec.Code)
	}
	if ts.searcher.got.Limit != models.DefaultSearchLimit {
		t.Fatalf("wanted default limit, got %d", ts.searcher.got.Limit)
	}
	if diff := cmp.Diff(ts.searcher.results, decode[[]models.ContactDraft](t, rec)); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}

	if rec := ts.do(t, http.MethodPost, "/api/v1/search", models.SearchRequest{Terms: []string{"x"}}); rec.Code != http.StatusBadRequest {
		t.Fatalf("wanted: 400\ngot: %d", rec.Code)
	}

	ts.searcher.err = errors.New("apify down")
	if rec := ts.do(t, http.MethodPost, "/api/v1/search", models.SearchRequest{Terms: []string{"x"}, Locations: []string{"y"}}); rec.Code != http.StatusBadGateway {
		t.Fatalf("wanted: 502\ngot: %d", rec.Code)
	}
}

func uploadRequest(t *testing.T, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "dataset.json")
	if err != nil {
		t.Fatalf("CreateFormFile() failed: %v", err)
	}
	fw.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestImportDataset(t *testing.T) {
	t.Run("normalizes and archives", func(t *testing.T) {
		ts := setupServer(t, true)
		dataset := []byte(`[{"title":"Padaria","phone":"(11) 98888-7777","address":"Rua A"},{"title":"Sem telefone","phone":"","phoneUnformatted":""}]`)

		rec := httptest.NewRecorder()
		ts.router.ServeHTTP(rec, uploadRequest(t, dataset))
		if rec.Code != http.StatusOK {
			t.Fatalf("wanted: 200\ngot: %d %s", rec.Code, rec.Body.String())
		}

		got := decode[models.ImportResult](t, rec)
		if got.Received != 2 || len(got.Drafts) != 1 || got.Drafts[0].Phone != "11988887777" {
			t.Fatalf("unexpected import result %+v", got)
		}
		if !strings.HasPrefix(got.ArchiveURL, "https://bucket.test/datasets/") {
			t.Fatalf("unexpected archive url %q", got.ArchiveURL)
		}
	})

	t.Run("rejects non json", func(t *testing.T) {
		ts := setupServer(t, false)
		rec := httptest.NewRecorder()
		ts.router.ServeHTTP(rec, uploadRequest(t, []byte("name,phone\nPadaria,1\n")))
		if rec.Code != http.StatusUnsupportedMediaType {
			t.Fatalf("wanted: 415\ngot: %d", rec.Code)
		}
	})
}

func TestWhatsAppRoutes(t *testing.T) {
	ts := setupServer(t, false)
	ts.linker.status = models.ConnectionStatus{State: "open", Connected: true}

	status := decode[models.ConnectionStatus](t, ts.do(t, http.MethodGet, "/api/v1/whatsapp/status", nil))
	if !status.Connected {
		t.Fatalf("wanted connected status, got %+v", status)
	}

	ts.linker.err = services.ErrNoPairingCode
	if rec := ts.do(t, http.MethodGet, "/api/v1/whatsapp/qrcode", nil); rec.Code != http.StatusConflict {
		t.Fatalf("wanted: 409\ngot: %d", rec.Code)
	}

	ts.linker.err = nil
	ts.linker.code = "2@abc"
	rec := ts.do(t, http.MethodGet, "/api/v1/whatsapp/qrcode", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "data:image/png;base64,") {
		t.Fatalf("unexpected qrcode response %d %.80s", rec.Code, rec.Body.String())
	}
}
