package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"prospector/internal/models"
	"prospector/internal/normalizer"
	"prospector/internal/repositories"
	"prospector/internal/services"
	"prospector/internal/utils"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gorilla/mux"
)

const maxDatasetSize = 20 << 20

// CampaignStarter launches delivery of a stored campaign.
type CampaignStarter interface {
	Start(ctx context.Context, campaignID int, contactIDs []int)
}

// Searcher finds candidate contacts for search terms and locations.
type Searcher interface {
	Search(ctx context.Context, req models.SearchRequest) ([]models.ContactDraft, error)
}

// Dependencies wires the handler. Store may be nil when S3 is not configured.
type Dependencies struct {
	Contacts  models.ContactRepository
	Templates models.TemplateRepository
	Campaigns models.CampaignRepository
	Runner    CampaignStarter
	Searcher  Searcher
	Linker    services.Linker
	Store     services.ObjectStore
	// BaseContext outlives requests; background campaigns run under it.
	BaseContext context.Context
}

type HTTPHandler struct {
	contacts  models.ContactRepository
	templates models.TemplateRepository
	campaigns models.CampaignRepository
	runner    CampaignStarter
	searcher  Searcher
	linker    services.Linker
	store     services.ObjectStore
	baseCtx   context.Context
}

func NewHTTPHandler(deps Dependencies) *HTTPHandler {
	baseCtx := deps.BaseContext
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &HTTPHandler{
		contacts:  deps.Contacts,
		templates: deps.Templates,
		campaigns: deps.Campaigns,
		runner:    deps.Runner,
		searcher:  deps.Searcher,
		linker:    deps.Linker,
		store:     deps.Store,
		baseCtx:   baseCtx,
	}
}

func respondError(w http.ResponseWriter, code int, message string) {
	models.RespondWithJSON(w, code, models.NewErrorResponse(message))
}

func pathID(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["id"])
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return v, nil
}

// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *HTTPHandler) Health(w http.ResponseWriter, r *http.Request) {
	models.RespondWithData(w, http.StatusOK, map[string]string{"status": "ok"})
}

// @Summary List contacts
// @Tags contacts
// @Produce json
// @Param skip query int false "Offset" default(0)
// @Param limit query int false "Page size" default(100)
// @Success 200 {array} models.Contact
// @Failure 400 {object} models.APIResponse
// @Router /contacts [get]
func (h *HTTPHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := queryInt(r, "limit", 100)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	contacts, err := h.contacts.List(skip, limit)
	if err != nil {
		utils.LogError("Error listing contacts: %v", err)
		respondError(w, http.StatusInternalServerError, "Error listing contacts")
		return
	}
	models.RespondWithData(w, http.StatusOK, contacts)
}

// @Summary Bulk create contacts
// @Description Phones already stored are skipped; only created contacts are returned.
// @Tags contacts
// @Accept json
// @Produce json
// @Param request body []models.ContactDraft true "Contacts"
// @Success 200 {array} models.Contact
// @Failure 400 {object} models.APIResponse
// @Router /contacts [post]
func (h *HTTPHandler) CreateContacts(w http.ResponseWriter, r *http.Request) {
	var drafts []models.ContactDraft
	if err := json.NewDecoder(r.Body).Decode(&drafts); err != nil {
		utils.LogError("Error decoding /contacts request: %v", err)
		respondError(w, http.StatusBadRequest, "Error decoding request: "+err.Error())
		return
	}

	created, err := h.contacts.CreateMany(drafts)
	if err != nil {
		utils.LogError("Error creating contacts: %v", err)
		respondError(w, http.StatusInternalServerError, "Error creating contacts")
		return
	}
	utils.LogInfo("Created %d of %d contacts", len(created), len(drafts))
	models.RespondWithData(w, http.StatusOK, created)
}

// @Summary Delete a contact
// @Tags contacts
// @Produce json
// @Param id path int true "Contact id"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} models.APIResponse
// @Router /contacts/{id} [delete]
func (h *HTTPHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid contact id")
		return
	}

	if err := h.contacts.Delete(id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Contact not found")
			return
		}
		utils.LogError("Error deleting contact %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "Error deleting contact")
		return
	}
	models.RespondWithData(w, http.StatusOK, map[string]bool{"ok": true})
}

// @Summary List templates
// @Tags templates
// @Produce json
// @Success 200 {array} models.Template
// @Router /templates [get]
func (h *HTTPHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templates.List()
	if err != nil {
		utils.LogError("Error listing templates: %v", err)
		respondError(w, http.StatusInternalServerError, "Error listing templates")
		return
	}
	models.RespondWithData(w, http.StatusOK, templates)
}

// @Summary Create a template
// @Description Content may use {nome}, {cidade} and {categoria}.
// @Tags templates
// @Accept json
// @Produce json
// @Param request body models.TemplateDraft true "Template"
// @Success 200 {object} models.Template
// @Failure 400 {object} models.APIResponse
// @Router /templates [post]
func (h *HTTPHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var draft models.TemplateDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondError(w, http.StatusBadRequest, "Error decoding request: "+err.Error())
		return
	}
	draft.Name = strings.TrimSpace(draft.Name)
	if draft.Name == "" || strings.TrimSpace(draft.Content) == "" {
		respondError(w, http.StatusBadRequest, "name and content are required")
		return
	}

	template, err := h.templates.Create(draft)
	if err != nil {
		utils.LogError("Error creating template: %v", err)
		respondError(w, http.StatusInternalServerError, "Error creating template")
		return
	}
	models.RespondWithData(w, http.StatusOK, template)
}

// @Summary Delete a template
// @Tags templates
// @Produce json
// @Param id path int true "Template id"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} models.APIResponse
// @Router /templates/{id} [delete]
func (h *HTTPHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid template id")
		return
	}

	if err := h.templates.Delete(id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Template not found")
			return
		}
		if errors.Is(err, repositories.ErrTemplateInUse) {
			respondError(w, http.StatusConflict, "Template is in use by a campaign")
			return
		}
		utils.LogError("Error deleting template %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "Error deleting template")
		return
	}
	models.RespondWithData(w, http.StatusOK, map[string]bool{"ok": true})
}

// @Summary Create and start a campaign
// @Tags campaigns
// @Accept json
// @Produce json
// @Param request body models.CampaignPayload true "Campaign"
// @Success 200 {object} models.Campaign
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /campaigns [post]
func (h *HTTPHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var payload models.CampaignPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Error decoding request: "+err.Error())
		return
	}
	if strings.TrimSpace(payload.Name) == "" || len(payload.ContactIDs) == 0 {
		respondError(w, http.StatusBadRequest, "name and contact_ids are required")
		return
	}

	template, err := h.templates.GetByID(payload.TemplateID)
	if err != nil {
		utils.LogError("Error loading template %d: %v", payload.TemplateID, err)
		respondError(w, http.StatusInternalServerError, "Error loading template")
		return
	}
	if template == nil {
		respondError(w, http.StatusNotFound, "Template not found")
		return
	}

	campaign, err := h.campaigns.Create(payload.Name, template.ID, models.CampaignQueued)
	if err != nil {
		utils.LogError("Error creating campaign: %v", err)
		respondError(w, http.StatusInternalServerError, "Error creating campaign")
		return
	}

	utils.LogInfo("Campaign %d queued for %d contacts", campaign.ID, len(payload.ContactIDs))
	h.runner.Start(h.baseCtx, campaign.ID, payload.ContactIDs)
	models.RespondWithData(w, http.StatusOK, campaign)
}

// @Summary List campaigns
// @Tags campaigns
// @Produce json
// @Success 200 {array} models.Campaign
// @Router /campaigns [get]
func (h *HTTPHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.campaigns.List()
	if err != nil {
		utils.LogError("Error listing campaigns: %v", err)
		respondError(w, http.StatusInternalServerError, "Error listing campaigns")
		return
	}
	models.RespondWithData(w, http.StatusOK, campaigns)
}

// @Summary Delivery log, newest first
// @Tags campaigns
// @Produce json
// @Success 200 {array} models.CampaignLogView
// @Router /campaigns/logs [get]
func (h *HTTPHandler) ListCampaignLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.campaigns.ListLogs()
	if err != nil {
		utils.LogError("Error listing campaign logs: %v", err)
		respondError(w, http.StatusInternalServerError, "Error listing campaign logs")
		return
	}
	models.RespondWithData(w, http.StatusOK, logs)
}

// @Summary Export a campaign report to S3
// @Tags campaigns
// @Produce json
// @Param id path int true "Campaign id"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Failure 503 {object} models.APIResponse
// @Router /campaigns/{id}/export [post]
func (h *HTTPHandler) ExportCampaign(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "S3 is not configured")
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid campaign id")
		return
	}

	campaign, err := h.campaigns.GetByID(id)
	if err != nil {
		utils.LogError("Error loading campaign %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "Error loading campaign")
		return
	}
	if campaign == nil {
		respondError(w, http.StatusNotFound, "Campaign not found")
		return
	}

	logs, err := h.campaigns.LogsByCampaign(id)
	if err != nil {
		utils.LogError("Error loading logs for campaign %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "Error loading campaign logs")
		return
	}
	report, err := services.CampaignReportCSV(logs)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	url, err := h.store.UploadBytes(report, services.ObjectKey(fmt.Sprintf("reports/campaign_%d", id), ".csv"), "text/csv")
	if err != nil {
		utils.LogError("Error uploading report for campaign %d: %v", id, err)
		respondError(w, http.StatusBadGateway, "Error uploading report")
		return
	}
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Report exported", map[string]interface{}{
		"url":  url,
		"rows": len(logs),
	}))
}

// @Summary Search Google Maps for prospects
// @Description Results are returned for review and are not stored.
// @Tags search
// @Accept json
// @Produce json
// @Param request body models.SearchRequest true "Search"
// @Success 200 {array} models.ContactDraft
// @Failure 400 {object} models.APIResponse
// @Failure 502 {object} models.APIResponse
// @Router /search [post]
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Error decoding request: "+err.Error())
		return
	}
	if len(req.Terms) == 0 || len(req.Locations) == 0 {
		respondError(w, http.StatusBadRequest, "terms and locations are required")
		return
	}
	if req.Limit <= 0 {
		req.Limit = models.DefaultSearchLimit
	}

	drafts, err := h.searcher.Search(r.Context(), req)
	if err != nil {
		utils.LogError("Search failed: %v", err)
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	models.RespondWithData(w, http.StatusOK, drafts)
}

// @Summary Import a crawler dataset
// @Description Accepts a JSON array of crawler records, archives it and returns normalized drafts.
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Dataset"
// @Success 200 {object} models.ImportResult
// @Failure 400 {object} models.APIResponse
// @Router /imports [post]
func (h *HTTPHandler) ImportDataset(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxDatasetSize); err != nil {
		respondError(w, http.StatusBadRequest, "File too large. Limit is 20MB")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Error reading file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxDatasetSize))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Error reading file")
		return
	}
	if mtype := mimetype.Detect(data); !mtype.Is("application/json") {
		respondError(w, http.StatusUnsupportedMediaType, fmt.Sprintf("Expected a JSON dataset, got %s", mtype.String()))
		return
	}

	var records []models.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		respondError(w, http.StatusBadRequest, "Dataset must be a JSON array of records: "+err.Error())
		return
	}

	result := models.ImportResult{
		Received: len(records),
		Drafts:   normalizer.Normalize(records),
	}
	if h.store != nil {
		url, err := h.store.UploadBytes(data, services.ObjectKey("datasets", ".json"), "application/json")
		if err != nil {
			utils.LogWarning("Dataset archive failed: %v", err)
		} else {
			result.ArchiveURL = url
		}
	}

	utils.LogInfo("Imported dataset: %d records, %d usable", result.Received, len(result.Drafts))
	models.RespondWithData(w, http.StatusOK, result)
}

// @Summary WhatsApp session state
// @Tags whatsapp
// @Produce json
// @Success 200 {object} models.ConnectionStatus
// @Router /whatsapp/status [get]
func (h *HTTPHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.linker.Status(r.Context())
	if err != nil {
		utils.LogError("Error fetching WhatsApp status: %v", err)
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	models.RespondWithData(w, http.StatusOK, status)
}

// @Summary QR code to link the WhatsApp session
// @Tags whatsapp
// @Produce json
// @Success 200 {object} models.APIResponse
// @Failure 409 {object} models.APIResponse
// @Router /whatsapp/qrcode [get]
func (h *HTTPHandler) GetQRCode(w http.ResponseWriter, r *http.Request) {
	code, err := h.linker.PairingCode(r.Context())
	if errors.Is(err, services.ErrNoPairingCode) {
		respondError(w, http.StatusConflict, "Session already linked or code not ready")
		return
	}
	if err != nil {
		utils.LogError("Error fetching pairing code: %v", err)
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	dataURL, err := services.QRCodeDataURL(code)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("QR code ready", map[string]string{"qrcode": dataURL}))
}
