package handlers

import (
	"github.com/gorilla/mux"
)

// Register mounts every route on a /api/v1 subrouter and /health on the root.
func (h *HTTPHandler) Register(root *mux.Router) *mux.Router {
	root.HandleFunc("/health", h.Health).Methods("GET")

	api := root.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/contacts", h.ListContacts).Methods("GET")
	api.HandleFunc("/contacts", h.CreateContacts).Methods("POST")
	api.HandleFunc("/contacts/{id:[0-9]+}", h.DeleteContact).Methods("DELETE")

	api.HandleFunc("/templates", h.ListTemplates).Methods("GET")
	api.HandleFunc("/templates", h.CreateTemplate).Methods("POST")
	api.HandleFunc("/templates/{id:[0-9]+}", h.DeleteTemplate).Methods("DELETE")

	api.HandleFunc("/campaigns", h.ListCampaigns).Methods("GET")
	api.HandleFunc("/campaigns", h.CreateCampaign).Methods("POST")
	api.HandleFunc("/campaigns/logs", h.ListCampaignLogs).Methods("GET")
	api.HandleFunc("/campaigns/{id:[0-9]+}/export", h.ExportCampaign).Methods("POST")

	api.HandleFunc("/search", h.Search).Methods("POST")
	api.HandleFunc("/imports", h.ImportDataset).Methods("POST")

	api.HandleFunc("/whatsapp/status", h.GetStatus).Methods("GET")
	api.HandleFunc("/whatsapp/qrcode", h.GetQRCode).Methods("GET")

	api.HandleFunc("/ws", WebSocketHandler)
	return api
}
