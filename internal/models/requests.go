package models

// SearchRequest drives one crawler run: every term is searched in every
// location.
type SearchRequest struct {
	Terms     []string `json:"terms" example:"pizzaria,padaria"`
	Locations []string `json:"locations" example:"Brasília"`
	Limit     int      `json:"limit" example:"50" default:"50"`
}

const DefaultSearchLimit = 50

// ImportResult is returned by the dataset import endpoint.
type ImportResult struct {
	Received   int            `json:"received"`
	Drafts     []ContactDraft `json:"drafts"`
	ArchiveURL string         `json:"archive_url,omitempty"`
}

// ConnectionStatus describes the messaging instance state.
type ConnectionStatus struct {
	State     string `json:"state"`
	Connected bool   `json:"connected"`
}
