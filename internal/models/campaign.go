package models

import "time"

type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "DRAFT"
	CampaignQueued    CampaignStatus = "QUEUED"
	CampaignRunning   CampaignStatus = "RUNNING"
	CampaignCompleted CampaignStatus = "COMPLETED"
	CampaignError     CampaignStatus = "ERROR"
)

type Campaign struct {
	ID         int            `json:"id" db:"id"`
	Name       string         `json:"name" db:"name"`
	TemplateID int            `json:"template_id" db:"template_id"`
	Status     CampaignStatus `json:"status" db:"status"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

// CampaignPayload is the submission body of POST /campaigns.
type CampaignPayload struct {
	Name       string `json:"name"`
	TemplateID int    `json:"template_id"`
	ContactIDs []int  `json:"contact_ids"`
}

type CampaignLog struct {
	ID           int           `json:"id" db:"id"`
	CampaignID   int           `json:"campaign_id" db:"campaign_id"`
	ContactID    int           `json:"contact_id" db:"contact_id"`
	Status       ContactStatus `json:"status" db:"status"`
	ErrorMessage *string       `json:"error_message" db:"error_message"`
	SentAt       time.Time     `json:"sent_at" db:"sent_at"`
}

// CampaignLogView is a log row joined with campaign and contact names.
type CampaignLogView struct {
	ID           int       `json:"id" db:"id"`
	Status       string    `json:"status" db:"status"`
	SentAt       time.Time `json:"sent_at" db:"sent_at"`
	ErrorMessage *string   `json:"error_message" db:"error_message"`
	CampaignName string    `json:"campaign_name" db:"campaign_name"`
	ContactName  string    `json:"contact_name" db:"contact_name"`
}

type CampaignRepository interface {
	Create(name string, templateID int, status CampaignStatus) (*Campaign, error)
	GetByID(id int) (*Campaign, error)
	List() ([]Campaign, error)
	UpdateStatus(id int, status CampaignStatus) error
	AddLog(log CampaignLog) error
	ListLogs() ([]CampaignLogView, error)
	LogsByCampaign(campaignID int) ([]CampaignLogView, error)
}
