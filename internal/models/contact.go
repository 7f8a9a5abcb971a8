package models

import "time"

type ContactStatus string

const (
	ContactPending  ContactStatus = "PENDING"
	ContactSent     ContactStatus = "SENT"
	ContactError    ContactStatus = "ERROR"
	ContactArchived ContactStatus = "ARCHIVED"
)

// Contact is a stored prospect. Phone is always the non-empty dispatch form.
type Contact struct {
	ID             int           `json:"id" db:"id"`
	Name           string        `json:"name" db:"name"`
	Phone          string        `json:"phone" db:"phone"`
	Address        string        `json:"address" db:"address"`
	Category       string        `json:"category" db:"category"`
	GoogleMapsLink string        `json:"google_maps_link" db:"google_maps_link"`
	Status         ContactStatus `json:"status" db:"status"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      *time.Time    `json:"updated_at" db:"updated_at"`
}

// ContactDraft is the body of a contact creation, produced by the record
// normalizer or by the search service.
type ContactDraft struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	Category       string `json:"category"`
	GoogleMapsLink string `json:"google_maps_link"`
}

type ContactRepository interface {
	List(skip, limit int) ([]Contact, error)
	GetByID(id int) (*Contact, error)
	GetByIDs(ids []int) ([]Contact, error)
	GetByPhone(phone string) (*Contact, error)
	CreateMany(drafts []ContactDraft) ([]Contact, error)
	UpdateStatus(id int, status ContactStatus) error
	Delete(id int) error
}
