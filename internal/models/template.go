package models

import "time"

// Template is a message body with {nome}, {cidade} and {categoria}
// placeholders, resolved per contact when a campaign runs.
type Template struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type TemplateDraft struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type TemplateRepository interface {
	List() ([]Template, error)
	GetByID(id int) (*Template, error)
	Create(draft TemplateDraft) (*Template, error)
	Delete(id int) error
}
