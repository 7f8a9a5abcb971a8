package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"prospector/internal/models"
)

// ErrTemplateInUse is returned when a campaign still references the template.
var ErrTemplateInUse = errors.New("template in use")

var _ models.TemplateRepository = (*SQLTemplateRepository)(nil)

type SQLTemplateRepository struct {
	db *sqlx.DB
}

func NewSQLTemplateRepository(db *sqlx.DB) *SQLTemplateRepository {
	return &SQLTemplateRepository{db: db}
}

func (r *SQLTemplateRepository) List() ([]models.Template, error) {
	templates := []models.Template{}
	err := r.db.Select(&templates, `SELECT id, name, content, created_at FROM templates ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error querying templates: %w", err)
	}
	return templates, nil
}

func (r *SQLTemplateRepository) GetByID(id int) (*models.Template, error) {
	template := &models.Template{}
	err := r.db.Get(template, `SELECT id, name, content, created_at FROM templates WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting template: %w", err)
	}
	return template, nil
}

func (r *SQLTemplateRepository) Create(draft models.TemplateDraft) (*models.Template, error) {
	result, err := r.db.Exec(`INSERT INTO templates (name, content) VALUES (?, ?)`, draft.Name, draft.Content)
	if err != nil {
		return nil, fmt.Errorf("error saving template: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("error getting last insert id: %w", err)
	}
	return r.GetByID(int(id))
}

func (r *SQLTemplateRepository) Delete(id int) error {
	var refs int
	if err := r.db.Get(&refs, `SELECT COUNT(*) FROM campaigns WHERE template_id = ?`, id); err != nil {
		return fmt.Errorf("error checking template usage: %w", err)
	}
	if refs > 0 {
		return ErrTemplateInUse
	}

	result, err := r.db.Exec(`DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting template: %w", err)
	}
	return expectRow(result)
}
