package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"prospector/internal/models"
	"prospector/internal/utils"
)

// ErrNotFound is returned when a delete or update matches no row.
var ErrNotFound = errors.New("not found")

var _ models.ContactRepository = (*SQLContactRepository)(nil)

const contactColumns = `
	id, name, phone,
	COALESCE(address, '') AS address,
	COALESCE(category, '') AS category,
	COALESCE(google_maps_link, '') AS google_maps_link,
	status, created_at, updated_at`

type SQLContactRepository struct {
	db *sqlx.DB
}

func NewSQLContactRepository(db *sqlx.DB) *SQLContactRepository {
	return &SQLContactRepository{db: db}
}

func (r *SQLContactRepository) List(skip, limit int) ([]models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts ORDER BY id LIMIT ? OFFSET ?`

	contacts := []models.Contact{}
	if err := r.db.Select(&contacts, query, limit, skip); err != nil {
		return nil, fmt.Errorf("error querying contacts: %w", err)
	}
	return contacts, nil
}

func (r *SQLContactRepository) GetByID(id int) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = ?`

	contact := &models.Contact{}
	err := r.db.Get(contact, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting contact: %w", err)
	}
	return contact, nil
}

func (r *SQLContactRepository) GetByIDs(ids []int) ([]models.Contact, error) {
	contacts := []models.Contact{}
	if len(ids) == 0 {
		return contacts, nil
	}

	query, args, err := sqlx.In(`SELECT `+contactColumns+` FROM contacts WHERE id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("error building contacts query: %w", err)
	}
	if err := r.db.Select(&contacts, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("error querying contacts: %w", err)
	}
	return contacts, nil
}

func (r *SQLContactRepository) GetByPhone(phone string) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE phone = ?`

	contact := &models.Contact{}
	err := r.db.Get(contact, query, phone)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting contact: %w", err)
	}
	return contact, nil
}

// CreateMany stores the drafts whose phone is not known yet and returns
// only the rows it created. Drafts without phone and repeated phones inside
// the batch are skipped too.
func (r *SQLContactRepository) CreateMany(drafts []models.ContactDraft) ([]models.Contact, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	seen := make(map[string]bool, len(drafts))
	var ids []int
	for _, d := range drafts {
		if d.Phone == "" || seen[d.Phone] {
			continue
		}
		seen[d.Phone] = true

		var exists int
		if err := tx.Get(&exists, `SELECT COUNT(*) FROM contacts WHERE phone = ?`, d.Phone); err != nil {
			return nil, fmt.Errorf("error checking contact %s: %w", d.Phone, err)
		}
		if exists > 0 {
			continue
		}

		result, err := tx.Exec(`
			INSERT INTO contacts (name, phone, address, category, google_maps_link, status)
			VALUES (?, ?, ?, ?, ?, ?)`,
			d.Name,
			d.Phone,
			utils.NullString(d.Address),
			utils.NullString(d.Category),
			utils.NullString(d.GoogleMapsLink),
			models.ContactPending,
		)
		if err != nil {
			return nil, fmt.Errorf("error saving contact %s: %w", d.Phone, err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("error getting last insert id: %w", err)
		}
		ids = append(ids, int(id))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing transaction: %w", err)
	}

	utils.LogInfo("Stored %d of %d contacts", len(ids), len(drafts))
	return r.GetByIDs(ids)
}

func (r *SQLContactRepository) UpdateStatus(id int, status models.ContactStatus) error {
	result, err := r.db.Exec(`
		UPDATE contacts
		SET status = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		status, id)
	if err != nil {
		return fmt.Errorf("error updating contact status: %w", err)
	}
	return expectRow(result)
}

func (r *SQLContactRepository) Delete(id int) error {
	result, err := r.db.Exec(`DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting contact: %w", err)
	}
	return expectRow(result)
}

func expectRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
