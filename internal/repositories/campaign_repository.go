package repositories

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"prospector/internal/models"
)

var _ models.CampaignRepository = (*SQLCampaignRepository)(nil)

const logViewQuery = `
	SELECT
		l.id, l.status, l.sent_at, l.error_message,
		c.name AS campaign_name,
		ct.name AS contact_name
	FROM campaign_logs l
	JOIN campaigns c ON c.id = l.campaign_id
	JOIN contacts ct ON ct.id = l.contact_id`

type SQLCampaignRepository struct {
	db *sqlx.DB
}

func NewSQLCampaignRepository(db *sqlx.DB) *SQLCampaignRepository {
	return &SQLCampaignRepository{db: db}
}

func (r *SQLCampaignRepository) Create(name string, templateID int, status models.CampaignStatus) (*models.Campaign, error) {
	result, err := r.db.Exec(`INSERT INTO campaigns (name, template_id, status) VALUES (?, ?, ?)`,
		name, templateID, status)
	if err != nil {
		return nil, fmt.Errorf("error saving campaign: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("error getting last insert id: %w", err)
	}
	return r.GetByID(int(id))
}

func (r *SQLCampaignRepository) GetByID(id int) (*models.Campaign, error) {
	campaign := &models.Campaign{}
	err := r.db.Get(campaign, `SELECT id, name, template_id, status, created_at FROM campaigns WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting campaign: %w", err)
	}
	return campaign, nil
}

func (r *SQLCampaignRepository) List() ([]models.Campaign, error) {
	campaigns := []models.Campaign{}
	err := r.db.Select(&campaigns, `SELECT id, name, template_id, status, created_at FROM campaigns ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error querying campaigns: %w", err)
	}
	return campaigns, nil
}

func (r *SQLCampaignRepository) UpdateStatus(id int, status models.CampaignStatus) error {
	result, err := r.db.Exec(`UPDATE campaigns SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("error updating campaign status: %w", err)
	}
	return expectRow(result)
}

func (r *SQLCampaignRepository) AddLog(log models.CampaignLog) error {
	_, err := r.db.Exec(`
		INSERT INTO campaign_logs (campaign_id, contact_id, status, error_message)
		VALUES (?, ?, ?, ?)`,
		log.CampaignID, log.ContactID, log.Status, log.ErrorMessage)
	if err != nil {
		return fmt.Errorf("error saving campaign log: %w", err)
	}
	return nil
}

// ListLogs returns every delivery attempt, newest first.
func (r *SQLCampaignRepository) ListLogs() ([]models.CampaignLogView, error) {
	logs := []models.CampaignLogView{}
	if err := r.db.Select(&logs, logViewQuery+` ORDER BY l.sent_at DESC, l.id DESC`); err != nil {
		return nil, fmt.Errorf("error querying campaign logs: %w", err)
	}
	return logs, nil
}

// LogsByCampaign returns the delivery attempts of one campaign in send
// order.
func (r *SQLCampaignRepository) LogsByCampaign(campaignID int) ([]models.CampaignLogView, error) {
	logs := []models.CampaignLogView{}
	if err := r.db.Select(&logs, logViewQuery+` WHERE l.campaign_id = ? ORDER BY l.id`, campaignID); err != nil {
		return nil, fmt.Errorf("error querying campaign logs: %w", err)
	}
	return logs, nil
}
