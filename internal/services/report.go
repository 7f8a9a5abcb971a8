package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"prospector/internal/models"
)

var reportHeader = []string{"log_id", "campaign", "contact", "status", "sent_at", "error"}

// CampaignReportCSV writes one row per delivery attempt.
func CampaignReportCSV(logs []models.CampaignLogView) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(reportHeader); err != nil {
		return nil, fmt.Errorf("error writing report header: %w", err)
	}

	for _, l := range logs {
		errMsg := ""
		if l.ErrorMessage != nil {
			errMsg = *l.ErrorMessage
		}
		row := []string{
			fmt.Sprint(l.ID),
			l.CampaignName,
			l.ContactName,
			l.Status,
			l.SentAt.UTC().Format(time.RFC3339),
			errMsg,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("error writing report row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("error flushing report: %w", err)
	}
	return buf.Bytes(), nil
}
