package operator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"prospector/internal/markers"
	"prospector/internal/models"
	"prospector/internal/normalizer"
	"prospector/internal/selection"
	"prospector/internal/utils"
)

var (
	ErrNothingSelected  = errors.New("no rows selected")
	ErrNoUsableRecords  = errors.New("no selected row has a phone number")
	ErrIndexOutOfRange  = errors.New("row index out of range")
	ErrImportInProgress = errors.New("an import is already in progress")
)

// ContactCreator persists contact drafts.
type ContactCreator interface {
	CreateContacts(ctx context.Context, drafts []models.ContactDraft) ([]models.Contact, error)
}

// LoadDataset reads a crawler export: a JSON array of records.
func LoadDataset(path string) ([]models.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}
	var records []models.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("error parsing dataset %s: %w", path, err)
	}
	return records, nil
}

// CrawlerSession is the crawler results table: rows, their selection and
// which rows were already contacted by hand.
type CrawlerSession struct {
	records   []models.RawRecord
	selected  selection.Set
	contacted *markers.Store[string]
	creator   ContactCreator
	importing bool
}

func NewCrawlerSession(records []models.RawRecord, kv markers.KeyValueStore, creator ContactCreator) *CrawlerSession {
	return &CrawlerSession{
		records:   records,
		selected:  selection.Indexed(len(records)),
		contacted: markers.Load[string](kv, markers.RecordKey),
		creator:   creator,
	}
}

func (s *CrawlerSession) Records() []models.RawRecord { return s.records }

func (s *CrawlerSession) Selection() selection.Set { return s.selected }

func (s *CrawlerSession) Toggle(index int) {
	s.selected = s.selected.Toggle(index)
}

func (s *CrawlerSession) SelectAll() {
	s.selected = s.selected.SelectAll()
}

// Replace swaps in a new dataset and clears the selection.
func (s *CrawlerSession) Replace(records []models.RawRecord) {
	s.records = records
	s.selected = selection.Indexed(len(records))
}

func (s *CrawlerSession) IsContacted(index int) bool {
	if index < 0 || index >= len(s.records) {
		return false
	}
	return s.contacted.Has(s.records[index].Key())
}

// ToggleContacted flips the manual contacted marker of a row and persists it.
func (s *CrawlerSession) ToggleContacted(index int) (bool, error) {
	if index < 0 || index >= len(s.records) {
		return false, ErrIndexOutOfRange
	}
	return s.contacted.Toggle(s.records[index].Key())
}

// ContactedCount counts the loaded rows carrying a marker. Markers left by
// other datasets in the same store are not counted.
func (s *CrawlerSession) ContactedCount() int {
	n := 0
	for i := range s.records {
		if s.IsContacted(i) {
			n++
		}
	}
	return n
}

// ImportSelected normalizes the selected rows and stores them as contacts.
// The selection is cleared only when the server accepted the batch.
func (s *CrawlerSession) ImportSelected(ctx context.Context) ([]models.Contact, error) {
	if s.importing {
		return nil, ErrImportInProgress
	}
	if s.selected.Empty() {
		return nil, ErrNothingSelected
	}

	drafts := normalizer.Normalize(selection.Filter(s.selected, s.records))
	if len(drafts) == 0 {
		return nil, ErrNoUsableRecords
	}

	s.importing = true
	defer func() { s.importing = false }()

	created, err := s.creator.CreateContacts(ctx, drafts)
	if err != nil {
		utils.LogError("Import of %d rows failed: %v", len(drafts), err)
		return nil, err
	}

	s.selected = s.selected.Reset(s.selected.Universe())
	utils.LogInfo("Imported %d rows, %d new contacts", len(drafts), len(created))
	return created, nil
}
