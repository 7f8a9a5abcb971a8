package operator

import (
	"context"

	"prospector/internal/models"
	"prospector/internal/selection"
)

// Searcher runs a remote prospect search.
type Searcher interface {
	Search(ctx context.Context, req models.SearchRequest) ([]models.ContactDraft, error)
}

// SearchSession holds the results of the last search for review.
type SearchSession struct {
	searcher Searcher
	creator  ContactCreator
	results  []models.ContactDraft
	selected selection.Set
}

func NewSearchSession(searcher Searcher, creator ContactCreator) *SearchSession {
	return &SearchSession{
		searcher: searcher,
		creator:  creator,
		selected: selection.Indexed(0),
	}
}

// Run replaces the results and clears the selection. On failure the previous
// results stay.
func (s *SearchSession) Run(ctx context.Context, req models.SearchRequest) error {
	if req.Limit <= 0 {
		req.Limit = models.DefaultSearchLimit
	}
	results, err := s.searcher.Search(ctx, req)
	if err != nil {
		return err
	}
	s.results = results
	s.selected = selection.Indexed(len(results))
	return nil
}

func (s *SearchSession) Results() []models.ContactDraft { return s.results }

func (s *SearchSession) Selection() selection.Set { return s.selected }

func (s *SearchSession) Toggle(index int) {
	s.selected = s.selected.Toggle(index)
}

func (s *SearchSession) SelectAll() {
	s.selected = s.selected.SelectAll()
}

func (s *SearchSession) ImportSelected(ctx context.Context) ([]models.Contact, error) {
	if s.selected.Empty() {
		return nil, ErrNothingSelected
	}
	created, err := s.creator.CreateContacts(ctx, selection.Filter(s.selected, s.results))
	if err != nil {
		return nil, err
	}
	s.selected = s.selected.Reset(s.selected.Universe())
	return created, nil
}
