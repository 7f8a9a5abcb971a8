// Package campaign assembles campaign submissions from the operator's
// draft: a name, a template and a selection of stored contacts.
package campaign

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"prospector/internal/models"
	"prospector/internal/selection"
	"prospector/internal/utils"
)

// Refusals. Build returns one of these when the draft is incomplete; no
// request is sent in that case.
var (
	ErrNameRequired     = errors.New("campaign name is required")
	ErrTemplateRequired = errors.New("campaign template is required")
	ErrInvalidTemplate  = errors.New("campaign template id is not a number")
	ErrNoContacts       = errors.New("campaign needs at least one contact")
)

// ErrSubmissionPending is returned by Submit while a previous submission
// has not finished.
var ErrSubmissionPending = errors.New("campaign submission already in progress")

// Build validates a draft and returns the submission payload. templateID is
// the raw value of the template picker; "" means unset. Contact ids are
// deduplicated and sorted, their order carries no meaning.
func Build(name, templateID string, contactIDs []int) (models.CampaignPayload, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.CampaignPayload{}, ErrNameRequired
	}

	templateID = strings.TrimSpace(templateID)
	if templateID == "" {
		return models.CampaignPayload{}, ErrTemplateRequired
	}
	tid, err := strconv.Atoi(templateID)
	if err != nil {
		return models.CampaignPayload{}, fmt.Errorf("%w: %q", ErrInvalidTemplate, templateID)
	}

	if len(contactIDs) == 0 {
		return models.CampaignPayload{}, ErrNoContacts
	}
	ids := slices.Clone(contactIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	return models.CampaignPayload{
		Name:       name,
		TemplateID: tid,
		ContactIDs: ids,
	}, nil
}

// IsRefusal reports whether err is a draft validation refusal as opposed
// to a backend failure.
func IsRefusal(err error) bool {
	return errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrTemplateRequired) ||
		errors.Is(err, ErrInvalidTemplate) ||
		errors.Is(err, ErrNoContacts)
}

// Submitter delivers a payload to the backend.
type Submitter interface {
	CreateCampaign(ctx context.Context, payload models.CampaignPayload) (*models.Campaign, error)
}

type State int

const (
	Editing State = iota
	Submitting
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	}
	return "unknown"
}

// Assembler owns one campaign draft for the lifetime of an operator
// session. A successful submission clears the draft; a failed one keeps it
// so the operator can retry as is.
type Assembler struct {
	mu         sync.Mutex
	submitter  Submitter
	name       string
	templateID string
	contacts   selection.Set
	state      State
}

// NewAssembler starts an empty draft over the given contact ids.
func NewAssembler(submitter Submitter, contactIDs []int) *Assembler {
	return &Assembler{
		submitter: submitter,
		contacts:  selection.New(contactIDs),
	}
}

func (a *Assembler) SetName(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.name = name
}

func (a *Assembler) SetTemplate(templateID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.templateID = templateID
}

func (a *Assembler) ToggleContact(id int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.contacts = a.contacts.Toggle(id)
}

func (a *Assembler) SelectAllContacts() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.contacts = a.contacts.SelectAll()
}

// ReplaceContacts binds the draft to a reloaded contact list. The previous
// contact selection is dropped.
func (a *Assembler) ReplaceContacts(ids []int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.contacts = a.contacts.Reset(ids)
}

func (a *Assembler) Name() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.name
}

func (a *Assembler) TemplateID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.templateID
}

func (a *Assembler) Contacts() selection.Set {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.contacts
}

func (a *Assembler) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// CanSubmit reports whether the submit action should be enabled.
func (a *Assembler) CanSubmit() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == Submitting {
		return false
	}
	_, err := Build(a.name, a.templateID, a.contacts.IDs())
	return err == nil
}

// Submit builds the payload and sends it. Refusals and ErrSubmissionPending
// are returned without contacting the backend.
func (a *Assembler) Submit(ctx context.Context) (*models.Campaign, error) {
	a.mu.Lock()
	if a.state == Submitting {
		a.mu.Unlock()
		return nil, ErrSubmissionPending
	}
	payload, err := Build(a.name, a.templateID, a.contacts.IDs())
	if err != nil {
		a.mu.Unlock()
		return nil, err
	}
	a.state = Submitting
	a.mu.Unlock()

	created, err := a.submitter.CreateCampaign(ctx, payload)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = Editing
	if err != nil {
		utils.LogError("Error submitting campaign %q: %v", payload.Name, err)
		return nil, err
	}

	a.name = ""
	a.templateID = ""
	a.contacts = a.contacts.Reset(a.contacts.Universe())
	utils.LogInfo("Campaign %q submitted with %d contacts", payload.Name, len(payload.ContactIDs))
	return created, nil
}
