package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"prospector/config"
	"prospector/internal/models"
	"prospector/internal/repositories"
)

type fakeMessenger struct {
	mu   sync.Mutex
	sent map[string]string
	fail map[string]bool
}

func (m *fakeMessenger) SendText(ctx context.Context, phone, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[phone] {
		return errors.New("number not on whatsapp")
	}
	if m.sent == nil {
		m.sent = map[string]string{}
	}
	m.sent[phone] = text
	return nil
}

type recordedEvent struct {
	kind   string
	status string
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *fakeNotifier) ContactStatus(campaignID, contactID int, status string, errMsg *string, sentAt time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{"contact", status})
}

func (n *fakeNotifier) CampaignStatus(campaignID int, status string, sent, failed, total int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{"campaign", status})
}

type runnerFixture struct {
	campaigns models.CampaignRepository
	templates models.TemplateRepository
	contacts  models.ContactRepository
}

func setupRunner(t *testing.T) runnerFixture {
	t.Helper()
	db, err := config.ConnectDatabase(config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "runner.db")})
	if err != nil {
		t.Fatalf("config.ConnectDatabase() failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return runnerFixture{
		campaigns: repositories.NewSQLCampaignRepository(db),
		templates: repositories.NewSQLTemplateRepository(db),
		contacts:  repositories.NewSQLContactRepository(db),
	}
}

func TestRenderMessage(t *testing.T) {
	c := models.Contact{Name: "Padaria", Address: "Rua A", Category: "Bakery"}
	got := RenderMessage("Olá {nome}, vi que vocês são {categoria} em {cidade}. {outro}", c)
	want := "Olá Padaria, vi que vocês são Bakery em Rua A. {outro}"
	if got != want {
		t.Fatalf("wanted: %s\ngot: %s", want, got)
	}
}

func TestCampaignRunner_Run(t *testing.T) {
	f := setupRunner(t)
	contacts, _ := f.contacts.CreateMany([]models.ContactDraft{
		{Name: "Ana", Phone: "111"},
		{Name: "Bia", Phone: "222"},
	})
	tpl, _ := f.templates.Create(models.TemplateDraft{Name: "t", Content: "Oi {nome}"})
	campaign, _ := f.campaigns.Create("promo", tpl.ID, models.CampaignQueued)

	messenger := &fakeMessenger{fail: map[string]bool{"222": true}}
	notifier := &fakeNotifier{}
	runner := NewCampaignRunner(f.campaigns, f.templates, f.contacts, messenger, notifier, 0)

	runner.Start(context.Background(), campaign.ID, []int{contacts[0].ID, contacts[1].ID})
	runner.Wait()

	if diff := cmp.Diff(map[string]string{"111": "Oi Ana"}, messenger.sent); diff != "" {
		t.Errorf("sent messages mismatch (-want +got):\n%s", diff)
	}

	got, _ := f.campaigns.GetByID(campaign.ID)
	if got.Status != models.CampaignCompleted {
		t.Errorf("wanted: %s\ngot: %s", models.CampaignCompleted, got.Status)
	}

	ana, _ := f.contacts.GetByID(contacts[0].ID)
	bia, _ := f.contacts.GetByID(contacts[1].ID)
	if ana.Status != models.ContactSent || bia.Status != models.ContactError {
		t.Errorf("unexpected contact statuses %s, %s", ana.Status, bia.Status)
	}

	logs, _ := f.campaigns.LogsByCampaign(campaign.ID)
	if len(logs) != 2 || logs[1].ErrorMessage == nil {
		t.Fatalf("wanted two logs with the second failed, got %+v", logs)
	}

	wantEvents := []recordedEvent{
		{"campaign", "RUNNING"},
		{"contact", "SENT"},
		{"contact", "ERROR"},
		{"campaign", "COMPLETED"},
	}
	if diff := cmp.Diff(wantEvents, notifier.events, cmp.AllowUnexported(recordedEvent{})); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestCampaignRunner_MissingCampaign(t *testing.T) {
	f := setupRunner(t)
	runner := NewCampaignRunner(f.campaigns, f.templates, f.contacts, &fakeMessenger{}, &fakeNotifier{}, 0)
	if err := runner.Run(context.Background(), 42, nil); !errors.Is(err, ErrCampaignNotFound) {
		t.Fatalf("wanted: %v\ngot: %v", ErrCampaignNotFound, err)
	}
}

func TestCampaignRunner_CancelledMarksError(t *testing.T) {
	f := setupRunner(t)
	contacts, _ := f.contacts.CreateMany([]models.ContactDraft{{Name: "A", Phone: "1"}, {Name: "B", Phone: "2"}})
	tpl, _ := f.templates.Create(models.TemplateDraft{Name: "t", Content: "hi"})
	campaign, _ := f.campaigns.Create("c", tpl.ID, models.CampaignQueued)

	ctx, cancel := context.WithCancel(context.Background())
	messenger := &cancelOnSend{cancel: cancel}
	runner := NewCampaignRunner(f.campaigns, f.templates, f.contacts, messenger, &fakeNotifier{}, time.Hour)

	err := runner.Run(ctx, campaign.ID, []int{contacts[0].ID, contacts[1].ID})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("wanted: %v\ngot: %v", context.Canceled, err)
	}
	got, _ := f.campaigns.GetByID(campaign.ID)
	if got.Status != models.CampaignError {
		t.Fatalf("wanted: %s\ngot: %s", models.CampaignError, got.Status)
	}
	if messenger.calls != 1 {
		t.Fatalf("wanted one send before cancellation, got %d", messenger.calls)
	}
}

func TestCampaignRunner_CancelledWithoutDelay(t *testing.T) {
	f := setupRunner(t)
	contacts, _ := f.contacts.CreateMany([]models.ContactDraft{
		{Name: "A", Phone: "1"}, {Name: "B", Phone: "2"}, {Name: "C", Phone: "3"},
	})
	tpl, _ := f.templates.Create(models.TemplateDraft{Name: "t", Content: "hi"})
	campaign, _ := f.campaigns.Create("c", tpl.ID, models.CampaignQueued)

	ctx, cancel := context.WithCancel(context.Background())
	messenger := &cancelOnSend{cancel: cancel}
	runner := NewCampaignRunner(f.campaigns, f.templates, f.contacts, messenger, &fakeNotifier{}, 0)

	err := runner.Run(ctx, campaign.ID, []int{contacts[0].ID, contacts[1].ID, contacts[2].ID})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("wanted: %v\ngot: %v", context.Canceled, err)
	}
	if messenger.calls != 1 {
		t.Fatalf("wanted one send before cancellation, got %d", messenger.calls)
	}

	logs, _ := f.campaigns.LogsByCampaign(campaign.ID)
	if len(logs) != 1 || logs[0].Status != string(models.ContactSent) {
		t.Fatalf("wanted a single SENT log, got %+v", logs)
	}
	got, _ := f.campaigns.GetByID(campaign.ID)
	if got.Status != models.CampaignError {
		t.Fatalf("wanted: %s\ngot: %s", models.CampaignError, got.Status)
	}
}

type cancelOnSend struct {
	cancel context.CancelFunc
	calls  int
}

func (m *cancelOnSend) SendText(ctx context.Context, phone, text string) error {
	m.calls++
	m.cancel()
	return nil
}
