package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"prospector/internal/models"
	"prospector/internal/utils"
	"prospector/internal/wsnotify"
)

var ErrCampaignNotFound = errors.New("campaign not found")

// RenderMessage fills the {nome}, {cidade} and {categoria} placeholders.
// Any other braces are left as written.
func RenderMessage(content string, contact models.Contact) string {
	return strings.NewReplacer(
		"{nome}", contact.Name,
		"{cidade}", contact.Address,
		"{categoria}", contact.Category,
	).Replace(content)
}

// CampaignRunner delivers a queued campaign to its contacts one at a time.
type CampaignRunner struct {
	campaigns models.CampaignRepository
	templates models.TemplateRepository
	contacts  models.ContactRepository
	messenger Messenger
	notifier  wsnotify.Notifier
	delay     time.Duration

	wg sync.WaitGroup
}

func NewCampaignRunner(
	campaigns models.CampaignRepository,
	templates models.TemplateRepository,
	contacts models.ContactRepository,
	messenger Messenger,
	notifier wsnotify.Notifier,
	delay time.Duration,
) *CampaignRunner {
	return &CampaignRunner{
		campaigns: campaigns,
		templates: templates,
		contacts:  contacts,
		messenger: messenger,
		notifier:  notifier,
		delay:     delay,
	}
}

// Start runs the campaign in the background.
func (r *CampaignRunner) Start(ctx context.Context, campaignID int, contactIDs []int) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.Run(ctx, campaignID, contactIDs); err != nil {
			utils.LogError("Campaign %d failed: %v", campaignID, err)
		}
	}()
}

// Wait blocks until every started campaign has returned.
func (r *CampaignRunner) Wait() {
	r.wg.Wait()
}

func (r *CampaignRunner) Run(ctx context.Context, campaignID int, contactIDs []int) error {
	campaign, err := r.campaigns.GetByID(campaignID)
	if err != nil {
		return fmt.Errorf("error loading campaign: %w", err)
	}
	if campaign == nil {
		return ErrCampaignNotFound
	}

	sent, failed, err := r.deliver(ctx, campaign, contactIDs)
	if err != nil {
		r.finish(campaign.ID, models.CampaignError, sent, failed, len(contactIDs))
		return err
	}
	r.finish(campaign.ID, models.CampaignCompleted, sent, failed, len(contactIDs))
	utils.LogInfo("Campaign %d completed: %d sent, %d failed", campaign.ID, sent, failed)
	return nil
}

func (r *CampaignRunner) deliver(ctx context.Context, campaign *models.Campaign, contactIDs []int) (sent, failed int, err error) {
	template, err := r.templates.GetByID(campaign.TemplateID)
	if err != nil {
		return 0, 0, fmt.Errorf("error loading template: %w", err)
	}
	if template == nil {
		return 0, 0, fmt.Errorf("template %d not found", campaign.TemplateID)
	}

	contacts, err := r.contacts.GetByIDs(contactIDs)
	if err != nil {
		return 0, 0, fmt.Errorf("error loading contacts: %w", err)
	}

	if err := r.campaigns.UpdateStatus(campaign.ID, models.CampaignRunning); err != nil {
		return 0, 0, fmt.Errorf("error marking campaign running: %w", err)
	}
	r.notifier.CampaignStatus(campaign.ID, string(models.CampaignRunning), 0, 0, len(contacts))

	for i, contact := range contacts {
		if err := ctx.Err(); err != nil {
			return sent, failed, err
		}
		if i > 0 && r.delay > 0 {
			select {
			case <-ctx.Done():
				return sent, failed, ctx.Err()
			case <-time.After(r.delay):
			}
		}

		status := models.ContactSent
		var errMsg *string
		if sendErr := r.messenger.SendText(ctx, contact.Phone, RenderMessage(template.Content, contact)); sendErr != nil {
			status = models.ContactError
			msg := sendErr.Error()
			errMsg = &msg
			failed++
		} else {
			sent++
		}

		if err := r.campaigns.AddLog(models.CampaignLog{
			CampaignID:   campaign.ID,
			ContactID:    contact.ID,
			Status:       status,
			ErrorMessage: errMsg,
		}); err != nil {
			return sent, failed, fmt.Errorf("error writing campaign log: %w", err)
		}
		if err := r.contacts.UpdateStatus(contact.ID, status); err != nil {
			return sent, failed, fmt.Errorf("error updating contact status: %w", err)
		}
		r.notifier.ContactStatus(campaign.ID, contact.ID, string(status), errMsg, time.Now())
	}
	return sent, failed, nil
}

func (r *CampaignRunner) finish(campaignID int, status models.CampaignStatus, sent, failed, total int) {
	if err := r.campaigns.UpdateStatus(campaignID, status); err != nil {
		utils.LogError("Error setting campaign %d to %s: %v", campaignID, status, err)
	}
	r.notifier.CampaignStatus(campaignID, string(status), sent, failed, total)
}
