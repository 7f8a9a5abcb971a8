package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"prospector/internal/campaign"
	"prospector/internal/models"
)

var campaignFlags struct {
	name     string
	template string
	contacts []string
	all      bool
	pending  bool
	limit    int
}

var campaignCmd = &cobra.Command{
	Use:   "campaign",
	Short: "Assemble and submit a campaign",
	RunE:  runCampaign,
}

var campaignListCmd = &cobra.Command{
	Use:   "list",
	Short: "List campaigns",
	RunE:  runCampaignList,
}

var campaignLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show delivery logs, newest first",
	RunE:  runCampaignLogs,
}

func init() {
	f := campaignCmd.Flags()
	f.StringVarP(&campaignFlags.name, "name", "n", "", "Campaign name")
	f.StringVarP(&campaignFlags.template, "template", "t", "", "Template id")
	f.StringSliceVarP(&campaignFlags.contacts, "contact", "c", nil, "Contact ids")
	f.BoolVar(&campaignFlags.all, "all", false, "Target every listed contact")
	f.BoolVar(&campaignFlags.pending, "pending", false, "Target every PENDING contact")
	f.IntVar(&campaignFlags.limit, "limit", 1000, "Contacts to consider")

	campaignCmd.AddCommand(campaignListCmd)
	campaignCmd.AddCommand(campaignLogsCmd)
}

func runCampaign(cmd *cobra.Command, _ []string) error {
	picks, err := parseIDs(campaignFlags.contacts)
	if err != nil {
		return err
	}

	c := apiClient()
	var (
		templates []models.Template
		contacts  []models.Contact
	)
	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		var err error
		templates, err = c.ListTemplates(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		contacts, err = c.ListContacts(ctx, 0, campaignFlags.limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("loading templates and contacts: %w", err)
	}

	ids := make([]int, len(contacts))
	for i, contact := range contacts {
		ids[i] = contact.ID
	}

	a := campaign.NewAssembler(c, ids)
	a.SetName(campaignFlags.name)
	a.SetTemplate(campaignFlags.template)
	switch {
	case campaignFlags.all:
		a.SelectAllContacts()
	case campaignFlags.pending:
		for _, contact := range contacts {
			if contact.Status == models.ContactPending {
				a.ToggleContact(contact.ID)
			}
		}
	}
	for _, id := range picks {
		a.ToggleContact(id)
	}

	out := cmd.OutOrStdout()
	if tpl := findTemplate(templates, campaignFlags.template); tpl != nil {
		fmt.Fprintf(out, "Template %d %q: %s\n", tpl.ID, tpl.Name, truncate(tpl.Content, 60))
	}
	fmt.Fprintf(out, "Contacts selected: %d of %d\n", a.Contacts().Len(), a.Contacts().Size())

	created, err := a.Submit(context.Background())
	if err != nil {
		if campaign.IsRefusal(err) {
			return fmt.Errorf("campaign not ready: %w", err)
		}
		return fmt.Errorf("submit campaign: %w", err)
	}
	fmt.Fprintf(out, "Campaign %d %q is %s\n", created.ID, created.Name, created.Status)
	return nil
}

func findTemplate(templates []models.Template, id string) *models.Template {
	tid, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil {
		return nil
	}
	for i := range templates {
		if templates[i].ID == tid {
			return &templates[i]
		}
	}
	return nil
}

func runCampaignList(cmd *cobra.Command, _ []string) error {
	campaigns, err := apiClient().ListCampaigns(context.Background())
	if err != nil {
		return fmt.Errorf("list campaigns: %w", err)
	}
	t := newTable(cmd.OutOrStdout(), "ID", "Name", "Template", "Status", "Created")
	for _, c := range campaigns {
		t.AppendRow([]interface{}{c.ID, c.Name, c.TemplateID, c.Status, ago(c.CreatedAt)})
	}
	t.Render()
	return nil
}

func runCampaignLogs(cmd *cobra.Command, _ []string) error {
	logs, err := apiClient().ListCampaignLogs(context.Background())
	if err != nil {
		return fmt.Errorf("list logs: %w", err)
	}
	t := newTable(cmd.OutOrStdout(), "ID", "Campaign", "Contact", "Status", "Sent", "Error")
	for _, l := range logs {
		errMsg := ""
		if l.ErrorMessage != nil {
			errMsg = truncate(*l.ErrorMessage, 40)
		}
		t.AppendRow([]interface{}{l.ID, l.CampaignName, l.ContactName, l.Status, ago(l.SentAt), errMsg})
	}
	t.Render()
	return nil
}
