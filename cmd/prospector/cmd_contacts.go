package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var contactsFlags struct {
	skip  int
	limit int
}

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "List stored contacts",
	RunE:  runContacts,
}

var contactsRmCmd = &cobra.Command{
	Use:   "rm <id>...",
	Short: "Delete stored contacts",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runContactsRm,
}

func init() {
	f := contactsCmd.Flags()
	f.IntVar(&contactsFlags.skip, "skip", 0, "Rows to skip")
	f.IntVar(&contactsFlags.limit, "limit", 100, "Rows to show")
	contactsCmd.AddCommand(contactsRmCmd)
}

func runContacts(cmd *cobra.Command, _ []string) error {
	contacts, err := apiClient().ListContacts(context.Background(), contactsFlags.skip, contactsFlags.limit)
	if err != nil {
		return fmt.Errorf("list contacts: %w", err)
	}

	t := newTable(cmd.OutOrStdout(), "ID", "Name", "Phone", "Category", "Status", "Added")
	for _, c := range contacts {
		t.AppendRow([]interface{}{c.ID, truncate(c.Name, 40), c.Phone, truncate(c.Category, 24), c.Status, ago(c.CreatedAt)})
	}
	t.Render()
	return nil
}

func runContactsRm(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	c := apiClient()
	for _, id := range ids {
		if err := c.DeleteContact(context.Background(), id); err != nil {
			return fmt.Errorf("delete contact %d: %w", id, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted contact %d\n", id)
	}
	return nil
}
