package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"prospector/internal/models"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List message templates",
	RunE:  runTemplates,
}

var templatesAddCmd = &cobra.Command{
	Use:   "add <name> <content>",
	Short: "Create a template; content may use {nome}, {cidade} and {categoria}",
	Args:  cobra.ExactArgs(2),
	RunE:  runTemplatesAdd,
}

var templatesRmCmd = &cobra.Command{
	Use:   "rm <id>...",
	Short: "Delete templates",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTemplatesRm,
}

func init() {
	templatesCmd.AddCommand(templatesAddCmd)
	templatesCmd.AddCommand(templatesRmCmd)
}

func runTemplates(cmd *cobra.Command, _ []string) error {
	templates, err := apiClient().ListTemplates(context.Background())
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}
	t := newTable(cmd.OutOrStdout(), "ID", "Name", "Content", "Created")
	for _, tpl := range templates {
		t.AppendRow([]interface{}{tpl.ID, tpl.Name, truncate(tpl.Content, 60), ago(tpl.CreatedAt)})
	}
	t.Render()
	return nil
}

func runTemplatesAdd(cmd *cobra.Command, args []string) error {
	tpl, err := apiClient().CreateTemplate(context.Background(), models.TemplateDraft{Name: args[0], Content: args[1]})
	if err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created template %d %q\n", tpl.ID, tpl.Name)
	return nil
}

func runTemplatesRm(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	c := apiClient()
	for _, id := range ids {
		if err := c.DeleteTemplate(context.Background(), id); err != nil {
			return fmt.Errorf("delete template %d: %w", id, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted template %d\n", id)
	}
	return nil
}
