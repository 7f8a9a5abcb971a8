package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"prospector/internal/normalizer"
	"prospector/internal/operator"
	"prospector/internal/utils"
)

var datasetFlag string

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List crawled records with their contacted flag",
	RunE:  runRecords,
}

var markCmd = &cobra.Command{
	Use:   "mark <index>...",
	Short: "Toggle the contacted flag of crawled records",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMark,
}

var importFlags struct {
	all bool
}

var importCmd = &cobra.Command{
	Use:   "import [index...]",
	Short: "Store selected crawled records as contacts",
	RunE:  runImport,
}

func init() {
	for _, c := range []*cobra.Command{recordsCmd, markCmd, importCmd} {
		c.Flags().StringVar(&datasetFlag, "dataset", "", "Crawler dataset JSON (default from config)")
	}
	importCmd.Flags().BoolVar(&importFlags.all, "all", false, "Import every record")
}

// withCrawler opens the dataset and the marker store for the duration of fn.
func withCrawler(fn func(*operator.CrawlerSession) error) error {
	path := datasetFlag
	if path == "" {
		path = cfg.Dataset
	}
	records, err := operator.LoadDataset(path)
	if err != nil {
		return err
	}

	kv, err := openMarkers()
	if err != nil {
		return fmt.Errorf("open markers: %w", err)
	}
	defer kv.Close()

	return fn(operator.NewCrawlerSession(records, kv, apiClient()))
}

func runRecords(cmd *cobra.Command, _ []string) error {
	return withCrawler(func(s *operator.CrawlerSession) error {
		t := newTable(cmd.OutOrStdout(), "#", "Contacted", "Title", "Phone", "Category", "WhatsApp")
		for i, r := range s.Records() {
			phone := utils.ToDialForm(r.RawPhone())
			if phone == "" {
				phone = "-"
			}
			t.AppendRow([]interface{}{i, check(s.IsContacted(i)), truncate(r.Title, 40), phone, truncate(r.CategoryName, 24), normalizer.RowLinks(r).Dispatch})
		}
		t.AppendFooter([]interface{}{"", s.ContactedCount(), fmt.Sprintf("%d records", len(s.Records()))})
		t.Render()
		return nil
	})
}

func runMark(cmd *cobra.Command, args []string) error {
	indexes, err := parseIDs(args)
	if err != nil {
		return err
	}
	return withCrawler(func(s *operator.CrawlerSession) error {
		out := cmd.OutOrStdout()
		for _, i := range indexes {
			on, err := s.ToggleContacted(i)
			if err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
			fmt.Fprintf(out, "%d %s: contacted=%t\n", i, s.Records()[i].Title, on)
		}
		return nil
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	indexes, err := parseIDs(args)
	if err != nil {
		return err
	}
	return withCrawler(func(s *operator.CrawlerSession) error {
		if importFlags.all {
			s.SelectAll()
		}
		for _, i := range indexes {
			s.Toggle(i)
		}

		created, err := s.ImportSelected(context.Background())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d new contacts stored\n", len(created))
		return nil
	})
}
