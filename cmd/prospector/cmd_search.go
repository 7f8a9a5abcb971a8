package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"prospector/internal/models"
	"prospector/internal/operator"
)

var searchFlags struct {
	terms     []string
	locations []string
	limit     int
	pick      []string
	all       bool
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search Google Maps through the server and optionally store results",
	RunE:  runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.StringSliceVarP(&searchFlags.terms, "term", "t", nil, "Search term, repeatable (required)")
	f.StringSliceVarP(&searchFlags.locations, "location", "l", nil, "Location, repeatable (required)")
	f.IntVar(&searchFlags.limit, "limit", models.DefaultSearchLimit, "Maximum places per query")
	f.StringSliceVar(&searchFlags.pick, "import", nil, "Result indexes to store as contacts")
	f.BoolVar(&searchFlags.all, "import-all", false, "Store every result as a contact")

	_ = searchCmd.MarkFlagRequired("term")
	_ = searchCmd.MarkFlagRequired("location")
}

func runSearch(cmd *cobra.Command, _ []string) error {
	picks, err := parseIDs(searchFlags.pick)
	if err != nil {
		return err
	}

	c := apiClient()
	s := operator.NewSearchSession(c, c)
	ctx := context.Background()
	err = s.Run(ctx, models.SearchRequest{
		Terms:     searchFlags.terms,
		Locations: searchFlags.locations,
		Limit:     searchFlags.limit,
	})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	t := newTable(cmd.OutOrStdout(), "#", "Name", "Phone", "Category", "Address")
	for i, d := range s.Results() {
		t.AppendRow([]interface{}{i, truncate(d.Name, 40), d.Phone, truncate(d.Category, 24), truncate(d.Address, 48)})
	}
	t.Render()

	if searchFlags.all {
		s.SelectAll()
	}
	for _, i := range picks {
		s.Toggle(i)
	}
	if s.Selection().Empty() {
		return nil
	}

	created, err := s.ImportSelected(ctx)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d new contacts stored\n", len(created))
	return nil
}
