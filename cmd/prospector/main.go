package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "prospector",
	Short: "Review crawled prospects and run WhatsApp campaigns",
	Long:  "prospector imports Google Maps crawls, keeps a contacted checklist,\nstores contacts and templates on the server and submits campaigns.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&configDir, "config-dir", "", "Configuration directory (default ~/.prospector)")
	f.String("api-url", "", "Server API base URL")

	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(markCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(contactsCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(campaignCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
