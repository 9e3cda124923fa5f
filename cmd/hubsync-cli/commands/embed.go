package commands

import (
	"fmt"
	"hubsync-backend/internal/contacts"

	"github.com/spf13/cobra"
)

var (
	embedContacts string
	embedPage     string
)

func init() {
	embedCmd.Flags().StringVar(&embedContacts, "contacts", "", "The harvested contacts file, defaults to the configured contacts path.")
	embedCmd.Flags().StringVar(&embedPage, "page", "", "The frontend page to rewrite, defaults to the configured page.")
	rootCmd.AddCommand(embedCmd)
}

var embedCmd = &cobra.Command{
	Use:   "embed [--contacts <path/to/contacts.json>] [--page <path/to/index.html>]",
	Short: "Embeds harvested contacts into the frontend page.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		source := embedContacts
		if source == "" {
			source = cfg.Contacts.Path
		}
		page := embedPage
		if page == "" {
			page = cfg.Contacts.Page
		}

		n, err := contacts.EmbedFile(page, source)
		if err != nil {
			return err
		}
		fmt.Printf("Embedded %d contacts into %s\n", n, page)
		return nil
	},
}
