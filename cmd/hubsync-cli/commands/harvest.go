package commands

import (
	"fmt"
	"hubsync-backend/internal/components/chrono"
	"hubsync-backend/internal/components/telemetry"
	"hubsync-backend/internal/config"
	"hubsync-backend/internal/contacts"
	"hubsync-backend/internal/scrapers/hub"
	"hubsync-backend/internal/session"
	"os"

	"github.com/spf13/cobra"
)

var (
	harvestOut         string
	harvestProfessions []string
)

func init() {
	harvestCmd.Flags().StringVar(&harvestOut, "out", "", "Where to write the contacts, defaults to the configured contacts path.")
	harvestCmd.Flags().StringSliceVar(&harvestProfessions, "profession", hub.Professions, "Professions to search the directory for.")
	rootCmd.AddCommand(harvestCmd)
}

var harvestCmd = &cobra.Command{
	Use:   "harvest [--out <path/to/contacts.json>] [--profession <name>...]",
	Short: "Collects unique contacts from the member directory, one profession at a time.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withSession(ctx, func(cfg config.Config, sess *session.Session) error {
			err := login(ctx, sess)
			if err != nil {
				return err
			}
			list, err := contacts.Harvest(ctx, sess, harvestProfessions, chrono.StandardImpl{}, telemetry.SlogAPI{})
			if err != nil {
				return err
			}

			path := harvestOut
			if path == "" {
				path = cfg.Contacts.Path
			}
			err = contacts.WriteJSON(path, list)
			if err != nil {
				return fmt.Errorf("write contacts: %w", err)
			}
			printContacts(os.Stdout, list)
			fmt.Printf("\nHarvested %d unique contacts to %s\n", len(list), path)
			return nil
		})
	},
}
