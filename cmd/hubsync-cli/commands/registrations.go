package commands

import (
	"hubsync-backend/internal/config"
	"hubsync-backend/internal/session"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(registrationsCmd)
}

var registrationsCmd = &cobra.Command{
	Use:   "registrations",
	Short: "Lists the meetings you are registered for.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withSession(ctx, func(_ config.Config, sess *session.Session) error {
			err := login(ctx, sess)
			if err != nil {
				return err
			}
			regs, err := sess.Registrations(ctx)
			if err != nil {
				return err
			}
			printRegistrations(os.Stdout, regs)
			printLinks(os.Stdout, regs.ActionLinks, len(regs.ActionLinks))
			return nil
		})
	},
}
