package commands

import (
	"errors"
	"hubsync-backend/internal/config"
	"hubsync-backend/internal/scrapers/hub"
	"hubsync-backend/internal/session"
	"os"

	"github.com/spf13/cobra"
)

var (
	registerURL  string
	registerName string
)

func init() {
	registerCmd.Flags().StringVar(&registerURL, "url", "", "The event page to register for.")
	registerCmd.Flags().StringVar(&registerName, "name", "", "An event name to look up with the event search.")
	registerCmd.MarkFlagsMutuallyExclusive("url", "name")
	registerCmd.MarkFlagsOneRequired("url", "name")
	rootCmd.AddCommand(registerCmd)
}

var registerCmd = &cobra.Command{
	Use:   "register (--url <event url> | --name <event name>)",
	Short: "Registers for an event.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withSession(ctx, func(_ config.Config, sess *session.Session) error {
			err := login(ctx, sess)
			if err != nil {
				return err
			}
			var result hub.RegisterResult
			if registerURL != "" {
				result, err = sess.Register(ctx, registerURL)
			} else {
				result, err = sess.RegisterByName(ctx, registerName)
			}
			if err != nil {
				return err
			}
			printRegisterResult(os.Stdout, result)
			if !result.Success {
				return errors.New("registration was not confirmed")
			}
			return nil
		})
	},
}
