package commands

import (
	"hubsync-backend/internal/components/telemetry"
	"hubsync-backend/pkg/hubclient"
	"os"

	"github.com/spf13/cobra"
)

var serverURL string

func init() {
	remoteCmd.PersistentFlags().StringVar(&serverURL, "server", "http://127.0.0.1:3002", "The base url of a running hubsync server.")
	remoteCmd.AddCommand(remoteSyncCmd, remoteCachedCmd, remoteRegistrationsCmd)
	rootCmd.AddCommand(remoteCmd)
}

func remoteClient() *hubclient.Client {
	return hubclient.New(hubclient.Options{BaseURL: serverURL}, telemetry.SlogAPI{})
}

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Talks to a running hubsync server instead of driving a browser.",
}

var remoteSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Runs a full sync on the server.",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := remoteClient().Sync(cmd.Context())
		if err != nil {
			return err
		}
		printSync(os.Stdout, snap)
		return nil
	},
}

var remoteCachedCmd = &cobra.Command{
	Use:   "cached",
	Short: "Prints the server's last saved sync.",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := remoteClient().Cached(cmd.Context())
		if err != nil {
			return err
		}
		printSync(os.Stdout, snap)
		return nil
	},
}

var remoteRegistrationsCmd = &cobra.Command{
	Use:   "registrations",
	Short: "Lists registrations through the server.",
	RunE: func(cmd *cobra.Command, args []string) error {
		regs, err := remoteClient().Registrations(cmd.Context())
		if err != nil {
			return err
		}
		printRegistrations(os.Stdout, regs)
		return nil
	},
}
