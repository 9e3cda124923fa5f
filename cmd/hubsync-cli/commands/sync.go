package commands

import (
	"fmt"
	"hubsync-backend/internal/config"
	"hubsync-backend/internal/session"
	"hubsync-backend/internal/snapshot"
	"os"

	"github.com/spf13/cobra"
)

var syncOut string

func init() {
	syncCmd.Flags().StringVar(&syncOut, "out", "", "Where to write the snapshot, defaults to the server snapshot path.")
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync [--out <path/to/snapshot.json>]",
	Short: "Logs in, reads every portal page once and writes the snapshot.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withSession(ctx, func(cfg config.Config, sess *session.Session) error {
			err := login(ctx, sess)
			if err != nil {
				return err
			}
			snap, err := sess.FullSync(ctx)
			if err != nil {
				return err
			}
			printSync(os.Stdout, snap)

			path := syncOut
			if path == "" {
				path = cfg.Server.SnapshotPath
			}
			err = snapshot.NewStore(path).Save(snap)
			if err != nil {
				return fmt.Errorf("save snapshot: %w", err)
			}
			fmt.Printf("\nFull data saved to %s\n", path)
			return nil
		})
	},
}
