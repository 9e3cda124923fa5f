package commands

import (
	"hubsync-backend/internal/config"
	"hubsync-backend/internal/session"
	"os"

	"github.com/spf13/cobra"
)

var (
	memberQuery  string
	memberRegion string
)

func init() {
	membersCmd.Flags().StringVarP(&memberQuery, "query", "q", "", "Keyword to search the member directory for.")
	membersCmd.Flags().StringVar(&memberRegion, "region", "", "Only keep members whose details mention this region.")
	rootCmd.AddCommand(membersCmd)
}

var membersCmd = &cobra.Command{
	Use:   "members [--query <keyword>] [--region <region>]",
	Short: "Searches the member directory.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withSession(ctx, func(_ config.Config, sess *session.Session) error {
			err := login(ctx, sess)
			if err != nil {
				return err
			}
			members, err := sess.SearchMembers(ctx, memberQuery, memberRegion)
			if err != nil {
				return err
			}
			printMembers(os.Stdout, members)
			return nil
		})
	},
}
