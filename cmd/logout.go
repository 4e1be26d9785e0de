package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			if err := rt.sessions.Clear(); err != nil {
				return fmt.Errorf("clearing session: %w", err)
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}
