package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Erkan3034/yurtgate/client"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the persisted session",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newSessionEnv()
		if err != nil {
			return err
		}
		client.SignOut(env.store)
		fmt.Println("Signed out.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
