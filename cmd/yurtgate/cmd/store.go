package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Erkan3034/yurtgate/client"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage your seller store",
}

var storeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Toggle your store between open and closed",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newSessionEnv()
		if err != nil {
			return err
		}
		env.boot.Run(cmd.Context())
		if !env.store.State().Authenticated() {
			return fmt.Errorf("not signed in; run: yurtgate login")
		}

		open, err := env.client.ToggleStoreStatus(cmd.Context())
		if err != nil {
			return err
		}
		// Pull the flipped flag back into the cached profile.
		if _, err := client.RefreshProfile(cmd.Context(), env.client, env.store); err != nil {
			return err
		}
		if open {
			fmt.Println("Store is now open.")
		} else {
			fmt.Println("Store is now closed.")
		}
		return nil
	},
}

var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether your store is open",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newSessionEnv()
		if err != nil {
			return err
		}
		env.boot.Run(cmd.Context())

		st := env.store.State()
		if !st.Authenticated() {
			return fmt.Errorf("not signed in; run: yurtgate login")
		}
		if st.User.SellerStoreIsOpen == nil {
			return fmt.Errorf("account %s is not a seller", st.User.Email)
		}
		if *st.User.SellerStoreIsOpen {
			fmt.Println("open")
		} else {
			fmt.Println("closed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storeToggleCmd)
	storeCmd.AddCommand(storeStatusCmd)
}
