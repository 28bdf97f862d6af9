package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var whoamiJSON bool

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
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

		if whoamiJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(st.User)
		}

		fmt.Printf("Email: %s\n", st.User.Email)
		fmt.Printf("Role:  %s\n", st.User.Role)
		fmt.Printf("Dorm:  %d\n", st.User.DormID)
		if st.User.SellerStoreIsOpen != nil {
			status := "closed"
			if *st.User.SellerStoreIsOpen {
				status = "open"
			}
			fmt.Printf("Store: %s\n", status)
		}
		if st.User.AdminEquivalent() {
			fmt.Println("Admin: yes")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
	whoamiCmd.Flags().BoolVar(&whoamiJSON, "json", false, "Print the full profile as JSON")
}
