package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Erkan3034/yurtgate/client"
	"github.com/Erkan3034/yurtgate/users"
)

var registerParams client.RegisterParams

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newSessionEnv()
		if err != nil {
			return err
		}
		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}
		registerParams.Password = password

		profile, err := client.SignUp(cmd.Context(), env.client, env.store, registerParams)
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}
		fmt.Printf("Registered and signed in as %s (%s)\n", profile.Email, profile.Role)
		if profile.Role == users.RoleSeller {
			fmt.Println("Your store is open. Toggle it with: yurtgate store toggle")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringVarP(&registerParams.Email, "email", "e", "", "Account email")
	registerCmd.Flags().StringVar(&registerParams.DormName, "dorm", "", "Dormitory name")
	registerCmd.Flags().StringVar(&registerParams.DormAddress, "dorm-address", "", "Dormitory address")
	registerCmd.Flags().StringVar((*string)(&registerParams.Role), "role", "student", "Account role: student or seller")
	registerCmd.Flags().StringVar(&registerParams.Phone, "phone", "", "Contact phone number")
	registerCmd.Flags().StringVar(&registerParams.IBAN, "iban", "", "Payout IBAN (sellers)")
	registerCmd.MarkFlagRequired("email")
	registerCmd.MarkFlagRequired("dorm")
}
