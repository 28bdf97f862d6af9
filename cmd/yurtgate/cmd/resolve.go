package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Erkan3034/yurtgate/guard"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve PATH",
	Short: "Show the access decision for a path with the current session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newSessionEnv()
		if err != nil {
			return err
		}
		env.boot.Run(cmd.Context())

		g, err := guard.New()
		if err != nil {
			return err
		}
		d := guard.DefaultTable().Decide(g, env.store.State(), args[0])
		switch d.Outcome {
		case guard.Redirect:
			fmt.Printf("redirect -> %s\n", d.Target)
		default:
			fmt.Println(d.Outcome)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
