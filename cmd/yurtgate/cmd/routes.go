package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Erkan3034/yurtgate/guard"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the route table and its access requirements",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PREFIX\tACCESS")
		for _, r := range guard.DefaultTable().Routes() {
			access := "public"
			switch {
			case r.Protected && r.Required != "":
				access = string(r.Required)
			case r.Protected:
				access = "any signed-in user"
			}
			fmt.Fprintf(w, "%s\t%s\n", r.Prefix, access)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(routesCmd)
}
