package cmd

import (
	"fmt"

	"github.com/mr-karan/slotdb"
	"github.com/spf13/cobra"
)

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Print the number of records in the store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(client *slotdb.Client) error {
			n, err := client.Query()
			if err != nil {
				return requestErr("query", err)
			}
			if wantJSON(cmd) {
				return printJSON(cmd, map[string]uint16{"entries": n})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", n)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
}
