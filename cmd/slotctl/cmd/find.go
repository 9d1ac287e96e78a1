package cmd

import (
	"github.com/mr-karan/slotdb"
	"github.com/spf13/cobra"
)

// findCmd represents the find command
var findCmd = &cobra.Command{
	Use:   "find <id>",
	Short: "Find a record by identifier",
	Long: `Find a record by its identifier.

Example:
  slotctl find 1 --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		return withClient(cmd, func(client *slotdb.Client) error {
			r, err := client.Find(id)
			if err != nil {
				return requestErr("find", err)
			}
			return printRecord(cmd, r)
		})
	},
}

func init() {
	rootCmd.AddCommand(findCmd)
}
