package cmd

import (
	"github.com/mr-karan/slotdb"
	"github.com/spf13/cobra"
)

// insertCmd represents the insert command
var insertCmd = &cobra.Command{
	Use:   "insert",
	Short: "Insert a new record",
	Long: `Insert a new record. The server assigns the next free identifier.

Example:
  slotctl insert --first Ada --last Lovelace --date 1815-12-10`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var r slotdb.Record
		if err := applyRecordFlags(cmd, &r); err != nil {
			return err
		}

		return withClient(cmd, func(client *slotdb.Client) error {
			if err := client.Insert(r); err != nil {
				return requestErr("insert", err)
			}
			return printStatus(cmd, "insert")
		})
	},
}

func init() {
	rootCmd.AddCommand(insertCmd)
	addRecordFlags(insertCmd)
	_ = insertCmd.MarkFlagRequired("first")
	_ = insertCmd.MarkFlagRequired("last")
	_ = insertCmd.MarkFlagRequired("date")
}
