package cmd

import (
	"fmt"
	"strconv"

	"github.com/mr-karan/slotdb"
	"github.com/spf13/cobra"
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update fields of an existing record",
	Long: `Update an existing record. The current record is fetched first and
only the fields given as flags are changed.

Example:
  slotctl update 1 --last King`,
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
			if err := applyRecordFlags(cmd, &r); err != nil {
				return err
			}
			if err := client.Update(r); err != nil {
				return requestErr("update", err)
			}
			return printStatus(cmd, "update")
		})
	},
}

func parseID(s string) (uint16, error) {
	id, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return uint16(id), nil
}

func init() {
	rootCmd.AddCommand(updateCmd)
	addRecordFlags(updateCmd)
}
