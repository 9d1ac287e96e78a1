package cmd

import (
	"github.com/mr-karan/slotdb"
	"github.com/spf13/cobra"
)

func addRecordFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("first", "f", "", "First name (at most 28 characters)")
	cmd.Flags().StringP("last", "l", "", "Last name (at most 28 characters)")
	cmd.Flags().StringP("date", "d", "", "Date as YYYY-MM-DD")
}

// applyRecordFlags overwrites the fields of r with the flags that were set
// on the command line.
func applyRecordFlags(cmd *cobra.Command, r *slotdb.Record) error {
	if cmd.Flags().Changed("first") {
		r.FirstName, _ = cmd.Flags().GetString("first")
	}
	if cmd.Flags().Changed("last") {
		r.LastName, _ = cmd.Flags().GetString("last")
	}
	if cmd.Flags().Changed("date") {
		s, _ := cmd.Flags().GetString("date")
		d, err := slotdb.ParseDate(s)
		if err != nil {
			return err
		}
		r.Date = d
	}
	return r.Validate()
}
