package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/mr-karan/slotdb"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
)

type recordJSON struct {
	ID        uint16 `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Date      string `json:"date"`
}

func wantJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(pretty.Pretty(b)))
	return nil
}

func printRecord(cmd *cobra.Command, r slotdb.Record) error {
	if wantJSON(cmd) {
		return printJSON(cmd, recordJSON{
			ID:        r.ID,
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Date:      r.Date.String(),
		})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:         %d\n", r.ID)
	fmt.Fprintf(out, "First name: %s\n", r.FirstName)
	fmt.Fprintf(out, "Last name:  %s\n", r.LastName)
	fmt.Fprintf(out, "Date:       %s\n", r.Date)
	return nil
}

func printStatus(cmd *cobra.Command, action string) error {
	if wantJSON(cmd) {
		return printJSON(cmd, map[string]string{"status": slotdb.Success.String(), "action": action})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", action, slotdb.Success)
	return nil
}

// requestErr describes a failed request cycle, telling a server side
// rejection apart from a broken connection.
func requestErr(action string, err error) error {
	code := slotdb.CodeOf(err)
	switch {
	case code.Has(slotdb.SocketError) || code.Has(slotdb.SocketMismatch):
		return fmt.Errorf("%s failed, connection error: %w", action, err)
	case code == slotdb.RequestDenied:
		return fmt.Errorf("%s denied by server", action)
	}
	return fmt.Errorf("%s failed on server: %s", action, code)
}
