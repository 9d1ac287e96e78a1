package cmd

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/mr-karan/slotdb"
	"github.com/spf13/cobra"
	"github.com/zerodha/logf"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "slotctl",
	Short: "slotctl - client for a slotdb server",
	Long: `slotctl sends insert, update, find and query requests to a slotdb
server over its binary record protocol.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// withClient connects to the server for the duration of fn and closes the
// connection on every path.
func withClient(cmd *cobra.Command, fn func(*slotdb.Client) error) error {
	addr, _ := cmd.Flags().GetString("addr")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	debug, _ := cmd.Flags().GetBool("debug")

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	opts := logf.Opts{EnableCaller: true, Writer: os.Stderr}
	if debug {
		opts.Level = logf.DebugLevel
	}
	return fn(slotdb.NewClient(conn, slotdb.WithClientLogger(logf.New(opts))))
}

func init() {
	rootCmd.PersistentFlags().StringP("addr", "a", "localhost:27015", "Address of the slotdb server")
	rootCmd.PersistentFlags().Duration("timeout", 5*time.Second, "Timeout for connecting to the server")
	rootCmd.PersistentFlags().Bool("json", false, "Print results as JSON")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logs on stderr")
}
