// vlansync reads and applies VLAN definitions on Cisco IOS switches over
// Telnet or SSH.
//
// Usage:
//
//	vlansync fetch -t <target>                 Show the VLAN table
//	vlansync apply -t <target> -f vlans.yaml   Create or rename VLANs and save
//	vlansync apply --host 10.0.0.1 --vlan 10=SALES --vlan 20
//	vlansync version                           Print build information
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/carlosrabelo/vlansync/internal/util"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// errSyncFailed is returned after a failed SyncResult has been printed
var errSyncFailed = errors.New("sync failed")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errSyncFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	rootCmd := &cobra.Command{
		Use:               "vlansync",
		Short:             "Synchronize VLAN definitions with Cisco IOS switches",
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
		Long: `vlansync reads the VLAN table of a switch or pushes a VLAN set to it.

Switches are described by flags or by entries of vlansync.yaml, looked up in
./, the user config directory and /etc/vlansync/ when --config is not given.

  vlansync fetch -t core-sw
  vlansync apply -t core-sw -f vlans.yaml`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			util.SetLogOutput(cmd.ErrOrStderr())
			if err := util.SetVerbosity(opts.verbosity); err != nil {
				return err
			}
			if opts.logLevel != "" {
				if err := util.SetLogLevel(opts.logLevel); err != nil {
					return fmt.Errorf("invalid --log-level: %w", err)
				}
			}
			if opts.logJSON {
				util.SetJSONFormat()
			}
			return nil
		},
	}

	registerGlobalFlags(rootCmd, opts)

	rootCmd.AddCommand(
		newFetchCmd(opts),
		newApplyCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

func registerGlobalFlags(cmd *cobra.Command, opts *globalOptions) {
	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	flags.StringVarP(&opts.target, "target", "t", "", "switch target (entry in the YAML configuration, or a host)")
	flags.StringVar(&opts.host, "host", "", "switch address, overrides the target's host")
	flags.StringVarP(&opts.username, "username", "u", "", "login username")
	flags.StringVarP(&opts.password, "password", "p", "", "login and enable password (prompted when omitted)")
	flags.StringVar(&opts.port, "port", "", "TCP port (default 23)")
	flags.StringVar(&opts.transport, "transport", "", "remote terminal protocol: telnet or ssh")
	flags.DurationVar(&opts.timeout, "timeout", 0, "dial and per-prompt timeout (default 30s)")
	flags.IntVarP(&opts.verbosity, "verbose", "v", 0, "verbosity level: 0=none, 1=debug logs, 2=raw switch output, 3=debug+raw output")
	flags.BoolVar(&opts.jsonOutput, "json", false, "print the result as JSON")
	flags.BoolVar(&opts.logJSON, "log-json", false, "write logs as JSON")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error), overrides --verbose")
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vlansync %s (built %s)\n", version, buildTime)
		},
	}
}
