package main

import (
	"github.com/spf13/cobra"

	"github.com/carlosrabelo/vlansync/internal/services"
	"github.com/carlosrabelo/vlansync/internal/transport"
)

func newFetchCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Show the VLAN table of a switch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, timeout, err := resolveProfile(cmd, opts)
			if err != nil {
				return err
			}
			svc := services.NewVLANService(transport.NewManager(transport.WithTimeout(timeout)))
			result := svc.Fetch(profile)
			return printResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), result, opts.jsonOutput)
		},
	}
}
