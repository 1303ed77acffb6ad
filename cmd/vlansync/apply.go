package main

import (
	"github.com/spf13/cobra"

	"github.com/carlosrabelo/vlansync/internal/config"
	"github.com/carlosrabelo/vlansync/internal/entities"
	"github.com/carlosrabelo/vlansync/internal/services"
	"github.com/carlosrabelo/vlansync/internal/transport"
)

func newApplyCmd(opts *globalOptions) *cobra.Command {
	var (
		vlanFile string
		vlanArgs []string
	)
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Create or rename VLANs on a switch and save the configuration",
		Long: `Apply sends "vlan <id>" and "name <name>" for every VLAN, then saves the
running configuration. VLANs without a name are called VLAN_<id>. The reserved
VLANs 1002-1005 are skipped.

  vlansync apply -t core-sw -f vlans.yaml
  vlansync apply -t core-sw --vlan 10=SALES --vlan 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := collectVLANs(vlanFile, vlanArgs)
			if err != nil {
				return err
			}
			profile, timeout, err := resolveProfile(cmd, opts)
			if err != nil {
				return err
			}
			svc := services.NewVLANService(transport.NewManager(transport.WithTimeout(timeout)))
			result := svc.Apply(profile, records)
			return printResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), result, opts.jsonOutput)
		},
	}
	cmd.Flags().StringVarP(&vlanFile, "file", "f", "", "YAML file with the VLAN set")
	cmd.Flags().StringArrayVar(&vlanArgs, "vlan", nil, "VLAN as ID or ID=NAME (repeatable)")
	return cmd
}

// collectVLANs merges the VLAN file and the --vlan flags, file entries first
func collectVLANs(path string, args []string) ([]entities.VlanRecord, error) {
	var records []entities.VlanRecord
	if path != "" {
		fromFile, err := config.LoadVLANSet(path)
		if err != nil {
			return nil, err
		}
		records = append(records, fromFile...)
	}
	for _, arg := range args {
		r, err := config.ParseVLANArg(arg)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}
