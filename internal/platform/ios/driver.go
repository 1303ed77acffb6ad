// Package ios holds the Cisco IOS command set and output parsers used to
// manage VLANs.
package ios

import (
	"fmt"

	"github.com/carlosrabelo/vlansync/internal/entities"
)

const (
	// StatusCommand lists the VLAN table in the layout ParseVLANBrief expects
	StatusCommand = "show vlan brief"
	// SaveCommand persists the running configuration
	SaveCommand = "write memory"
	// EnableCommand raises the session to privileged EXEC mode
	EnableCommand = "enable"
	// PagerDisableCommand stops the switch from paginating long output
	PagerDisableCommand = "terminal length 0"
	// ConfigModeEnter enters global configuration mode
	ConfigModeEnter = "configure terminal"
	// ConfigModeExit returns to privileged EXEC mode
	ConfigModeExit = "end"
)

// BuildVLANCommands returns the configuration lines that create or rename
// each VLAN, in input order. Records are trusted as given.
func BuildVLANCommands(records []entities.VlanRecord) []string {
	commands := make([]string, 0, 2*len(records))
	for _, r := range records {
		commands = append(commands,
			fmt.Sprintf("vlan %s", r.ID),
			fmt.Sprintf("name %s", r.Name),
		)
	}
	return commands
}

// ConfigBatch wraps configuration lines with the commands that enter and
// leave configuration mode.
func ConfigBatch(commands []string) []string {
	batch := make([]string, 0, len(commands)+2)
	batch = append(batch, ConfigModeEnter)
	batch = append(batch, commands...)
	return append(batch, ConfigModeExit)
}
