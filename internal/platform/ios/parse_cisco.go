package ios

import (
	"strings"

	"github.com/carlosrabelo/vlansync/internal/entities"
)

var commandErrHints = []string{
	"invalid input",
	"unknown command",
	"incomplete command",
	"ambiguous command",
	"unrecognized command",
	"invalid command",
	"syntax error",
	"cannot find command",
	"error opening",
}

// ParseVLANBrief extracts VLAN records from `show vlan brief` output.
// Header, separator and continuation rows are skipped because they do not
// start with a digit. Reserved VLANs are dropped and row order is kept.
func ParseVLANBrief(output string) []entities.VlanRecord {
	vlans := make([]entities.VlanRecord, 0)
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isSeparatorLine(trimmed) {
			continue
		}
		if trimmed[0] < '0' || trimmed[0] > '9' {
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) < 2 {
			continue
		}
		id, name := fields[0], fields[1]
		if !isDecimal(id) {
			continue
		}
		if entities.IsReservedVLAN(id) {
			continue
		}
		vlans = append(vlans, entities.VlanRecord{ID: id, Name: name})
	}
	return vlans
}

// IsCommandError reports whether the switch rejected a command
func IsCommandError(output string) bool {
	lower := strings.ToLower(output)
	for _, keyword := range commandErrHints {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

func isSeparatorLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	if len(trimmed) < 3 {
		return false
	}
	for _, ch := range trimmed {
		if ch != '-' && ch != '=' && ch != '+' && ch != '*' {
			return false
		}
	}
	return true
}
