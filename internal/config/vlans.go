package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/carlosrabelo/vlansync/internal/entities"
)

// VLANSet is the file format accepted by apply:
//
//	vlans:
//	  - id: 10
//	    name: SALES
type VLANSet struct {
	VLANs []entities.VlanRecord `yaml:"vlans"`
}

// LoadVLANSet reads and validates a VLAN set file
func LoadVLANSet(path string) ([]entities.VlanRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read VLAN file %s: %w", path, err)
	}
	var set VLANSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse VLAN file %s: %w", path, err)
	}
	for i, r := range set.VLANs {
		if err := ValidateVLAN(r.ID, fmt.Sprintf("entry %d of %s", i, path)); err != nil {
			return nil, err
		}
	}
	return set.VLANs, nil
}

// ValidateVLAN checks that id is a VLAN number between 1 and 4094
func ValidateVLAN(id, context string) error {
	id = strings.TrimSpace(id)
	vlanNum, err := strconv.Atoi(id)
	if err != nil {
		return fmt.Errorf("invalid VLAN number in %s: %q must be a number", context, id)
	}
	if vlanNum < 1 || vlanNum > 4094 {
		return fmt.Errorf("invalid VLAN number in %s: %s must be between 1 and 4094", context, id)
	}
	return nil
}

// ParseVLANArg parses a command-line VLAN in the form ID or ID=NAME
func ParseVLANArg(arg string) (entities.VlanRecord, error) {
	id, name, _ := strings.Cut(arg, "=")
	if err := ValidateVLAN(id, "--vlan "+arg); err != nil {
		return entities.VlanRecord{}, err
	}
	return entities.VlanRecord{ID: strings.TrimSpace(id), Name: strings.TrimSpace(name)}, nil
}
