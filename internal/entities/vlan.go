package entities

// VlanRecord is a single VLAN as configured on, or read from, a switch
type VlanRecord struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// reservedVLANs are the legacy token-ring/FDDI VLANs that IOS never lets users manage
var reservedVLANs = map[string]struct{}{
	"1002": {},
	"1003": {},
	"1004": {},
	"1005": {},
}

// IsReservedVLAN reports whether id is one of the reserved VLAN IDs 1002-1005
func IsReservedVLAN(id string) bool {
	_, reserved := reservedVLANs[id]
	return reserved
}

// DefaultVLANName returns the name given to a VLAN submitted without one
func DefaultVLANName(id string) string {
	return "VLAN_" + id
}
