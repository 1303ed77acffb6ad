package entities

// SyncResult is the outcome of a single Fetch or Apply call
type SyncResult struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message"`
	VLANs     []VlanRecord `json:"vlans"`
	RawOutput string       `json:"raw_output,omitempty"`
	ErrorKind string       `json:"error_kind,omitempty"`
}
