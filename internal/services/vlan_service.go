// Package services implements the Fetch and Apply workflows on top of a
// device session executor.
package services

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/carlosrabelo/vlansync/internal/entities"
	"github.com/carlosrabelo/vlansync/internal/platform/ios"
	"github.com/carlosrabelo/vlansync/internal/transport"
	"github.com/carlosrabelo/vlansync/internal/util"
)

const (
	MessageFetched = "vlans read successfully"
	MessageApplied = "vlan configuration applied successfully"
)

// Executor runs one switch session. *transport.Manager satisfies it.
type Executor interface {
	Execute(profile entities.ConnectionProfile, req transport.Request) (string, error)
}

// VLANService reads and applies VLAN sets. It keeps no state between calls.
type VLANService struct {
	executor Executor
}

// NewVLANService creates a new instance of the VLAN service
func NewVLANService(executor Executor) *VLANService {
	return &VLANService{executor: executor}
}

// Fetch reads the VLAN table of the switch described by profile
func (s *VLANService) Fetch(profile entities.ConnectionProfile) entities.SyncResult {
	log := util.WithOperation("fetch").WithField("device", profile.Host)

	log.WithField("phase", "validating").Debug("Validating connection data")
	if !profile.HasCredentials() {
		return failed(log, ErrMissingConnectionData, "")
	}

	log.WithField("phase", "connecting").Debugf("Reading VLANs from %s", profile.Address())
	transcript, err := s.executor.Execute(profile, transport.Request{Read: ios.StatusCommand})
	if err != nil {
		return failed(log, err, transcript)
	}

	vlans := ios.ParseVLANBrief(transcript)
	log.WithField("phase", "done").Infof("Read %d VLANs", len(vlans))
	return entities.SyncResult{
		Success:   true,
		Message:   MessageFetched,
		VLANs:     vlans,
		RawOutput: transcript,
	}
}

// Apply creates or renames the given VLANs on the switch and saves the
// configuration. A failed save is reported in RawOutput only.
func (s *VLANService) Apply(profile entities.ConnectionProfile, records []entities.VlanRecord) entities.SyncResult {
	log := util.WithOperation("apply").WithField("device", profile.Host)

	log.WithField("phase", "validating").Debugf("Validating %d candidate VLANs", len(records))
	if !profile.HasCredentials() {
		return failed(log, ErrMissingConnectionData, "")
	}
	vlans := NormalizeRecords(records)
	if len(vlans) == 0 {
		return failed(log, ErrNoValidVLAN, "")
	}

	log.WithField("phase", "connecting").Debugf("Applying %d VLANs to %s", len(vlans), profile.Address())
	req := transport.Request{Commands: ios.BuildVLANCommands(vlans), Save: true}
	transcript, err := s.executor.Execute(profile, req)
	if err != nil {
		return failed(log, err, transcript)
	}

	log.WithField("phase", "done").Infof("Applied %d VLANs", len(vlans))
	return entities.SyncResult{
		Success:   true,
		Message:   MessageApplied,
		VLANs:     vlans,
		RawOutput: transcript,
	}
}

// NormalizeRecords trims every record, drops those without an ID, names the
// unnamed ones and drops reserved IDs. Input order is kept.
func NormalizeRecords(records []entities.VlanRecord) []entities.VlanRecord {
	out := make([]entities.VlanRecord, 0, len(records))
	for _, r := range records {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			continue
		}
		name := strings.TrimSpace(r.Name)
		if name == "" {
			name = entities.DefaultVLANName(id)
		}
		if entities.IsReservedVLAN(id) {
			continue
		}
		out = append(out, entities.VlanRecord{ID: id, Name: name})
	}
	return out
}

func failed(log *logrus.Entry, err error, transcript string) entities.SyncResult {
	kind := errorKind(err)
	message := err.Error()
	if kind != ErrorKindValidation {
		message = transport.Classify(err).Error()
	}
	log.WithFields(logrus.Fields{"phase": "failed", "error_kind": kind}).Warn(message)
	return entities.SyncResult{
		Success:   false,
		Message:   message,
		VLANs:     []entities.VlanRecord{},
		RawOutput: transcript,
		ErrorKind: kind,
	}
}
