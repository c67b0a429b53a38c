// Package env provides facts about the host the controller runs on.
package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// AppID scopes the protected machine id to this application.
const AppID = "railroad-crossing"

// MachineID retrieves an ID identifying the machine without exposing
// the raw machine id. Falls back to the hostname when the machine id
// is not available, e.g. in minimal containers.
func MachineID() string {
	id, err := machineid.ProtectedID(AppID)
	if err == nil {
		return id[:12]
	}
	glog.Warningf("machine id unavailable: %v", err)
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "unknown"
}
