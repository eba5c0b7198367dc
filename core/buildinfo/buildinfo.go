// Package buildinfo carries version metadata injected at link time:
//
//	go build -ldflags "-X 'github.com/m3rciful/intakebot/core/buildinfo.Version=v0.3.0' \
//	  -X 'github.com/m3rciful/intakebot/core/buildinfo.Commit=$(git rev-parse --short HEAD)' \
//	  -X 'github.com/m3rciful/intakebot/core/buildinfo.Date=$(date -u +%FT%TZ)'"
package buildinfo

var (
	// Version is the release tag, "dev" for local builds.
	Version = "dev"
	// Commit is the short VCS revision.
	Commit = "local"
	// Date is the RFC3339 build timestamp.
	Date = ""
)
