// Package buildinfo reports the version stamped into the binary at link time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/aither/internal/buildinfo.Version=1.0.0 \
//	  -X github.com/dmitrijs2005/aither/internal/buildinfo.Date=$(date -u +%F) \
//	  -X github.com/dmitrijs2005/aither/internal/buildinfo.Commit=$(git rev-parse --short HEAD)" ./cmd/cli
package buildinfo

import (
	"fmt"
	"io"
)

var (
	Version = "N/A"
	Date    = "N/A"
	Commit  = "N/A"
)

func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", Version)
	fmt.Fprintf(w, "Build date: %s\n", Date)
	fmt.Fprintf(w, "Build commit: %s\n", Commit)
}
