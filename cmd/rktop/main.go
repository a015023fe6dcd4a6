package main

import (
	"github.com/Dicklesworthstone/rktop/internal/cli"
)

// Stamped by release builds, e.g. for a board image:
//
//	GOOS=linux GOARCH=arm64 go build -ldflags "-X main.version=$(git describe --tags) -X main.commit=$(git rev-parse --short HEAD) -X main.date=$(date -u +%F)" ./cmd/rktop
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	cli.Execute()
}
