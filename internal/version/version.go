package version

import (
	"crypto/sha256"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
)

// Version information for qshuf
const (
	// Name is the program name used in diagnostics and version output
	Name = "qshuf"

	// Version is the current semantic version of qshuf
	Version = "0.1.0"
)

// Set during build time (use -ldflags "-X ...")
var (
	BuildDate = "development"
	GitCommit = "unknown"
)

// FullInfo returns detailed version information
func FullInfo() string {
	return Name + " " + Version + " (commit: " + GitCommit + ", built: " + BuildDate + ")"
}

// Text returns the block printed by --version.
func Text() string {
	var b strings.Builder
	b.WriteString(Name + " " + Version + "\n")
	b.WriteString("Copyright (c) 2025 Davide Caroselli\n")
	b.WriteString("License MIT: <https://opensource.org/license/MIT>\n")
	b.WriteString("This is free software: you are free to change and redistribute it.\n")
	b.WriteString("There is NO WARRANTY, to the extent permitted by law.\n")
	b.WriteString("\n")
	b.WriteString("Written by Davide Caroselli.\n")
	return b.String()
}

var (
	buildID     string
	buildIDOnce sync.Once
)

// BuildID returns a fingerprint of the current binary build.
// It hashes Go version, module path/version, and VCS build settings,
// and is written to the debug log so traces can be matched to a binary.
func BuildID() string {
	buildIDOnce.Do(func() {
		buildID = computeBuildID()
	})
	return buildID
}

func computeBuildID() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Version + "-" + GitCommit
	}

	h := sha256.New()
	h.Write([]byte(info.GoVersion))
	h.Write([]byte(info.Main.Path))
	h.Write([]byte(info.Main.Version))

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision", "vcs.modified", "vcs.time":
			h.Write([]byte(s.Key))
			h.Write([]byte(s.Value))
		}
	}

	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}
