// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information injected at link time.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/apisnoop/apisnoop/internal/version.version=..."
var (
	version     = "dev"
	gitRevision = ""
	buildTime   = ""
)

// Info describes the running binary.
type Info struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	GitRevision string `json:"gitRevision"`
	BuildTime   string `json:"buildTime"`
	GoOS        string `json:"goOS"`
	GoArch      string `json:"goArch"`
	GoVersion   string `json:"goVersion"`
}

// Get returns the build information. Values missing from ldflags are taken
// from the module build info when available.
func Get() Info {
	info := Info{
		Name:        "apisnoop",
		Version:     version,
		GitRevision: gitRevision,
		BuildTime:   buildTime,
		GoOS:        runtime.GOOS,
		GoArch:      runtime.GOARCH,
		GoVersion:   runtime.Version(),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitRevision == "" {
					info.GitRevision = s.Value
				}
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = s.Value
				}
			}
		}
	}
	return info
}

func (i Info) String() string {
	return fmt.Sprintf("%s %s (revision %s, built %s, %s %s/%s)",
		i.Name, i.Version, orUnknown(i.GitRevision), orUnknown(i.BuildTime), i.GoVersion, i.GoOS, i.GoArch)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
