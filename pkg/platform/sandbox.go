// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"os"
	"sync"
)

// Sandbox kinds recognized by DetectSandbox.
const (
	SandboxNone    SandboxType = ""
	SandboxFlatpak SandboxType = "flatpak"
	SandboxSnap    SandboxType = "snap"
)

// flatpakInfoPath exists inside every Flatpak sandbox.
const flatpakInfoPath = "/.flatpak-info"

// SandboxType names the application sandbox the process runs in, if any.
type SandboxType string

// hostSpawn maps a sandbox to the argv prefix that escapes it.
var hostSpawn = map[SandboxType][]string{
	SandboxFlatpak: {"flatpak-spawn", "--host"},
	SandboxSnap:    {"snap", "run", "--shell"},
}

// detected is computed once; detectSandboxFrom must not panic because
// sync.OnceValue re-panics on every later call.
var detected = sync.OnceValue(func() SandboxType {
	return detectSandboxFrom(os.Getenv, statFile)
})

// DetectSandbox reports the sandbox of the current process. Flatpak is
// recognized by /.flatpak-info and wins over Snap, which is recognized by
// SNAP_NAME. The result is cached for the life of the process.
func DetectSandbox() SandboxType {
	return detected()
}

// SpawnCommandFor returns the program that launches commands on the host
// from inside st, or "" when st needs none.
func SpawnCommandFor(st SandboxType) string {
	if prefix, ok := hostSpawn[st]; ok {
		return prefix[0]
	}
	return ""
}

func detectSandboxFrom(lookupEnv func(string) string, statFile func(string) error) SandboxType {
	if statFile(flatpakInfoPath) == nil {
		return SandboxFlatpak
	}
	if lookupEnv("SNAP_NAME") != "" {
		return SandboxSnap
	}
	return SandboxNone
}

// HostCommand rewrites path and args so they run on the host when st is a
// sandbox. Outside a sandbox the inputs are returned unchanged. The argv is
// passed verbatim either way; no shell is involved.
func HostCommand(st SandboxType, path string, args []string) (string, []string) {
	prefix, ok := hostSpawn[st]
	if !ok {
		return path, args
	}
	wrapped := make([]string, 0, len(prefix)+len(args))
	wrapped = append(wrapped, prefix[1:]...)
	wrapped = append(wrapped, path)
	wrapped = append(wrapped, args...)
	return prefix[0], wrapped
}

func statFile(path string) error {
	_, err := os.Stat(path)
	return err
}
