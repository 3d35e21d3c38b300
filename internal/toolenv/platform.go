// SPDX-License-Identifier: MPL-2.0

package toolenv

import (
	"fmt"
	"runtime"

	"github.com/cish/cish/pkg/platform"
)

const (
	// PlatformPOSIX lays toolchains out as <root>/bin with <root>/lib.
	PlatformPOSIX Platform = iota + 1
	// PlatformWindows lays toolchains out as <root>\Scripts with <root>\Lib
	// and appends .exe to program names.
	PlatformWindows
)

// Platform selects the layout strategy of an Environment. It is fixed when
// the Environment is constructed.
type Platform int

// HostPlatform returns the platform of the running process.
func HostPlatform() Platform {
	return platformFor(runtime.GOOS)
}

func platformFor(goos string) Platform {
	if platform.IsWindows(goos) {
		return PlatformWindows
	}
	return PlatformPOSIX
}

// String returns "posix" or "windows".
func (p Platform) String() string {
	switch p {
	case PlatformPOSIX:
		return "posix"
	case PlatformWindows:
		return "windows"
	default:
		return fmt.Sprintf("Platform(%d)", int(p))
	}
}

// ParsePlatform parses the String form of a Platform.
func ParsePlatform(s string) (Platform, error) {
	switch s {
	case "posix":
		return PlatformPOSIX, nil
	case "windows":
		return PlatformWindows, nil
	default:
		return 0, fmt.Errorf("unknown platform %q (want posix or windows)", s)
	}
}

// listSeparator separates PATH entries.
func (p Platform) listSeparator() string {
	if p == PlatformWindows {
		return ";"
	}
	return ":"
}

func (p Platform) layout() layout {
	if p == PlatformWindows {
		return windowsLayout{}
	}
	return posixLayout{}
}
