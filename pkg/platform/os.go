// SPDX-License-Identifier: MPL-2.0

package platform

// OS name constants for runtime.GOOS comparisons.
// Centralizes the string literals to avoid scattered magic strings.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// ExeSuffix is the executable file suffix used on Windows.
const ExeSuffix = ".exe"

// IsWindows reports whether goos names the Windows family.
func IsWindows(goos string) bool {
	return goos == Windows
}
