// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride pins ConfigDir for tests; os.UserConfigDir ignores HOME
// on some platforms.
var configDirOverride string

// Reset drops any override set with SetConfigDirOverride.
func Reset() {
	configDirOverride = ""
}

// SetConfigDirOverride makes ConfigDir return dir, ahead of $CISH_CONFIG_DIR
// and the platform default.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}
