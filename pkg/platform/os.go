// SPDX-License-Identifier: MPL-2.0

package platform

import "runtime"

// OS name constants for runtime.GOOS comparisons.
// Centralizes the string literals to avoid scattered magic strings.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// IsWindows reports whether osh is running on Windows.
func IsWindows() bool {
	return runtime.GOOS == Windows
}

// VenvBinDir returns the directory name that holds executables inside a
// Python virtual environment: "Scripts" on Windows, "bin" everywhere else.
func VenvBinDir() string {
	return venvBinDirFor(runtime.GOOS)
}

func venvBinDirFor(goos string) string {
	if goos == Windows {
		return "Scripts"
	}
	return "bin"
}

// DefaultPython returns the interpreter used to create virtual environments.
func DefaultPython() string {
	if IsWindows() {
		return "python"
	}
	return "python3"
}

// ExecutableName appends the platform executable suffix to name.
func ExecutableName(name string) string {
	if IsWindows() {
		return name + ".exe"
	}
	return name
}
