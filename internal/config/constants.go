// Package config holds compile-time tunables shared across the
// lexer, compiler, and VM: stack/frame limits and recognized source
// file extensions. No flags, no env var parsing — cmd/aegis owns that.
package config

// Version is the current aegis version, set at build time via
// -ldflags "-X github.com/aegis-lang/aegis/internal/config.Version=...".
var Version = "0.1.0"

const SourceFileExt = ".aegis"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".aegis", ".ae"}

// TrimSourceExt removes any recognized source extension from a
// filename. Returns the original string if no extension matches.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt returns true if path ends with any recognized source
// extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// ManifestFileName is the package manifest file internal/manifest
// looks for in a project's root directory.
const ManifestFileName = "aegis.yaml"

// IsTestMode indicates the program is running in test mode. It
// defaults to false; cmd/aegis has no subcommand that sets it.
var IsTestMode = false

// Stack and frame limits. internal/vm does not read these: its
// operand stack and call-frame slice grow without a limit.
const (
	InitialStackSize = 256
	MaxStackSize      = 1 << 20
	MaxFrames         = 1024
)
