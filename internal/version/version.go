// internal/version/version.go
package version

// Version and Commit are set with -ldflags "-X foldrun/internal/version.Version=...".
var (
	Version = "0.1.0-dev"
	Commit  = ""
)

// String is the version with the commit appended when known.
func String() string {
	if Commit == "" {
		return Version
	}
	return Version + " (" + Commit + ")"
}
