package version

// Version is the current release of gitlab-simple.
// It must be bumped on every release.
const Version = "1.1.0"

// Name is the binary name printed by --version.
const Name = "gitlab-simple"

// FullVersion returns the version with the v prefix
func FullVersion() string {
	return "v" + Version
}

// String returns the line printed by --version.
func String() string {
	return Name + " " + FullVersion()
}
