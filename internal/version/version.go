// Package version carries build metadata stamped in with
// -ldflags "-X github.com/Ashivkar123/Image-Resizer/internal/version.Version=...".
package version

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func Full() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}

func Short() string {
	return Version
}

// UserAgent identifies outbound requests made by component.
func UserAgent(component string) string {
	return fmt.Sprintf("image-resizer-%s/%s", component, Version)
}
