package version

import "testing"

func TestStrings(t *testing.T) {
	orig := [3]string{Version, Commit, Date}
	t.Cleanup(func() { Version, Commit, Date = orig[0], orig[1], orig[2] })

	Version, Commit, Date = "v1.4.0", "abc1234", "2025-03-01"

	if got, want := Full(), "v1.4.0 (commit abc1234, built 2025-03-01)"; got != want {
		t.Errorf("Full() = %q, want %q", got, want)
	}
	if got := Short(); got != "v1.4.0" {
		t.Errorf("Short() = %q, want v1.4.0", got)
	}
	if got, want := UserAgent("webhook"), "image-resizer-webhook/v1.4.0"; got != want {
		t.Errorf("UserAgent() = %q, want %q", got, want)
	}
}

func TestDefaults(t *testing.T) {
	if Short() != "dev" {
		t.Skip("built with stamped version")
	}
	if got, want := Full(), "dev (commit none, built unknown)"; got != want {
		t.Errorf("Full() = %q, want %q", got, want)
	}
}
