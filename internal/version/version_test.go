package version

import "testing"

func restore(t *testing.T) {
	t.Helper()
	origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
	t.Cleanup(func() {
		Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
	})
}

func TestGetDefaults(t *testing.T) {
	restore(t)
	Version, Commit, BuildDate = "", "", ""

	info := Get()
	if info.Version != "dev" || info.Commit != "dev" || info.BuildDate != "dev" {
		t.Fatalf("expected dev defaults, got %+v", info)
	}
	if ua := UserAgent(); ua != "storefront-chat/dev" {
		t.Fatalf("expected dev user agent, got %q", ua)
	}
}

func TestGetUsesOverrides(t *testing.T) {
	restore(t)
	Version, Commit, BuildDate = "v1.2.3", "abc123", "2026-10-01"

	info := Get()
	if info.Version != "v1.2.3" || info.Commit != "abc123" || info.BuildDate != "2026-10-01" {
		t.Fatalf("unexpected overrides: %+v", info)
	}
	if got, want := info.String(), "storefront-chat v1.2.3 (commit: abc123, built: 2026-10-01)"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if ua := UserAgent(); ua != "storefront-chat/v1.2.3" {
		t.Fatalf("expected versioned user agent, got %q", ua)
	}
}
