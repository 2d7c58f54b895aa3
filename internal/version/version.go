// Package version exposes build metadata injected with -ldflags.
package version

import "fmt"

// Product names the binary family in user agents and CLI output.
const Product = "storefront-chat"

// Build-time variables. Override via -ldflags "-X .../internal/version.Version=v1.0.0".
var (
	Version   = "dev"
	Commit    = "dev"
	BuildDate = "dev"
)

// Info describes build/version metadata.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
}

// Get returns version info, defaulting empty fields to "dev".
func Get() Info {
	return Info{
		Version:   defaultOr(Version, "dev"),
		Commit:    defaultOr(Commit, "dev"),
		BuildDate: defaultOr(BuildDate, "dev"),
	}
}

func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s)", Product, i.Version, i.Commit, i.BuildDate)
}

// UserAgent is sent on outbound requests to the chat endpoint.
func UserAgent() string {
	return Product + "/" + Get().Version
}

func defaultOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
