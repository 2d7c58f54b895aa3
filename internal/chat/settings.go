package chat

import "strings"

// DefaultModelName is used when no model is configured.
const DefaultModelName = "Phi-4"

// Settings holds the chat endpoint configuration. It is populated once at
// startup and only read afterwards.
type Settings struct {
	EndpointURL string
	APIKey      string
	// ModelName is informational; the request body does not carry it.
	ModelName string
}

// DefaultSettings returns settings with only the model name filled in.
func DefaultSettings() Settings {
	return Settings{ModelName: DefaultModelName}
}

// Configured reports whether an endpoint URL is present.
func (s Settings) Configured() bool {
	return strings.TrimSpace(s.EndpointURL) != ""
}

// Redacted returns a copy that is safe to print or log.
func (s Settings) Redacted() Settings {
	if s.APIKey != "" {
		s.APIKey = "****"
	}
	return s
}
