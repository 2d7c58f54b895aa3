package chatapi

// ChatRequest is the payload posted by the storefront UI.
type ChatRequest struct {
	Message string `json:"message"`
}
