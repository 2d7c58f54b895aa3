package chat

// Result is the uniform outcome of a Send call. Message is meaningful when
// Success is true, Error otherwise.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func success(message string) Result {
	return Result{Success: true, Message: message}
}

func failure(err *Error) Result {
	return Result{Success: false, Error: err.Message}
}
