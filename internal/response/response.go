package response

// Envelope wraps machine-readable command output.
type Envelope[T any] struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Data     T        `json:"data,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func OK[T any](data T, warnings ...string) Envelope[T] {
	return Envelope[T]{Success: true, Data: data, Warnings: warnings}
}

func Failure(err error) ErrorResponse {
	return ErrorResponse{Error: err.Error()}
}
