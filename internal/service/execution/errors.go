package execution

import "fmt"

// Error codes of the execution path.
const (
	CodeUnsupportedLanguage = "unsupported_language"
	CodeServiceError        = "execution_service_error"
	CodeNetworkError        = "execution_service_network_error"
	CodeServerError         = "server_error"
)

// Error is a user-visible execution failure. Message is the full text
// returned to clients.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// ErrorCode returns the stable error code.
func (e *Error) ErrorCode() string {
	return e.Code
}

func unsupportedLanguage(name string) *Error {
	return &Error{Code: CodeUnsupportedLanguage, Message: fmt.Sprintf("Unsupported language: %s", name)}
}

func serviceError(msg string) *Error {
	return &Error{Code: CodeServiceError, Message: fmt.Sprintf("Execution service error: %s", msg)}
}

func networkError(msg string) *Error {
	return &Error{Code: CodeNetworkError, Message: fmt.Sprintf("Execution service network error: %s", msg)}
}

func serverError(msg string) *Error {
	return &Error{Code: CodeServerError, Message: fmt.Sprintf("Server error: %s", msg)}
}
