package services

// AppError is a business-rule failure carrying the HTTP status and machine
// code the API layer should emit.
type AppError struct {
	Code    string
	Status  int
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// NewAppError builds an AppError
func NewAppError(code string, status int, message string) *AppError {
	return &AppError{Code: code, Status: status, Message: message}
}
