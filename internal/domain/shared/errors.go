package shared

// DomainError is an error carrying a stable machine-readable code.
// Callers distinguish failures by code; the message is for humans.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("VALIDATION_ERROR", "Invalid input provided")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrConsistencyConflict = NewDomainError("CONSISTENCY_CONFLICT", "Resource was modified by another process")
	ErrPolicyConfiguration = NewDomainError("POLICY_CONFIGURATION", "Pricing policy configuration is invalid")
	ErrImmutableVersion    = NewDomainError("IMMUTABLE_VERSION", "Order versions cannot be modified once persisted")
)
