package shared

// DomainError pairs a stable machine-readable code with a message. The
// HTTP layer maps codes to status lines, so codes are part of the API
// contract.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError builds a DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInvalidTransition   = NewDomainError("INVALID_TRANSITION", "Status is not reachable from the current state")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrDuplicateTransition = NewDomainError("DUPLICATE_TRANSITION", "Transition was already applied for this order")
	ErrNotDeletable        = NewDomainError("NOT_DELETABLE", "Only pending orders can be deleted")
	ErrPersistenceFailure  = NewDomainError("PERSISTENCE_FAILURE", "Underlying store reported an error")
)
