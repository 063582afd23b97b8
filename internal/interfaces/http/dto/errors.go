package dto

import "net/http"

// Wire error codes use the ERR_<CATEGORY>_<DESCRIPTION> format. They are
// part of the API contract; renaming one is a breaking change.
const (
	ErrCodeUnknown     = "ERR_UNKNOWN"
	ErrCodeInternal    = "ERR_INTERNAL"
	ErrCodeUnavailable = "ERR_UNAVAILABLE"

	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	ErrCodeValidationFormat   = "ERR_VALIDATION_FORMAT"
	ErrCodeValidationRange    = "ERR_VALIDATION_RANGE"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"

	// Business rule violations. INSUFFICIENT_SPEC means an order has no
	// usable bill of materials; DUPLICATE_TRANSITION means a completion
	// or reversal was already applied for the same cycle.
	ErrCodeInvalidState        = "ERR_INVALID_STATE"
	ErrCodeBusinessRule        = "ERR_BUSINESS_RULE"
	ErrCodeInsufficientStock   = "ERR_INSUFFICIENT_STOCK"
	ErrCodeInvalidTransition   = "ERR_INVALID_TRANSITION"
	ErrCodeDuplicateTransition = "ERR_DUPLICATE_TRANSITION"
	ErrCodeNotDeletable        = "ERR_NOT_DELETABLE"
	ErrCodeInsufficientSpec    = "ERR_INSUFFICIENT_SPEC"

	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
)

// errorCodeHTTPStatus maps wire codes to HTTP status lines. Business
// rule violations render as 422 except DUPLICATE_TRANSITION, which is a
// conflict with an earlier request rather than a rule of the domain.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:     http.StatusInternalServerError,
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeUnavailable: http.StatusServiceUnavailable,

	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:        http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:   http.StatusUnprocessableEntity,
	ErrCodeInvalidTransition:   http.StatusUnprocessableEntity,
	ErrCodeNotDeletable:        http.StatusUnprocessableEntity,
	ErrCodeInsufficientSpec:    http.StatusUnprocessableEntity,
	ErrCodeDuplicateTransition: http.StatusConflict,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
}

// GetHTTPStatus resolves a wire code to its HTTP status, defaulting to
// 500 for unmapped codes.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodeMapping translates domain-layer codes to the wire
// format. Aggregates raise bare codes like INSUFFICIENT_STOCK; the HTTP
// layer normalizes them here so the response contract stays stable even
// when domain codes evolve.
var domainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"INSUFFICIENT_STOCK":   ErrCodeInsufficientStock,
	"INVALID_TRANSITION":   ErrCodeInvalidTransition,
	"DUPLICATE_TRANSITION": ErrCodeDuplicateTransition,
	"NOT_DELETABLE":        ErrCodeNotDeletable,
	"INSUFFICIENT_SPEC":    ErrCodeInsufficientSpec,
	"PERSISTENCE_FAILURE":  ErrCodeInternal,
	"INTERNAL_ERROR":       ErrCodeInternal,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"VALIDATION_ERROR":     ErrCodeValidation,

	// Field-level domain validation codes all render as invalid input.
	"INVALID_ITEM_TYPE":  ErrCodeInvalidInput,
	"INVALID_CODE":       ErrCodeInvalidInput,
	"INVALID_NAME":       ErrCodeInvalidInput,
	"INVALID_UNIT":       ErrCodeInvalidInput,
	"INVALID_QUANTITY":   ErrCodeInvalidInput,
	"INVALID_COST":       ErrCodeInvalidInput,
	"INVALID_REASON":     ErrCodeInvalidInput,
	"INVALID_REFERENCE":  ErrCodeInvalidInput,
	"INVALID_DIRECTION":  ErrCodeInvalidInput,
	"INVALID_BASIS":      ErrCodeInvalidInput,
	"INVALID_BOM_LINK":   ErrCodeInvalidInput,
	"INVALID_PRODUCT":    ErrCodeInvalidInput,
	"INVALID_ITEM":       ErrCodeInvalidInput,
	"INVALID_KIND":       ErrCodeInvalidInput,
	"INVALID_ORDER_CODE": ErrCodeInvalidInput,
	"INVALID_STATUS":     ErrCodeInvalidInput,
	"INVALID_PERIOD":     ErrCodeInvalidInput,
	"DUPLICATE_LINE":     ErrCodeInvalidInput,
}

// NormalizeErrorCode converts a domain code to the wire format, passing
// through codes that are already normalized or unknown.
func NormalizeErrorCode(code string) string {
	if wireCode, ok := domainErrorCodeMapping[code]; ok {
		return wireCode
	}
	return code
}
