package errors

import "errors"

// As extracts the *APIError from err's chain.
func As(err error) (*APIError, bool) {
	if err == nil {
		return nil, false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindUnknown when err is not an APIError.
func KindOf(err error) Kind {
	if apiErr, ok := As(err); ok {
		return apiErr.Kind
	}
	return KindUnknown
}

// StatusCode returns the HTTP status carried by err, zero if none.
func StatusCode(err error) int {
	if apiErr, ok := As(err); ok {
		return apiErr.StatusCode
	}
	return 0
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	if err == nil {
		return ""
	}
	return KindOf(err).Code()
}

// GetErrorMessage extracts a human-readable message from an error.
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := As(err); ok {
		return apiErr.Message
	}
	return err.Error()
}

func isKind(err error, kind Kind) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Kind == kind
}

// IsUnauthorized checks if an error indicates lack of authentication.
func IsUnauthorized(err error) bool { return isKind(err, KindUnauthorized) }

// IsForbidden checks if an error indicates lack of authorization.
func IsForbidden(err error) bool { return isKind(err, KindForbidden) }

// IsNotFound checks if an error indicates a resource was not found.
func IsNotFound(err error) bool { return isKind(err, KindNotFound) }

// IsConflict checks if an error indicates a resource conflict.
func IsConflict(err error) bool { return isKind(err, KindConflict) }

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool { return isKind(err, KindValidation) }

// IsRateLimited checks if an error indicates rate limiting.
func IsRateLimited(err error) bool { return isKind(err, KindRateLimited) }

// IsServerError checks if an error is a 5xx server error.
func IsServerError(err error) bool { return isKind(err, KindServerError) }

// IsNetwork checks if an error means no response was received.
func IsNetwork(err error) bool { return isKind(err, KindNetwork) }

// FieldErrors returns the validation field errors carried by err, if any.
func FieldErrors(err error) map[string][]string {
	if apiErr, ok := As(err); ok {
		return apiErr.FieldErrors
	}
	return nil
}
