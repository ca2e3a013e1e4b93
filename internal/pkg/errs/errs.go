/*
Package errs provides the API-facing error type and the application error codes.

CustomError carries a business code, a user-facing message and an HTTP status.
Domain packages return plain sentinel errors; the API layer converts them.
*/
package errs

import (
	"fmt"
	"net/http"
	"strings"

	"anonchat/internal/pkg/logx"
)

// CustomError is the error shape returned to API clients.
type CustomError struct {
	// Code is the business error code (see constants).
	Code int

	// Message is the user-friendly description.
	Message string

	// Status is the HTTP status code sent with the response.
	Status int
}

// Error implements the error interface.
func (e CustomError) Error() string {
	return fmt.Sprintf("Error Code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// NewError builds a *CustomError from a registered code.
// details are printf arguments for messages containing verbs; for ErrUnknown the first
// detail may be the underlying error, which is logged. Unregistered codes fall back to ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	templateErr, ok := errorMap[code]

	if !ok {
		logx.Error(
			fmt.Errorf("no error template for code %d", code),
			"Unknown error code requested",
			"requested_code", code,
		)

		unknownErr := errorMap[ErrUnknown]
		return &unknownErr
	}

	customErr := templateErr

	if customErr.Status == 0 {
		customErr.Status = http.StatusOK
	}

	if code == ErrUnknown && len(details) > 0 {
		if originalErr, ok := details[0].(error); ok {
			logx.Error(originalErr, "Handling ErrUnknown with underlying error")
		}
	} else if len(details) > 0 {
		if strings.Contains(customErr.Message, "%") {
			customErr.Message = fmt.Sprintf(customErr.Message, details...)
		} else {
			logx.Warn("Details provided for an error template without verbs. Details ignored.", "code", code)
		}
	}

	return &customErr
}
