/*
Package errs provides the API-facing error type and the application error codes.

This file maps every code to its user message and HTTP status.
*/
package errs

import "net/http"

// errorMap holds the CustomError template for every application code.
// A zero Status means 200: business failures are reported in the envelope, not the status line.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},

	// 2xxx: Chat Errors
	ErrMessageEmpty:          {Code: ErrMessageEmpty, Message: "Message is empty."},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long (max %d bytes)."},
	ErrAccessExpired:         {Code: ErrAccessExpired, Message: "Your free time has expired. Pay to continue chatting."},

	// 3xxx: Payment Errors
	ErrPaymentUnavailable:  {Code: ErrPaymentUnavailable, Message: "Payment service is not available. Reload and try again."},
	ErrPaymentFailed:       {Code: ErrPaymentFailed, Message: "Payment failed: %s"},
	ErrPaymentInvalidState: {Code: ErrPaymentInvalidState, Message: "This payment action is not available right now.", Status: http.StatusConflict},

	// 4xxx: Storage Errors
	ErrStorageRead:  {Code: ErrStorageRead, Message: "Could not load chat data.", Status: http.StatusBadGateway},
	ErrStorageWrite: {Code: ErrStorageWrite, Message: "Could not save chat data.", Status: http.StatusBadGateway},

	// 5xxx: Internal System Errors
	ErrUnknown:        {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrSessionStopped: {Code: ErrSessionStopped, Message: "Chat session has ended.", Status: http.StatusServiceUnavailable},
}
