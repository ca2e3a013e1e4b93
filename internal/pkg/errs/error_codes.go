/*
Package errs provides the API-facing error type and the application error codes.

Codes identify a failure class to the presentation layer independently of the
human-readable message.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not application/json.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates a malformed JSON body.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing data after the JSON document.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates that the request body exceeded the server limit.
	ErrRequestEntityTooLarge = 1006
)

// 2xxx: Chat Errors
const (
	// ErrMessageEmpty indicates an empty or whitespace-only message.
	ErrMessageEmpty = 2201

	// ErrMessageContentTooLong indicates that the message exceeded the maximum length.
	ErrMessageContentTooLong = 2202

	// ErrAccessExpired indicates a send attempt while chat access is not active.
	ErrAccessExpired = 2301
)

// 3xxx: Payment Errors
const (
	// ErrPaymentUnavailable indicates that no payment gateway is loaded.
	ErrPaymentUnavailable = 3001

	// ErrPaymentFailed indicates that the gateway declined or aborted the payment.
	ErrPaymentFailed = 3002

	// ErrPaymentInvalidState indicates a gate action that is not allowed in the current gate state.
	ErrPaymentInvalidState = 3003
)

// 4xxx: Storage Errors
const (
	// ErrStorageRead indicates that the storage backend could not be read.
	ErrStorageRead = 4001

	// ErrStorageWrite indicates that the storage backend rejected a write.
	ErrStorageWrite = 4002
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal error.
	ErrUnknown = 5000

	// ErrSessionStopped indicates that the chat session is no longer running.
	ErrSessionStopped = 5001
)
